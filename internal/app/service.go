package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"flex_reviews/internal/domain"
)

const (
	reviewsTTLSec = 300 // query results
	reviewTTLSec  = 600 // point lookups
)

// ReviewService orchestrates the store, cache and external provider.
type ReviewService struct {
	store    domain.ReviewStore
	provider domain.ReviewProvider
	cache    domain.Cache
}

func NewReviewService(store domain.ReviewStore, provider domain.ReviewProvider, cache domain.Cache) *ReviewService {
	return &ReviewService{store: store, provider: provider, cache: cache}
}

// GetReviews serves the manager listing. An entirely empty store triggers a
// synchronous bootstrap sync before the query runs.
func (s *ReviewService) GetReviews(ctx context.Context, f domain.Filter, p domain.Pagination) (domain.ReviewsResult, error) {
	if err := validateFilter(f); err != nil {
		return domain.ReviewsResult{}, err
	}
	if err := validatePagination(p); err != nil {
		return domain.ReviewsResult{}, err
	}

	_, existing, err := s.store.FindMany(ctx, domain.Filter{}, domain.Pagination{
		Limit: 1, Offset: 0, SortBy: domain.SortByDate, SortOrder: domain.SortDesc,
	})
	if err != nil {
		return domain.ReviewsResult{}, err
	}
	if existing == 0 {
		log.Info().Msg("store empty, syncing from external sources")
		if _, err := s.SyncFromSources(ctx); err != nil {
			return domain.ReviewsResult{}, err
		}
	}

	key := queryCacheKey("reviews", f, p)
	var out domain.ReviewsResult
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		log.Debug().Str("key", key).Msg("reviews served from cache")
		return out, nil
	}

	reviews, total, err := s.store.FindMany(ctx, f, p)
	if err != nil {
		return domain.ReviewsResult{}, err
	}
	analytics, err := s.store.PropertyAnalytics(ctx, deref(f.PropertyName))
	if err != nil {
		return domain.ReviewsResult{}, err
	}

	out = domain.ReviewsResult{Reviews: reviews, Total: total, Analytics: analytics}
	_ = s.cache.Set(ctx, key, out, reviewsTTLSec)

	log.Info().Int("total", total).Msg("retrieved reviews")
	return out, nil
}

// GetReviewByID is a cache-or-store point lookup. It never bootstraps.
func (s *ReviewService) GetReviewByID(ctx context.Context, id string) (domain.Review, error) {
	if err := validateID(id); err != nil {
		return domain.Review{}, err
	}

	key := "review:" + id
	var rv domain.Review
	if ok, _ := s.cache.Get(ctx, key, &rv); ok {
		return rv, nil
	}

	rv, err := s.store.FindByID(ctx, id)
	if err != nil {
		return domain.Review{}, err
	}
	_ = s.cache.Set(ctx, key, rv, reviewTTLSec)
	return rv, nil
}

// GetPublicReviews lists a property's reviews for the public site. Public
// visibility is always approval-gated; the forced filter is the invariant,
// not a default.
func (s *ReviewService) GetPublicReviews(ctx context.Context, propertyName string, p domain.Pagination) (domain.PublicReviewsResult, error) {
	name := propertyName
	if decoded, err := url.QueryUnescape(propertyName); err == nil {
		name = decoded
	}
	if err := validatePropertyName(name); err != nil {
		return domain.PublicReviewsResult{}, err
	}

	// supplied pagination merged over the public defaults
	if p.Limit == 0 {
		p.Limit = 10
	}
	if p.SortBy == "" {
		p.SortBy = domain.SortByDate
	}
	if p.SortOrder == "" {
		p.SortOrder = domain.SortDesc
	}
	if err := validatePagination(p); err != nil {
		return domain.PublicReviewsResult{}, err
	}

	approved := true
	f := domain.Filter{PropertyName: &name, IsApprovedForPublic: &approved}

	key := publicCacheKey(name, p)
	var out domain.PublicReviewsResult
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	reviews, total, err := s.store.FindMany(ctx, f, p)
	if err != nil {
		return domain.PublicReviewsResult{}, err
	}
	analytics, err := s.store.PropertyAnalytics(ctx, name)
	if err != nil {
		return domain.PublicReviewsResult{}, err
	}

	out = domain.PublicReviewsResult{
		Reviews: reviews,
		Total:   total,
		PropertyInfo: domain.PropertyInfo{
			Name:                 name,
			AverageRating:        analytics.AverageRating,
			TotalApprovedReviews: total,
		},
	}
	_ = s.cache.Set(ctx, key, out, reviewsTTLSec)

	log.Info().Str("property", name).Int("total", total).Msg("retrieved public reviews")
	return out, nil
}

// ApproveReview marks a review publishable. Approving an already approved
// review is a logged no-op returning the current state.
func (s *ReviewService) ApproveReview(ctx context.Context, reviewID, approvedBy string) (domain.Review, error) {
	if err := validateID(reviewID); err != nil {
		return domain.Review{}, err
	}
	if err := validateApprover(approvedBy); err != nil {
		return domain.Review{}, err
	}

	rv, err := s.store.FindByID(ctx, reviewID)
	if err != nil {
		return domain.Review{}, err
	}
	if rv.IsApprovedForPublic {
		log.Warn().Str("id", reviewID).Msg("review already approved")
		return rv, nil
	}

	updated, err := s.store.ApproveForPublic(ctx, reviewID, approvedBy)
	if err != nil {
		return domain.Review{}, err
	}
	s.invalidateReviewCaches(ctx, rv.PropertyName)

	log.Info().Str("id", reviewID).Str("by", approvedBy).Str("property", rv.PropertyName).
		Msg("review approved for public display")
	return updated, nil
}

// RemoveApproval reverts a review to unapproved and clears the moderation
// fields entirely. A no-op when the review is not approved.
func (s *ReviewService) RemoveApproval(ctx context.Context, reviewID string) (domain.Review, error) {
	if err := validateID(reviewID); err != nil {
		return domain.Review{}, err
	}

	rv, err := s.store.FindByID(ctx, reviewID)
	if err != nil {
		return domain.Review{}, err
	}
	if !rv.IsApprovedForPublic {
		log.Warn().Str("id", reviewID).Msg("review not approved, nothing to remove")
		return rv, nil
	}

	updated, err := s.store.RemoveApproval(ctx, reviewID)
	if err != nil {
		return domain.Review{}, err
	}
	s.invalidateReviewCaches(ctx, rv.PropertyName)

	log.Info().Str("id", reviewID).Str("property", rv.PropertyName).Msg("review approval removed")
	return updated, nil
}

// SyncFromSources pulls every configured source independently. One source
// failing is recorded and does not abort the others; the call itself only
// fails on a canceled context. Caches are invalidated afterwards
// unconditionally because the store may have changed either way.
func (s *ReviewService) SyncFromSources(ctx context.Context) (domain.SyncResult, error) {
	sources := []struct {
		name  string
		fetch func(context.Context) ([]domain.RawReview, error)
	}{
		{"hostaway", s.provider.FetchFromHostaway},
		{"google", s.provider.FetchFromGoogle},
	}

	type slot struct {
		synced int
		err    error
	}
	slots := make([]slot, len(sources))

	var g errgroup.Group
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			raws, err := src.fetch(ctx)
			if err != nil {
				slots[i].err = err
				return nil
			}
			if len(raws) == 0 {
				return nil
			}
			drafts := make([]domain.ReviewDraft, 0, len(raws))
			for _, raw := range raws {
				drafts = append(drafts, NormalizeExternalReview(raw))
			}
			stored, err := s.store.BulkUpsert(ctx, drafts)
			if err != nil {
				slots[i].err = err
				return nil
			}
			slots[i].synced = len(stored)
			return nil
		})
	}
	_ = g.Wait()

	result := domain.SyncResult{Errors: []string{}, Sources: []string{}}
	for i, src := range sources {
		if err := slots[i].err; err != nil {
			msg := fmt.Sprintf("%s sync failed: %v", src.name, err)
			result.Errors = append(result.Errors, msg)
			log.Error().Err(err).Str("source", src.name).Msg("source sync failed")
			continue
		}
		if slots[i].synced == 0 {
			log.Debug().Str("source", src.name).Msg("source yielded no reviews")
			continue
		}
		result.Synced += slots[i].synced
		result.Sources = append(result.Sources, src.name)
		log.Info().Str("source", src.name).Int("count", slots[i].synced).Msg("synced reviews")
	}

	_ = s.cache.DelPattern(ctx, "reviews:*")
	_ = s.cache.DelPattern(ctx, "review:*")
	_ = s.cache.DelPattern(ctx, "public-reviews:*")

	log.Info().Int("synced", result.Synced).Int("errors", len(result.Errors)).
		Msg("review synchronization completed")
	return result, nil
}

func (s *ReviewService) invalidateReviewCaches(ctx context.Context, propertyName string) {
	for _, pattern := range []string{"reviews:*", "review:*", "public-reviews:" + propertyName + ":*"} {
		_ = s.cache.DelPattern(ctx, pattern)
	}
}

// queryCacheKey builds a key that is stable for equivalent filter and
// pagination values no matter how they were assembled.
func queryCacheKey(prefix string, f domain.Filter, p domain.Pagination) string {
	parts := make([]string, 0, 8)
	if f.PropertyName != nil {
		parts = append(parts, "property:"+*f.PropertyName)
	}
	if f.MinRating != nil {
		parts = append(parts, "minRating:"+strconv.FormatFloat(*f.MinRating, 'f', -1, 64))
	}
	if f.Category != nil {
		parts = append(parts, "category:"+*f.Category)
	}
	if f.Channel != nil {
		parts = append(parts, "channel:"+string(*f.Channel))
	}
	if f.IsApprovedForPublic != nil {
		parts = append(parts, "approved:"+strconv.FormatBool(*f.IsApprovedForPublic))
	}
	if f.TimeFrom != nil {
		parts = append(parts, "timeFrom:"+f.TimeFrom.UTC().Format("2006-01-02T15:04:05Z"))
	}
	if f.TimeTo != nil {
		parts = append(parts, "timeTo:"+f.TimeTo.UTC().Format("2006-01-02T15:04:05Z"))
	}
	sort.Strings(parts)

	sig := strings.Join(parts, "|") +
		fmt.Sprintf("|%d:%d:%s:%s", p.Limit, p.Offset, p.SortBy, p.SortOrder)
	return prefix + ":" + base64.StdEncoding.EncodeToString([]byte(sig))
}

func publicCacheKey(propertyName string, p domain.Pagination) string {
	return fmt.Sprintf("public-reviews:%s:%d:%d:%s:%s",
		propertyName, p.Limit, p.Offset, p.SortBy, p.SortOrder)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
