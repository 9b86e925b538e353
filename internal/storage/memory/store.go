package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"flex_reviews/internal/domain"
)

// Store is the reference in-memory ReviewStore: an insertion-ordered arena
// with id and external-id indexes pointing into it. Reviews are never
// hard-deleted, so arena indexes stay valid for the life of the store.
type Store struct {
	mu           sync.RWMutex
	arena        []domain.Review
	byID         map[string]int
	byExternalID map[string]int
}

func New() *Store {
	return &Store{
		byID:         make(map[string]int),
		byExternalID: make(map[string]int),
	}
}

func (s *Store) FindMany(ctx context.Context, f domain.Filter, p domain.Pagination) ([]domain.Review, int, error) {
	s.mu.RLock()
	matched := s.filterLocked(f)
	s.mu.RUnlock()

	sortReviews(matched, p.SortBy, p.SortOrder)

	total := len(matched)
	start := p.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	page := make([]domain.Review, end-start)
	copy(page, matched[start:end])
	return page, total, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	return s.arena[idx], nil
}

// FindByPropertyName is a convenience composition: the property filter is
// merged in and zero pagination fields take the store defaults.
func (s *Store) FindByPropertyName(ctx context.Context, name string, f domain.Filter, p domain.Pagination) ([]domain.Review, int, error) {
	f.PropertyName = &name
	def := domain.DefaultPagination()
	if p.Limit == 0 {
		p.Limit = def.Limit
	}
	if p.SortBy == "" {
		p.SortBy = def.SortBy
	}
	if p.SortOrder == "" {
		p.SortOrder = def.SortOrder
	}
	return s.FindMany(ctx, f, p)
}

func (s *Store) PropertyAnalytics(ctx context.Context, propertyName string) (domain.Analytics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reviews := s.arena
	if propertyName != "" {
		needle := strings.ToLower(propertyName)
		subset := make([]domain.Review, 0, len(s.arena))
		for _, r := range s.arena {
			if strings.Contains(strings.ToLower(r.PropertyName), needle) {
				subset = append(subset, r)
			}
		}
		reviews = subset
	}
	return domain.ComputeAnalytics(reviews), nil
}

func (s *Store) Create(ctx context.Context, d domain.ReviewDraft) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(d), nil
}

func (s *Store) Update(ctx context.Context, id string, d domain.ReviewDraft) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byID[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	s.applyDraftLocked(idx, d)
	return s.arena[idx], nil
}

// BulkUpsert updates by external id when known, creates otherwise. Drafts
// without an external id are skipped: rows we could never re-identify on the
// next sync are not worth storing.
func (s *Store) BulkUpsert(ctx context.Context, drafts []domain.ReviewDraft) ([]domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Review, 0, len(drafts))
	for _, d := range drafts {
		if d.ExternalID == "" {
			continue
		}
		if idx, ok := s.byExternalID[d.ExternalID]; ok {
			s.applyDraftLocked(idx, d)
			out = append(out, s.arena[idx])
			continue
		}
		out = append(out, s.createLocked(d))
	}
	return out, nil
}

func (s *Store) ApproveForPublic(ctx context.Context, id, approvedBy string) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byID[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	now := time.Now().UTC()
	rv := &s.arena[idx]
	rv.IsApprovedForPublic = true
	rv.ApprovedAt = &now
	rv.ApprovedBy = &approvedBy
	rv.UpdatedAt = now
	return *rv, nil
}

func (s *Store) RemoveApproval(ctx context.Context, id string) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byID[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	rv := &s.arena[idx]
	rv.IsApprovedForPublic = false
	// clear, not just flip: the fields must be genuinely absent afterwards
	rv.ApprovedAt = nil
	rv.ApprovedBy = nil
	rv.UpdatedAt = time.Now().UTC()
	return *rv, nil
}

// ---- internals (caller holds the write lock) ----

func (s *Store) createLocked(d domain.ReviewDraft) domain.Review {
	now := time.Now().UTC()
	rv := domain.Review{
		ID:                  uuid.NewString(),
		ExternalID:          d.ExternalID,
		PropertyName:        d.PropertyName,
		GuestName:           d.GuestName,
		ReviewText:          d.ReviewText,
		OverallRating:       d.OverallRating,
		Categories:          d.Categories,
		SubmittedAt:         d.SubmittedAt,
		Channel:             d.Channel,
		Status:              d.Status,
		Type:                d.Type,
		IsApprovedForPublic: d.IsApprovedForPublic,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	s.arena = append(s.arena, rv)
	idx := len(s.arena) - 1
	s.byID[rv.ID] = idx
	if rv.ExternalID != "" {
		s.byExternalID[rv.ExternalID] = idx
	}
	return rv
}

// applyDraftLocked rewrites content and classification fields from the
// draft. Identity, creation time and the moderation triple are preserved so
// a re-sync can never undo or corrupt an approval.
func (s *Store) applyDraftLocked(idx int, d domain.ReviewDraft) {
	rv := &s.arena[idx]
	if d.ExternalID != "" && d.ExternalID != rv.ExternalID {
		delete(s.byExternalID, rv.ExternalID)
		rv.ExternalID = d.ExternalID
		s.byExternalID[rv.ExternalID] = idx
	}
	rv.PropertyName = d.PropertyName
	rv.GuestName = d.GuestName
	rv.ReviewText = d.ReviewText
	rv.OverallRating = d.OverallRating
	rv.Categories = d.Categories
	rv.SubmittedAt = d.SubmittedAt
	rv.Channel = d.Channel
	rv.Status = d.Status
	rv.Type = d.Type
	rv.UpdatedAt = time.Now().UTC()
}

// filterLocked materializes matches in insertion order, which makes the
// later stable sort deterministic for a given input order.
func (s *Store) filterLocked(f domain.Filter) []domain.Review {
	out := make([]domain.Review, 0, len(s.arena))
	for _, r := range s.arena {
		if matches(r, f) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r domain.Review, f domain.Filter) bool {
	if f.PropertyName != nil &&
		!strings.Contains(strings.ToLower(r.PropertyName), strings.ToLower(*f.PropertyName)) {
		return false
	}
	if f.MinRating != nil && r.OverallRating < *f.MinRating {
		return false
	}
	if f.Channel != nil && r.Channel != *f.Channel {
		return false
	}
	if f.IsApprovedForPublic != nil && r.IsApprovedForPublic != *f.IsApprovedForPublic {
		return false
	}
	if f.TimeFrom != nil && r.SubmittedAt.Before(*f.TimeFrom) {
		return false
	}
	if f.TimeTo != nil && r.SubmittedAt.After(*f.TimeTo) {
		return false
	}
	return true
}

func sortReviews(reviews []domain.Review, sortBy, sortOrder string) {
	asc := sortOrder == domain.SortAsc
	sort.SliceStable(reviews, func(i, j int) bool {
		a, b := &reviews[i], &reviews[j]
		if !asc {
			a, b = b, a
		}
		switch sortBy {
		case domain.SortByRating:
			return a.OverallRating < b.OverallRating
		case domain.SortByProperty:
			return a.PropertyName < b.PropertyName
		default: // date
			return a.SubmittedAt.Before(b.SubmittedAt)
		}
	})
}
