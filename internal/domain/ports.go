package domain

import "context"

type ReviewStore interface {
	// Read paths
	FindMany(ctx context.Context, f Filter, p Pagination) ([]Review, int, error)
	FindByID(ctx context.Context, id string) (Review, error)
	FindByPropertyName(ctx context.Context, name string, f Filter, p Pagination) ([]Review, int, error)
	PropertyAnalytics(ctx context.Context, propertyName string) (Analytics, error)

	// Write paths
	Create(ctx context.Context, d ReviewDraft) (Review, error)
	Update(ctx context.Context, id string, d ReviewDraft) (Review, error)
	BulkUpsert(ctx context.Context, drafts []ReviewDraft) ([]Review, error)
	ApproveForPublic(ctx context.Context, id, approvedBy string) (Review, error)
	RemoveApproval(ctx context.Context, id string) (Review, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	// DelPattern removes every current key matching a glob where `*`
	// matches any run of characters. Evaluated eagerly at call time.
	DelPattern(ctx context.Context, pattern string) error
}

// ReviewProvider is the upstream source of raw, unnormalized reviews.
// Either fetch may fail; callers treat failures as recoverable per source.
type ReviewProvider interface {
	FetchFromHostaway(ctx context.Context) ([]RawReview, error)
	FetchFromGoogle(ctx context.Context) ([]RawReview, error)
}

// RawReview is a provider record with per-category ratings on a 0-10 scale.
type RawReview struct {
	ID             string        `json:"id"`
	ListingName    string        `json:"listingName"`
	GuestName      string        `json:"guestName"`
	PublicReview   string        `json:"publicReview"`
	ReviewCategory []RawCategory `json:"reviewCategory"`
	SubmittedAt    string        `json:"submittedAt"`
	Type           string        `json:"type"`
	Status         string        `json:"status"`
	Source         string        `json:"source,omitempty"`
	Rating         *float64      `json:"rating,omitempty"`
}

type RawCategory struct {
	Category string  `json:"category"`
	Rating   float64 `json:"rating"`
}

// Read models returned by the review service.

type ReviewsResult struct {
	Reviews   []Review  `json:"reviews"`
	Total     int       `json:"total"`
	Analytics Analytics `json:"analytics"`
}

type PropertyInfo struct {
	Name                 string  `json:"name"`
	AverageRating        float64 `json:"averageRating"`
	TotalApprovedReviews int     `json:"totalApprovedReviews"`
}

type PublicReviewsResult struct {
	Reviews      []Review     `json:"reviews"`
	Total        int          `json:"total"`
	PropertyInfo PropertyInfo `json:"propertyInfo"`
}

type SyncResult struct {
	Synced  int      `json:"synced"`
	Errors  []string `json:"errors"`
	Sources []string `json:"sources"`
}
