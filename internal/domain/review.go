package domain

import "time"

type Channel string

const (
	ChannelHostaway Channel = "hostaway"
	ChannelGoogle   Channel = "google"
	ChannelAirbnb   Channel = "airbnb"
)

type Status string

const (
	StatusPublished Status = "published"
	StatusPending   Status = "pending"
	StatusHidden    Status = "hidden"
)

type ReviewType string

const (
	TypeHostToGuest ReviewType = "host-to-guest"
	TypeGuestToHost ReviewType = "guest-to-host"
)

// Categories holds per-category ratings on the canonical 0-5 scale.
type Categories struct {
	Cleanliness       float64 `json:"cleanliness"`
	Communication     float64 `json:"communication"`
	RespectHouseRules float64 `json:"respect_house_rules"`
}

// Review is the stored entity. ApprovedAt/ApprovedBy are nil whenever
// IsApprovedForPublic is false.
type Review struct {
	ID                  string     `json:"id"`
	ExternalID          string     `json:"externalId"`
	PropertyName        string     `json:"propertyName"`
	GuestName           string     `json:"guestName"`
	ReviewText          string     `json:"reviewText"`
	OverallRating       float64    `json:"overallRating"`
	Categories          Categories `json:"categories"`
	SubmittedAt         time.Time  `json:"submittedAt"`
	Channel             Channel    `json:"channel"`
	Status              Status     `json:"status"`
	Type                ReviewType `json:"type"`
	IsApprovedForPublic bool       `json:"isApprovedForPublic"`
	ApprovedAt          *time.Time `json:"approvedAt,omitempty"`
	ApprovedBy          *string    `json:"approvedBy,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// ReviewDraft is what the normalizer produces and the store persists:
// a Review without id and audit timestamps. On an upsert update only the
// content and classification fields are applied; the moderation fields
// stay untouched.
type ReviewDraft struct {
	ExternalID          string
	PropertyName        string
	GuestName           string
	ReviewText          string
	OverallRating       float64
	Categories          Categories
	SubmittedAt         time.Time
	Channel             Channel
	Status              Status
	Type                ReviewType
	IsApprovedForPublic bool
}

// Filter narrows a review query. All set fields combine with AND.
// Category is carried for wire compatibility but does not constrain results.
type Filter struct {
	PropertyName        *string    `json:"propertyName,omitempty"`
	MinRating           *float64   `json:"minRating,omitempty"`
	Category            *string    `json:"category,omitempty"`
	Channel             *Channel   `json:"channel,omitempty"`
	IsApprovedForPublic *bool      `json:"isApprovedForPublic,omitempty"`
	TimeFrom            *time.Time `json:"timeFrom,omitempty"`
	TimeTo              *time.Time `json:"timeTo,omitempty"`
}

const (
	SortByDate     = "date"
	SortByRating   = "rating"
	SortByProperty = "property"

	SortAsc  = "asc"
	SortDesc = "desc"
)

type Pagination struct {
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

// DefaultPagination is the store-level default: newest first, one page of 50.
func DefaultPagination() Pagination {
	return Pagination{Limit: 50, Offset: 0, SortBy: SortByDate, SortOrder: SortDesc}
}
