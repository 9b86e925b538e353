package app

import (
	"math"
	"strings"
	"time"

	"flex_reviews/internal/domain"
)

// Provider timestamps arrive either as "2020-08-21 22:45:14" or RFC3339.
var submittedAtLayouts = []string{"2006-01-02 15:04:05", time.RFC3339}

// NormalizeExternalReview converts a raw provider record (10-point category
// scale) into a canonical 0-5 draft. It never fails: malformed or missing
// fields degrade to defaults so one bad record cannot abort a sync batch.
func NormalizeExternalReview(raw domain.RawReview) domain.ReviewDraft {
	d := domain.ReviewDraft{
		ExternalID:          strings.TrimSpace(raw.ID),
		PropertyName:        orDefault(raw.ListingName, "Unknown Property"),
		GuestName:           orDefault(raw.GuestName, "Anonymous"),
		ReviewText:          raw.PublicReview,
		Categories:          normalizeCategories(raw.ReviewCategory),
		SubmittedAt:         parseSubmittedAt(raw.SubmittedAt),
		Channel:             inferChannel(raw),
		Status:              domain.StatusPublished,
		Type:                domain.TypeGuestToHost,
		IsApprovedForPublic: false,
	}
	if raw.Type == string(domain.TypeHostToGuest) {
		d.Type = domain.TypeHostToGuest
	}

	if raw.Rating != nil {
		d.OverallRating = *raw.Rating / 2
	} else {
		// mean of the raw 10-point ratings, rounded to one decimal, then halved
		d.OverallRating = round1(rawMean(raw.ReviewCategory)) / 2
	}
	return d
}

// normalizeCategories halves each known 10-point rating and rounds to one
// decimal. Unknown category keys are dropped; missing ones stay 0.
func normalizeCategories(in []domain.RawCategory) domain.Categories {
	var c domain.Categories
	for _, rc := range in {
		v := round1(rc.Rating / 2)
		switch rc.Category {
		case "cleanliness":
			c.Cleanliness = v
		case "communication":
			c.Communication = v
		case "respect_house_rules":
			c.RespectHouseRules = v
		}
	}
	return c
}

func rawMean(in []domain.RawCategory) float64 {
	if len(in) == 0 {
		return 0
	}
	var sum float64
	for _, rc := range in {
		sum += rc.Rating
	}
	return sum / float64(len(in))
}

// inferChannel is a closed provider-driven default: only an explicit
// "google" source maps away from hostaway.
func inferChannel(raw domain.RawReview) domain.Channel {
	if raw.Source == "google" {
		return domain.ChannelGoogle
	}
	return domain.ChannelHostaway
}

func parseSubmittedAt(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range submittedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
