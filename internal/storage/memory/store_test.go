package memory

import (
	"context"
	"testing"
	"time"

	"flex_reviews/internal/domain"
)

func seedDraft(extID, property string, rating float64, submitted time.Time) domain.ReviewDraft {
	return domain.ReviewDraft{
		ExternalID:    extID,
		PropertyName:  property,
		GuestName:     "Guest",
		ReviewText:    "text",
		OverallRating: rating,
		Categories:    domain.Categories{Cleanliness: rating},
		SubmittedAt:   submitted,
		Channel:       domain.ChannelHostaway,
		Status:        domain.StatusPublished,
		Type:          domain.TypeGuestToHost,
	}
}

func mustCreate(t *testing.T, s *Store, d domain.ReviewDraft) domain.Review {
	t.Helper()
	rv, err := s.Create(context.Background(), d)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return rv
}

func TestFindMany_FiltersCombineWithAnd(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mustCreate(t, s, seedDraft("a", "Shoreditch Heights", 4.5, base))
	mustCreate(t, s, seedDraft("b", "Shoreditch Heights", 2.0, base.AddDate(0, 1, 0)))
	mustCreate(t, s, seedDraft("c", "Canary Wharf Tower", 4.8, base.AddDate(0, 2, 0)))

	name := "shoreditch"
	min := 4.0
	rs, total, err := s.FindMany(ctx, domain.Filter{PropertyName: &name, MinRating: &min}, domain.DefaultPagination())
	if err != nil {
		t.Fatalf("FindMany: %v", err)
	}
	if total != 1 || len(rs) != 1 || rs[0].ExternalID != "a" {
		t.Fatalf("AND filter failed: total=%d rs=%+v", total, rs)
	}

	// time range is inclusive at both ends
	from := base.AddDate(0, 1, 0)
	to := base.AddDate(0, 2, 0)
	_, total, err = s.FindMany(ctx, domain.Filter{TimeFrom: &from, TimeTo: &to}, domain.DefaultPagination())
	if err != nil {
		t.Fatalf("FindMany range: %v", err)
	}
	if total != 2 {
		t.Fatalf("inclusive range total = %d, want 2", total)
	}
}

func TestFindMany_TotalCountsMatchesNotPage(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		mustCreate(t, s, seedDraft(string(rune('a'+i)), "Flat", 3.0, base.AddDate(0, 0, i)))
	}

	cases := []struct {
		limit, offset, wantLen int
	}{
		{3, 0, 3},
		{3, 6, 1},
		{3, 7, 0},
		{3, 100, 0},
		{100, 0, 7},
	}
	for _, c := range cases {
		rs, total, err := s.FindMany(ctx, domain.Filter{}, domain.Pagination{
			Limit: c.limit, Offset: c.offset, SortBy: domain.SortByDate, SortOrder: domain.SortDesc,
		})
		if err != nil {
			t.Fatalf("FindMany limit=%d offset=%d: %v", c.limit, c.offset, err)
		}
		if total != 7 {
			t.Fatalf("total = %d, want 7", total)
		}
		if len(rs) != c.wantLen {
			t.Fatalf("limit=%d offset=%d page len = %d, want %d", c.limit, c.offset, len(rs), c.wantLen)
		}
	}
}

func TestFindByPropertyName_MergesFilterAndDefaults(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	older := mustCreate(t, s, seedDraft("a1", "Flat A", 4.0, base))
	newer := mustCreate(t, s, seedDraft("a2", "Flat A", 2.0, base.AddDate(0, 1, 0)))
	mustCreate(t, s, seedDraft("b1", "Other Place", 5.0, base))

	// zero pagination takes the store defaults: limit 50, newest first
	rs, total, err := s.FindByPropertyName(ctx, "Flat A", domain.Filter{}, domain.Pagination{})
	if err != nil {
		t.Fatalf("FindByPropertyName: %v", err)
	}
	if total != 2 || len(rs) != 2 {
		t.Fatalf("property scoping failed: total=%d rs=%+v", total, rs)
	}
	if rs[0].ID != newer.ID || rs[1].ID != older.ID {
		t.Fatalf("default order not date desc: %s, %s", rs[0].ExternalID, rs[1].ExternalID)
	}

	// extra filter fields still combine with the property scope
	min := 3.0
	rs, total, err = s.FindByPropertyName(ctx, "Flat A", domain.Filter{MinRating: &min}, domain.Pagination{})
	if err != nil {
		t.Fatalf("FindByPropertyName filtered: %v", err)
	}
	if total != 1 || rs[0].ID != older.ID {
		t.Fatalf("merged filter failed: total=%d rs=%+v", total, rs)
	}

	// explicit pagination wins over the defaults
	rs, total, err = s.FindByPropertyName(ctx, "Flat A", domain.Filter{}, domain.Pagination{
		Limit: 1, SortBy: domain.SortByDate, SortOrder: domain.SortAsc,
	})
	if err != nil {
		t.Fatalf("FindByPropertyName paged: %v", err)
	}
	if total != 2 || len(rs) != 1 || rs[0].ID != older.ID {
		t.Fatalf("explicit pagination ignored: total=%d rs=%+v", total, rs)
	}
}

func TestFindMany_NegativeOffsetClamped(t *testing.T) {
	s := New()
	ctx := context.Background()
	mustCreate(t, s, seedDraft("a", "Flat", 3.0, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	rs, total, err := s.FindMany(ctx, domain.Filter{}, domain.Pagination{
		Limit: 10, Offset: -5, SortBy: domain.SortByDate, SortOrder: domain.SortDesc,
	})
	if err != nil {
		t.Fatalf("FindMany: %v", err)
	}
	if total != 1 || len(rs) != 1 {
		t.Fatalf("negative offset mishandled: total=%d len=%d", total, len(rs))
	}
}

func TestFindMany_SortStability(t *testing.T) {
	s := New()
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	// identical sort keys: insertion order must decide
	first := mustCreate(t, s, seedDraft("x1", "Flat", 3.0, at))
	second := mustCreate(t, s, seedDraft("x2", "Flat", 3.0, at))

	rs, _, err := s.FindMany(ctx, domain.Filter{}, domain.Pagination{
		Limit: 10, SortBy: domain.SortByRating, SortOrder: domain.SortAsc,
	})
	if err != nil {
		t.Fatalf("FindMany: %v", err)
	}
	if rs[0].ID != first.ID || rs[1].ID != second.ID {
		t.Fatalf("equal keys reordered: %s, %s", rs[0].ExternalID, rs[1].ExternalID)
	}
}

func TestBulkUpsert_IdempotentAndPreservesModeration(t *testing.T) {
	s := New()
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	seeded, err := s.BulkUpsert(ctx, []domain.ReviewDraft{
		seedDraft("ext-1", "Flat", 4.0, at),
		{PropertyName: "no external id"}, // skipped
	})
	if err != nil {
		t.Fatalf("BulkUpsert: %v", err)
	}
	if len(seeded) != 1 {
		t.Fatalf("seeded = %d, want 1 (blank external id skipped)", len(seeded))
	}
	created := seeded[0]

	if _, err := s.ApproveForPublic(ctx, created.ID, "manager"); err != nil {
		t.Fatalf("ApproveForPublic: %v", err)
	}

	// re-sync with changed content
	d := seedDraft("ext-1", "Flat Renamed", 2.0, at)
	again, err := s.BulkUpsert(ctx, []domain.ReviewDraft{d})
	if err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	got := again[0]
	if got.ID != created.ID {
		t.Fatalf("upsert minted a new id: %s != %s", got.ID, created.ID)
	}
	if got.PropertyName != "Flat Renamed" || got.OverallRating != 2.0 {
		t.Fatalf("content not refreshed: %+v", got)
	}
	if !got.IsApprovedForPublic || got.ApprovedAt == nil || got.ApprovedBy == nil {
		t.Fatalf("re-sync clobbered moderation: %+v", got)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("createdAt changed on update: %v -> %v", created.CreatedAt, got.CreatedAt)
	}
	if got.UpdatedAt.Before(created.UpdatedAt) {
		t.Fatalf("updatedAt went backwards: %v -> %v", created.UpdatedAt, got.UpdatedAt)
	}

	_, total, _ := s.FindMany(ctx, domain.Filter{}, domain.DefaultPagination())
	if total != 1 {
		t.Fatalf("store grew on re-upsert: total = %d", total)
	}
}

func TestRemoveApproval_ClearsAuditFields(t *testing.T) {
	s := New()
	ctx := context.Background()
	rv := mustCreate(t, s, seedDraft("e", "Flat", 4.0, time.Now()))

	if _, err := s.ApproveForPublic(ctx, rv.ID, "manager"); err != nil {
		t.Fatalf("ApproveForPublic: %v", err)
	}
	got, err := s.RemoveApproval(ctx, rv.ID)
	if err != nil {
		t.Fatalf("RemoveApproval: %v", err)
	}
	if got.IsApprovedForPublic || got.ApprovedAt != nil || got.ApprovedBy != nil {
		t.Fatalf("approval fields survived removal: %+v", got)
	}
}

func TestStore_NotFound(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.FindByID(ctx, "nope"); err != domain.ErrNotFound {
		t.Fatalf("FindByID = %v, want ErrNotFound", err)
	}
	if _, err := s.Update(ctx, "nope", domain.ReviewDraft{}); err != domain.ErrNotFound {
		t.Fatalf("Update = %v, want ErrNotFound", err)
	}
	if _, err := s.ApproveForPublic(ctx, "nope", "m"); err != domain.ErrNotFound {
		t.Fatalf("ApproveForPublic = %v, want ErrNotFound", err)
	}
	if _, err := s.RemoveApproval(ctx, "nope"); err != domain.ErrNotFound {
		t.Fatalf("RemoveApproval = %v, want ErrNotFound", err)
	}
}

func TestPropertyAnalytics_TwoFlats(t *testing.T) {
	s := New()
	ctx := context.Background()
	at := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	a1 := mustCreate(t, s, seedDraft("a1", "Flat A", 5.0, at))
	mustCreate(t, s, seedDraft("a2", "Flat A", 1.0, at))
	mustCreate(t, s, seedDraft("b1", "Flat B", 3.0, at))

	if _, err := s.ApproveForPublic(ctx, a1.ID, "manager"); err != nil {
		t.Fatalf("ApproveForPublic: %v", err)
	}

	an, err := s.PropertyAnalytics(ctx, "Flat A")
	if err != nil {
		t.Fatalf("PropertyAnalytics: %v", err)
	}
	if an.TotalReviews != 2 {
		t.Fatalf("totalReviews = %d, want 2", an.TotalReviews)
	}
	if an.AverageRating != 3.0 {
		t.Fatalf("averageRating = %v, want 3.0", an.AverageRating)
	}
	wantDist := map[string]int{"9-10": 1, "7-8": 0, "5-6": 0, "1-4": 1}
	for bucket, want := range wantDist {
		if an.RatingDistribution[bucket] != want {
			t.Fatalf("distribution[%s] = %d, want %d (full: %v)", bucket, an.RatingDistribution[bucket], want, an.RatingDistribution)
		}
	}
	if an.ApprovedCount != 1 {
		t.Fatalf("approvedCount = %d, want 1", an.ApprovedCount)
	}

	// Flat B untouched by Flat A's numbers
	bn, err := s.PropertyAnalytics(ctx, "Flat B")
	if err != nil {
		t.Fatalf("PropertyAnalytics B: %v", err)
	}
	if bn.TotalReviews != 1 || bn.AverageRating != 3.0 {
		t.Fatalf("Flat B analytics: %+v", bn)
	}
}

func TestPropertyAnalytics_EmptySet(t *testing.T) {
	s := New()
	an, err := s.PropertyAnalytics(context.Background(), "Ghost Property")
	if err != nil {
		t.Fatalf("PropertyAnalytics: %v", err)
	}
	if an.TotalReviews != 0 || an.AverageRating != 0 || an.ApprovedCount != 0 {
		t.Fatalf("empty analytics not zeroed: %+v", an)
	}
	for bucket, n := range an.RatingDistribution {
		if n != 0 {
			t.Fatalf("bucket %s = %d on empty set", bucket, n)
		}
	}
	if an.CategoryAverages != (domain.Categories{}) {
		t.Fatalf("category averages on empty set: %+v", an.CategoryAverages)
	}
}
