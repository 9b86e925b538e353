package domain

import "testing"

func TestComputeAnalytics_BucketBoundaries(t *testing.T) {
	cases := []struct {
		rating float64
		bucket string
	}{
		{5.0, "9-10"},
		{4.5, "9-10"},
		{4.49, "7-8"},
		{3.5, "7-8"},
		{3.49, "5-6"},
		{2.5, "5-6"},
		{2.49, "1-4"},
		{1.0, "1-4"},
		{0.0, "1-4"},
	}
	for _, c := range cases {
		a := ComputeAnalytics([]Review{{OverallRating: c.rating}})
		if a.RatingDistribution[c.bucket] != 1 {
			t.Errorf("rating %v landed in %v, want %s", c.rating, a.RatingDistribution, c.bucket)
		}
	}
}

func TestComputeAnalytics_ZeroRatedExcludedFromAverage(t *testing.T) {
	a := ComputeAnalytics([]Review{
		{OverallRating: 4.0, Categories: Categories{Cleanliness: 4.0}},
		{OverallRating: 0, Categories: Categories{Cleanliness: 2.0}},
	})
	if a.TotalReviews != 2 {
		t.Fatalf("totalReviews = %d", a.TotalReviews)
	}
	// average skips the unrated review
	if a.AverageRating != 4.0 {
		t.Fatalf("averageRating = %v, want 4.0", a.AverageRating)
	}
	// category averages run over every review
	if a.CategoryAverages.Cleanliness != 3.0 {
		t.Fatalf("cleanliness average = %v, want 3.0", a.CategoryAverages.Cleanliness)
	}
}

func TestComputeAnalytics_AverageRoundedToTwoDecimals(t *testing.T) {
	a := ComputeAnalytics([]Review{
		{OverallRating: 5.0},
		{OverallRating: 4.0},
		{OverallRating: 4.0},
	})
	if a.AverageRating != 4.33 {
		t.Fatalf("averageRating = %v, want 4.33", a.AverageRating)
	}
}

func TestComputeAnalytics_Empty(t *testing.T) {
	a := ComputeAnalytics(nil)
	if a.TotalReviews != 0 || a.AverageRating != 0 || a.ApprovedCount != 0 {
		t.Fatalf("empty analytics: %+v", a)
	}
	for _, bucket := range []string{"9-10", "7-8", "5-6", "1-4"} {
		if _, ok := a.RatingDistribution[bucket]; !ok {
			t.Fatalf("bucket %s missing from empty distribution", bucket)
		}
	}
}
