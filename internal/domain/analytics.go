package domain

import "math"

// Analytics is a derived snapshot over a review set; never persisted.
type Analytics struct {
	TotalReviews       int            `json:"totalReviews"`
	AverageRating      float64        `json:"averageRating"`
	RatingDistribution map[string]int `json:"ratingDistribution"`
	CategoryAverages   Categories     `json:"categoryAverages"`
	ApprovedCount      int            `json:"approvedCount"`
}

// Distribution bucket labels are inherited from the upstream payload and
// kept verbatim even though thresholds run on the canonical 0-5 scale.
const (
	bucketTop    = "9-10" // rating >= 4.5
	bucketHigh   = "7-8"  // 3.5 <= rating < 4.5
	bucketMid    = "5-6"  // 2.5 <= rating < 3.5
	bucketBottom = "1-4"  // rating < 2.5
)

// ComputeAnalytics aggregates a review set. Zero-rated reviews count toward
// totals and category averages but are excluded from the overall average.
// An empty set yields zeros everywhere, never a division by zero.
func ComputeAnalytics(reviews []Review) Analytics {
	a := Analytics{
		TotalReviews: len(reviews),
		RatingDistribution: map[string]int{
			bucketTop: 0, bucketHigh: 0, bucketMid: 0, bucketBottom: 0,
		},
	}

	var ratingSum float64
	var rated int
	var cat Categories
	for _, r := range reviews {
		if r.OverallRating > 0 {
			ratingSum += r.OverallRating
			rated++
		}
		switch {
		case r.OverallRating >= 4.5:
			a.RatingDistribution[bucketTop]++
		case r.OverallRating >= 3.5:
			a.RatingDistribution[bucketHigh]++
		case r.OverallRating >= 2.5:
			a.RatingDistribution[bucketMid]++
		default:
			a.RatingDistribution[bucketBottom]++
		}
		cat.Cleanliness += r.Categories.Cleanliness
		cat.Communication += r.Categories.Communication
		cat.RespectHouseRules += r.Categories.RespectHouseRules
		if r.IsApprovedForPublic {
			a.ApprovedCount++
		}
	}

	if rated > 0 {
		a.AverageRating = math.Round(ratingSum/float64(rated)*100) / 100
	}
	if n := float64(len(reviews)); n > 0 {
		a.CategoryAverages = Categories{
			Cleanliness:       cat.Cleanliness / n,
			Communication:     cat.Communication / n,
			RespectHouseRules: cat.RespectHouseRules / n,
		}
	}
	return a
}
