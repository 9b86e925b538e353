package hostaway

import "flex_reviews/internal/domain"

// sampleReviews returns the embedded demo payload used when no API key is
// configured. Shape and values mirror real Hostaway /reviews records.
func sampleReviews() []domain.RawReview {
	return []domain.RawReview{
		{
			ID:           "7453",
			Type:         "host-to-guest",
			Status:       "published",
			PublicReview: "Shane and family are wonderful! Would definitely host again :)",
			ReviewCategory: []domain.RawCategory{
				{Category: "cleanliness", Rating: 10},
				{Category: "communication", Rating: 10},
				{Category: "respect_house_rules", Rating: 10},
			},
			SubmittedAt: "2020-08-21 22:45:14",
			GuestName:   "Shane Finkelstein",
			ListingName: "2B N1 A - 29 Shoreditch Heights",
			Source:      "hostaway",
		},
		{
			ID:           "7454",
			Type:         "guest-to-host",
			Status:       "published",
			PublicReview: "Amazing location and beautiful apartment. Host was very responsive and helpful throughout our stay.",
			ReviewCategory: []domain.RawCategory{
				{Category: "cleanliness", Rating: 9},
				{Category: "communication", Rating: 10},
				{Category: "respect_house_rules", Rating: 9},
			},
			SubmittedAt: "2024-01-15 14:30:22",
			GuestName:   "Maria Rodriguez",
			ListingName: "2B N1 A - 29 Shoreditch Heights",
			Source:      "hostaway",
		},
		{
			ID:           "7455",
			Type:         "guest-to-host",
			Status:       "published",
			PublicReview: "I did not like the stay because the apartment was too big.",
			ReviewCategory: []domain.RawCategory{
				{Category: "cleanliness", Rating: 1},
				{Category: "communication", Rating: 1},
				{Category: "respect_house_rules", Rating: 1},
			},
			SubmittedAt: "2024-01-15 14:30:22",
			GuestName:   "Ronaldo Assis",
			ListingName: "2B N1 A - 29 Shoreditch Heights",
			Source:      "hostaway",
		},
		{
			ID:           "7456",
			Type:         "guest-to-host",
			Status:       "published",
			PublicReview: "Perfect for our business trip. Great workspace and excellent wifi. Highly recommend!",
			ReviewCategory: []domain.RawCategory{
				{Category: "cleanliness", Rating: 8},
				{Category: "communication", Rating: 9},
				{Category: "respect_house_rules", Rating: 10},
			},
			SubmittedAt: "2024-02-03 09:15:45",
			GuestName:   "David Chen",
			ListingName: "1B E2 B - 15 Canary Wharf Tower",
			Source:      "hostaway",
		},
		{
			ID:           "7457",
			Type:         "guest-to-host",
			Status:       "published",
			PublicReview: "Incredible experience! The property exceeded our expectations. Clean, modern, and in the perfect location.",
			ReviewCategory: []domain.RawCategory{
				{Category: "cleanliness", Rating: 10},
				{Category: "communication", Rating: 9},
				{Category: "respect_house_rules", Rating: 10},
			},
			SubmittedAt: "2024-01-28 16:22:10",
			GuestName:   "Emma Thompson",
			ListingName: "1B E2 B - 15 Canary Wharf Tower",
			Source:      "hostaway",
		},
		{
			ID:           "7458",
			Type:         "guest-to-host",
			Status:       "published",
			PublicReview: "Great stay overall. The apartment was clean and well-equipped. Minor issue with wifi but host resolved it quickly.",
			ReviewCategory: []domain.RawCategory{
				{Category: "cleanliness", Rating: 9},
				{Category: "communication", Rating: 8},
				{Category: "respect_house_rules", Rating: 9},
			},
			SubmittedAt: "2024-02-20 11:45:33",
			GuestName:   "James Wilson",
			ListingName: "Studio S3 C - 42 London Bridge",
			Source:      "hostaway",
		},
	}
}
