package app

import (
	"fmt"
	"strings"

	"flex_reviews/internal/domain"
)

// Validation rejects before any store or cache access. Everything here
// wraps domain.ErrValidation so the transport can map it uniformly.

func validateFilter(f domain.Filter) error {
	if f.MinRating != nil && (*f.MinRating < 0 || *f.MinRating > 5) {
		return fmt.Errorf("%w: rating must be between 0 and 5", domain.ErrValidation)
	}
	if f.TimeFrom != nil && f.TimeTo != nil && f.TimeFrom.After(*f.TimeTo) {
		return fmt.Errorf("%w: timeFrom must be before timeTo", domain.ErrValidation)
	}
	return nil
}

func validatePagination(p domain.Pagination) error {
	if p.Limit < 1 || p.Limit > 100 {
		return fmt.Errorf("%w: limit must be between 1 and 100", domain.ErrValidation)
	}
	if p.Offset < 0 {
		return fmt.Errorf("%w: offset must be non-negative", domain.ErrValidation)
	}
	switch p.SortBy {
	case domain.SortByDate, domain.SortByRating, domain.SortByProperty:
	default:
		return fmt.Errorf("%w: sortBy must be one of: date, rating, property", domain.ErrValidation)
	}
	switch p.SortOrder {
	case domain.SortAsc, domain.SortDesc:
	default:
		return fmt.Errorf("%w: sortOrder must be asc or desc", domain.ErrValidation)
	}
	return nil
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", domain.ErrValidation)
	}
	return nil
}

func validatePropertyName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: property name is required", domain.ErrValidation)
	}
	return nil
}

func validateApprover(approver string) error {
	if strings.TrimSpace(approver) == "" {
		return fmt.Errorf("%w: approver is required", domain.ErrValidation)
	}
	return nil
}
