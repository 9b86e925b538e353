package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"flex_reviews/internal/domain"
)

// Repo implements domain.ReviewStore over a MySQL connection. Filtering and
// ordering run in SQL; analytics reuse the in-process aggregation so both
// store drivers report identical numbers.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func valTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

// whereClause renders the set filter fields as an AND chain.
// Category is accepted but never constrains the rows.
func whereClause(f domain.Filter) (string, []any) {
	var conds []string
	var args []any

	if f.PropertyName != nil {
		conds = append(conds, "LOWER(property_name) LIKE ?")
		args = append(args, "%"+strings.ToLower(*f.PropertyName)+"%")
	}
	if f.MinRating != nil {
		conds = append(conds, "overall_rating >= ?")
		args = append(args, *f.MinRating)
	}
	if f.Channel != nil {
		conds = append(conds, "channel = ?")
		args = append(args, string(*f.Channel))
	}
	if f.IsApprovedForPublic != nil {
		conds = append(conds, "is_approved = ?")
		args = append(args, *f.IsApprovedForPublic)
	}
	if f.TimeFrom != nil {
		conds = append(conds, "submitted_at >= ?")
		args = append(args, f.TimeFrom.UTC())
	}
	if f.TimeTo != nil {
		conds = append(conds, "submitted_at <= ?")
		args = append(args, f.TimeTo.UTC())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(p domain.Pagination) string {
	col := "submitted_at"
	switch p.SortBy {
	case domain.SortByRating:
		col = "overall_rating"
	case domain.SortByProperty:
		col = "property_name"
	}
	dir := "DESC"
	if p.SortOrder == domain.SortAsc {
		dir = "ASC"
	}
	// id tie-break keeps pages stable across identical sort keys
	return " ORDER BY " + col + " " + dir + ", id " + dir
}

func (r *Repo) FindMany(ctx context.Context, f domain.Filter, p domain.Pagination) ([]domain.Review, int, error) {
	where, args := whereClause(f)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reviews"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	query := "SELECT" + selectColumns + "FROM reviews" + where + orderClause(p) + " LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, p.Limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]domain.Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (domain.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, getReviewSQL, id))
	if err == sql.ErrNoRows {
		return domain.Review{}, domain.ErrNotFound
	}
	return rv, err
}

func (r *Repo) FindByPropertyName(ctx context.Context, name string, f domain.Filter, p domain.Pagination) ([]domain.Review, int, error) {
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
	return r.FindMany(ctx, f, p)
}

func (r *Repo) PropertyAnalytics(ctx context.Context, propertyName string) (domain.Analytics, error) {
	var f domain.Filter
	if propertyName != "" {
		f.PropertyName = &propertyName
	}
	where, args := whereClause(f)

	rows, err := r.db.QueryContext(ctx, "SELECT"+selectColumns+"FROM reviews"+where, args...)
	if err != nil {
		return domain.Analytics{}, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return domain.Analytics{}, err
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return domain.Analytics{}, err
	}
	return domain.ComputeAnalytics(reviews), nil
}

func (r *Repo) Create(ctx context.Context, d domain.ReviewDraft) (domain.Review, error) {
	id := uuid.NewString()
	if _, err := r.db.ExecContext(ctx, insertReviewSQL, insertArgs(id, d)...); err != nil {
		return domain.Review{}, err
	}
	return r.FindByID(ctx, id)
}

func (r *Repo) Update(ctx context.Context, id string, d domain.ReviewDraft) (domain.Review, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return domain.Review{}, err
	}
	_, err := r.db.ExecContext(ctx, updateReviewSQL,
		d.ExternalID, d.PropertyName, d.GuestName, d.ReviewText,
		d.OverallRating, d.Categories.Cleanliness, d.Categories.Communication, d.Categories.RespectHouseRules,
		valTime(d.SubmittedAt), string(d.Channel), string(d.Status), string(d.Type),
		id,
	)
	if err != nil {
		return domain.Review{}, err
	}
	return r.FindByID(ctx, id)
}

func (r *Repo) BulkUpsert(ctx context.Context, drafts []domain.ReviewDraft) ([]domain.Review, error) {
	out := make([]domain.Review, 0, len(drafts))
	for _, d := range drafts {
		if strings.TrimSpace(d.ExternalID) == "" {
			continue
		}
		if _, err := r.db.ExecContext(ctx, upsertReviewSQL, insertArgs(uuid.NewString(), d)...); err != nil {
			return nil, err
		}
		rv, err := scanReview(r.db.QueryRowContext(ctx, getReviewByExternalSQL, d.ExternalID))
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, nil
}

func (r *Repo) ApproveForPublic(ctx context.Context, id, approvedBy string) (domain.Review, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return domain.Review{}, err
	}
	if _, err := r.db.ExecContext(ctx, approveReviewSQL, time.Now().UTC(), approvedBy, id); err != nil {
		return domain.Review{}, err
	}
	return r.FindByID(ctx, id)
}

func (r *Repo) RemoveApproval(ctx context.Context, id string) (domain.Review, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return domain.Review{}, err
	}
	if _, err := r.db.ExecContext(ctx, removeApprovalSQL, id); err != nil {
		return domain.Review{}, err
	}
	return r.FindByID(ctx, id)
}

func insertArgs(id string, d domain.ReviewDraft) []any {
	return []any{
		id, d.ExternalID, d.PropertyName, d.GuestName, d.ReviewText,
		d.OverallRating, d.Categories.Cleanliness, d.Categories.Communication, d.Categories.RespectHouseRules,
		valTime(d.SubmittedAt), string(d.Channel), string(d.Status), string(d.Type), d.IsApprovedForPublic,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (domain.Review, error) {
	var rv domain.Review
	var (
		submittedAt sql.NullTime
		approvedAt  sql.NullTime
		approvedBy  sql.NullString
	)
	if err := row.Scan(
		&rv.ID, &rv.ExternalID, &rv.PropertyName, &rv.GuestName, &rv.ReviewText,
		&rv.OverallRating, &rv.Categories.Cleanliness, &rv.Categories.Communication, &rv.Categories.RespectHouseRules,
		&submittedAt, &rv.Channel, &rv.Status, &rv.Type, &rv.IsApprovedForPublic,
		&approvedAt, &approvedBy, &rv.CreatedAt, &rv.UpdatedAt,
	); err != nil {
		return domain.Review{}, err
	}
	if submittedAt.Valid {
		rv.SubmittedAt = submittedAt.Time
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		rv.ApprovedAt = &t
	}
	if approvedBy.Valid {
		s := approvedBy.String
		rv.ApprovedBy = &s
	}
	return rv, nil
}
