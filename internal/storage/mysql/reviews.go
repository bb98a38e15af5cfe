package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"qrate/internal/domain"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repo) InsertReview(ctx context.Context, rv domain.Review) (string, error) {
	attrs, ratings, err := encodeReviewJSON(rv.Attributes, rv.Ratings)
	if err != nil {
		return "", err
	}
	_, err = r.db.ExecContext(ctx, insertReviewSQL,
		rv.ID,
		string(rv.Kind),
		rv.EntityKey,
		rv.AccountID,
		rv.Author,
		rv.Term,
		attrs,
		ratings,
		rv.Comment,
		rv.CreatedAt.UTC(),
		rv.UpdatedAt.UTC(),
		rv.Version,
	)
	if err != nil {
		return "", err
	}
	return rv.ID, nil
}

func (r *Repo) UpdateReview(ctx context.Context, kind domain.EntityKind, id, accountID string, p domain.ReviewPatch, expectedVersion *int) (int64, error) {
	attrs, ratings, err := encodeReviewJSON(p.Attributes, p.Ratings)
	if err != nil {
		return 0, err
	}
	q := updateReviewSQL
	args := []any{p.Term, attrs, ratings, p.Comment, p.UpdatedAt.UTC(), string(kind), id, accountID}
	if expectedVersion != nil {
		q += updateReviewVersionClause
		args = append(args, *expectedVersion)
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repo) DeleteReview(ctx context.Context, kind domain.EntityKind, id, accountID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteReviewSQL, string(kind), id, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repo) FindReview(ctx context.Context, kind domain.EntityKind, id string) (domain.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, findReviewSQL, string(kind), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Review{}, domain.ErrNotFound
	}
	return rv, err
}

func (r *Repo) FindReviews(ctx context.Context, kind domain.EntityKind, entityKey string) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, findReviewsSQL, string(kind), entityKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Review, 0, 16)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// GroupRatings reduces every requested dimension with SUM in a single
// grouped query over contributing reviews (overall > 0).
func (r *Repo) GroupRatings(ctx context.Context, kind domain.EntityKind, keys []string, dims []string) ([]domain.RatingGroup, error) {
	if len(keys) == 0 {
		return []domain.RatingGroup{}, nil
	}

	exprs := make([]string, 0, len(dims))
	args := make([]any, 0, len(dims)+len(keys)+1)
	for _, d := range dims {
		exprs = append(exprs, sumDimensionExpr)
		args = append(args, jsonPath(d))
	}
	args = append(args, string(kind))
	for _, k := range keys {
		args = append(args, k)
	}

	q := "SELECT entity_key, COUNT(*)"
	if len(exprs) > 0 {
		q += ", " + strings.Join(exprs, ", ")
	}
	q += " FROM reviews WHERE kind = ? AND overall > 0 AND entity_key IN (" +
		strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",") + ") GROUP BY entity_key"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.RatingGroup, 0, len(keys))
	for rows.Next() {
		g := domain.RatingGroup{Sums: make(map[string]float64, len(dims))}
		sums := make([]float64, len(dims))
		dest := []any{&g.EntityKey, &g.Count}
		for i := range sums {
			dest = append(dest, &sums[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, d := range dims {
			g.Sums[d] = sums[i]
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func jsonPath(dim string) string { return fmt.Sprintf(`$."%s"`, dim) }

func encodeReviewJSON(attrs map[string]string, ratings map[string]int) (any, string, error) {
	var a any
	if len(attrs) > 0 {
		b, err := json.Marshal(attrs)
		if err != nil {
			return nil, "", err
		}
		a = string(b)
	}
	if ratings == nil {
		ratings = map[string]int{}
	}
	rb, err := json.Marshal(ratings)
	if err != nil {
		return nil, "", err
	}
	return a, string(rb), nil
}

func scanReview(s rowScanner) (domain.Review, error) {
	var (
		rv             domain.Review
		kind           string
		attrs, ratings []byte
	)
	if err := s.Scan(
		&rv.ID, &kind, &rv.EntityKey, &rv.AccountID, &rv.Author, &rv.Term,
		&attrs, &ratings, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt, &rv.Version,
	); err != nil {
		return domain.Review{}, err
	}
	rv.Kind = domain.EntityKind(kind)
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &rv.Attributes); err != nil {
			return domain.Review{}, fmt.Errorf("decode attributes of %s: %w", rv.ID, err)
		}
	}
	rv.Ratings = map[string]int{}
	if len(ratings) > 0 {
		if err := json.Unmarshal(ratings, &rv.Ratings); err != nil {
			return domain.Review{}, fmt.Errorf("decode ratings of %s: %w", rv.ID, err)
		}
	}
	return rv, nil
}
