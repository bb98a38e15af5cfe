package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"qrate/internal/domain"
)

// ReviewService implements the per-kind review surface. Ownership of a
// record is enforced by the store's filtered update/delete; a zero-row
// result is always turned into NotFound or OwnershipMismatch.
type ReviewService struct {
	repo domain.ReviewRepository
	now  func() time.Time
}

func NewReviewService(r domain.ReviewRepository) *ReviewService {
	return &ReviewService{repo: r, now: time.Now}
}

func (s *ReviewService) Submit(ctx context.Context, kind domain.EntityKind, acc domain.Account, sub Submission) (domain.Review, error) {
	sub = sub.normalize(kind)
	if err := validateSubmission(kind, sub); err != nil {
		return domain.Review{}, err
	}

	now := s.now().UTC()
	r := domain.Review{
		ID:         uuid.NewString(),
		Kind:       kind,
		EntityKey:  sub.EntityKey,
		AccountID:  acc.ID,
		Author:     acc.Email,
		Term:       sub.Term,
		Attributes: sub.Attributes,
		Ratings:    sub.Ratings,
		Comment:    sub.Comment,
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    1,
	}
	id, err := s.repo.InsertReview(ctx, r)
	if err != nil {
		return domain.Review{}, internal("reviews.insert", err)
	}
	r.ID = id
	log.Info().Str("kind", kind.String()).Str("key", r.EntityKey).Str("id", id).Msg("review created")
	return r, nil
}

func (s *ReviewService) Get(ctx context.Context, kind domain.EntityKind, id string) (domain.Review, error) {
	r, err := s.repo.FindReview(ctx, kind, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Review{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Review{}, internal("reviews.find", err)
	}
	return r, nil
}

// Search returns every review of one entity key, possibly none.
func (s *ReviewService) Search(ctx context.Context, kind domain.EntityKind, key string) ([]domain.Review, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.NewValidationError(keyField[kind], "is required")
	}
	rs, err := s.repo.FindReviews(ctx, kind, key)
	if err != nil {
		return nil, internal("reviews.search", err)
	}
	if rs == nil {
		rs = []domain.Review{}
	}
	return rs, nil
}

// Update replaces the rating/comment fields of a review owned by acc.
// When expectedVersion is set the update only applies to that version.
func (s *ReviewService) Update(ctx context.Context, kind domain.EntityKind, id string, acc domain.Account, sub Submission, expectedVersion *int) error {
	current, err := s.Get(ctx, kind, id)
	if err != nil {
		return err
	}
	// the entity key is not replaceable; fill it so validation sees a complete form
	if strings.TrimSpace(sub.EntityKey) == "" {
		sub.EntityKey = current.EntityKey
	}
	sub = sub.normalize(kind)
	if err := validateSubmission(kind, sub); err != nil {
		return err
	}

	patch := domain.ReviewPatch{
		Term:       sub.Term,
		Attributes: sub.Attributes,
		Ratings:    sub.Ratings,
		Comment:    sub.Comment,
		UpdatedAt:  s.now().UTC(),
	}
	n, err := s.repo.UpdateReview(ctx, kind, id, acc.ID, patch, expectedVersion)
	if err != nil {
		return internal("reviews.update", err)
	}
	if n == 0 {
		return s.explainNoop(ctx, kind, id, acc, expectedVersion)
	}
	return nil
}

func (s *ReviewService) Delete(ctx context.Context, kind domain.EntityKind, id string, acc domain.Account) error {
	n, err := s.repo.DeleteReview(ctx, kind, id, acc.ID)
	if err != nil {
		return internal("reviews.delete", err)
	}
	if n == 0 {
		return s.explainNoop(ctx, kind, id, acc, nil)
	}
	log.Info().Str("kind", kind.String()).Str("id", id).Msg("review deleted")
	return nil
}

// explainNoop resolves why a filtered mutation touched no rows.
func (s *ReviewService) explainNoop(ctx context.Context, kind domain.EntityKind, id string, acc domain.Account, expectedVersion *int) error {
	r, err := s.Get(ctx, kind, id)
	if err != nil {
		return err
	}
	if r.AccountID != acc.ID {
		return domain.ErrOwnershipMismatch
	}
	if expectedVersion != nil && r.Version != *expectedVersion {
		return domain.ErrVersionConflict
	}
	// owner matched and the version was current: the record moved underneath us
	return domain.ErrVersionConflict
}
