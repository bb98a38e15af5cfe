package domain

import (
	"context"
	"time"
)

type AccountRepository interface {
	FindAccountByEmail(ctx context.Context, email string) (Account, error)
	InsertAccount(ctx context.Context, a Account) (string, error)
	// VerifyAccount flips verified and clears the token fields of the account
	// whose token digest matches and has not expired at now. Returns rows affected.
	VerifyAccount(ctx context.Context, tokenHash string, now time.Time) (int64, error)
}

type ReviewRepository interface {
	// Write paths
	InsertReview(ctx context.Context, r Review) (string, error)
	// UpdateReview replaces rating/comment fields of the review owned by
	// accountID. When expectedVersion is set, only that version is updated.
	UpdateReview(ctx context.Context, kind EntityKind, id, accountID string, p ReviewPatch, expectedVersion *int) (int64, error)
	DeleteReview(ctx context.Context, kind EntityKind, id, accountID string) (int64, error)

	// Read paths
	FindReview(ctx context.Context, kind EntityKind, id string) (Review, error)
	FindReviews(ctx context.Context, kind EntityKind, entityKey string) ([]Review, error)
	// GroupRatings groups reviews with overall > 0 by entity key (restricted
	// to keys) and reduces each dimension in dims with a sum.
	GroupRatings(ctx context.Context, kind EntityKind, keys []string, dims []string) ([]RatingGroup, error)
}

type CatalogRepository interface {
	UpsertEntity(ctx context.Context, e Entity) error
	ListEntities(ctx context.Context, kind EntityKind, skip, limit int) ([]Entity, error)
	CountEntities(ctx context.Context, kind EntityKind) (int64, error)
	FindEntity(ctx context.Context, kind EntityKind, id string) (Entity, error)
}

// Store is the raw-record store handle constructed once at startup and
// passed to every service.
type Store interface {
	AccountRepository
	ReviewRepository
	CatalogRepository
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// TokenIssuer signs and verifies bearer credentials bound to an email.
type TokenIssuer interface {
	Issue(email string) (string, error)
	Verify(token string) (email string, err error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(plain, digest string) bool
}

type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Lexicon decides whether text contains disallowed language.
type Lexicon interface {
	IsProfane(text string) bool
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

// EventRecorder counts auth and moderation outcomes.
type EventRecorder interface {
	AuthEvent(op, outcome string)
	ModerationRejected(field string)
}

type NopRecorder struct{}

func (NopRecorder) AuthEvent(string, string)  {}
func (NopRecorder) ModerationRejected(string) {}
