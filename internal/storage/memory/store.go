// Package memory is an in-process domain.Store used for local runs and tests.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"qrate/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account // by email
	reviews  map[string]domain.Review  // by id
	entities map[string]domain.Entity  // by id
}

func New() *Store {
	return &Store{
		accounts: map[string]domain.Account{},
		reviews:  map[string]domain.Review{},
		entities: map[string]domain.Entity{},
	}
}

var _ domain.Store = (*Store)(nil)

/********** accounts **********/

func (s *Store) FindAccountByEmail(_ context.Context, email string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[email]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return a, nil
}

func (s *Store) InsertAccount(_ context.Context, a domain.Account) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.Email]; ok {
		return "", domain.ErrConflict
	}
	s.accounts[a.Email] = a
	return a.ID, nil
}

func (s *Store) VerifyAccount(_ context.Context, tokenHash string, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, a := range s.accounts {
		if a.VerificationTokenHash == nil || *a.VerificationTokenHash != tokenHash {
			continue
		}
		if a.VerificationTokenExpires == nil || !a.VerificationTokenExpires.After(now) {
			return 0, nil
		}
		a.Verified = true
		a.VerificationTokenHash = nil
		a.VerificationTokenExpires = nil
		s.accounts[email] = a
		return 1, nil
	}
	return 0, nil
}

/********** reviews **********/

func (s *Store) InsertReview(_ context.Context, r domain.Review) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews[r.ID] = cloneReview(r)
	return r.ID, nil
}

func (s *Store) UpdateReview(_ context.Context, kind domain.EntityKind, id, accountID string, p domain.ReviewPatch, expectedVersion *int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok || r.Kind != kind || r.AccountID != accountID {
		return 0, nil
	}
	if expectedVersion != nil && r.Version != *expectedVersion {
		return 0, nil
	}
	r.Term = p.Term
	r.Attributes = maps.Clone(p.Attributes)
	r.Ratings = maps.Clone(p.Ratings)
	r.Comment = p.Comment
	r.UpdatedAt = p.UpdatedAt
	r.Version++
	s.reviews[id] = r
	return 1, nil
}

func (s *Store) DeleteReview(_ context.Context, kind domain.EntityKind, id, accountID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok || r.Kind != kind || r.AccountID != accountID {
		return 0, nil
	}
	delete(s.reviews, id)
	return 1, nil
}

func (s *Store) FindReview(_ context.Context, kind domain.EntityKind, id string) (domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reviews[id]
	if !ok || r.Kind != kind {
		return domain.Review{}, domain.ErrNotFound
	}
	return cloneReview(r), nil
}

func (s *Store) FindReviews(_ context.Context, kind domain.EntityKind, entityKey string) ([]domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Review{}
	for _, r := range s.reviews {
		if r.Kind == kind && r.EntityKey == entityKey {
			out = append(out, cloneReview(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GroupRatings(_ context.Context, kind domain.EntityKind, keys []string, dims []string) ([]domain.RatingGroup, error) {
	want := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := map[string]*domain.RatingGroup{}
	for _, r := range s.reviews {
		if r.Kind != kind || r.Overall() <= 0 {
			continue
		}
		if _, ok := want[r.EntityKey]; !ok {
			continue
		}
		g, ok := groups[r.EntityKey]
		if !ok {
			g = &domain.RatingGroup{EntityKey: r.EntityKey, Sums: make(map[string]float64, len(dims))}
			groups[r.EntityKey] = g
		}
		g.Count++
		for _, d := range dims {
			g.Sums[d] += float64(r.Ratings[d])
		}
	}

	out := make([]domain.RatingGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	return out, nil
}

/********** catalog **********/

func (s *Store) UpsertEntity(_ context.Context, e domain.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cur := range s.entities {
		if cur.Kind == e.Kind && cur.Key == e.Key {
			e.ID = id
			break
		}
	}
	s.entities[e.ID] = e
	return nil
}

func (s *Store) ListEntities(_ context.Context, kind domain.EntityKind, skip, limit int) ([]domain.Entity, error) {
	s.mu.RLock()
	all := make([]domain.Entity, 0, len(s.entities))
	for _, e := range s.entities {
		if e.Kind == kind {
			all = append(all, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Key < all[j].Key })
	if skip < 0 || limit <= 0 || skip >= len(all) {
		return []domain.Entity{}, nil
	}
	end := skip + min(limit, len(all)-skip)
	return all[skip:end], nil
}

func (s *Store) CountEntities(_ context.Context, kind domain.EntityKind) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, e := range s.entities {
		if e.Kind == kind {
			n++
		}
	}
	return n, nil
}

func (s *Store) FindEntity(_ context.Context, kind domain.EntityKind, id string) (domain.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	if !ok || e.Kind != kind {
		return domain.Entity{}, domain.ErrNotFound
	}
	return e, nil
}

func cloneReview(r domain.Review) domain.Review {
	r.Attributes = maps.Clone(r.Attributes)
	r.Ratings = maps.Clone(r.Ratings)
	return r
}
