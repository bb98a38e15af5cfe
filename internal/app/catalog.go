package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"qrate/internal/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit within int for every accepted limit.
	MaxPage = math.MaxInt / MaxLimit

	unknown = "Unknown"
)

// Page is an offset window over a catalog.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Skip() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// ParsePage is lenient: non-numeric or non-positive values fall back to the
// defaults instead of failing the request.
func ParsePage(pageRaw, limitRaw string) Page {
	p := Page{Page: DefaultPage, Limit: DefaultLimit}
	if n, err := strconv.Atoi(strings.TrimSpace(pageRaw)); err == nil && n > 0 {
		p.Page = min(n, MaxPage)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(limitRaw)); err == nil && n > 0 {
		p.Limit = min(n, MaxLimit)
	}
	return p
}

// CatalogService merges paginated catalog listings with review statistics.
// Static catalog records are cached; statistics are recomputed on every read.
type CatalogService struct {
	catalog  domain.CatalogRepository
	reviews  domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewCatalogService(c domain.CatalogRepository, r domain.ReviewRepository, cache domain.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{catalog: c, reviews: r, cache: cache, cacheTTL: ttl}
}

type cachedPage struct {
	Items []domain.Entity
	Total int64
}

func (s *CatalogService) List(ctx context.Context, kind domain.EntityKind, pg Page) (domain.EntityPage, error) {
	static, err := s.staticPage(ctx, kind, pg)
	if err != nil {
		return domain.EntityPage{}, err
	}

	keys := make([]string, 0, len(static.Items))
	for _, e := range static.Items {
		keys = append(keys, e.Key)
	}
	groups := map[string]domain.RatingGroup{}
	if len(keys) > 0 {
		gs, err := s.reviews.GroupRatings(ctx, kind, keys, kind.Dimensions())
		if err != nil {
			return domain.EntityPage{}, internal("catalog.group_ratings", err)
		}
		for _, g := range gs {
			groups[g.EntityKey] = g
		}
	}

	items := make([]domain.EnrichedEntity, 0, len(static.Items))
	for _, e := range static.Items {
		st := Summarize(kind, e.Key, groups[e.Key])
		items = append(items, domain.EnrichedEntity{
			EntityView: ViewOf(e),
			NumReviews: st.Count,
			Ratings:    st.Means,
		})
	}
	return domain.EntityPage{Items: items, TotalCount: static.Total, Page: pg.Page, Limit: pg.Limit}, nil
}

func (s *CatalogService) staticPage(ctx context.Context, kind domain.EntityKind, pg Page) (cachedPage, error) {
	key := fmt.Sprintf("catalog:%s:g%d:%d:%d", kind, s.generation(ctx, kind), pg.Page, pg.Limit)
	var out cachedPage
	if ok, err := s.cache.Get(ctx, key, &out); ok && err == nil {
		return out, nil
	}
	out = cachedPage{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.catalog.ListEntities(gctx, kind, pg.Skip(), pg.Limit)
		out.Items = items
		return err
	})
	g.Go(func() error {
		n, err := s.catalog.CountEntities(gctx, kind)
		out.Total = n
		return err
	})
	if err := g.Wait(); err != nil {
		return cachedPage{}, internal("catalog.list", err)
	}

	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

func (s *CatalogService) Get(ctx context.Context, kind domain.EntityKind, id string) (domain.EnrichedEntityDetail, error) {
	e, err := s.catalog.FindEntity(ctx, kind, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.EnrichedEntityDetail{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.EnrichedEntityDetail{}, internal("catalog.find", err)
	}

	rs, err := s.reviews.FindReviews(ctx, kind, e.Key)
	if err != nil {
		return domain.EnrichedEntityDetail{}, internal("catalog.find_reviews", err)
	}
	st := Compute(kind, e.Key, rs)
	if st.Clamped > 0 {
		log.Warn().Str("kind", kind.String()).Str("key", e.Key).Int("clamped", st.Clamped).
			Msg("overall ratings outside 1..5 clamped into distribution")
	}
	if rs == nil {
		rs = []domain.Review{}
	}
	return domain.EnrichedEntityDetail{
		EntityView:         ViewOf(e),
		TotalReviews:       st.Count,
		Ratings:            st.Means,
		RatingDistribution: st.Distribution,
		Reviews:            rs,
	}, nil
}

// Invalidate drops every cached page of kind by bumping its generation.
func (s *CatalogService) Invalidate(ctx context.Context, kind domain.EntityKind) error {
	gen := s.generation(ctx, kind) + 1
	return s.cache.Set(ctx, generationKey(kind), gen, 0)
}

func (s *CatalogService) generation(ctx context.Context, kind domain.EntityKind) int64 {
	var gen int64
	if ok, err := s.cache.Get(ctx, generationKey(kind), &gen); !ok || err != nil {
		return 0
	}
	return gen
}

func generationKey(kind domain.EntityKind) string { return "catalog:" + kind.String() + ":gen" }

// ViewOf fills the absent optional fields of e that matter for its kind.
func ViewOf(e domain.Entity) domain.EntityView {
	v := domain.EntityView{
		ID:          e.ID,
		Kind:        e.Kind,
		Key:         e.Key,
		Name:        orUnknown(e.Name),
		Department:  orUnknown(e.Department),
		Phone:       deref(e.Phone),
		Description: deref(e.Description),
	}
	switch e.Kind {
	case domain.KindCourse:
		v.Professor = orUnknown(e.Instructor)
		v.Description = orUnknown(e.Description)
	case domain.KindProfessor:
		if e.Name == nil {
			v.Name = e.Key
		}
		v.Faculty = orUnknown(e.Faculty)
		v.Email = orUnknown(e.Email)
		v.Office = orUnknown(e.Office)
	}
	return v
}

func orUnknown(p *string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return unknown
	}
	return *p
}
