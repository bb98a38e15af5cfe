package domain

// Entity is a catalog record (course or professor). Only Key is used to
// correlate with Review.EntityKey; every descriptive field is optional.
type Entity struct {
	ID          string
	Kind        EntityKind
	Key         string // course code or professor name
	Name        *string
	Department  *string
	Faculty     *string
	Instructor  *string
	Email       *string
	Phone       *string
	Office      *string
	Description *string
	RawJSON     []byte // full source record
}

// EntityView is Entity with absent optional fields filled in for display.
type EntityView struct {
	ID          string     `json:"id"`
	Kind        EntityKind `json:"kind"`
	Key         string     `json:"key"`
	Name        string     `json:"name"`
	Department  string     `json:"department"`
	Faculty     string     `json:"faculty,omitempty"`
	Professor   string     `json:"professor,omitempty"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Office      string     `json:"office,omitempty"`
	Description string     `json:"description,omitempty"`
}

// EnrichedEntity is a listing row: static fields merged with statistics.
type EnrichedEntity struct {
	EntityView
	NumReviews int             `json:"numReviews"`
	Ratings    map[string]Mean `json:"ratings"`
}

// EnrichedEntityDetail is the single-entity view with distribution and reviews.
type EnrichedEntityDetail struct {
	EntityView
	TotalReviews       int             `json:"totalReviews"`
	Ratings            map[string]Mean `json:"ratings"`
	RatingDistribution map[int]int     `json:"ratingDistribution"`
	Reviews            []Review        `json:"reviews"`
}

type EntityPage struct {
	Items      []EnrichedEntity `json:"items"`
	TotalCount int64            `json:"totalCount"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}
