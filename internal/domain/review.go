package domain

import "time"

// Review is a single rating+comment submission. Course and professor
// reviews share this shape and differ only in Kind, the meaning of
// EntityKey (course code or professor name) and the declared dimensions.
type Review struct {
	ID         string            `json:"id"`
	Kind       EntityKind        `json:"kind"`
	EntityKey  string            `json:"entityKey"`
	AccountID  string            `json:"-"`
	Author     string            `json:"author,omitempty"`
	Term       string            `json:"term"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Ratings    map[string]int    `json:"ratings"`
	Comment    string            `json:"comment"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
	Version    int               `json:"version"`
}

// Overall returns the overall rating, 0 when not rated.
func (r Review) Overall() int { return r.Ratings[DimOverall] }

// ReviewPatch carries the replaceable fields of an authorized update.
type ReviewPatch struct {
	Term       string
	Attributes map[string]string
	Ratings    map[string]int
	Comment    string
	UpdatedAt  time.Time
}
