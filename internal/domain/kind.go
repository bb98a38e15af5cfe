package domain

import "fmt"

// EntityKind selects which catalog a review or entity belongs to.
type EntityKind string

const (
	KindCourse    EntityKind = "course"
	KindProfessor EntityKind = "professor"
)

// DimOverall is the overall-rating dimension shared by every kind.
const DimOverall = "overall"

var dimensions = map[EntityKind][]string{
	KindCourse:    {DimOverall, "difficulty", "usefulness", "workload", "teaching"},
	KindProfessor: {DimOverall, "difficulty", "helpfulness", "clarity", "wouldTakeAgain"},
}

// Dimensions returns the rating dimensions declared for k, overall first.
func (k EntityKind) Dimensions() []string {
	d := dimensions[k]
	out := make([]string, len(d))
	copy(out, d)
	return out
}

func (k EntityKind) Valid() bool {
	_, ok := dimensions[k]
	return ok
}

func (k EntityKind) String() string { return string(k) }

func ParseKind(s string) (EntityKind, error) {
	k := EntityKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown entity kind %q", s)
	}
	return k, nil
}
