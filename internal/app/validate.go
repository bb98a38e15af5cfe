package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"qrate/internal/domain"
)

const (
	minCommentLen = 50
	maxRating     = 5
)

// Submission is the kind-independent form of a review create/update payload.
type Submission struct {
	EntityKey  string            `validate:"required"`
	Term       string            `validate:"required"`
	Attributes map[string]string `validate:"-"`
	Ratings    map[string]int    `validate:"dive,min=0,max=5"`
	Comment    string            `validate:"required,min=50"`
}

// requiredAttributes are the kind-specific identifying fields.
var requiredAttributes = map[domain.EntityKind][]string{
	domain.KindCourse:    {"instructor"},
	domain.KindProfessor: {"department", "courseCode"},
}

// keyField is the payload name of Submission.EntityKey per kind.
var keyField = map[domain.EntityKind]string{
	domain.KindCourse:    "courseCode",
	domain.KindProfessor: "professorName",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// normalize trims text, keeps only declared dimensions and zero-fills
// missing ratings.
func (s Submission) normalize(kind domain.EntityKind) Submission {
	out := Submission{
		EntityKey:  strings.TrimSpace(s.EntityKey),
		Term:       strings.TrimSpace(s.Term),
		Comment:    strings.TrimSpace(s.Comment),
		Attributes: make(map[string]string, len(s.Attributes)),
		Ratings:    make(map[string]int, 5),
	}
	for k, v := range s.Attributes {
		if v = strings.TrimSpace(v); v != "" {
			out.Attributes[k] = v
		}
	}
	for _, d := range kind.Dimensions() {
		out.Ratings[d] = s.Ratings[d]
	}
	return out
}

// validateSubmission rejects the whole submission with field-level errors.
func validateSubmission(kind domain.EntityKind, s Submission) error {
	fields := map[string]string{}

	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			name, msg := describe(kind, fe)
			fields[name] = msg
		}
	}
	for _, attr := range requiredAttributes[kind] {
		if err := validate.Var(s.Attributes[attr], "required"); err != nil {
			fields[attr] = "is required"
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func describe(kind domain.EntityKind, fe validator.FieldError) (string, string) {
	sf := fe.StructField()
	if strings.HasPrefix(sf, "Ratings[") {
		// map elements are reported as Ratings[<dimension>]
		return strings.TrimSuffix(strings.TrimPrefix(sf, "Ratings["), "]"), fmt.Sprintf("must be between 0 and %d", maxRating)
	}
	switch sf {
	case "EntityKey":
		return keyField[kind], "is required"
	case "Term":
		return "term", "is required"
	case "Comment":
		return "comment", fmt.Sprintf("must be at least %d characters", minCommentLen)
	}
	return fe.Field(), fe.Tag()
}
