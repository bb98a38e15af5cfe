package httpserver

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"qrate/internal/app"
	"qrate/internal/domain"
)

// submission payload keys per kind
var (
	keyFields = map[domain.EntityKind]string{
		domain.KindCourse:    "courseCode",
		domain.KindProfessor: "professorName",
	}
	attributeFields = map[domain.EntityKind][]string{
		domain.KindCourse:    {"instructor", "courseName"},
		domain.KindProfessor: {"department", "courseCode"},
	}
	searchParams = map[domain.EntityKind]string{
		domain.KindCourse:    "course",
		domain.KindProfessor: "name",
	}
)

// ratingKey maps a dimension to its payload key; overall is sent as overallRating.
func ratingKey(dim string) string {
	if dim == domain.DimOverall {
		return "overallRating"
	}
	return dim
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return domain.NewValidationError("body", "invalid JSON")
	}
	return nil
}

// parseSubmission reads a flat review payload, or one nested under
// "review" as update requests send it. Ratings may be numbers, numeric
// strings or single-element arrays (slider values).
func parseSubmission(kind domain.EntityKind, payload map[string]any) (app.Submission, *int, error) {
	src := payload
	if nested, ok := payload["review"].(map[string]any); ok {
		src = nested
	}

	sub := app.Submission{
		EntityKey:  str(src[keyFields[kind]]),
		Term:       str(src["term"]),
		Comment:    str(src["comment"]),
		Attributes: map[string]string{},
		Ratings:    map[string]int{},
	}
	for _, k := range attributeFields[kind] {
		if k == keyFields[kind] {
			continue
		}
		if v := str(src[k]); v != "" {
			sub.Attributes[k] = v
		}
	}

	bad := map[string]string{}
	for _, dim := range kind.Dimensions() {
		raw, ok := src[ratingKey(dim)]
		if !ok {
			raw, ok = src[dim]
		}
		if !ok || raw == nil {
			continue
		}
		n, err := rating(raw)
		if err != nil {
			bad[dim] = err.Error()
			continue
		}
		sub.Ratings[dim] = n
	}
	if len(bad) > 0 {
		return app.Submission{}, nil, &domain.ValidationError{Fields: bad}
	}

	var version *int
	for _, m := range []map[string]any{payload, src} {
		if v, ok := m["version"]; ok && v != nil {
			n, err := rating(v)
			if err != nil {
				return app.Submission{}, nil, domain.NewValidationError("version", "must be an integer")
			}
			version = &n
			break
		}
	}
	return sub, version, nil
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func rating(v any) (int, error) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("must be an integer")
		}
		return int(t), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("must be an integer")
		}
		return n, nil
	case []any:
		if len(t) == 0 {
			return 0, nil
		}
		return rating(t[0])
	}
	return 0, fmt.Errorf("must be an integer")
}
