package app

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"qrate/internal/domain"
)

/********** alias registries **********/

var courseAliases = map[string][]string{
	"key":         {"code", "courseCode", "course_code", "id"},
	"name":        {"name", "title", "courseName", "course_name"},
	"department":  {"department", "dept", "subject"},
	"instructor":  {"professor", "instructor", "instructor.name", "lecturer"},
	"description": {"description", "desc", "summary", "calendar.description"},
}

var professorAliases = map[string][]string{
	"key":        {"name", "professorName", "fullName", "full_name"},
	"department": {"department", "dept"},
	"faculty":    {"faculty", "school"},
	"email":      {"email", "contact.email"},
	"phone":      {"phone", "telephone", "contact.phone"},
	"office":     {"office", "room", "location"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the string (or integral number) at path, trimmed.
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return strings.TrimSpace(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

/********** entity mapper **********/

// MapEntity converts a raw catalog record into an Entity. ok is false when
// the record carries no key (course code or professor name).
func MapEntity(kind domain.EntityKind, rec map[string]any) (domain.Entity, bool) {
	aliases := courseAliases
	if kind == domain.KindProfessor {
		aliases = professorAliases
	}
	key := firstNonEmptyAlias(rec, aliases, "key")
	if key == nil {
		return domain.Entity{}, false
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		log.Error().Err(err).Str("context", "MapEntity").Msg("failed to marshal catalog record")
	}

	e := domain.Entity{
		ID:         uuid.NewString(),
		Kind:       kind,
		Key:        *key,
		Department: firstNonEmptyAlias(rec, aliases, "department"),
		RawJSON:    raw,
	}
	switch kind {
	case domain.KindCourse:
		e.Name = firstNonEmptyAlias(rec, aliases, "name")
		e.Instructor = firstNonEmptyAlias(rec, aliases, "instructor")
		e.Description = firstNonEmptyAlias(rec, aliases, "description")
	case domain.KindProfessor:
		e.Name = key
		e.Faculty = firstNonEmptyAlias(rec, aliases, "faculty")
		e.Email = firstNonEmptyAlias(rec, aliases, "email")
		e.Phone = firstNonEmptyAlias(rec, aliases, "phone")
		e.Office = firstNonEmptyAlias(rec, aliases, "office")
	}
	return e, true
}
