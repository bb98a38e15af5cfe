package app_test

import (
	"testing"

	"qrate/internal/app"
	"qrate/internal/domain"
)

func TestModeratedFields(t *testing.T) {
	payload := map[string]any{
		"comment": "top level",
		"review":  map[string]any{"comment": "nested"},
		"text":    "more",
		"term":    "Fall 2024",
		"content": 12,
	}
	got := app.ModeratedFields(payload)
	want := []app.TextField{{"comment", "top level"}, {"review", "nested"}, {"text", "more"}}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("field %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestModeratorCheck(t *testing.T) {
	m := app.NewModerator(fakeLexicon{"gorram"})

	if err := m.Check(nil); err != nil {
		t.Fatalf("empty input rejected: %v", err)
	}
	if err := m.Check([]app.TextField{{"comment", "   "}, {"text", "all good"}}); err != nil {
		t.Fatalf("clean input rejected: %v", err)
	}
	err := m.Check([]app.TextField{{"comment", "fine"}, {"content", "that gorram lab"}})
	cr, ok := domain.IsContentRejected(err)
	if !ok || cr.Field != "content" {
		t.Fatalf("expected ContentRejected{content}, got %v", err)
	}
}

func TestModeratorRecordsRejectedField(t *testing.T) {
	rec := &recorded{}
	m := app.NewModerator(fakeLexicon{"gorram"}).WithRecorder(rec)

	_ = m.Check([]app.TextField{{"comment", "fine"}})
	_ = m.Check([]app.TextField{{"review", "gorram"}})
	if len(rec.rejected) != 1 || rec.rejected[0] != "review" {
		t.Fatalf("rejected = %v", rec.rejected)
	}
}
