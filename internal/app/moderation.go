package app

import (
	"strings"

	"qrate/internal/domain"
)

// TextField is one natural-language field of a submission.
type TextField struct {
	Name  string
	Value string
}

// moderatedKeys are the payload keys scanned for disallowed language, in order.
var moderatedKeys = []string{"comment", "review", "content", "text"}

// ModeratedFields extracts the free-text fields of a decoded JSON payload.
// A nested object under "review" contributes its comment.
func ModeratedFields(payload map[string]any) []TextField {
	out := make([]TextField, 0, len(moderatedKeys))
	for _, k := range moderatedKeys {
		switch v := payload[k].(type) {
		case string:
			out = append(out, TextField{Name: k, Value: v})
		case map[string]any:
			if c, ok := v["comment"].(string); ok {
				out = append(out, TextField{Name: k, Value: c})
			}
		}
	}
	return out
}

type Moderator struct {
	lex    domain.Lexicon
	events domain.EventRecorder
}

func NewModerator(lex domain.Lexicon) *Moderator {
	return &Moderator{lex: lex, events: domain.NopRecorder{}}
}

// WithRecorder reports rejected fields to r.
func (m *Moderator) WithRecorder(r domain.EventRecorder) *Moderator {
	if r != nil {
		m.events = r
	}
	return m
}

// Check fails with ContentRejectedError on the first non-empty field the
// lexicon flags.
func (m *Moderator) Check(fields []TextField) error {
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			continue
		}
		if m.lex.IsProfane(f.Value) {
			m.events.ModerationRejected(f.Name)
			return &domain.ContentRejectedError{Field: f.Name}
		}
	}
	return nil
}
