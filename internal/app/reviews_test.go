package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"qrate/internal/app"
	"qrate/internal/domain"
	"qrate/internal/storage/memory"
)

var (
	owner    = domain.Account{ID: "owner", Email: "owner@queensu.ca", Verified: true}
	stranger = domain.Account{ID: "stranger", Email: "s@queensu.ca", Verified: true}
)

func courseSubmission(comment string, overall int) app.Submission {
	return app.Submission{
		EntityKey:  "CISC124",
		Term:       "Fall 2024",
		Attributes: map[string]string{"instructor": "Dr. Grace"},
		Ratings:    map[string]int{domain.DimOverall: overall, "difficulty": 3},
		Comment:    comment,
	}
}

func TestSubmit_ValidationFailures(t *testing.T) {
	svc := app.NewReviewService(memory.New())
	ctx := context.Background()

	short := strings.Repeat("a", 49)
	_, err := svc.Submit(ctx, domain.KindCourse, owner, courseSubmission(short, 4))
	ve, ok := domain.IsValidation(err)
	if !ok || ve.Fields["comment"] == "" {
		t.Fatalf("expected comment validation error, got %v", err)
	}

	// whitespace does not count toward the minimum
	padded := "   " + short + "   "
	if _, err := svc.Submit(ctx, domain.KindCourse, owner, courseSubmission(padded, 4)); err == nil {
		t.Fatal("expected trimmed comment to fail")
	}

	bad := courseSubmission(longComment, 9)
	bad.EntityKey = ""
	bad.Attributes = nil
	_, err = svc.Submit(ctx, domain.KindCourse, owner, bad)
	ve, ok = domain.IsValidation(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, f := range []string{"courseCode", "instructor", domain.DimOverall} {
		if ve.Fields[f] == "" {
			t.Errorf("missing field error for %s in %v", f, ve.Fields)
		}
	}

	prof := app.Submission{EntityKey: "Ada", Term: "W24", Comment: longComment}
	_, err = svc.Submit(ctx, domain.KindProfessor, owner, prof)
	ve, ok = domain.IsValidation(err)
	if !ok || ve.Fields["department"] == "" || ve.Fields["courseCode"] == "" {
		t.Fatalf("expected professor attribute errors, got %v", err)
	}
}

func TestSubmit_ThenAggregate(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := app.NewReviewService(st)

	exact := strings.Repeat("b", 50)
	r, err := svc.Submit(ctx, domain.KindCourse, owner, courseSubmission(exact, 4))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if r.ID == "" || r.Version != 1 || r.AccountID != owner.ID {
		t.Fatalf("unexpected review %+v", r)
	}
	// undeclared dimensions are dropped and declared ones zero-filled
	if _, ok := r.Ratings["teaching"]; !ok {
		t.Fatalf("expected zero-filled teaching rating: %v", r.Ratings)
	}

	rs, err := svc.Search(ctx, domain.KindCourse, "CISC124")
	if err != nil {
		t.Fatal(err)
	}
	stat := app.Compute(domain.KindCourse, "CISC124", rs)
	if stat.Count != 1 || stat.Means[domain.DimOverall].String() != "4.0" {
		t.Fatalf("unexpected aggregate %+v", stat)
	}
}

func TestSearch(t *testing.T) {
	svc := app.NewReviewService(memory.New())
	if _, err := svc.Search(context.Background(), domain.KindProfessor, " "); err == nil {
		t.Fatal("expected validation error for empty key")
	} else if ve, ok := domain.IsValidation(err); !ok || ve.Fields["professorName"] == "" {
		t.Fatalf("unexpected error %v", err)
	}
	rs, err := svc.Search(context.Background(), domain.KindProfessor, "Nobody")
	if err != nil || rs == nil || len(rs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v %v", rs, err)
	}
}

func TestUpdateDelete_Ownership(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := app.NewReviewService(st)

	r, err := svc.Submit(ctx, domain.KindCourse, owner, courseSubmission(longComment, 4))
	if err != nil {
		t.Fatal(err)
	}

	edit := courseSubmission(longComment+" Edited.", 2)
	if err := svc.Update(ctx, domain.KindCourse, r.ID, stranger, edit, nil); !errors.Is(err, domain.ErrOwnershipMismatch) {
		t.Fatalf("expected ErrOwnershipMismatch, got %v", err)
	}
	if err := svc.Delete(ctx, domain.KindCourse, r.ID, stranger); !errors.Is(err, domain.ErrOwnershipMismatch) {
		t.Fatalf("expected ErrOwnershipMismatch, got %v", err)
	}
	got, _ := svc.Get(ctx, domain.KindCourse, r.ID)
	if got.Comment != longComment || got.Overall() != 4 {
		t.Fatalf("record changed by non-owner: %+v", got)
	}

	if err := svc.Update(ctx, domain.KindCourse, "missing", owner, edit, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, domain.KindCourse, "missing", owner); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := svc.Update(ctx, domain.KindCourse, r.ID, owner, edit, nil); err != nil {
		t.Fatalf("owner update: %v", err)
	}
	got, _ = svc.Get(ctx, domain.KindCourse, r.ID)
	if got.Overall() != 2 || got.Version != 2 {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := svc.Delete(ctx, domain.KindCourse, r.ID, owner); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := svc.Get(ctx, domain.KindCourse, r.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected deleted review to be gone, got %v", err)
	}
}

func TestUpdate_StaleVersion(t *testing.T) {
	ctx := context.Background()
	svc := app.NewReviewService(memory.New())
	r, err := svc.Submit(ctx, domain.KindCourse, owner, courseSubmission(longComment, 4))
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Update(ctx, domain.KindCourse, r.ID, owner, courseSubmission(longComment, 5), ptr(1)); err != nil {
		t.Fatalf("update at current version: %v", err)
	}
	if err := svc.Update(ctx, domain.KindCourse, r.ID, owner, courseSubmission(longComment, 3), ptr(1)); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestUpdate_KeepsEntityKeyWhenOmitted(t *testing.T) {
	ctx := context.Background()
	svc := app.NewReviewService(memory.New())
	r, _ := svc.Submit(ctx, domain.KindCourse, owner, courseSubmission(longComment, 4))

	edit := courseSubmission(longComment, 1)
	edit.EntityKey = ""
	if err := svc.Update(ctx, domain.KindCourse, r.ID, owner, edit, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := svc.Get(ctx, domain.KindCourse, r.ID)
	if got.EntityKey != "CISC124" || !got.UpdatedAt.After(time.Time{}) {
		t.Fatalf("unexpected review after update: %+v", got)
	}
}
