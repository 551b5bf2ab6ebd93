package services

import (
	"context"
	"errors"
	"testing"

	"showcase/internal/apperr"
	"showcase/internal/models"
	"showcase/internal/testutil"

	"github.com/google/uuid"
)

func TestSetVisibilityMissingProjectIsNotFoundForEveryone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, caller := range []*models.User{f.voter, f.admin} {
		_, err := f.moderation.SetVisibility(ctx, caller, uuid.New(), true)
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("role %s: expected NotFound, got %v", caller.Role, err)
		}
	}
}

func TestSetVisibilityRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	p := testutil.CreateProject(t, f.db, f.owner, "Pending", false)

	_, err := f.moderation.SetVisibility(context.Background(), f.owner, p.ID, true)
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected Forbidden for the owner, got %v", err)
	}
	got, err := f.projects.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.IsPublic {
		t.Errorf("project must stay private after a rejected change")
	}
}

func TestSetVisibilityTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testutil.CreateProject(t, f.db, f.owner, "Toggle", false)

	for _, want := range []bool{true, false, true} {
		got, err := f.moderation.SetVisibility(ctx, f.admin, p.ID, want)
		if err != nil {
			t.Fatalf("SetVisibility(%v) failed: %v", want, err)
		}
		if got.IsPublic != want {
			t.Fatalf("expected is_public=%v, got %v", want, got.IsPublic)
		}
	}

	// 重复设置相同状态不报错
	if _, err := f.moderation.SetVisibility(ctx, f.admin, p.ID, true); err != nil {
		t.Fatalf("idempotent SetVisibility failed: %v", err)
	}
}

func TestPrivateProjectsNeverListedPublicly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hidden := testutil.CreateProject(t, f.db, f.owner, "Solar Car", false)
	shown := testutil.CreateProject(t, f.db, f.owner, "Solar Kite", true)
	year := 2024

	filters := []ListFilter{
		{PublicOnly: true},
		{PublicOnly: true, Year: &year},
		{PublicOnly: true, Search: "solar"},
		{PublicOnly: true, Search: "car"},
	}
	for _, filter := range filters {
		got, err := f.projects.List(ctx, filter)
		if err != nil {
			t.Fatalf("List(%+v) failed: %v", filter, err)
		}
		for _, p := range got {
			if p.ID == hidden.ID || !p.IsPublic {
				t.Errorf("List(%+v) leaked private project %s", filter, p.Title)
			}
		}
	}

	got, err := f.projects.List(ctx, ListFilter{PublicOnly: true, Search: "kite"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != shown.ID {
		t.Errorf("expected only the public kite project, got %+v", got)
	}
}
