package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"showcase/internal/apperr"
	"showcase/internal/models"
	"showcase/internal/testutil"

	"github.com/google/uuid"
)

func seedNotification(t *testing.T, f *fixture, recipient, actor *models.User, p *models.Project, kind models.NotificationKind, at time.Time, read bool) *models.Notification {
	t.Helper()
	n := &models.Notification{
		RecipientID: recipient.ID,
		ActorID:     actor.ID,
		ProjectID:   p.ID,
		Kind:        kind,
		CreatedAt:   at,
	}
	if err := f.db.Create(n).Error; err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	if read {
		if err := f.db.Model(n).Update("is_read", true).Error; err != nil {
			t.Fatalf("mark read: %v", err)
		}
	}
	return n
}

func TestListUnreadNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testutil.CreateProject(t, f.db, f.owner, "Inbox", true)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	older := seedNotification(t, f, f.owner, f.voter, p, models.NotificationKindComment, base, false)
	newer := seedNotification(t, f, f.owner, f.admin, p, models.NotificationKindLike, base.Add(time.Hour), false)
	seedNotification(t, f, f.owner, f.voter, p, models.NotificationKindComment, base.Add(2*time.Hour), true)
	// 别人的通知
	other := testutil.CreateProject(t, f.db, f.voter, "Other", true)
	seedNotification(t, f, f.voter, f.owner, other, models.NotificationKindComment, base, false)

	views, err := f.notifications.ListUnread(ctx, f.owner.ID)
	if err != nil {
		t.Fatalf("ListUnread failed: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 unread, got %d", len(views))
	}
	if views[0].ID != newer.ID || views[1].ID != older.ID {
		t.Errorf("expected newest first, got %v then %v", views[0].ID, views[1].ID)
	}
	if views[0].ActorEmail != f.admin.Email || views[0].ProjectTitle != "Inbox" || views[0].Kind != models.NotificationKindLike {
		t.Errorf("unexpected view %+v", views[0])
	}

	all, err := f.notifications.List(ctx, f.owner.ID, true)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 including read, got %d", len(all))
	}

	count, err := f.notifications.UnreadCount(ctx, f.owner.ID)
	if err != nil || count != 2 {
		t.Errorf("expected unread count 2, got %d %v", count, err)
	}
}

func TestListUnreadReturnsEveryRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testutil.CreateProject(t, f.db, f.owner, "Popular", true)

	const comments = 150
	for i := 0; i < comments; i++ {
		if _, err := f.comments.AddComment(ctx, f.voter.ID, p.ID, "again"); err != nil {
			t.Fatalf("AddComment #%d failed: %v", i, err)
		}
	}

	count, err := f.notifications.UnreadCount(ctx, f.owner.ID)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	unread, err := f.notifications.ListUnread(ctx, f.owner.ID)
	if err != nil {
		t.Fatalf("ListUnread failed: %v", err)
	}
	if count != comments || len(unread) != comments {
		t.Fatalf("expected %d unread, got count=%d list=%d", comments, count, len(unread))
	}

	if _, err := f.notifications.MarkAllRead(ctx, f.owner.ID); err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	all, err := f.notifications.List(ctx, f.owner.ID, true)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != comments {
		t.Errorf("expected %d with read included, got %d", comments, len(all))
	}
}

func TestMarkRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testutil.CreateProject(t, f.db, f.owner, "Bell", true)
	n := seedNotification(t, f, f.owner, f.voter, p, models.NotificationKindLike, time.Now(), false)

	if err := f.notifications.MarkRead(ctx, n.ID, f.voter.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected Forbidden for the actor, got %v", err)
	}
	if err := f.notifications.MarkRead(ctx, uuid.New(), f.owner.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if err := f.notifications.MarkRead(ctx, n.ID, f.owner.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	views, err := f.notifications.ListUnread(ctx, f.owner.ID)
	if err != nil {
		t.Fatalf("ListUnread failed: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("expected no unread after MarkRead, got %d", len(views))
	}
}

func TestMarkAllRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testutil.CreateProject(t, f.db, f.owner, "Bulk", true)
	for i := 0; i < 3; i++ {
		if _, err := f.comments.AddComment(ctx, f.voter.ID, p.ID, "ping"); err != nil {
			t.Fatalf("AddComment failed: %v", err)
		}
	}

	updated, err := f.notifications.MarkAllRead(ctx, f.owner.ID)
	if err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	if updated != 3 {
		t.Errorf("expected 3 updated, got %d", updated)
	}
	if count, _ := f.notifications.UnreadCount(ctx, f.owner.ID); count != 0 {
		t.Errorf("expected 0 unread, got %d", count)
	}
}

func TestPruneRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testutil.CreateProject(t, f.db, f.owner, "Archive", true)
	now := time.Now().UTC()

	seedNotification(t, f, f.owner, f.voter, p, models.NotificationKindComment, now.Add(-200*24*time.Hour), true)
	keepUnread := seedNotification(t, f, f.owner, f.voter, p, models.NotificationKindComment, now.Add(-200*24*time.Hour), false)
	keepRecent := seedNotification(t, f, f.owner, f.voter, p, models.NotificationKindComment, now.Add(-time.Hour), true)

	deleted, err := f.notifications.PruneRead(ctx, now.Add(-90*24*time.Hour))
	if err != nil {
		t.Fatalf("PruneRead failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}
	for _, n := range []*models.Notification{keepUnread, keepRecent} {
		if c := f.count(t, &models.Notification{}, "id = ?", n.ID); c != 1 {
			t.Errorf("notification %s should survive pruning", n.ID)
		}
	}
}
