//go:build integration

package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"showcase/internal/apperr"
	"showcase/internal/models"
	"showcase/internal/testutil"
)

// 在真实 Postgres 上跑并发相关路径，写入不会被单连接串行化
func TestPostgresConcurrentVotes(t *testing.T) {
	f := newFixtureOn(t, testutil.NewPostgresDB(t))
	ctx := context.Background()
	p := testutil.CreateProject(t, f.db, f.owner, "Race", true)

	const workers = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
		other     []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.votes.CastVote(ctx, f.voter.ID, p.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, apperr.ErrConflict):
				conflicts++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	if len(other) > 0 {
		t.Fatalf("unexpected errors: %v", other)
	}
	if created != 1 || conflicts != workers-1 {
		t.Errorf("expected 1 created and %d conflicts, got %d and %d", workers-1, created, conflicts)
	}
	if n := f.count(t, &models.Vote{}, "project_id = ?", p.ID); n != 1 {
		t.Errorf("expected 1 vote row, got %d", n)
	}
	if n := f.count(t, &models.Notification{}, "project_id = ? AND kind = ?", p.ID, models.NotificationKindLike); n != 1 {
		t.Errorf("expected 1 like notification, got %d", n)
	}
}

func TestPostgresVoteOnMissingProject(t *testing.T) {
	f := newFixtureOn(t, testutil.NewPostgresDB(t))
	p := testutil.CreateProject(t, f.db, f.owner, "Gone", true)
	if err := f.db.Delete(&models.Project{}, "id = ?", p.ID).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := f.votes.CastVote(context.Background(), f.voter.ID, p.ID)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestPostgresCommentsAreNotDeduplicated(t *testing.T) {
	f := newFixtureOn(t, testutil.NewPostgresDB(t))
	ctx := context.Background()
	p := testutil.CreateProject(t, f.db, f.owner, "Chatty", true)

	for i := 0; i < 3; i++ {
		if _, err := f.comments.AddComment(ctx, f.voter.ID, p.ID, "again"); err != nil {
			t.Fatalf("AddComment: %v", err)
		}
	}
	if n := f.count(t, &models.Notification{}, "project_id = ? AND kind = ?", p.ID, models.NotificationKindComment); n != 3 {
		t.Errorf("expected 3 comment notifications, got %d", n)
	}
}
