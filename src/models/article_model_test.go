package models

import (
	"testing"
	"time"
)

func TestApplyPublishStateSetsOnce(t *testing.T) {
	first := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)

	a := Article{Status: ArticleStatusDraft}
	a.ApplyPublishState(first)
	if a.PublishedAt != nil {
		t.Fatal("draft article got a publish timestamp")
	}

	a.Status = ArticleStatusPublished
	a.ApplyPublishState(first)
	if a.PublishedAt == nil || !a.PublishedAt.Equal(first) {
		t.Fatalf("published_at = %v, want %v", a.PublishedAt, first)
	}

	// Re-saving a published article must not move the timestamp.
	a.ApplyPublishState(later)
	if !a.PublishedAt.Equal(first) {
		t.Errorf("published_at moved to %v on re-save", a.PublishedAt)
	}

	// Unpublish then publish again: the original timestamp stays.
	a.Status = ArticleStatusDraft
	a.ApplyPublishState(later)
	a.Status = ArticleStatusPublished
	a.ApplyPublishState(later)
	if !a.PublishedAt.Equal(first) {
		t.Errorf("published_at moved to %v after republish", a.PublishedAt)
	}
}
