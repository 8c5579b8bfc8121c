package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/kit2552/tadka-cms-final-sub001/internal/models"
	"github.com/kit2552/tadka-cms-final-sub001/internal/services"
)

func releaseAgent(status string) models.AgentDefinition {
	return models.AgentDefinition{
		ID:             "theatrical-releases",
		Type:           models.AgentTypeTheatricalRelease,
		SourceKind:     models.SourceKindListing,
		SourceURL:      "https://listings.example.com/theatrical",
		Category:       "movies",
		WorkflowStatus: status,
	}
}

func videoAgent(status string) models.AgentDefinition {
	return models.AgentDefinition{
		ID:             "channelx-videos",
		Type:           models.AgentTypeTVChannel,
		SourceKind:     models.SourceKindChannel,
		SourceURL:      "https://videos.example.com/channelx",
		Category:       "tv-today",
		GroupTitle:     "ChannelX",
		WorkflowStatus: status,
	}
}

func TestMaterializeReleaseIdempotent(t *testing.T) {
	mem := newMemStore()
	dedup := services.NewDedupService(mem, newTestLogger(t))
	ctx := context.Background()
	def := releaseAgent("in_review")

	first, err := dedup.MaterializeRelease(ctx, models.ContentItem{Title: "Pathaan", Year: 2023}, def)
	if err != nil {
		t.Fatalf("First materialize failed: %v", err)
	}
	if !first.Created {
		t.Fatal("First materialize should create")
	}

	second, err := dedup.MaterializeRelease(ctx, models.ContentItem{Title: " pathaan ", Year: 2023}, def)
	if err != nil {
		t.Fatalf("Second materialize failed: %v", err)
	}
	if second.Created {
		t.Error("Normalized duplicate should not create")
	}
	if second.RecordID != first.RecordID {
		t.Errorf("Duplicate should resolve to the same record: %s vs %s", first.RecordID, second.RecordID)
	}

	count, _ := mem.CountRecords(ctx, models.DomainRelease)
	if count != 1 {
		t.Errorf("Expected exactly one canonical record, got %d", count)
	}
}

// A failed create must leave neither the record nor the key binding
// behind; the retry then creates exactly one canonical record.
func TestMaterializeCreateFailureLeavesNoState(t *testing.T) {
	mem := newMemStore()
	mem.failPutTitle = "Pathaan"
	dedup := services.NewDedupService(mem, newTestLogger(t))
	ctx := context.Background()
	def := releaseAgent("in_review")
	item := models.ContentItem{Title: "Pathaan", Year: 2023}

	if _, err := dedup.MaterializeRelease(ctx, item, def); err == nil {
		t.Fatal("First materialize should surface the store fault")
	}

	count, _ := mem.CountRecords(ctx, models.DomainRelease)
	if count != 0 {
		t.Fatalf("Failed create must not leave an orphan record, got %d", count)
	}
	bound, _ := mem.LookupDedupKey(ctx, models.DomainRelease, models.ReleaseDedupKey("Pathaan", 2023))
	if bound != "" {
		t.Fatalf("Failed create must not bind the key, got %s", bound)
	}

	mem.failPutTitle = ""
	retry, err := dedup.MaterializeRelease(ctx, item, def)
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if !retry.Created {
		t.Error("Retry after a clean failure should create")
	}
	if count, _ := mem.CountRecords(ctx, models.DomainRelease); count != 1 {
		t.Errorf("Exactly one record should exist after the retry, got %d", count)
	}
}

func TestMaterializeDuplicateMakesNoMutation(t *testing.T) {
	mem := newMemStore()
	dedup := services.NewDedupService(mem, newTestLogger(t))
	ctx := context.Background()
	def := releaseAgent("in_review")

	first, err := dedup.MaterializeRelease(ctx, models.ContentItem{Title: "Jawan", Year: 2023}, def)
	if err != nil {
		t.Fatal(err)
	}
	before, err := mem.GetRecord(ctx, first.RecordID)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := dedup.MaterializeRelease(ctx, models.ContentItem{Title: "JAWAN", Year: 2023}, def); err != nil {
		t.Fatal(err)
	}
	after, err := mem.GetRecord(ctx, first.RecordID)
	if err != nil {
		t.Fatal(err)
	}

	if !before.UpdatedAt.Equal(after.UpdatedAt) || before.Slug != after.Slug {
		t.Error("Rerunning an unchanged candidate must not modify the existing record")
	}
}

func TestMaterializeArticlePublishedFlagMatchesStatus(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		status    string
		published bool
	}{
		{"published", true},
		{"ready_to_publish", false},
		{"in_review", false},
	}

	for _, tc := range cases {
		mem := newMemStore()
		dedup := services.NewDedupService(mem, newTestLogger(t))

		result, err := dedup.MaterializeArticle(ctx, models.ContentItem{
			ExternalKey: "https://videos.example.com/v/1",
			Title:       "Morning Bulletin",
			PublishedAt: time.Now(),
		}, videoAgent(tc.status))
		if err != nil {
			t.Fatalf("status %s: %v", tc.status, err)
		}

		record, err := mem.GetRecord(ctx, result.RecordID)
		if err != nil {
			t.Fatal(err)
		}
		if string(record.Status) != tc.status {
			t.Errorf("Expected status %s, got %s", tc.status, record.Status)
		}
		if record.Published != tc.published {
			t.Errorf("status %s: published flag %v disagrees with status", tc.status, record.Published)
		}
	}
}

func TestMaterializeArticleKeyIsURLAndCategory(t *testing.T) {
	mem := newMemStore()
	dedup := services.NewDedupService(mem, newTestLogger(t))
	ctx := context.Background()

	item := models.ContentItem{ExternalKey: "https://videos.example.com/v/1", Title: "Clip"}

	first, err := dedup.MaterializeArticle(ctx, item, videoAgent("published"))
	if err != nil {
		t.Fatal(err)
	}

	// same URL in a different category is a different identity
	otherCategory := videoAgent("published")
	otherCategory.Category = "reality"
	second, err := dedup.MaterializeArticle(ctx, item, otherCategory)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Created || second.RecordID == first.RecordID {
		t.Error("Same URL in another category should create a separate record")
	}
}

func TestMaterializeScheduleValidation(t *testing.T) {
	mem := newMemStore()
	dedup := services.NewDedupService(mem, newTestLogger(t))
	ctx := context.Background()
	def := models.AgentDefinition{
		ID: "cricket-schedule", Type: models.AgentTypeMatchSchedule,
		Category: "sports", WorkflowStatus: "published",
	}

	_, err := dedup.MaterializeSchedule(ctx, models.ContentItem{Title: "India vs ?", Team1: "India"}, def)
	if err == nil {
		t.Fatal("Incomplete schedule candidate should fail validation")
	}
	if models.KindOf(err) != models.ErrorKindValidation {
		t.Errorf("Expected validation error, got %s", models.KindOf(err))
	}

	result, err := dedup.MaterializeSchedule(ctx, models.ContentItem{
		Title: "India vs Australia", Team1: "India", Team2: "Australia",
		MatchDate: "2026-10-04", Source: "CricFeed",
	}, def)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Created {
		t.Error("Complete schedule candidate should create")
	}
}
