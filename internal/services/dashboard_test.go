package services

import (
	"testing"
	"time"

	"github.com/danodev/daworks/internal/models"
)

func TestDayStart(t *testing.T) {
	input := time.Date(2024, 6, 15, 17, 45, 30, 123, time.UTC)
	got := dayStart(input)
	want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	if !got.Equal(want) {
		t.Errorf("dayStart() = %v, expected %v", got, want)
	}
	if got.Location() != input.Location() {
		t.Error("dayStart() changed the location")
	}
}

func TestMonthStart(t *testing.T) {
	input := time.Date(2024, 6, 15, 17, 45, 0, 0, time.UTC)
	got := monthStart(input)
	want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	if !got.Equal(want) {
		t.Errorf("monthStart() = %v, expected %v", got, want)
	}
}

func TestOpenTaskStatuses(t *testing.T) {
	if len(openTaskStatuses) != 2 {
		t.Fatalf("len(openTaskStatuses) = %d, expected 2", len(openTaskStatuses))
	}

	for _, status := range openTaskStatuses {
		if status == models.TaskStatusDone || status == models.TaskStatusCancelled {
			t.Errorf("%q should not count as open work", status)
		}
	}
}

func TestPipelineStageOrder(t *testing.T) {
	// The overview pads missing stages so the UI always renders the
	// full pipeline
	order := []string{
		models.StageLead, models.StageQualified, models.StageProposal,
		models.StageNegotiation, models.StageWon, models.StageLost,
	}

	seen := make(map[string]bool)
	for _, stage := range order {
		if !models.ValidProjectStage(stage) {
			t.Errorf("stage %q is not a valid pipeline stage", stage)
		}
		if seen[stage] {
			t.Errorf("duplicate stage %q", stage)
		}
		seen[stage] = true
	}
}
