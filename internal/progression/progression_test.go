package progression_test

import (
	"testing"

	"github.com/p-n-ai/pai-quiz/internal/progression"
)

func progress(level, repeats, count, points int) progression.LearnerProgress {
	p := progression.NewProgress("alice", "cases")
	p.Levels.Current = level
	p.Levels.Previous = level
	p.Levels.LastTopLevel = level
	p.Levels.CurrentCount = count
	p.Levels.CurrentPoints = points
	p.Repeats = repeats
	return p
}

func TestApply(t *testing.T) {
	tests := []struct {
		name       string
		start      progression.LearnerProgress
		batch      progression.Batch
		wantStatus progression.Status
		wantLevels progression.Levels
		wantRepeat int
	}{
		{
			name:       "demoted at boundary with last repeat",
			start:      progress(2, 1, 9, 6),
			batch:      progression.Batch{Level: 2, Percentage: 5},
			wantStatus: progression.StatusDemoted,
			wantLevels: progression.Levels{Current: 1, Previous: 2, LastTopLevel: 2, CurrentCount: 0, CurrentPoints: 0},
			wantRepeat: 2,
		},
		{
			name:       "next level at boundary",
			start:      progress(3, 2, 9, 7),
			batch:      progression.Batch{Level: 3, Percentage: 8},
			wantStatus: progression.StatusNextLevel,
			wantLevels: progression.Levels{Current: 4, Previous: 3, LastTopLevel: 4, CurrentCount: 0, CurrentPoints: 0},
			wantRepeat: 2,
		},
		{
			name:       "repeat keeps points",
			start:      progress(2, 2, 9, 3),
			batch:      progression.Batch{Level: 2, Percentage: 9},
			wantStatus: progression.StatusRepeatLevel,
			wantLevels: progression.Levels{Current: 2, Previous: 2, LastTopLevel: 2, CurrentCount: 0, CurrentPoints: 4},
			wantRepeat: 1,
		},
		{
			name:       "level one saturates",
			start:      progress(1, 1, 9, 2),
			batch:      progression.Batch{Level: 1, Percentage: 3},
			wantStatus: progression.StatusOngoing,
			wantLevels: progression.Levels{Current: 1, Previous: 1, LastTopLevel: 1, CurrentCount: 0, CurrentPoints: 2},
			wantRepeat: progression.NeverDemoteSentinel,
		},
		{
			name:       "mid set",
			start:      progress(2, 2, 4, 4),
			batch:      progression.Batch{Level: 2, Percentage: 7},
			wantStatus: progression.StatusOngoing,
			wantLevels: progression.Levels{Current: 2, Previous: 2, LastTopLevel: 2, CurrentCount: 5, CurrentPoints: 5},
			wantRepeat: 2,
		},
		{
			name:       "sentinel repeats at level one count down",
			start:      progress(1, progression.NeverDemoteSentinel, 9, 0),
			batch:      progression.Batch{Level: 1, Percentage: 0},
			wantStatus: progression.StatusRepeatLevel,
			wantLevels: progression.Levels{Current: 1, Previous: 1, LastTopLevel: 1, CurrentCount: 0, CurrentPoints: 0},
			wantRepeat: progression.NeverDemoteSentinel - 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, status := progression.Apply(tt.start, tt.batch)
			if status != tt.wantStatus {
				t.Errorf("status = %s, want %s", status, tt.wantStatus)
			}
			if got.Levels != tt.wantLevels {
				t.Errorf("levels = %+v, want %+v", got.Levels, tt.wantLevels)
			}
			if got.Repeats != tt.wantRepeat {
				t.Errorf("repeats = %d, want %d", got.Repeats, tt.wantRepeat)
			}
		})
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	start := progress(2, 1, 9, 6)
	progression.Apply(start, progression.Batch{Level: 2, Percentage: 5})
	if start.Levels.CurrentCount != 9 || start.Levels.Current != 2 {
		t.Errorf("input modified: %+v", start.Levels)
	}
}

func TestApply_AverageSpeedAndTotals(t *testing.T) {
	start := progress(1, 2, 0, 0)
	start.AverageSpeed = 9

	got, _ := progression.Apply(start, progression.Batch{Level: 1, MeanTime: 6, ReadingSpeed: 3, Points: 5, Answered: 4})
	if got.AverageSpeed != 6 {
		t.Errorf("AverageSpeed = %v, want (9+6+3)/3 = 6", got.AverageSpeed)
	}
	if got.TotalPoints != 5 || got.TotalAnswered != 4 {
		t.Errorf("totals = %d/%d, want 5/4", got.TotalPoints, got.TotalAnswered)
	}
}

func TestNewProgress(t *testing.T) {
	p := progression.NewProgress("alice", "cases")
	if p.Repeats != progression.NeverDemoteSentinel {
		t.Errorf("Repeats = %d, want sentinel", p.Repeats)
	}
	want := progression.Levels{Current: 1, Previous: 1, LastTopLevel: 1}
	if p.Levels != want {
		t.Errorf("Levels = %+v, want %+v", p.Levels, want)
	}
}

func TestDisplayCount(t *testing.T) {
	tests := []struct{ count, want int }{{0, 10}, {1, 1}, {9, 9}, {10, 10}}
	for _, tt := range tests {
		p := progress(1, 2, tt.count, 0)
		if got := p.DisplayCount(); got != tt.want {
			t.Errorf("DisplayCount(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}
