package scoreevents_test

import (
	"context"
	"testing"

	"github.com/p-n-ai/pai-quiz/internal/platform/cache/cachetest"
	"github.com/p-n-ai/pai-quiz/internal/platform/database/dbtest"
	"github.com/p-n-ai/pai-quiz/internal/scoreevents"
)

func TestPostgresSink(t *testing.T) {
	pool := dbtest.NewPool(t)
	s := scoreevents.NewPostgresSink(pool)
	ctx := context.Background()

	for _, e := range []scoreevents.Event{
		{LearnerID: "alice", Points: 4, TimeTaken: 10, Component: "cardio"},
		{LearnerID: "alice", Points: 3, TimeTaken: 5, Component: "cardio"},
		{LearnerID: "bob", Points: 5, TimeTaken: 2, Component: "cardio"},
		{LearnerID: "bob", Points: 9, Component: "renal"},
	} {
		if err := s.Emit(ctx, e); err != nil {
			t.Fatalf("Emit() error = %v", err)
		}
	}

	totals, err := s.Totals(ctx, "cardio", 10)
	if err != nil {
		t.Fatalf("Totals() error = %v", err)
	}
	if len(totals) != 2 || totals[0].LearnerID != "alice" || totals[0].Points != 7 {
		t.Errorf("Totals() = %+v, want alice first with 7 points", totals)
	}
}

func TestRedisSink(t *testing.T) {
	client := cachetest.NewClient(t)
	s := scoreevents.NewRedisSink(client, "test-scores")
	ctx := context.Background()

	if err := s.Emit(ctx, scoreevents.Event{LearnerID: "alice", Points: 6, TimeTaken: 12.5, Component: "cardio", Region: "MY"}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	msgs, err := client.XRange(ctx, "test-scores", "-", "+").Result()
	if err != nil {
		t.Fatalf("XRange() error = %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("stream length = %d, want 1", len(msgs))
	}

	e, err := scoreevents.DecodeStreamMessage(msgs[0])
	if err != nil {
		t.Fatalf("DecodeStreamMessage() error = %v", err)
	}
	if e.LearnerID != "alice" || e.Points != 6 || e.TimeTaken != 12.5 || e.Region != "MY" || e.CreatedAt.IsZero() {
		t.Errorf("decoded = %+v", e)
	}
}
