package scoreevents

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultStream is the stream key used when none is configured.
const DefaultStream = "score-events"

// streamMaxLen caps the stream, approximately, so it cannot grow without bound.
const streamMaxLen = 100_000

// RedisSink appends events to a Redis stream.
type RedisSink struct {
	client *redis.Client
	stream string
}

func NewRedisSink(client *redis.Client, stream string) *RedisSink {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisSink{client: client, stream: stream}
}

func (s *RedisSink) Emit(ctx context.Context, e Event) error {
	if err := e.validate(); err != nil {
		return err
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]any{
			"learner_id": e.LearnerID,
			"points":     e.Points,
			"time_taken": strconv.FormatFloat(e.TimeTaken, 'f', -1, 64),
			"component":  e.Component,
			"region":     e.Region,
			"created_at": createdAt.UTC().Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("append score event: %w", err)
	}
	return nil
}

// DecodeStreamMessage turns a stream entry written by RedisSink back into an Event.
func DecodeStreamMessage(msg redis.XMessage) (Event, error) {
	str := func(k string) string {
		v, _ := msg.Values[k].(string)
		return v
	}

	e := Event{
		LearnerID: str("learner_id"),
		Component: str("component"),
		Region:    str("region"),
	}
	var err error
	if e.Points, err = strconv.Atoi(str("points")); err != nil {
		return Event{}, fmt.Errorf("decode points: %w", err)
	}
	if e.TimeTaken, err = strconv.ParseFloat(str("time_taken"), 64); err != nil {
		return Event{}, fmt.Errorf("decode time_taken: %w", err)
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, str("created_at")); err != nil {
		return Event{}, fmt.Errorf("decode created_at: %w", err)
	}
	return e, nil
}
