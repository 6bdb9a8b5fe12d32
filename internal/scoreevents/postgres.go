package scoreevents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresSink inserts events into the score_events table.
type PostgresSink struct {
	pool *pgxpool.Pool
}

func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

func (s *PostgresSink) Emit(ctx context.Context, e Event) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("score sink pool is nil")
	}
	if err := e.validate(); err != nil {
		return err
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO score_events (learner_id, points, time_taken, component, region, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.LearnerID, e.Points, e.TimeTaken, e.Component, e.Region, createdAt,
	); err != nil {
		return fmt.Errorf("insert score event: %w", err)
	}

	slog.Debug("score event stored", "learner_id", e.LearnerID, "component", e.Component, "points", e.Points)
	return nil
}

// Totals returns the summed points per learner for a component, highest first.
func (s *PostgresSink) Totals(ctx context.Context, component string, limit int) ([]Total, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT learner_id, sum(points), sum(time_taken)
		 FROM score_events
		 WHERE component = $1
		 GROUP BY learner_id
		 ORDER BY sum(points) DESC, sum(time_taken) ASC
		 LIMIT $2`,
		component, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query score totals: %w", err)
	}
	defer rows.Close()

	var totals []Total
	for rows.Next() {
		var t Total
		if err := rows.Scan(&t.LearnerID, &t.Points, &t.TimeTaken); err != nil {
			return nil, fmt.Errorf("scan score total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// Total is a learner's aggregate for one component.
type Total struct {
	LearnerID string  `json:"learner_id"`
	Points    int64   `json:"points"`
	TimeTaken float64 `json:"time_taken"`
}
