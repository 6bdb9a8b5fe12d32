package progression

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed Store using the version column for
// optimistic concurrency.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed progress store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Load(ctx context.Context, learnerID, track string) (LearnerProgress, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	p := LearnerProgress{LearnerID: learnerID, Track: track}
	err := s.pool.QueryRow(ctx,
		`SELECT current_level, previous_level, last_top_level, current_count, current_points,
		        repeats, average_speed, total_points, total_answered, version, updated_at
		 FROM learner_progress
		 WHERE learner_id = $1 AND track = $2`,
		learnerID, track,
	).Scan(
		&p.Levels.Current, &p.Levels.Previous, &p.Levels.LastTopLevel,
		&p.Levels.CurrentCount, &p.Levels.CurrentPoints,
		&p.Repeats, &p.AverageSpeed, &p.TotalPoints, &p.TotalAnswered,
		&p.Version, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return LearnerProgress{}, false, nil
	}
	if err != nil {
		return LearnerProgress{}, false, fmt.Errorf("load learner progress: %w", err)
	}
	return p, true, nil
}

func (s *PostgresStore) Save(ctx context.Context, p *LearnerProgress) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var version int64
	var updatedAt time.Time
	err := s.pool.QueryRow(ctx,
		`INSERT INTO learner_progress (learner_id, track, current_level, previous_level, last_top_level,
		     current_count, current_points, repeats, average_speed, total_points, total_answered,
		     version, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12 + 1, now())
		 ON CONFLICT (learner_id, track) DO UPDATE SET
		     current_level = EXCLUDED.current_level,
		     previous_level = EXCLUDED.previous_level,
		     last_top_level = EXCLUDED.last_top_level,
		     current_count = EXCLUDED.current_count,
		     current_points = EXCLUDED.current_points,
		     repeats = EXCLUDED.repeats,
		     average_speed = EXCLUDED.average_speed,
		     total_points = EXCLUDED.total_points,
		     total_answered = EXCLUDED.total_answered,
		     version = learner_progress.version + 1,
		     updated_at = now()
		 WHERE learner_progress.version = $12
		 RETURNING version, updated_at`,
		p.LearnerID, p.Track,
		p.Levels.Current, p.Levels.Previous, p.Levels.LastTopLevel,
		p.Levels.CurrentCount, p.Levels.CurrentPoints,
		p.Repeats, p.AverageSpeed, p.TotalPoints, p.TotalAnswered,
		p.Version,
	).Scan(&version, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("save learner progress: %w", err)
	}

	p.Version = version
	p.UpdatedAt = updatedAt
	return nil
}
