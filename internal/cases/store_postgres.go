package cases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
)

const dbTimeout = 5 * time.Second

const caseColumns = `c.id, c.level, c.details, c.subject, c.keywords, c.total_question`

// PostgresStore is a PostgreSQL-backed Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed case store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// PutCases upserts cases by ID. TotalQuestion of an existing row is replaced.
func (s *PostgresStore) PutCases(ctx context.Context, cases []curriculum.Case) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	batch := &pgx.Batch{}
	for _, c := range cases {
		if c.ID == "" {
			return fmt.Errorf("case id is required")
		}
		batch.Queue(
			`INSERT INTO cases (id, level, details, subject, keywords, total_question)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO UPDATE SET
			     level = EXCLUDED.level, details = EXCLUDED.details,
			     subject = EXCLUDED.subject, keywords = EXCLUDED.keywords,
			     total_question = EXCLUDED.total_question`,
			c.ID, c.Level, c.Details, c.Subject, c.Keywords, c.TotalQuestion,
		)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert cases: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddQuestionCount(ctx context.Context, caseID string, delta int) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx,
		`UPDATE cases SET total_question = total_question + $2 WHERE id = $1`,
		caseID, delta,
	)
	if err != nil {
		return fmt.Errorf("update case question count: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("case not found: %s", caseID)
	}
	return nil
}

func (s *PostgresStore) FindUnseenCase(ctx context.Context, level int, learnerID string) (curriculum.Case, bool, error) {
	return s.findOne(ctx,
		`SELECT `+caseColumns+` FROM cases c
		 WHERE c.level = $1 AND c.total_question > 0
		   AND NOT EXISTS (SELECT 1 FROM case_exposures e WHERE e.case_id = c.id AND e.learner_id = $2)
		 ORDER BY random() LIMIT 1`,
		level, learnerID,
	)
}

func (s *PostgresStore) FindAnyCase(ctx context.Context, level int) (curriculum.Case, bool, error) {
	return s.findOne(ctx,
		`SELECT `+caseColumns+` FROM cases c
		 WHERE c.level = $1 AND c.total_question > 0
		 ORDER BY random() LIMIT 1`,
		level,
	)
}

func (s *PostgresStore) MarkCaseExposed(ctx context.Context, caseID, learnerID string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO case_exposures (case_id, learner_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		caseID, learnerID,
	); err != nil {
		return fmt.Errorf("mark case exposed: %w", err)
	}
	return nil
}

func (s *PostgresStore) findOne(ctx context.Context, query string, args ...any) (curriculum.Case, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var c curriculum.Case
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&c.ID, &c.Level, &c.Details, &c.Subject, &c.Keywords, &c.TotalQuestion,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return curriculum.Case{}, false, nil
	}
	if err != nil {
		return curriculum.Case{}, false, fmt.Errorf("find case: %w", err)
	}
	return c, true, nil
}
