package exposure

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
	"github.com/p-n-ai/pai-quiz/internal/platform/database"
)

const dbTimeout = 5 * time.Second

const itemColumns = `i.id, i.quiz_id, i.case_id, i.subcategory_id, i.subcategory_name,
	i.subspecialty, i.system, i.topic, i.subtopic, i.subject, i.keywords,
	i.level, i.reviewed, i.question, i.options, i.answer`

// PostgresStore is a PostgreSQL-backed Store. Exposure sets live in the
// item_exposures table, one row per (item, learner).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed item pool.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// PutItems upserts items by ID.
func (s *PostgresStore) PutItems(ctx context.Context, items []curriculum.Item) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	batch := &pgx.Batch{}
	for _, item := range items {
		options, err := json.Marshal(item.Options)
		if err != nil {
			return fmt.Errorf("marshal options for %s: %w", item.ID, err)
		}
		answer, err := json.Marshal(item.Answer)
		if err != nil {
			return fmt.Errorf("marshal answer for %s: %w", item.ID, err)
		}
		batch.Queue(
			`INSERT INTO items (id, quiz_id, case_id, subcategory_id, subcategory_name,
			     subspecialty, system, topic, subtopic, subject, keywords,
			     level, reviewed, question, options, answer)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15::jsonb, $16::jsonb)
			 ON CONFLICT (id) DO UPDATE SET
			     quiz_id = EXCLUDED.quiz_id, case_id = EXCLUDED.case_id,
			     subcategory_id = EXCLUDED.subcategory_id, subcategory_name = EXCLUDED.subcategory_name,
			     subspecialty = EXCLUDED.subspecialty, system = EXCLUDED.system,
			     topic = EXCLUDED.topic, subtopic = EXCLUDED.subtopic,
			     subject = EXCLUDED.subject, keywords = EXCLUDED.keywords,
			     level = EXCLUDED.level, reviewed = EXCLUDED.reviewed,
			     question = EXCLUDED.question, options = EXCLUDED.options, answer = EXCLUDED.answer`,
			item.ID, item.QuizID, item.CaseID, item.Subcategory.ID, item.Subcategory.Name,
			item.Subspecialty, item.System, item.Topic, item.Subtopic, item.Subject, item.Keywords,
			item.Level, item.Reviewed, item.Question, string(options), string(answer),
		)
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert items: %w", err)
	}
	return nil
}

func (s *PostgresStore) ExistingItemIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT id FROM items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query existing items: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan existing items: %w", err)
	}
	return found, nil
}

func (s *PostgresStore) SampleRandom(ctx context.Context, f Filter, n int) ([]curriculum.Item, error) {
	if n <= 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	where, args := whereClause(f)
	args = append(args, n)
	rows, err := s.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM items i WHERE `+where+
			` ORDER BY random() LIMIT $`+strconv.Itoa(len(args)),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sample items: %w", err)
	}
	return collectItems(rows)
}

func (s *PostgresStore) MarkExposed(ctx context.Context, itemIDs []string, learnerID string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO item_exposures (item_id, learner_id)
		 SELECT id, $2 FROM items WHERE id = ANY($1)
		 ON CONFLICT DO NOTHING`,
		itemIDs, learnerID,
	)
	if err != nil {
		return fmt.Errorf("mark items exposed: %w", err)
	}
	return nil
}

func (s *PostgresStore) ResetExposure(ctx context.Context, f Filter, learnerID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	f.UnseenBy = ""
	where, args := whereClause(f)
	args = append(args, learnerID)
	cmd, err := s.pool.Exec(ctx,
		`DELETE FROM item_exposures e
		 USING items i
		 WHERE e.item_id = i.id AND e.learner_id = $`+strconv.Itoa(len(args))+` AND `+where,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("reset exposure: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}

func (s *PostgresStore) CountMatching(ctx context.Context, f Filter) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	where, args := whereClause(f)
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM items i WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// ClaimUnseen samples and marks in one transaction. A transaction-scoped
// advisory lock on the learner serializes concurrent claims for that learner.
func (s *PostgresStore) ClaimUnseen(ctx context.Context, f Filter, learnerID string, n int) ([]curriculum.Item, error) {
	if n <= 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var items []curriculum.Item
	err := database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := database.LockKey(ctx, tx, "exposure:"+learnerID); err != nil {
			return err
		}

		where, args := whereClause(f.Unseen(learnerID))
		learner := "$" + strconv.Itoa(len(args))
		args = append(args, n)
		limit := "$" + strconv.Itoa(len(args))
		rows, err := tx.Query(ctx,
			`WITH picked AS (
			     SELECT i.id FROM items i WHERE `+where+` ORDER BY random() LIMIT `+limit+`
			 ), claimed AS (
			     INSERT INTO item_exposures (item_id, learner_id)
			     SELECT id, `+learner+` FROM picked
			     ON CONFLICT DO NOTHING
			     RETURNING item_id
			 )
			 SELECT `+itemColumns+` FROM items i JOIN claimed c ON c.item_id = i.id`,
			args...,
		)
		if err != nil {
			return fmt.Errorf("claim items: %w", err)
		}
		items, err = collectItems(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// whereClause renders f as a SQL condition over alias i. Placeholders start
// at $1 and, when set, UnseenBy is always the last argument.
func whereClause(f Filter) (string, []any) {
	conds := []string{"TRUE"}
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}

	if f.QuizID != "" {
		add("i.quiz_id = ?", f.QuizID)
	}
	if f.SubcategoryID != "" {
		add("i.subcategory_id = ?", f.SubcategoryID)
	}
	if f.CaseID != "" {
		add("i.case_id = ?", f.CaseID)
	}
	if f.Subspecialty != "" {
		add("i.subspecialty = ?", f.Subspecialty)
	}
	if f.System != "" {
		add("i.system = ?", f.System)
	}
	if f.Topic != "" {
		add("i.topic = ?", f.Topic)
	}
	if len(f.Subtopics) > 0 {
		add("i.subtopic = ANY(?)", f.Subtopics)
	}
	if f.ReviewedOnly {
		conds = append(conds, "i.reviewed")
	}
	if f.UnseenBy != "" {
		add("NOT EXISTS (SELECT 1 FROM item_exposures x WHERE x.item_id = i.id AND x.learner_id = ?)", f.UnseenBy)
	}
	return strings.Join(conds, " AND "), args
}

func collectItems(rows pgx.Rows) ([]curriculum.Item, error) {
	defer rows.Close()

	var items []curriculum.Item
	for rows.Next() {
		var item curriculum.Item
		var options, answer []byte
		if err := rows.Scan(
			&item.ID, &item.QuizID, &item.CaseID, &item.Subcategory.ID, &item.Subcategory.Name,
			&item.Subspecialty, &item.System, &item.Topic, &item.Subtopic, &item.Subject, &item.Keywords,
			&item.Level, &item.Reviewed, &item.Question, &options, &answer,
		); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if err := json.Unmarshal(options, &item.Options); err != nil {
			return nil, fmt.Errorf("decode options for %s: %w", item.ID, err)
		}
		if err := json.Unmarshal(answer, &item.Answer); err != nil {
			return nil, fmt.Errorf("decode answer for %s: %w", item.ID, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}
