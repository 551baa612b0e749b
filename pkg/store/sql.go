package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/snow-ghost/interviewer/core"
)

// SQLStore implements core.SessionStore on sqlite3 or postgres. Sessions and
// reports are kept as JSON documents next to the columns queries filter on.
type SQLStore struct {
	db *sqlx.DB
}

var _ core.SessionStore = (*SQLStore)(nil)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		candidate_name TEXT NOT NULL,
		phase TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		data TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS turns (
		session_id TEXT NOT NULL REFERENCES sessions(id),
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		phase TEXT NOT NULL,
		text TEXT NOT NULL,
		question TEXT,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (session_id, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS evaluations (
		session_id TEXT PRIMARY KEY REFERENCES sessions(id),
		final_score REAL NOT NULL,
		performance_level TEXT NOT NULL,
		report TEXT NOT NULL,
		generated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_completed ON sessions(completed)`,
}

// NewSQLStore connects with driver ("sqlite3" or "postgres") and creates the
// schema if needed.
func NewSQLStore(driver, dsn string) (*SQLStore, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite3" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	s := &SQLStore{db: db}
	if err := s.initializeSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) initializeSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

type turnRow struct {
	Seq       int            `db:"seq"`
	Role      string         `db:"role"`
	Phase     string         `db:"phase"`
	Text      string         `db:"text"`
	Question  sql.NullString `db:"question"`
	CreatedAt time.Time      `db:"created_at"`
}

func (s *SQLStore) CreateSession(ctx context.Context, sess core.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	query := s.db.Rebind(`
		INSERT INTO sessions (id, candidate_name, phase, completed, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err = s.db.ExecContext(ctx, query,
		sess.ID, sess.Profile.Name, string(sess.Phase), sess.Complete(), string(data), sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *SQLStore) SaveSession(ctx context.Context, sess core.Session) error {
	return saveSession(ctx, s.db, sess)
}

func saveSession(ctx context.Context, ext sqlx.ExtContext, sess core.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	query := ext.Rebind(`UPDATE sessions SET phase = ?, completed = ?, data = ?, updated_at = ? WHERE id = ?`)
	res, err := ext.ExecContext(ctx, query, string(sess.Phase), sess.Complete(), string(data), sess.UpdatedAt, sess.ID)
	if err != nil {
		return fmt.Errorf("update session %s: %w", sess.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, sess.ID)
	}
	return nil
}

func (s *SQLStore) LoadSession(ctx context.Context, id string) (core.Session, error) {
	var data string
	err := s.db.GetContext(ctx, &data, s.db.Rebind(`SELECT data FROM sessions WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Session{}, fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	if err != nil {
		return core.Session{}, fmt.Errorf("load session %s: %w", id, err)
	}

	var sess core.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return core.Session{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return sess, nil
}

func (s *SQLStore) AppendTurn(ctx context.Context, sessionID string, turn core.Turn) error {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, s.db.Rebind(`SELECT COUNT(*) > 0 FROM sessions WHERE id = ?`), sessionID); err != nil {
		return fmt.Errorf("check session %s: %w", sessionID, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, sessionID)
	}
	return insertTurn(ctx, s.db, sessionID, turn)
}

// CommitTurn updates the session and inserts turns in one transaction.
func (s *SQLStore) CommitTurn(ctx context.Context, sess core.Session, turns ...core.Turn) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveSession(ctx, tx, sess); err != nil {
		return err
	}
	for _, turn := range turns {
		if err := insertTurn(ctx, tx, sess.ID, turn); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit turn of session %s: %w", sess.ID, err)
	}
	return nil
}

func insertTurn(ctx context.Context, ext sqlx.ExtContext, sessionID string, turn core.Turn) error {
	var question sql.NullString
	if turn.Question != nil {
		b, err := json.Marshal(turn.Question)
		if err != nil {
			return fmt.Errorf("encode question: %w", err)
		}
		question = sql.NullString{String: string(b), Valid: true}
	}

	query := ext.Rebind(`
		INSERT INTO turns (session_id, seq, role, phase, text, question, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := ext.ExecContext(ctx, query,
		sessionID, turn.Seq, string(turn.Role), string(turn.Phase), turn.Text, question, turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert turn %d of session %s: %w", turn.Seq, sessionID, err)
	}
	return nil
}

func (s *SQLStore) Turns(ctx context.Context, sessionID string) ([]core.Turn, error) {
	var rows []turnRow
	query := s.db.Rebind(`
		SELECT seq, role, phase, text, question, created_at
		FROM turns WHERE session_id = ? ORDER BY seq`)
	if err := s.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("load turns of session %s: %w", sessionID, err)
	}

	turns := make([]core.Turn, 0, len(rows))
	for _, r := range rows {
		t := core.Turn{
			Seq:       r.Seq,
			Role:      core.Role(r.Role),
			Phase:     core.Phase(r.Phase),
			Text:      r.Text,
			CreatedAt: r.CreatedAt,
		}
		if r.Question.Valid {
			var q core.QuestionRef
			if err := json.Unmarshal([]byte(r.Question.String), &q); err != nil {
				return nil, fmt.Errorf("decode question of turn %d: %w", r.Seq, err)
			}
			t.Question = &q
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// SaveEvaluation inserts or replaces the report for its session.
func (s *SQLStore) SaveEvaluation(ctx context.Context, report core.EvaluationReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	query := s.db.Rebind(`
		INSERT INTO evaluations (session_id, final_score, performance_level, report, generated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			final_score = excluded.final_score,
			performance_level = excluded.performance_level,
			report = excluded.report,
			generated_at = excluded.generated_at`)
	_, err = s.db.ExecContext(ctx, query,
		report.SessionID, report.FinalScore, report.PerformanceLevel, string(data), report.GeneratedAt)
	if err != nil {
		return fmt.Errorf("save evaluation of session %s: %w", report.SessionID, err)
	}
	return nil
}

func (s *SQLStore) LoadEvaluation(ctx context.Context, sessionID string) (core.EvaluationReport, error) {
	var data string
	err := s.db.GetContext(ctx, &data, s.db.Rebind(`SELECT report FROM evaluations WHERE session_id = ?`), sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.EvaluationReport{}, fmt.Errorf("%w: %s", core.ErrReportNotReady, sessionID)
	}
	if err != nil {
		return core.EvaluationReport{}, fmt.Errorf("load evaluation of session %s: %w", sessionID, err)
	}

	var report core.EvaluationReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return core.EvaluationReport{}, fmt.Errorf("decode evaluation of session %s: %w", sessionID, err)
	}
	return report, nil
}

func (s *SQLStore) PendingEvaluations(ctx context.Context) ([]string, error) {
	var ids []string
	query := s.db.Rebind(`
		SELECT s.id FROM sessions s
		LEFT JOIN evaluations e ON e.session_id = s.id
		WHERE s.completed = ? AND e.session_id IS NULL
		ORDER BY s.id`)
	if err := s.db.SelectContext(ctx, &ids, query, true); err != nil {
		return nil, fmt.Errorf("list pending evaluations: %w", err)
	}
	return ids, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
