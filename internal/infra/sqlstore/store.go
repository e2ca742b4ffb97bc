// Package sqlstore provides a SQLite implementation of domain.Store.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/runoshun/crewboard/internal/domain"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS boards (
	id          TEXT PRIMARY KEY,
	prefix      TEXT NOT NULL UNIQUE,
	name        TEXT NOT NULL DEFAULT '',
	resume_mode TEXT NOT NULL,
	next_seq    INTEGER NOT NULL DEFAULT 1,
	created     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id            TEXT PRIMARY KEY,
	board_id      TEXT NOT NULL,
	seq           INTEGER NOT NULL,
	title         TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	column_name   TEXT NOT NULL,
	agent_session TEXT,
	created       INTEGER NOT NULL,
	updated       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_board_seq ON tasks(board_id, seq);
CREATE INDEX IF NOT EXISTS idx_tasks_column ON tasks(column_name);

CREATE TABLE IF NOT EXISTS comments (
	id          TEXT PRIMARY KEY,
	task_id     TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	content     TEXT NOT NULL,
	author_type TEXT NOT NULL,
	author_id   TEXT NOT NULL DEFAULT '',
	metadata    TEXT NOT NULL DEFAULT '{}',
	created     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comments_task ON comments(task_id, created);

CREATE TABLE IF NOT EXISTS sessions (
	id           TEXT PRIMARY KEY,
	task_id      TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	tool         TEXT NOT NULL,
	external_ref TEXT NOT NULL,
	ref_type     TEXT NOT NULL,
	working_dir  TEXT NOT NULL,
	status       TEXT NOT NULL,
	created      INTEGER NOT NULL,
	ended_at     INTEGER
);
CREATE INDEX IF NOT EXISTS idx_sessions_task ON sessions(task_id, created);
`

const taskColumns = `id, board_id, seq, title, description, column_name, agent_session, created, updated`

// Store implements domain.Store on a SQLite database file.
type Store struct {
	clock       domain.Clock
	db          *sql.DB
	path        string
	initialized atomic.Bool
}

// Ensure Store implements domain.Store.
var _ domain.Store = (*Store)(nil)

// New opens the database at path. The file is created by Initialize.
func New(path string, clock domain.Clock) (*Store, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection serializes writers inside the process;
	// busy_timeout covers other processes.
	db.SetMaxOpenConns(1)
	return &Store{db: db, clock: clock, path: path}, nil
}

// IsInitialized reports whether the database file exists with its schema.
func (s *Store) IsInitialized() bool {
	if s.initialized.Load() {
		return true
	}
	if _, err := os.Stat(s.path); err != nil {
		return false
	}
	var version int
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return false
	}
	if version < schemaVersion {
		return false
	}
	s.initialized.Store(true)
	return true
}

// Initialize creates the database file and schema if needed.
func (s *Store) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	s.initialized.Store(true)
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.IsInitialized() {
		return domain.ErrNotInitialized
	}
	return nil
}

// === Tasks ===

// GetTask retrieves a task by ID. Returns nil if not found.
func (s *Store) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query task %s: %w", id, err)
	}
	return task, nil
}

// ListTasks retrieves tasks matching the filter ordered by creation time, then sequence.
func (s *Store) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.BoardID != "" {
		where = append(where, "board_id = ?")
		args = append(args, filter.BoardID)
	}
	if filter.Column != "" {
		where = append(where, "column_name = ?")
		args = append(args, string(filter.Column))
	}
	if filter.IDPrefix != "" {
		where = append(where, "substr(id, 1, ?) = ?")
		args = append(args, len(filter.IDPrefix), filter.IDPrefix)
	}
	if filter.Seq != 0 {
		where = append(where, "seq = ?")
		args = append(args, filter.Seq)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created, seq, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// SQLite lower() folds ASCII only, so title matching happens here.
	titleNeedle := strings.ToLower(filter.TitleContains)
	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if titleNeedle != "" && !strings.Contains(strings.ToLower(task.Title), titleNeedle) {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// CreateTask stores a new task, assigning ID, Seq and timestamps.
func (s *Store) CreateTask(ctx context.Context, task *domain.Task) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	session, err := marshalSession(task.AgentSession)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		seq, err := allocateSeq(ctx, tx, task.BoardID)
		if err != nil {
			return err
		}
		if task.ID == "" {
			task.ID = uuid.NewString()
		}
		now := s.clock.Now()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			task.ID, task.BoardID, seq, task.Title, task.Description, string(task.Column),
			session, now.UnixNano(), now.UnixNano())
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		task.Seq = seq
		task.Created = toTime(now.UnixNano())
		task.Updated = task.Created
		return nil
	})
}

// allocateSeq returns the next board-scoped sequence number. Numbers are never reused.
// The counter is bumped before it is read so the transaction takes the write lock first.
func allocateSeq(ctx context.Context, tx *sql.Tx, boardID string) (int, error) {
	res, err := tx.ExecContext(ctx, `UPDATE boards SET next_seq = next_seq + 1 WHERE id = ?`, boardID)
	if err != nil {
		return 0, fmt.Errorf("bump sequence: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		var next int
		if err := tx.QueryRowContext(ctx, `SELECT next_seq FROM boards WHERE id = ?`, boardID).Scan(&next); err != nil {
			return 0, fmt.Errorf("read sequence: %w", err)
		}
		return next - 1, nil
	}

	// Tasks without a stored board fall back to the highest sequence in use
	var seq int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM tasks WHERE board_id = ?`, boardID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}
	return seq, nil
}

// UpdateTask overwrites an existing task. Identity, Seq and Created are preserved.
func (s *Store) UpdateTask(ctx context.Context, task *domain.Task) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	session, err := marshalSession(task.AgentSession)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := s.clock.Now()
		res, err := tx.ExecContext(ctx,
			`UPDATE tasks SET board_id = ?, title = ?, description = ?, column_name = ?, agent_session = ?, updated = ? WHERE id = ?`,
			task.BoardID, task.Title, task.Description, string(task.Column), session, now.UnixNano(), task.ID)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrTaskNotFound
		}

		var seq int
		var created int64
		if err := tx.QueryRowContext(ctx, `SELECT seq, created FROM tasks WHERE id = ?`, task.ID).Scan(&seq, &created); err != nil {
			return fmt.Errorf("read task: %w", err)
		}
		task.Seq = seq
		task.Created = toTime(created)
		task.Updated = toTime(now.UnixNano())
		return nil
	})
}

// DeleteTask removes a task with its comments and session history.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// === Boards ===

// GetBoard retrieves a board by ID. Returns nil if not found.
func (s *Store) GetBoard(ctx context.Context, id string) (*domain.Board, error) {
	return s.getBoard(ctx, `id = ?`, id)
}

// GetBoardByPrefix retrieves a board by display prefix. Returns nil if not found.
func (s *Store) GetBoardByPrefix(ctx context.Context, prefix string) (*domain.Board, error) {
	return s.getBoard(ctx, `prefix = ?`, prefix)
}

func (s *Store) getBoard(ctx context.Context, cond string, arg string) (*domain.Board, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT id, prefix, name, resume_mode, created FROM boards WHERE `+cond, arg)
	board, err := scanBoard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query board: %w", err)
	}
	return board, nil
}

// ListBoards returns all boards ordered by prefix.
func (s *Store) ListBoards(ctx context.Context) ([]*domain.Board, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, prefix, name, resume_mode, created FROM boards ORDER BY prefix`)
	if err != nil {
		return nil, fmt.Errorf("query boards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var boards []*domain.Board
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		boards = append(boards, board)
	}
	return boards, rows.Err()
}

// CreateBoard stores a new board. Returns domain.ErrBoardExists on duplicate prefix.
func (s *Store) CreateBoard(ctx context.Context, board *domain.Board) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if board.ID == "" {
		board.ID = uuid.NewString()
	}
	now := s.clock.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO boards (id, prefix, name, resume_mode, created) VALUES (?, ?, ?, ?, ?) ON CONFLICT(prefix) DO NOTHING`,
		board.ID, board.Prefix, board.Name, string(board.ResumeMode), now.UnixNano())
	if err != nil {
		return fmt.Errorf("insert board: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrBoardExists, board.Prefix)
	}
	board.Created = toTime(now.UnixNano())
	return nil
}

// UpdateBoard overwrites an existing board.
func (s *Store) UpdateBoard(ctx context.Context, board *domain.Board) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var other string
		err := tx.QueryRowContext(ctx, `SELECT id FROM boards WHERE prefix = ?`, board.Prefix).Scan(&other)
		if err == nil && other != board.ID {
			return fmt.Errorf("%w: %s", domain.ErrBoardExists, board.Prefix)
		}
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query board: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE boards SET prefix = ?, name = ?, resume_mode = ? WHERE id = ?`,
			board.Prefix, board.Name, string(board.ResumeMode), board.ID)
		if err != nil {
			return fmt.Errorf("update board: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrBoardNotFound
		}
		return nil
	})
}

// === Comments ===

// ListComments returns the comments of a task in creation order, ties by insertion.
func (s *Store) ListComments(ctx context.Context, taskID string) ([]domain.Comment, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task_id, content, author_type, author_id, metadata, created FROM comments WHERE task_id = ? ORDER BY created, rowid`,
		taskID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var comments []domain.Comment
	for rows.Next() {
		var (
			c        domain.Comment
			metadata string
			created  int64
		)
		if err := rows.Scan(&c.ID, &c.TaskID, &c.Content, &c.AuthorType, &c.AuthorID, &metadata, &created); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		if err := json.Unmarshal([]byte(metadata), &c.Metadata); err != nil {
			return nil, fmt.Errorf("parse comment metadata: %w", err)
		}
		c.Created = toTime(created)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// CreateComment appends a comment, assigning ID and Created.
func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	metadata, err := json.Marshal(comment.Metadata)
	if err != nil {
		return fmt.Errorf("marshal comment metadata: %w", err)
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	now := s.clock.Now()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, task_id, content, author_type, author_id, metadata, created)
		 SELECT ?, ?, ?, ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM tasks WHERE id = ?)`,
		comment.ID, comment.TaskID, comment.Content, string(comment.AuthorType), comment.AuthorID,
		string(metadata), now.UnixNano(), comment.TaskID)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrTaskNotFound
	}
	comment.Created = toTime(now.UnixNano())
	return nil
}

// === Sessions ===

// ListSessions returns the session records of a task, oldest first.
func (s *Store) ListSessions(ctx context.Context, taskID string) ([]domain.SessionRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task_id, tool, external_ref, ref_type, working_dir, status, created, ended_at
		 FROM sessions WHERE task_id = ? ORDER BY created, rowid`, taskID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []domain.SessionRecord
	for rows.Next() {
		var (
			r       domain.SessionRecord
			created int64
			ended   sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.TaskID, &r.Tool, &r.ExternalRef, &r.RefType, &r.WorkingDir, &r.Status, &created, &ended); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		r.Created = toTime(created)
		if ended.Valid {
			t := toTime(ended.Int64)
			r.EndedAt = &t
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// CreateSession appends a session record, assigning ID and Created.
func (s *Store) CreateSession(ctx context.Context, record *domain.SessionRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := s.clock.Now()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, task_id, tool, external_ref, ref_type, working_dir, status, created, ended_at)
		 SELECT ?, ?, ?, ?, ?, ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM tasks WHERE id = ?)`,
		record.ID, record.TaskID, string(record.Tool), record.ExternalRef, string(record.RefType),
		record.WorkingDir, string(record.Status), now.UnixNano(), nullTime(record.EndedAt), record.TaskID)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrTaskNotFound
	}
	record.Created = toTime(now.UnixNano())
	return nil
}

// UpdateSession overwrites the status fields of an existing record.
func (s *Store) UpdateSession(ctx context.Context, record *domain.SessionRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = ?, ended_at = ? WHERE id = ?`,
		string(record.Status), nullTime(record.EndedAt), record.ID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, record.ID)
	}
	return nil
}

// === Helpers ===

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t                domain.Task
		session          sql.NullString
		created, updated int64
	)
	if err := row.Scan(&t.ID, &t.BoardID, &t.Seq, &t.Title, &t.Description, &t.Column, &session, &created, &updated); err != nil {
		return nil, err
	}
	if session.Valid && session.String != "" {
		var as domain.AgentSession
		if err := json.Unmarshal([]byte(session.String), &as); err != nil {
			return nil, fmt.Errorf("parse agent session: %w", err)
		}
		t.AgentSession = &as
	}
	t.Created = toTime(created)
	t.Updated = toTime(updated)
	return &t, nil
}

func scanBoard(row rowScanner) (*domain.Board, error) {
	var (
		b       domain.Board
		created int64
	)
	if err := row.Scan(&b.ID, &b.Prefix, &b.Name, &b.ResumeMode, &created); err != nil {
		return nil, err
	}
	b.Created = toTime(created)
	return &b, nil
}

func marshalSession(session *domain.AgentSession) (sql.NullString, error) {
	if session == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(session)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal agent session: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func toTime(nanos int64) time.Time {
	return time.Unix(0, nanos).UTC()
}
