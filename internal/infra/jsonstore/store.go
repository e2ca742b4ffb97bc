// Package jsonstore provides a JSON file-based implementation of domain.Store.
package jsonstore

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/runoshun/crewboard/internal/domain"
)

// storeData represents the JSON file structure.
// Fields are ordered to minimize memory padding.
type storeData struct {
	Tasks    map[string]*domain.Task           `json:"tasks"`
	Boards   map[string]*domain.Board          `json:"boards"`
	Comments map[string][]domain.Comment       `json:"comments"`
	Sessions map[string][]domain.SessionRecord `json:"sessions"`
	Meta     meta                              `json:"meta"`
}

// meta contains store metadata.
type meta struct {
	NextSeq map[string]int `json:"nextSeq"` // Next sequence number per board
	Version int            `json:"version"`
}

const storeVersion = 1

// Store implements domain.Store using a JSON file guarded by an advisory lock.
type Store struct {
	clock    domain.Clock
	path     string
	lockPath string
}

// Ensure Store implements domain.Store.
var _ domain.Store = (*Store)(nil)

// New creates a new Store for the given file path.
// The file does not need to exist until Initialize is called.
func New(path string, clock domain.Clock) *Store {
	return &Store{
		clock:    clock,
		path:     path,
		lockPath: path + ".lock",
	}
}

// IsInitialized checks if the store file exists.
func (s *Store) IsInitialized() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Initialize creates an empty store file if it doesn't exist.
func (s *Store) Initialize(_ context.Context) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	lock, err := s.acquireLock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	if _, err := os.Stat(s.path); err == nil {
		return nil // Already exists
	}
	return s.write(newStoreData())
}

// Close is a no-op; the file is opened per operation.
func (s *Store) Close() error {
	return nil
}

func newStoreData() *storeData {
	return &storeData{
		Tasks:    make(map[string]*domain.Task),
		Boards:   make(map[string]*domain.Board),
		Comments: make(map[string][]domain.Comment),
		Sessions: make(map[string][]domain.SessionRecord),
		Meta:     meta{Version: storeVersion, NextSeq: make(map[string]int)},
	}
}

// === Tasks ===

// GetTask retrieves a task by ID. Returns nil if not found.
func (s *Store) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var task *domain.Task
	err := s.withLock(ctx, func(data *storeData) error {
		task = data.Tasks[id]
		return nil
	})
	return task, err
}

// ListTasks retrieves tasks matching the filter ordered by creation time, then sequence.
func (s *Store) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := s.withLock(ctx, func(data *storeData) error {
		titleNeedle := strings.ToLower(filter.TitleContains)
		for _, t := range data.Tasks {
			if filter.BoardID != "" && t.BoardID != filter.BoardID {
				continue
			}
			if filter.Column != "" && t.Column != filter.Column {
				continue
			}
			if filter.IDPrefix != "" && !strings.HasPrefix(t.ID, filter.IDPrefix) {
				continue
			}
			if titleNeedle != "" && !strings.Contains(strings.ToLower(t.Title), titleNeedle) {
				continue
			}
			if filter.Seq != 0 && t.Seq != filter.Seq {
				continue
			}
			tasks = append(tasks, t)
		}
		return nil
	})

	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		return cmp.Or(a.Created.Compare(b.Created), cmp.Compare(a.Seq, b.Seq), strings.Compare(a.ID, b.ID))
	})
	return tasks, err
}

// CreateTask stores a new task, assigning ID, Seq and timestamps.
func (s *Store) CreateTask(ctx context.Context, task *domain.Task) error {
	return s.withLockWrite(ctx, func(data *storeData) error {
		if task.ID == "" {
			task.ID = uuid.NewString()
		}
		if _, exists := data.Tasks[task.ID]; exists {
			return fmt.Errorf("task %s already exists", task.ID)
		}
		task.Seq = nextSeq(data, task.BoardID)
		task.Created = s.clock.Now()
		task.Updated = task.Created
		data.Tasks[task.ID] = task
		return nil
	})
}

// UpdateTask overwrites an existing task. Identity, Seq and Created are preserved.
func (s *Store) UpdateTask(ctx context.Context, task *domain.Task) error {
	return s.withLockWrite(ctx, func(data *storeData) error {
		existing, ok := data.Tasks[task.ID]
		if !ok {
			return domain.ErrTaskNotFound
		}
		task.Seq = existing.Seq
		task.Created = existing.Created
		task.Updated = s.clock.Now()
		data.Tasks[task.ID] = task
		return nil
	})
}

// DeleteTask removes a task with its comments and session history.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return s.withLockWrite(ctx, func(data *storeData) error {
		delete(data.Tasks, id)
		delete(data.Comments, id)
		delete(data.Sessions, id)
		return nil
	})
}

// nextSeq returns the next board-scoped sequence number. Numbers are never reused.
func nextSeq(data *storeData, boardID string) int {
	seq := data.Meta.NextSeq[boardID]
	if seq == 0 {
		seq = 1
		for _, t := range data.Tasks {
			if t.BoardID == boardID && t.Seq >= seq {
				seq = t.Seq + 1
			}
		}
	}
	data.Meta.NextSeq[boardID] = seq + 1
	return seq
}

// === Boards ===

// GetBoard retrieves a board by ID. Returns nil if not found.
func (s *Store) GetBoard(ctx context.Context, id string) (*domain.Board, error) {
	var board *domain.Board
	err := s.withLock(ctx, func(data *storeData) error {
		board = data.Boards[id]
		return nil
	})
	return board, err
}

// GetBoardByPrefix retrieves a board by display prefix. Returns nil if not found.
func (s *Store) GetBoardByPrefix(ctx context.Context, prefix string) (*domain.Board, error) {
	var board *domain.Board
	err := s.withLock(ctx, func(data *storeData) error {
		board = findBoard(data, prefix)
		return nil
	})
	return board, err
}

func findBoard(data *storeData, prefix string) *domain.Board {
	for _, b := range data.Boards {
		if b.Prefix == prefix {
			return b
		}
	}
	return nil
}

// ListBoards returns all boards ordered by prefix.
func (s *Store) ListBoards(ctx context.Context) ([]*domain.Board, error) {
	var boards []*domain.Board
	err := s.withLock(ctx, func(data *storeData) error {
		for _, b := range data.Boards {
			boards = append(boards, b)
		}
		return nil
	})
	slices.SortFunc(boards, func(a, b *domain.Board) int {
		return strings.Compare(a.Prefix, b.Prefix)
	})
	return boards, err
}

// CreateBoard stores a new board. Returns domain.ErrBoardExists on duplicate prefix.
func (s *Store) CreateBoard(ctx context.Context, board *domain.Board) error {
	return s.withLockWrite(ctx, func(data *storeData) error {
		if findBoard(data, board.Prefix) != nil {
			return fmt.Errorf("%w: %s", domain.ErrBoardExists, board.Prefix)
		}
		if board.ID == "" {
			board.ID = uuid.NewString()
		}
		board.Created = s.clock.Now()
		data.Boards[board.ID] = board
		return nil
	})
}

// UpdateBoard overwrites an existing board.
func (s *Store) UpdateBoard(ctx context.Context, board *domain.Board) error {
	return s.withLockWrite(ctx, func(data *storeData) error {
		existing, ok := data.Boards[board.ID]
		if !ok {
			return domain.ErrBoardNotFound
		}
		if other := findBoard(data, board.Prefix); other != nil && other.ID != board.ID {
			return fmt.Errorf("%w: %s", domain.ErrBoardExists, board.Prefix)
		}
		board.Created = existing.Created
		data.Boards[board.ID] = board
		return nil
	})
}

// === Comments ===

// ListComments returns the comments of a task in creation order.
func (s *Store) ListComments(ctx context.Context, taskID string) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := s.withLock(ctx, func(data *storeData) error {
		comments = domain.SortComments(data.Comments[taskID])
		return nil
	})
	return comments, err
}

// CreateComment appends a comment, assigning ID and Created.
func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) error {
	return s.withLockWrite(ctx, func(data *storeData) error {
		if _, ok := data.Tasks[comment.TaskID]; !ok {
			return domain.ErrTaskNotFound
		}
		if comment.ID == "" {
			comment.ID = uuid.NewString()
		}
		comment.Created = s.clock.Now()
		data.Comments[comment.TaskID] = append(data.Comments[comment.TaskID], *comment)
		return nil
	})
}

// === Sessions ===

// ListSessions returns the session records of a task, oldest first.
func (s *Store) ListSessions(ctx context.Context, taskID string) ([]domain.SessionRecord, error) {
	var records []domain.SessionRecord
	err := s.withLock(ctx, func(data *storeData) error {
		records = slices.Clone(data.Sessions[taskID])
		return nil
	})
	return records, err
}

// CreateSession appends a session record, assigning ID and Created.
func (s *Store) CreateSession(ctx context.Context, record *domain.SessionRecord) error {
	return s.withLockWrite(ctx, func(data *storeData) error {
		if _, ok := data.Tasks[record.TaskID]; !ok {
			return domain.ErrTaskNotFound
		}
		if record.ID == "" {
			record.ID = uuid.NewString()
		}
		record.Created = s.clock.Now()
		data.Sessions[record.TaskID] = append(data.Sessions[record.TaskID], *record)
		return nil
	})
}

// UpdateSession overwrites the status fields of an existing record.
func (s *Store) UpdateSession(ctx context.Context, record *domain.SessionRecord) error {
	return s.withLockWrite(ctx, func(data *storeData) error {
		records := data.Sessions[record.TaskID]
		for i := range records {
			if records[i].ID != record.ID {
				continue
			}
			records[i].Status = record.Status
			records[i].EndedAt = record.EndedAt
			return nil
		}
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, record.ID)
	})
}

// === File access ===

// withLock executes fn with a shared (read) lock.
func (s *Store) withLock(ctx context.Context, fn func(*storeData) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock, err := s.acquireLock(syscall.LOCK_SH)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}
	return fn(data)
}

// withLockWrite executes fn with an exclusive (write) lock and writes the result.
func (s *Store) withLockWrite(ctx context.Context, fn func(*storeData) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock, err := s.acquireLock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(data); err != nil {
		return err
	}
	return s.write(data)
}

func (s *Store) acquireLock(lockType int) (*os.File, error) {
	dir := filepath.Dir(s.lockPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

func (s *Store) read() (*storeData, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotInitialized
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	data := newStoreData()
	if err := json.Unmarshal(content, data); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}

	// Ensure maps are initialized
	if data.Tasks == nil {
		data.Tasks = make(map[string]*domain.Task)
	}
	if data.Boards == nil {
		data.Boards = make(map[string]*domain.Board)
	}
	if data.Comments == nil {
		data.Comments = make(map[string][]domain.Comment)
	}
	if data.Sessions == nil {
		data.Sessions = make(map[string][]domain.SessionRecord)
	}
	if data.Meta.NextSeq == nil {
		data.Meta.NextSeq = make(map[string]int)
	}
	return data, nil
}

func (s *Store) write(data *storeData) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store data: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
