// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/runoshun/crewboard/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// Advance moves the clock forward by d.
func (m *MockClock) Advance(d time.Duration) {
	m.NowTime = m.NowTime.Add(d)
}

// Ensure mocks implement their ports.
var (
	_ domain.Store           = (*MockStore)(nil)
	_ domain.Logger          = (*MockLogger)(nil)
	_ domain.Launcher        = (*MockLauncher)(nil)
	_ domain.CommandExecutor = (*MockExecutor)(nil)
	_ domain.ResumeSink      = (*MockSink)(nil)
	_ domain.ConfigLoader    = (*MockConfigLoader)(nil)
	_ domain.ConfigManager   = (*MockConfigManager)(nil)
	_ domain.TaskLocker      = NoopLocker{}
)

// MockStore is an in-memory test double for domain.Store.
// Fields are ordered to minimize memory padding.
type MockStore struct {
	Clock       domain.Clock
	Tasks       map[string]*domain.Task
	Boards      map[string]*domain.Board
	Comments    map[string][]domain.Comment
	Sessions    map[string][]domain.SessionRecord
	GetErr      error
	ListErr     error
	CreateErr   error
	UpdateErr   error
	CommentsErr error
	SessionsErr error
	mu          sync.Mutex
	Initialized bool
}

// NewMockStore creates a new MockStore with initialized maps.
func NewMockStore() *MockStore {
	return &MockStore{
		Tasks:    make(map[string]*domain.Task),
		Boards:   make(map[string]*domain.Board),
		Comments: make(map[string][]domain.Comment),
		Sessions: make(map[string][]domain.SessionRecord),
	}
}

func (m *MockStore) now() time.Time {
	if m.Clock != nil {
		return m.Clock.Now()
	}
	return time.Now()
}

// Initialize marks the store initialized.
func (m *MockStore) Initialize(_ context.Context) error {
	m.Initialized = true
	return nil
}

// IsInitialized returns the configured value.
func (m *MockStore) IsInitialized() bool {
	return m.Initialized
}

// Close is a no-op.
func (m *MockStore) Close() error {
	return nil
}

// AddBoard stores a board directly (test setup helper).
func (m *MockStore) AddBoard(board *domain.Board) *domain.Board {
	m.mu.Lock()
	defer m.mu.Unlock()
	if board.ID == "" {
		board.ID = uuid.NewString()
	}
	m.Boards[board.ID] = board
	return board
}

// AddTask stores a task directly (test setup helper).
// Missing ID, Seq and Created are filled in.
func (m *MockStore) AddTask(task *domain.Task) *domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Seq == 0 {
		task.Seq = m.nextSeq(task.BoardID)
	}
	if task.Created.IsZero() {
		task.Created = m.now()
		task.Updated = task.Created
	}
	if task.Column == "" {
		task.Column = domain.ColumnBacklog
	}
	m.Tasks[task.ID] = task
	return task
}

// GetTask retrieves a task by ID.
func (m *MockStore) GetTask(_ context.Context, id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	task, ok := m.Tasks[id]
	if !ok {
		return nil, nil
	}
	return task, nil
}

// ListTasks returns tasks matching the filter.
func (m *MockStore) ListTasks(_ context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	tasks := make([]*domain.Task, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		if filter.BoardID != "" && t.BoardID != filter.BoardID {
			continue
		}
		if filter.Column != "" && t.Column != filter.Column {
			continue
		}
		if filter.IDPrefix != "" && !strings.HasPrefix(t.ID, filter.IDPrefix) {
			continue
		}
		if filter.TitleContains != "" &&
			!strings.Contains(strings.ToLower(t.Title), strings.ToLower(filter.TitleContains)) {
			continue
		}
		if filter.Seq != 0 && t.Seq != filter.Seq {
			continue
		}
		tasks = append(tasks, t)
	}
	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		return cmp.Or(a.Created.Compare(b.Created), cmp.Compare(a.Seq, b.Seq), cmp.Compare(a.ID, b.ID))
	})
	return tasks, nil
}

// CreateTask stores a new task.
func (m *MockStore) CreateTask(_ context.Context, task *domain.Task) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.Seq = m.nextSeq(task.BoardID)
	task.Created = m.now()
	task.Updated = task.Created
	m.Tasks[task.ID] = task
	return nil
}

// UpdateTask overwrites an existing task.
func (m *MockStore) UpdateTask(_ context.Context, task *domain.Task) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	task.Updated = m.now()
	m.Tasks[task.ID] = task
	return nil
}

// DeleteTask removes a task and its dependents.
func (m *MockStore) DeleteTask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Tasks, id)
	delete(m.Comments, id)
	delete(m.Sessions, id)
	return nil
}

func (m *MockStore) nextSeq(boardID string) int {
	maxSeq := 0
	for _, t := range m.Tasks {
		if t.BoardID == boardID && t.Seq > maxSeq {
			maxSeq = t.Seq
		}
	}
	return maxSeq + 1
}

// GetBoard retrieves a board by ID.
func (m *MockStore) GetBoard(_ context.Context, id string) (*domain.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Boards[id], nil
}

// GetBoardByPrefix retrieves a board by prefix.
func (m *MockStore) GetBoardByPrefix(_ context.Context, prefix string) (*domain.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.Boards {
		if b.Prefix == prefix {
			return b, nil
		}
	}
	return nil, nil
}

// ListBoards returns all boards ordered by prefix.
func (m *MockStore) ListBoards(_ context.Context) ([]*domain.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	boards := make([]*domain.Board, 0, len(m.Boards))
	for _, b := range m.Boards {
		boards = append(boards, b)
	}
	slices.SortFunc(boards, func(a, b *domain.Board) int {
		return strings.Compare(a.Prefix, b.Prefix)
	})
	return boards, nil
}

// CreateBoard stores a new board.
func (m *MockStore) CreateBoard(_ context.Context, board *domain.Board) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.Boards {
		if b.Prefix == board.Prefix {
			return domain.ErrBoardExists
		}
	}
	if board.ID == "" {
		board.ID = uuid.NewString()
	}
	board.Created = m.now()
	m.Boards[board.ID] = board
	return nil
}

// UpdateBoard overwrites an existing board.
func (m *MockStore) UpdateBoard(_ context.Context, board *domain.Board) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Boards[board.ID]; !ok {
		return domain.ErrBoardNotFound
	}
	m.Boards[board.ID] = board
	return nil
}

// ListComments returns the comments of a task in creation order.
func (m *MockStore) ListComments(_ context.Context, taskID string) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CommentsErr != nil {
		return nil, m.CommentsErr
	}
	return domain.SortComments(m.Comments[taskID]), nil
}

// CreateComment appends a comment.
func (m *MockStore) CreateComment(_ context.Context, comment *domain.Comment) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.Created = m.now()
	m.Comments[comment.TaskID] = append(m.Comments[comment.TaskID], *comment)
	return nil
}

// ListSessions returns the session records of a task, oldest first.
func (m *MockStore) ListSessions(_ context.Context, taskID string) ([]domain.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SessionsErr != nil {
		return nil, m.SessionsErr
	}
	return slices.Clone(m.Sessions[taskID]), nil
}

// CreateSession appends a session record.
func (m *MockStore) CreateSession(_ context.Context, record *domain.SessionRecord) error {
	if m.SessionsErr != nil {
		return m.SessionsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.Created = m.now()
	m.Sessions[record.TaskID] = append(m.Sessions[record.TaskID], *record)
	return nil
}

// UpdateSession overwrites an existing session record.
func (m *MockStore) UpdateSession(_ context.Context, record *domain.SessionRecord) error {
	if m.SessionsErr != nil {
		return m.SessionsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	records := m.Sessions[record.TaskID]
	for i := range records {
		if records[i].ID == record.ID {
			records[i] = *record
			return nil
		}
	}
	return fmt.Errorf("session %s: %w", record.ID, domain.ErrSessionNotFound)
}

// LogEntry is a recorded log line.
type LogEntry struct {
	Level    string
	TaskKey  string
	Category string
	Msg      string
}

// MockLogger records log calls.
type MockLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

// NewMockLogger creates a new MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(level, taskKey, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, LogEntry{Level: level, TaskKey: taskKey, Category: category, Msg: msg})
}

// Debug records a debug entry.
func (m *MockLogger) Debug(taskKey, category, msg string) { m.record("DEBUG", taskKey, category, msg) }

// Info records an info entry.
func (m *MockLogger) Info(taskKey, category, msg string) { m.record("INFO", taskKey, category, msg) }

// Warn records a warning entry.
func (m *MockLogger) Warn(taskKey, category, msg string) { m.record("WARN", taskKey, category, msg) }

// Error records an error entry.
func (m *MockLogger) Error(taskKey, category, msg string) { m.record("ERROR", taskKey, category, msg) }

// HasEntry returns true if an entry at level contains substr.
func (m *MockLogger) HasEntry(level, substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Entries {
		if e.Level == level && strings.Contains(e.Msg, substr) {
			return true
		}
	}
	return false
}

// MockLauncher is a test double for domain.Launcher.
type MockLauncher struct {
	LaunchErr error
	Running   map[string]bool
	Launched  []domain.LaunchOptions
	Stopped   []string
	Attached  []string
	mu        sync.Mutex
}

// NewMockLauncher creates a new MockLauncher.
func NewMockLauncher() *MockLauncher {
	return &MockLauncher{Running: make(map[string]bool)}
}

// Launch records the launch.
func (m *MockLauncher) Launch(_ context.Context, opts domain.LaunchOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LaunchErr != nil {
		return m.LaunchErr
	}
	m.Launched = append(m.Launched, opts)
	m.Running[opts.Name] = true
	return nil
}

// IsRunning returns whether name was launched.
func (m *MockLauncher) IsRunning(name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Running[name], nil
}

// Stop marks name as not running.
func (m *MockLauncher) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stopped = append(m.Stopped, name)
	delete(m.Running, name)
	return nil
}

// Attach records the attach request.
func (m *MockLauncher) Attach(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.Running[name] {
		return domain.ErrNoLaunchedSession
	}
	m.Attached = append(m.Attached, name)
	return nil
}

// LaunchCount returns the number of successful launches.
func (m *MockLauncher) LaunchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Launched)
}

// MockExecutor is a test double for domain.CommandExecutor.
type MockExecutor struct {
	Err      error
	Executed []*domain.ExecCommand
}

// ExecuteInteractive records the command.
func (m *MockExecutor) ExecuteInteractive(_ context.Context, cmd *domain.ExecCommand) error {
	m.Executed = append(m.Executed, cmd)
	return m.Err
}

// MockSink is a test double for domain.ResumeSink.
type MockSink struct {
	Err     error
	Notices []domain.ResumeNotice
	mu      sync.Mutex
}

// Surface records the notice.
func (m *MockSink) Surface(_ context.Context, notice domain.ResumeNotice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notices = append(m.Notices, notice)
	return m.Err
}

// Count returns the number of recorded notices.
func (m *MockSink) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Notices)
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config *domain.Config
	Err    error
}

// Load returns the configured config (defaults if nil).
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Config == nil {
		return domain.NewDefaultConfig(), nil
	}
	return m.Config, nil
}

// LoadGlobal returns the same as Load.
func (m *MockConfigLoader) LoadGlobal() (*domain.Config, error) {
	return m.Load()
}

// NoopLocker is a domain.TaskLocker that never blocks.
type NoopLocker struct{}

// Lock returns immediately.
func (NoopLocker) Lock(_ context.Context, _ string) (func(), error) {
	return func() {}, nil
}

// MockConfigManager is a test double for domain.ConfigManager.
// Fields are ordered to minimize memory padding.
type MockConfigManager struct {
	InitRepoErr      error
	InitGlobalErr    error
	InitConfig       *domain.Config
	RepoConfigInfo   domain.ConfigInfo
	GlobalConfigInfo domain.ConfigInfo
	InitRepoCalled   bool
	InitGlobalCalled bool
}

// NewMockConfigManager creates a new MockConfigManager.
func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		RepoConfigInfo: domain.ConfigInfo{
			Path: "/test/.git/crewboard/config.toml",
		},
		GlobalConfigInfo: domain.ConfigInfo{
			Path: "/home/test/.config/crewboard/config.toml",
		},
	}
}

// GetRepoConfigInfo returns the configured repo config info.
func (m *MockConfigManager) GetRepoConfigInfo() domain.ConfigInfo {
	return m.RepoConfigInfo
}

// GetGlobalConfigInfo returns the configured global config info.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo {
	return m.GlobalConfigInfo
}

// InitRepoConfig records the call and returns the configured error.
func (m *MockConfigManager) InitRepoConfig(cfg *domain.Config) error {
	m.InitRepoCalled = true
	m.InitConfig = cfg
	return m.InitRepoErr
}

// InitGlobalConfig records the call and returns the configured error.
func (m *MockConfigManager) InitGlobalConfig(cfg *domain.Config) error {
	m.InitGlobalCalled = true
	m.InitConfig = cfg
	return m.InitGlobalErr
}
