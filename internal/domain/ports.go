package domain

import (
	"context"
	"time"
)

// StoreInitializer initializes the data store.
type StoreInitializer interface {
	// Initialize creates the store if it doesn't exist.
	Initialize(ctx context.Context) error

	// IsInitialized reports whether the store exists.
	IsInitialized() bool
}

// TaskRepository manages task persistence.
type TaskRepository interface {
	// GetTask retrieves a task by ID. Returns nil if not found.
	GetTask(ctx context.Context, id string) (*Task, error)

	// ListTasks retrieves tasks matching the filter,
	// ordered by creation time, then sequence number.
	ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, error)

	// CreateTask stores a new task.
	// The store assigns ID (if empty), Seq, Created and Updated.
	CreateTask(ctx context.Context, task *Task) error

	// UpdateTask overwrites an existing task and assigns Updated.
	// Returns ErrTaskNotFound if the task does not exist.
	UpdateTask(ctx context.Context, task *Task) error

	// DeleteTask removes a task together with its comments and session history.
	DeleteTask(ctx context.Context, id string) error
}

// TaskFilter specifies criteria for listing tasks.
// Zero values mean "no constraint"; all set fields must match.
type TaskFilter struct {
	BoardID       string // Owning board
	Column        Column // Current column
	IDPrefix      string // Identity starts with this string
	TitleContains string // Title contains this string, case-insensitively
	Seq           int    // Board-scoped sequence number
}

// BoardRepository manages board persistence.
type BoardRepository interface {
	// GetBoard retrieves a board by ID. Returns nil if not found.
	GetBoard(ctx context.Context, id string) (*Board, error)

	// GetBoardByPrefix retrieves a board by display prefix. Returns nil if not found.
	GetBoardByPrefix(ctx context.Context, prefix string) (*Board, error)

	// ListBoards returns all boards ordered by prefix.
	ListBoards(ctx context.Context) ([]*Board, error)

	// CreateBoard stores a new board. Returns ErrBoardExists on duplicate prefix.
	CreateBoard(ctx context.Context, board *Board) error

	// UpdateBoard overwrites an existing board.
	UpdateBoard(ctx context.Context, board *Board) error
}

// CommentRepository manages the append-only comment threads.
type CommentRepository interface {
	// ListComments returns the comments of a task in creation order,
	// ties broken by insertion order.
	ListComments(ctx context.Context, taskID string) ([]Comment, error)

	// CreateComment appends a comment. The store assigns ID (if empty) and Created.
	CreateComment(ctx context.Context, comment *Comment) error
}

// SessionRepository manages the session history log.
type SessionRepository interface {
	// ListSessions returns the session records of a task, oldest first.
	ListSessions(ctx context.Context, taskID string) ([]SessionRecord, error)

	// CreateSession appends a record. The store assigns ID (if empty) and Created.
	CreateSession(ctx context.Context, record *SessionRecord) error

	// UpdateSession overwrites the status fields of an existing record.
	UpdateSession(ctx context.Context, record *SessionRecord) error
}

// Store is the record store collaborator.
type Store interface {
	StoreInitializer
	TaskRepository
	BoardRepository
	CommentRepository
	SessionRepository

	// Close releases the underlying resources.
	Close() error
}

// CommentCreated is published after a comment has been committed.
type CommentCreated struct {
	Comment Comment
}

// CommentHandler reacts to a committed comment.
type CommentHandler func(ctx context.Context, evt CommentCreated) error

// CommentPublisher publishes CommentCreated events.
type CommentPublisher interface {
	Publish(ctx context.Context, evt CommentCreated) error
}

// TaskLocker serializes work on a single task.
type TaskLocker interface {
	// Lock blocks until the task lock is held or ctx is done.
	// The returned function releases the lock.
	Lock(ctx context.Context, taskID string) (func(), error)
}

// ResumeStrategy renders the resume command for one tool.
type ResumeStrategy interface {
	// Tool returns the tool this strategy handles.
	Tool() Tool

	// RenderCommand returns a shell-ready command re-attaching the session.
	RenderCommand(target ResumeTarget) (string, error)
}

// ResumeNotice reports a fired hand-back.
// Fields are ordered to minimize memory padding.
type ResumeNotice struct {
	Task        *Task
	Result      *ResumeResult
	Decision    TriggerDecision
	DisplayID   string
	SessionName string // Launcher session name (set when Executed)
	Note        string // Why an execute decision was only surfaced
	Executed    bool
}

// ResumeSink receives resume commands that were surfaced or executed.
type ResumeSink interface {
	Surface(ctx context.Context, notice ResumeNotice) error
}

// LaunchOptions configures a detached launch of a resume command.
type LaunchOptions struct {
	Name    string // Session name
	Dir     string // Working directory
	Command string // Shell command to run
}

// Launcher starts resume commands in the background.
type Launcher interface {
	// Launch starts the command detached from the caller.
	Launch(ctx context.Context, opts LaunchOptions) error

	// IsRunning checks if a launched session is still running.
	IsRunning(name string) (bool, error)

	// Stop terminates a launched session. Missing sessions are ignored.
	Stop(name string) error

	// Attach connects the terminal to a launched session.
	Attach(name string) error
}

// CommandExecutor runs external commands.
type CommandExecutor interface {
	// ExecuteInteractive runs a command attached to the terminal.
	ExecuteInteractive(ctx context.Context, cmd *ExecCommand) error
}

// Logger writes operational logs, optionally scoped to a task.
// An empty taskKey logs globally only.
type Logger interface {
	Debug(taskKey, category, msg string)
	Info(taskKey, category, msg string)
	Warn(taskKey, category, msg string)
	Error(taskKey, category, msg string)
}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (defaults + global + repo).
	Load() (*Config, error)

	// LoadGlobal returns only the global configuration.
	LoadGlobal() (*Config, error)
}

// ConfigManager manages configuration files.
type ConfigManager interface {
	// GetRepoConfigInfo returns information about the repository config file.
	GetRepoConfigInfo() ConfigInfo

	// GetGlobalConfigInfo returns information about the global config file.
	GetGlobalConfigInfo() ConfigInfo

	// InitRepoConfig creates a repository config file from the template.
	InitRepoConfig(cfg *Config) error

	// InitGlobalConfig creates a global config file from the template.
	InitGlobalConfig(cfg *Config) error
}

// ConfigInfo describes a configuration file.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
