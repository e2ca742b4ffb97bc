// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/infra/agenttool"
	"github.com/runoshun/crewboard/internal/infra/config"
	"github.com/runoshun/crewboard/internal/infra/eventbus"
	"github.com/runoshun/crewboard/internal/infra/executor"
	"github.com/runoshun/crewboard/internal/infra/jsonstore"
	"github.com/runoshun/crewboard/internal/infra/logging"
	"github.com/runoshun/crewboard/internal/infra/repo"
	"github.com/runoshun/crewboard/internal/infra/sqlstore"
	"github.com/runoshun/crewboard/internal/infra/tasklock"
	"github.com/runoshun/crewboard/internal/infra/tmux"
	"github.com/runoshun/crewboard/internal/usecase"
	"github.com/runoshun/crewboard/internal/usecase/shared"
)

// Config holds the application paths.
type Config struct {
	RepoRoot   string // Root directory of the git repository
	WorkingDir string // Root of the current worktree
	GitDir     string // Path to the common .git directory
	DataDir    string // Path to .git/crewboard
	StorePath  string // Path to the record store file
	SocketPath string // Path to the tmux socket
	LocksDir   string // Path to the per-task lock files
}

// newConfig derives the application paths from the detected repository.
func newConfig(info *repo.Info, appConfig *domain.Config) Config {
	dataDir := info.DataDir()
	return Config{
		RepoRoot:   info.Root,
		WorkingDir: info.WorkingDir,
		GitDir:     info.GitDir,
		DataDir:    dataDir,
		StorePath:  appConfig.StorePath(dataDir),
		SocketPath: filepath.Join(dataDir, "tmux.sock"),
		LocksDir:   domain.LocksDir(dataDir),
	}
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Store         domain.Store
	Clock         domain.Clock
	Launcher      domain.Launcher // nil when launching is disabled
	Executor      domain.CommandExecutor
	Locker        domain.TaskLocker
	Logger        domain.Logger
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager

	// Sink receives hand-back notices. The CLI points it at its output.
	Sink domain.ResumeSink

	// Pointer fields
	AppConfig *domain.Config
	bus       *eventbus.Bus
	builder   *shared.ResumeBuilder
	closers   []func() error

	// Configuration
	Config Config
}

// New creates a new Container by detecting the git repository from the given directory.
func New(dir string) (*Container, error) {
	info, err := repo.Detect(dir)
	if err != nil {
		return nil, err
	}
	dataDir := info.DataDir()

	configLoader := config.NewLoader(dataDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		// Fall back to defaults; the warning is shown on every command.
		appConfig = domain.NewDefaultConfig()
		appConfig.Warnings = append(appConfig.Warnings, "using default config: "+err.Error())
	}
	cfg := newConfig(info, appConfig)

	clock := domain.RealClock{}
	store, err := openStore(appConfig.Store.Driver, cfg.StorePath, clock)
	if err != nil {
		return nil, err
	}

	logger := logging.New(dataDir, logging.ParseLevel(appConfig.Log.Level))

	var launcher domain.Launcher
	if appConfig.Resume.Launcher != domain.LauncherNone {
		launcher = tmux.NewClient(cfg.SocketPath)
	}

	c := &Container{
		Store:         store,
		Clock:         clock,
		Launcher:      launcher,
		Executor:      executor.NewClient(),
		Locker:        tasklock.New(cfg.LocksDir),
		Logger:        logger,
		ConfigLoader:  configLoader,
		ConfigManager: config.NewManager(dataDir),
		AppConfig:     appConfig,
		Config:        cfg,
		closers:       []func() error{store.Close, logger.Close},
	}
	if err := c.wire(appConfig.Resume.QueueSize); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Deps holds the ports of a container built by NewWithDeps.
// Nil fields get in-process defaults.
type Deps struct {
	Store    domain.Store
	Clock    domain.Clock
	Launcher domain.Launcher
	Executor domain.CommandExecutor
	Locker   domain.TaskLocker
	Logger   domain.Logger
	Sink     domain.ResumeSink
	Loader   domain.ConfigLoader
	Manager  domain.ConfigManager
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, appConfig *domain.Config, deps Deps) (*Container, error) {
	if appConfig == nil {
		appConfig = domain.NewDefaultConfig()
	}
	c := &Container{
		Store:         deps.Store,
		Clock:         deps.Clock,
		Launcher:      deps.Launcher,
		Executor:      deps.Executor,
		Locker:        deps.Locker,
		Logger:        deps.Logger,
		Sink:          deps.Sink,
		ConfigLoader:  deps.Loader,
		ConfigManager: deps.Manager,
		AppConfig:     appConfig,
		Config:        cfg,
	}
	if c.Clock == nil {
		c.Clock = domain.RealClock{}
	}
	if c.Locker == nil {
		c.Locker = tasklock.New(cfg.LocksDir)
	}
	if c.Logger == nil {
		c.Logger = logging.New("", logging.ParseLevel(appConfig.Log.Level))
	}
	if err := c.wire(appConfig.Resume.QueueSize); err != nil {
		return nil, err
	}
	return c, nil
}

// wire builds the resume builder and subscribes the hand-back to comment events.
func (c *Container) wire(queueSize int) error {
	strategies, err := agenttool.Strategies(c.AppConfig)
	if err != nil {
		return err
	}
	c.builder = shared.NewResumeBuilder(strategies...)

	c.bus = eventbus.New(queueSize, c.Logger)
	c.bus.Subscribe(func(ctx context.Context, evt domain.CommentCreated) error {
		return c.HandBackUseCase().Handle(ctx, evt)
	})
	// The bus drains queued events before the store closes.
	c.closers = append([]func() error{c.bus.Close}, c.closers...)
	return nil
}

// openStore opens the record store for the configured driver.
func openStore(driver, path string, clock domain.Clock) (domain.Store, error) {
	switch driver {
	case "", domain.StoreDriverSQLite:
		return sqlstore.New(path, clock)
	case domain.StoreDriverJSON:
		return jsonstore.New(path, clock), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q (want %q or %q)", driver, domain.StoreDriverSQLite, domain.StoreDriverJSON)
	}
}

// Close drains the event bus and releases the store and log files.
func (c *Container) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Shared services

// Resolver returns the reference resolver.
func (c *Container) Resolver() *shared.Resolver {
	return shared.NewResolver(c.Store, c.Store)
}

// Registry returns the session registry.
func (c *Container) Registry() *shared.SessionRegistry {
	return shared.NewSessionRegistry(c.Store, c.Store, c.Clock)
}

// Publisher returns the comment event publisher.
func (c *Container) Publisher() domain.CommentPublisher {
	return c.bus
}

// UseCase factory methods

// InitStoreUseCase returns a new InitStore use case.
func (c *Container) InitStoreUseCase() *usecase.InitStore {
	return usecase.NewInitStore(c.Store, c.Store, c.Logger)
}

// CreateBoardUseCase returns a new CreateBoard use case.
func (c *Container) CreateBoardUseCase() *usecase.CreateBoard {
	return usecase.NewCreateBoard(c.Store, c.Logger, c.AppConfig.Boards.DefaultResumeMode)
}

// ListBoardsUseCase returns a new ListBoards use case.
func (c *Container) ListBoardsUseCase() *usecase.ListBoards {
	return usecase.NewListBoards(c.Store, c.Store)
}

// SetResumeModeUseCase returns a new SetResumeMode use case.
func (c *Container) SetResumeModeUseCase() *usecase.SetResumeMode {
	return usecase.NewSetResumeMode(c.Store, c.Logger)
}

// NewTaskUseCase returns a new NewTask use case.
func (c *Container) NewTaskUseCase() *usecase.NewTask {
	return usecase.NewNewTask(c.Store, c.Store, c.Logger, c.AppConfig.Boards.Default)
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.Store, c.Store)
}

// ShowTaskUseCase returns a new ShowTask use case.
func (c *Container) ShowTaskUseCase() *usecase.ShowTask {
	return usecase.NewShowTask(c.Resolver(), c.Registry(), c.Store, c.Store)
}

// MoveTaskUseCase returns a new MoveTask use case.
func (c *Container) MoveTaskUseCase() *usecase.MoveTask {
	return usecase.NewMoveTask(c.Resolver(), c.Registry(), c.Store, c.Store, c.Locker, c.Logger)
}

// DeleteTaskUseCase returns a new DeleteTask use case.
func (c *Container) DeleteTaskUseCase() *usecase.DeleteTask {
	return usecase.NewDeleteTask(c.Resolver(), c.Store, c.Store, c.Launcher, c.Locker, c.Logger)
}

// AddCommentUseCase returns a new AddComment use case.
// Committed comments are published to the hand-back.
func (c *Container) AddCommentUseCase() *usecase.AddComment {
	return usecase.NewAddComment(c.Resolver(), c.Store, c.Store, c.Publisher(), c.Logger)
}

// HandBackUseCase returns a new HandBack use case bound to the current sink.
func (c *Container) HandBackUseCase() *usecase.HandBack {
	sink := c.Sink
	if sink == nil {
		sink = logSink{logger: c.Logger}
	}
	return usecase.NewHandBack(
		shared.NewMentionTrigger(c.Store, c.Store),
		c.builder,
		c.Registry(),
		c.Store,
		c.Launcher,
		sink,
		c.Locker,
		c.Logger,
	)
}

// LinkSessionUseCase returns a new LinkSession use case.
func (c *Container) LinkSessionUseCase() *usecase.LinkSession {
	return usecase.NewLinkSession(c.Resolver(), c.Registry(), c.Store, c.Store, c.Locker, c.Logger)
}

// UnlinkSessionUseCase returns a new UnlinkSession use case.
func (c *Container) UnlinkSessionUseCase() *usecase.UnlinkSession {
	return usecase.NewUnlinkSession(c.Resolver(), c.Registry(), c.Store, c.Store, c.Locker, c.Logger)
}

// SessionHistoryUseCase returns a new SessionHistory use case.
func (c *Container) SessionHistoryUseCase() *usecase.SessionHistory {
	return usecase.NewSessionHistory(c.Resolver(), c.Registry(), c.Store)
}

// ResumeTaskUseCase returns a new ResumeTask use case.
func (c *Container) ResumeTaskUseCase() *usecase.ResumeTask {
	return usecase.NewResumeTask(
		c.Resolver(),
		c.builder,
		c.Registry(),
		c.Store,
		c.Store,
		c.Store,
		c.Executor,
		c.Locker,
		c.Logger,
	)
}

// ResolveReferenceUseCase returns a new ResolveReference use case.
func (c *Container) ResolveReferenceUseCase() *usecase.ResolveReference {
	return usecase.NewResolveReference(c.Resolver(), c.Store)
}

// AttachSessionUseCase returns a new AttachSession use case.
func (c *Container) AttachSessionUseCase() *usecase.AttachSession {
	return usecase.NewAttachSession(c.Resolver(), c.Store, c.Launcher)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.ConfigLoader)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}

// logSink records hand-back notices in the log when no output is attached.
type logSink struct {
	logger domain.Logger
}

func (s logSink) Surface(_ context.Context, notice domain.ResumeNotice) error {
	if notice.Executed {
		s.logger.Info(notice.DisplayID, "handback", "resumed in "+notice.SessionName)
		return nil
	}
	s.logger.Info(notice.DisplayID, "handback", "resume with: "+notice.Result.Command)
	return nil
}
