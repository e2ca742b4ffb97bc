package shared

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/runoshun/crewboard/internal/domain"
)

// SessionRegistry owns the live session pointer of a task and its session history.
// The pointer and the history are written independently; a failure between the
// two writes can leave a stale history status but never loses a record.
type SessionRegistry struct {
	tasks    domain.TaskRepository
	sessions domain.SessionRepository
	clock    domain.Clock
}

// NewSessionRegistry creates a new SessionRegistry.
func NewSessionRegistry(tasks domain.TaskRepository, sessions domain.SessionRepository, clock domain.Clock) *SessionRegistry {
	return &SessionRegistry{
		tasks:    tasks,
		sessions: sessions,
		clock:    clock,
	}
}

// Current returns the live session pointer of task, or nil.
func (r *SessionRegistry) Current(task *domain.Task) *domain.AgentSession {
	return task.AgentSession
}

// Link attaches an external session to task, replacing any previous pointer,
// and appends an active history record.
func (r *SessionRegistry) Link(
	ctx context.Context, task *domain.Task,
	tool domain.Tool, externalRef string, refType domain.RefType, workingDir string,
) (*domain.SessionRecord, error) {
	externalRef = strings.TrimSpace(externalRef)
	if err := validateSession(tool, externalRef, refType, workingDir); err != nil {
		return nil, err
	}

	task.AgentSession = &domain.AgentSession{
		LinkedAt:   r.clock.Now(),
		Tool:       tool,
		Ref:        externalRef,
		RefType:    refType,
		WorkingDir: workingDir,
	}
	if err := r.tasks.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	return r.RecordHistory(ctx, task, tool, externalRef, refType, workingDir)
}

// RecordHistory appends an active history record for task.
// Records of the task that are still active are paused first.
func (r *SessionRegistry) RecordHistory(
	ctx context.Context, task *domain.Task,
	tool domain.Tool, externalRef string, refType domain.RefType, workingDir string,
) (*domain.SessionRecord, error) {
	externalRef = strings.TrimSpace(externalRef)
	if err := validateSession(tool, externalRef, refType, workingDir); err != nil {
		return nil, err
	}

	records, err := r.History(ctx, task)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Status != domain.SessionActive {
			continue
		}
		if err := r.transition(ctx, &records[i], domain.SessionPaused); err != nil {
			return nil, err
		}
	}

	record := &domain.SessionRecord{
		TaskID:      task.ID,
		Tool:        tool,
		ExternalRef: externalRef,
		RefType:     refType,
		WorkingDir:  workingDir,
		Status:      domain.SessionActive,
	}
	if err := r.sessions.CreateSession(ctx, record); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return record, nil
}

// Unlink clears the live pointer of task and moves the latest open history
// record to the status implied by reason. History is never deleted.
func (r *SessionRegistry) Unlink(ctx context.Context, task *domain.Task, reason domain.UnlinkReason) (*domain.SessionRecord, error) {
	target, err := reason.TargetStatus()
	if err != nil {
		return nil, err
	}
	if !task.HasSession() {
		return nil, domain.ErrMissingSession
	}

	task.AgentSession = nil
	if err := r.tasks.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	record, err := r.latestOpen(ctx, task)
	if err != nil || record == nil {
		return nil, err
	}
	if record.Status == target {
		return record, nil
	}
	if err := r.transition(ctx, record, target); err != nil {
		return nil, err
	}
	return record, nil
}

// Pause moves the latest open record from active to paused.
// It returns nil without changes when there is no active record.
func (r *SessionRegistry) Pause(ctx context.Context, task *domain.Task) (*domain.SessionRecord, error) {
	record, err := r.latestOpen(ctx, task)
	if err != nil || record == nil || record.Status != domain.SessionActive {
		return nil, err
	}
	if err := r.transition(ctx, record, domain.SessionPaused); err != nil {
		return nil, err
	}
	return record, nil
}

// Claim moves the latest open record from paused to active.
// It fails with domain.ErrSessionAlreadyActive when the record is already active,
// so that at most one caller resumes a paused session.
// A linked task without an open record gets a fresh active record.
func (r *SessionRegistry) Claim(ctx context.Context, task *domain.Task) (*domain.SessionRecord, error) {
	if !task.HasSession() {
		return nil, domain.ErrMissingSession
	}
	record, err := r.latestOpen(ctx, task)
	if err != nil {
		return nil, err
	}
	if record == nil {
		s := task.AgentSession
		return r.RecordHistory(ctx, task, s.Tool, s.Ref, s.RefType, s.WorkingDir)
	}
	if record.Status == domain.SessionActive {
		return nil, domain.ErrSessionAlreadyActive
	}
	if err := r.transition(ctx, record, domain.SessionActive); err != nil {
		return nil, err
	}
	return record, nil
}

// Release undoes a Claim by pausing the active record again.
func (r *SessionRegistry) Release(ctx context.Context, task *domain.Task) error {
	_, err := r.Pause(ctx, task)
	return err
}

// History returns every session record of task, oldest first.
func (r *SessionRegistry) History(ctx context.Context, task *domain.Task) ([]domain.SessionRecord, error) {
	records, err := r.sessions.ListSessions(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return records, nil
}

func (r *SessionRegistry) latestOpen(ctx context.Context, task *domain.Task) (*domain.SessionRecord, error) {
	records, err := r.History(ctx, task)
	if err != nil {
		return nil, err
	}
	for i := len(records) - 1; i >= 0; i-- {
		if !records[i].Status.IsTerminal() {
			return &records[i], nil
		}
	}
	return nil, nil
}

func (r *SessionRegistry) transition(ctx context.Context, record *domain.SessionRecord, target domain.SessionStatus) error {
	if err := record.TransitionTo(target, r.clock.Now()); err != nil {
		return fmt.Errorf("session %s %s -> %s: %w", domain.ShortID(record.ID), record.Status, target, err)
	}
	if err := r.sessions.UpdateSession(ctx, record); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func validateSession(tool domain.Tool, externalRef string, refType domain.RefType, workingDir string) error {
	if !tool.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedTool, tool)
	}
	if externalRef == "" {
		return domain.ErrEmptySessionRef
	}
	if !refType.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidRefType, refType)
	}
	if !filepath.IsAbs(workingDir) {
		return domain.ErrRelativeWorkingDir
	}
	return nil
}
