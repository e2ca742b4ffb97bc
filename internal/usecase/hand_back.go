package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/usecase/shared"
)

// HandBackInput contains the committed comment to evaluate.
type HandBackInput struct {
	Comment domain.Comment
}

// HandBackOutput contains the outcome of evaluating a comment.
type HandBackOutput struct {
	Notice   *domain.ResumeNotice // Set when the decision fired
	Decision domain.TriggerDecision
}

// HandBack reacts to committed comments: it evaluates the mention trigger and
// surfaces or executes the resume command. A paused session is resumed at most once.
type HandBack struct {
	trigger  *shared.MentionTrigger
	builder  *shared.ResumeBuilder
	registry *shared.SessionRegistry
	comments domain.CommentRepository
	launcher domain.Launcher // nil when launching is disabled
	sink     domain.ResumeSink
	locker   domain.TaskLocker
	logger   domain.Logger
}

// NewHandBack creates a new HandBack use case.
func NewHandBack(
	trigger *shared.MentionTrigger,
	builder *shared.ResumeBuilder,
	registry *shared.SessionRegistry,
	comments domain.CommentRepository,
	launcher domain.Launcher,
	sink domain.ResumeSink,
	locker domain.TaskLocker,
	logger domain.Logger,
) *HandBack {
	return &HandBack{
		trigger:  trigger,
		builder:  builder,
		registry: registry,
		comments: comments,
		launcher: launcher,
		sink:     sink,
		locker:   locker,
		logger:   logger,
	}
}

// Handle adapts Execute to domain.CommentHandler.
func (uc *HandBack) Handle(ctx context.Context, evt domain.CommentCreated) error {
	_, err := uc.Execute(ctx, HandBackInput{Comment: evt.Comment})
	return err
}

// Execute evaluates the comment under the task lock and acts on the decision.
// The task column is left unchanged.
func (uc *HandBack) Execute(ctx context.Context, in HandBackInput) (*HandBackOutput, error) {
	unlock, err := uc.locker.Lock(ctx, in.Comment.TaskID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	eval, err := uc.trigger.Evaluate(ctx, &in.Comment)
	if err != nil {
		return nil, fmt.Errorf("evaluate comment: %w", err)
	}
	out := &HandBackOutput{Decision: eval.Decision}
	if !eval.Decision.Fires() {
		if eval.Decision.Reason != domain.ReasonNoMention && eval.Decision.Reason != domain.ReasonAgentAuthor {
			uc.logger.Debug("", "handback", fmt.Sprintf("comment %s ignored: %s", domain.ShortID(in.Comment.ID), eval.Decision.Reason))
		}
		return out, nil
	}

	task := eval.Task
	displayID := task.DisplayID(eval.Board)
	comments, err := uc.comments.ListComments(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	result, err := uc.builder.Build(task, displayID, comments)
	if err != nil {
		return nil, fmt.Errorf("build resume for %s: %w", displayID, err)
	}

	notice := &domain.ResumeNotice{
		Task:      task,
		Result:    result,
		Decision:  eval.Decision,
		DisplayID: displayID,
	}
	if eval.Decision.Action == domain.TriggerExecute {
		if err := uc.execute(ctx, notice); err != nil {
			return nil, err
		}
	}

	if notice.Executed {
		uc.logger.Info(displayID, "handback", "resumed session in "+notice.SessionName)
	} else {
		uc.logger.Info(displayID, "handback", "resume command surfaced")
	}
	if err := uc.sink.Surface(ctx, *notice); err != nil {
		return nil, fmt.Errorf("surface resume for %s: %w", displayID, err)
	}
	out.Notice = notice
	return out, nil
}

// execute claims the paused session and launches the resume command.
// Losing the claim to a running launched session downgrades the notice to a
// surfaced command.
func (uc *HandBack) execute(ctx context.Context, notice *domain.ResumeNotice) error {
	if uc.launcher == nil {
		notice.Note = "launching is disabled"
		return nil
	}

	task := notice.Task
	name := domain.LaunchSessionName(notice.DisplayID)
	claimed, err := uc.claim(ctx, task, name)
	if err != nil {
		return fmt.Errorf("claim session for %s: %w", notice.DisplayID, err)
	}
	if !claimed {
		notice.Note = "session already active"
		return nil
	}

	err = uc.launcher.Launch(ctx, domain.LaunchOptions{
		Name:    name,
		Dir:     notice.Result.WorkingDir,
		Command: notice.Result.Command,
	})
	if err != nil {
		if releaseErr := uc.registry.Release(ctx, task); releaseErr != nil {
			uc.logger.Error(notice.DisplayID, "handback", "release session: "+releaseErr.Error())
		}
		return fmt.Errorf("launch resume for %s: %w", notice.DisplayID, err)
	}

	notice.Executed = true
	notice.SessionName = name
	return nil
}

// claim claims the paused session of task. An active record whose launched
// session named name has exited is paused and claimed again.
func (uc *HandBack) claim(ctx context.Context, task *domain.Task, name string) (bool, error) {
	_, err := uc.registry.Claim(ctx, task)
	if !errors.Is(err, domain.ErrSessionAlreadyActive) {
		return err == nil, err
	}

	running, err := uc.launcher.IsRunning(name)
	if err != nil {
		return false, fmt.Errorf("check launched session: %w", err)
	}
	if running {
		return false, nil
	}
	if _, err := uc.registry.Pause(ctx, task); err != nil {
		return false, err
	}
	if _, err := uc.registry.Claim(ctx, task); err != nil {
		return false, err
	}
	return true, nil
}
