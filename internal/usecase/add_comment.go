package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/usecase/shared"
)

// AddCommentInput contains the parameters for adding a comment.
type AddCommentInput struct {
	Reference  string // Task reference (required)
	Message    string // Comment text (required)
	AuthorType string // human (default) or agent
	AuthorID   string // Display name (optional)
}

// AddCommentOutput contains the result of adding a comment.
type AddCommentOutput struct {
	HandBackErr error          // Error reported by hand-back subscribers; the comment is stored regardless
	Task        *domain.Task   // The commented task
	DisplayID   string         // Display identifier of the task
	Comment     domain.Comment // The created comment
}

// AddComment is the use case for adding a comment to a task.
type AddComment struct {
	resolver  *shared.Resolver
	comments  domain.CommentRepository
	boards    domain.BoardRepository
	publisher domain.CommentPublisher
	logger    domain.Logger
}

// NewAddComment creates a new AddComment use case.
func NewAddComment(
	resolver *shared.Resolver,
	comments domain.CommentRepository,
	boards domain.BoardRepository,
	publisher domain.CommentPublisher,
	logger domain.Logger,
) *AddComment {
	return &AddComment{
		resolver:  resolver,
		comments:  comments,
		boards:    boards,
		publisher: publisher,
		logger:    logger,
	}
}

// Execute stores a comment and publishes CommentCreated once it is committed.
func (uc *AddComment) Execute(ctx context.Context, in AddCommentInput) (*AddCommentOutput, error) {
	message, err := shared.ValidateMessage(in.Message)
	if err != nil {
		return nil, err
	}

	authorType := domain.AuthorHuman
	if in.AuthorType != "" {
		authorType = domain.AuthorType(strings.ToLower(strings.TrimSpace(in.AuthorType)))
		if !authorType.IsValid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAuthorType, in.AuthorType)
		}
	}

	task, err := uc.resolver.MustResolve(ctx, in.Reference)
	if err != nil {
		return nil, err
	}
	_, displayID, err := shared.DisplayID(ctx, uc.boards, task)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		TaskID:     task.ID,
		Content:    message,
		AuthorType: authorType,
		AuthorID:   strings.TrimSpace(in.AuthorID),
		Metadata:   domain.CommentMetadata{Mentions: domain.ExtractMentions(message)},
	}
	if err := uc.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	uc.logger.Debug(displayID, "comment", fmt.Sprintf("%s comment %s", authorType, domain.ShortID(comment.ID)))

	out := &AddCommentOutput{Task: task, DisplayID: displayID, Comment: *comment}
	if err := uc.publisher.Publish(ctx, domain.CommentCreated{Comment: *comment}); err != nil {
		uc.logger.Error(displayID, "comment", "hand back: "+err.Error())
		out.HandBackErr = err
	}
	return out, nil
}
