package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors.
var (
	ErrTaskNotFound         = errors.New("no task found")
	ErrAmbiguousReference   = errors.New("ambiguous task reference")
	ErrEmptyReference       = errors.New("task reference cannot be empty")
	ErrBoardNotFound        = errors.New("board not found")
	ErrBoardExists          = errors.New("board already exists")
	ErrMissingSession       = errors.New("no agent session linked")
	ErrUnsupportedTool      = errors.New("unsupported tool")
	ErrInvalidRefType       = errors.New("invalid session ref type")
	ErrEmptySessionRef      = errors.New("session ref cannot be empty")
	ErrRelativeWorkingDir   = errors.New("working directory must be an absolute path")
	ErrInvalidTransition    = errors.New("invalid session status transition")
	ErrInvalidUnlinkReason  = errors.New("invalid unlink reason")
	ErrSessionAlreadyActive = errors.New("session already active")
	ErrSessionNotFound      = errors.New("session record not found")
	ErrResumeExecDisabled   = errors.New("board resume mode is manual; resume commands cannot be executed")
	ErrInvalidColumn        = errors.New("invalid column")
	ErrInvalidResumeMode    = errors.New("invalid resume mode")
	ErrInvalidPrefix        = errors.New("board prefix must be 1-10 upper-case letters or digits starting with a letter")
	ErrInvalidAuthorType    = errors.New("invalid author type")
	ErrEmptyTitle           = errors.New("title cannot be empty")
	ErrEmptyMessage         = errors.New("message cannot be empty")
	ErrNotInitialized       = errors.New("crewboard not initialized (run 'crewboard init' first)")
	ErrNotGitRepository     = errors.New("not a git repository (or any of the parent directories)")
	ErrConfigExists         = errors.New("config file already exists")
	ErrBusClosed            = errors.New("event bus closed")
	ErrNoLaunchedSession    = errors.New("no launched session")
)

// AmbiguousReferenceError reports a reference that matched more than one task.
type AmbiguousReferenceError struct {
	Reference string
	Matches   []*Task
}

// Error implements error.
func (e *AmbiguousReferenceError) Error() string {
	ids := make([]string, 0, len(e.Matches))
	for _, t := range e.Matches {
		ids = append(ids, ShortID(t.ID))
	}
	return fmt.Sprintf("%s: %q matches %d tasks (%s)",
		ErrAmbiguousReference, e.Reference, len(e.Matches), strings.Join(ids, ", "))
}

// Is reports whether target is ErrAmbiguousReference.
func (e *AmbiguousReferenceError) Is(target error) bool {
	return target == ErrAmbiguousReference
}
