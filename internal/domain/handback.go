package domain

import "slices"

// TriggerAction is what the mention trigger decided to do with a comment.
type TriggerAction string

const (
	TriggerNoop    TriggerAction = "noop"    // Nothing to hand back
	TriggerSurface TriggerAction = "surface" // Offer a resume command to a human
	TriggerExecute TriggerAction = "execute" // Resume the session now
)

// TriggerReason explains a TriggerDecision.
type TriggerReason string

const (
	ReasonAgentAuthor TriggerReason = "agent_author" // Only human comments hand back
	ReasonNoMention   TriggerReason = "no_mention"   // Comment lacks the hand-back token
	ReasonNotBlocked  TriggerReason = "not_blocked"  // Task is not in need_input
	ReasonNoSession   TriggerReason = "no_session"   // Nothing linked to resume
	ReasonCommandMode TriggerReason = "command_mode" // Board only resumes on explicit request
	ReasonManualMode  TriggerReason = "manual_mode"
	ReasonAutoMode    TriggerReason = "auto_mode"
)

// TriggerDecision is the outcome of evaluating a comment for hand-back.
type TriggerDecision struct {
	Action   TriggerAction
	Reason   TriggerReason
	Mentions []string
}

// Fires returns true if the decision asks for a resume command.
func (d TriggerDecision) Fires() bool {
	return d.Action == TriggerSurface || d.Action == TriggerExecute
}

// DecideHandBack decides whether comment should hand task back to its agent.
// It is a pure function of its arguments and performs no I/O.
func DecideHandBack(comment *Comment, task *Task, board *Board) TriggerDecision {
	mentions := ExtractMentions(comment.Content)
	decide := func(action TriggerAction, reason TriggerReason) TriggerDecision {
		return TriggerDecision{Action: action, Reason: reason, Mentions: mentions}
	}

	if comment.AuthorType != AuthorHuman {
		return decide(TriggerNoop, ReasonAgentAuthor)
	}
	if !slices.Contains(mentions, HandBackMention) {
		return decide(TriggerNoop, ReasonNoMention)
	}
	if task == nil || task.Column != ColumnNeedInput {
		return decide(TriggerNoop, ReasonNotBlocked)
	}
	if !task.HasSession() {
		return decide(TriggerNoop, ReasonNoSession)
	}

	mode := ResumeModeManual
	if board != nil {
		mode = board.ResumeMode
	}
	switch mode {
	case ResumeModeAuto:
		return decide(TriggerExecute, ReasonAutoMode)
	case ResumeModeCommand:
		return decide(TriggerNoop, ReasonCommandMode)
	default:
		return decide(TriggerSurface, ReasonManualMode)
	}
}
