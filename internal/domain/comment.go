package domain

import (
	"regexp"
	"slices"
	"time"
)

// AuthorType identifies who wrote a comment.
type AuthorType string

const (
	AuthorHuman AuthorType = "human"
	AuthorAgent AuthorType = "agent"
)

// IsValid returns true if the author type is a known value.
func (a AuthorType) IsValid() bool {
	return a == AuthorHuman || a == AuthorAgent
}

// HandBackMention is the token a human writes to hand a blocked task back to its agent.
const HandBackMention = "@agent"

// CommentMetadata holds data derived from the comment content.
type CommentMetadata struct {
	Mentions []string `json:"mentions,omitempty"`
}

// Comment represents an entry in a task's conversation.
// Comments are immutable once created.
// Fields are ordered to minimize memory padding.
type Comment struct {
	Created    time.Time       `json:"created"` // Assigned by the store
	Metadata   CommentMetadata `json:"metadata"`
	ID         string          `json:"id"`
	TaskID     string          `json:"task"`
	Content    string          `json:"content"`
	AuthorType AuthorType      `json:"author_type"`
	AuthorID   string          `json:"author_id,omitempty"` // Display name (optional)
}

// HasMention returns true if the comment metadata carries the given token.
func (c *Comment) HasMention(token string) bool {
	return slices.Contains(c.Metadata.Mentions, token)
}

var mentionPattern = regexp.MustCompile(`@\w+`)

// ExtractMentions returns the mention tokens in content.
// Matching is case-sensitive; the result is deduplicated and keeps first-seen order.
func ExtractMentions(content string) []string {
	found := mentionPattern.FindAllString(content, -1)
	if len(found) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(found))
	mentions := make([]string, 0, len(found))
	for _, m := range found {
		if seen[m] {
			continue
		}
		seen[m] = true
		mentions = append(mentions, m)
	}
	return mentions
}
