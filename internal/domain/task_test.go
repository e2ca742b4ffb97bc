package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTask_DisplayID(t *testing.T) {
	task := &Task{ID: "3f2a9c1b-7d4e-4f00-9a1b-2c3d4e5f6a7b", Seq: 42}

	assert.Equal(t, "WRK-42", task.DisplayID(&Board{Prefix: "WRK"}))
	assert.Equal(t, "3f2a9c1b", task.DisplayID(nil))
	assert.Equal(t, "3f2a9c1b", task.DisplayID(&Board{}))
}

func TestParseDisplayID(t *testing.T) {
	tests := []struct {
		ref        string
		wantPrefix string
		wantSeq    int
		wantOK     bool
	}{
		{ref: "WRK-1", wantPrefix: "WRK", wantSeq: 1, wantOK: true},
		{ref: "OPS2-123", wantPrefix: "OPS2", wantSeq: 123, wantOK: true},
		{ref: "wrk-1"},
		{ref: "WRK-0"},
		{ref: "WRK-"},
		{ref: "1WRK-2"},
		{ref: "3f2a9c1b-7d4e"},
		{ref: "WRK-1 extra"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			prefix, seq, ok := ParseDisplayID(tt.ref)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPrefix, prefix)
			assert.Equal(t, tt.wantSeq, seq)
		})
	}
}

func TestTask_HasSessionAndIsBlocked(t *testing.T) {
	task := &Task{Column: ColumnInProgress}
	assert.False(t, task.HasSession())
	assert.False(t, task.IsBlocked())

	task.AgentSession = &AgentSession{Tool: ToolCodex}
	task.Column = ColumnNeedInput
	assert.True(t, task.HasSession())
	assert.True(t, task.IsBlocked())
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", ShortID("abc"))
	assert.Equal(t, "12345678", ShortID("123456789"))
}
