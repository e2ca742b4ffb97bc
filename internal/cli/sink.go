package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/runoshun/crewboard/internal/domain"
)

// writerSink prints hand-back notices for the user of the current command.
type writerSink struct {
	w  io.Writer
	mu sync.Mutex
}

func newWriterSink(w io.Writer) *writerSink {
	return &writerSink{w: w}
}

// Surface implements domain.ResumeSink.
func (s *writerSink) Surface(_ context.Context, notice domain.ResumeNotice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if notice.Executed {
		_, _ = fmt.Fprintf(s.w, "Handed %s back to its agent: resumed in %s\n", notice.DisplayID, notice.SessionName)
		_, _ = fmt.Fprintf(s.w, "Attach with: crewboard attach %s\n", notice.DisplayID)
		return nil
	}

	_, _ = fmt.Fprintf(s.w, "Handed %s back to its agent.\n", notice.DisplayID)
	if notice.Note != "" {
		_, _ = fmt.Fprintf(s.w, "Not resumed automatically: %s\n", notice.Note)
	}
	if notice.Result != nil {
		_, _ = fmt.Fprintln(s.w, "Resume with:")
		_, _ = fmt.Fprintf(s.w, "  %s\n", notice.Result.Command)
	}
	return nil
}
