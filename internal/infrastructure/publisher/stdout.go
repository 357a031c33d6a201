package publisher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"NewsPoster/internal/domain"
	"NewsPoster/internal/ports"
)

// StdoutPublisher is the dry-run publisher: it prints the post and reports success.
type StdoutPublisher struct {
	out    io.Writer
	logger *slog.Logger
}

var _ ports.Publisher = (*StdoutPublisher)(nil)

// NewStdoutPublisher writes to out, or os.Stdout when nil.
func NewStdoutPublisher(out io.Writer, logger *slog.Logger) *StdoutPublisher {
	if out == nil {
		out = os.Stdout
	}
	return &StdoutPublisher{out: out, logger: logger}
}

// Name identifies the publisher in logs and metrics.
func (s *StdoutPublisher) Name() string {
	return "stdout"
}

// Publish prints the post followed by a separator line.
func (s *StdoutPublisher) Publish(ctx context.Context, text string) domain.PublishOutcome {
	if err := ctx.Err(); err != nil {
		return transportFailure(err)
	}
	if _, err := fmt.Fprintf(s.out, "%s\n---\n", text); err != nil {
		return domain.PublishOutcome{Kind: domain.OutcomeFatal, Detail: err.Error()}
	}
	id := "dry-run-" + uuid.NewString()
	if s.logger != nil {
		s.logger.Info("dry run post", "post_id", id, "length", len([]rune(text)))
	}
	return domain.PublishOutcome{Kind: domain.OutcomeOK, PostID: id}
}
