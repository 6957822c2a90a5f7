package platform

import (
	"context"
	"fmt"
	"io"
)

// Console is a Messenger backed by a writer, used by the CLI chat surface
// and tests.
type Console struct {
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Send(_ context.Context, _ string, text string) error {
	if _, err := fmt.Fprintln(c.out, text); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
