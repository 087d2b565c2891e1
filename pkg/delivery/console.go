package delivery

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Console writes deliveries to a writer, stdout by default. Used when no
// Telegram token is configured, and in tests.
type Console struct {
	out io.Writer
}

// NewConsole creates a console deliverer writing to out; nil means stdout
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

// SendText prints the text
func (c *Console) SendText(ctx context.Context, text string) error {
	_, err := fmt.Fprintln(c.out, text)
	return err
}

// SendImage prints the image path and caption
func (c *Console) SendImage(ctx context.Context, path, caption string) error {
	if caption != "" {
		_, err := fmt.Fprintf(c.out, "%s (%s)\n", path, caption)
		return err
	}
	_, err := fmt.Fprintln(c.out, path)
	return err
}
