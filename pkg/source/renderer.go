package source

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"dailybrief/pkg/domain"
)

// DefaultRenderTimeout bounds a renderer invocation; chart generation that
// takes longer than this has hung on the market-data download
const DefaultRenderTimeout = 2 * time.Minute

// RendererSource invokes the external chart renderer as a subprocess.
// The renderer contract: positional args <symbol> [startDate] [endDate],
// defaults to a 2-year lookback when dates are omitted, writes its output to
// <stagingDir>/<SYMBOL>_chart.png, exit code 0 on success.
type RendererSource struct {
	command    []string // argv prefix, e.g. ["python3", "fibo_chart.py"]
	stagingDir string
	timeout    time.Duration
}

// NewRendererSource creates a renderer source. stagingDir must be the same
// directory the delivery channel reads from; the renderer writes there
// directly.
func NewRendererSource(command []string, stagingDir string, timeout time.Duration) *RendererSource {
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	return &RendererSource{
		command:    command,
		stagingDir: stagingDir,
		timeout:    timeout,
	}
}

// OutputPath returns the deterministic path the renderer writes for a symbol
func (s *RendererSource) OutputPath(symbol string) string {
	return filepath.Join(s.stagingDir, symbol+"_chart.png")
}

// Fetch runs the renderer and blocks until it exits. A non-zero exit is a
// renderer-failed fetch error. The returned raw content's body is the
// expected output path; the extractor verifies the file actually exists.
func (s *RendererSource) Fetch(ctx context.Context, req domain.RequestDescriptor) (*domain.RawContent, error) {
	if len(s.command) == 0 {
		return nil, fmt.Errorf("renderer command is not configured")
	}

	symbol := req.Parameters[domain.ParamSymbol]
	if symbol == "" {
		return nil, fmt.Errorf("chart request has no symbol")
	}

	args := append([]string{}, s.command[1:]...)
	args = append(args, symbol)
	if start := req.Parameters[domain.ParamStartDate]; start != "" {
		args = append(args, start)
		if end := req.Parameters[domain.ParamEndDate]; end != "" {
			args = append(args, end)
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, s.command[0], args...)
	invocation := strings.Join(append([]string{s.command[0]}, args...), " ")

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, &FetchError{
			Kind:     RendererFailed,
			SourceID: invocation,
			Err:      fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output))),
		}
	}

	return &domain.RawContent{
		Body:      []byte(s.OutputPath(symbol)),
		SourceID:  invocation,
		FetchedAt: time.Now(),
	}, nil
}
