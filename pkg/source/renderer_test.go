package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dailybrief/pkg/domain"
)

func TestRendererSource_OutputPath(t *testing.T) {
	src := NewRendererSource([]string{"true"}, "/tmp", 0)
	if got := src.OutputPath("AAPL"); got != filepath.Join("/tmp", "AAPL_chart.png") {
		t.Errorf("Unexpected output path: %q", got)
	}
}

func TestRendererSource_SuccessReturnsExpectedPath(t *testing.T) {
	dir := t.TempDir()
	src := NewRendererSource([]string{"true"}, dir, 0)

	raw, err := src.Fetch(context.Background(), domain.NewChartRequest("AAPL", "", ""))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	expected := filepath.Join(dir, "AAPL_chart.png")
	if string(raw.Body) != expected {
		t.Errorf("Expected raw content %q, got %q", expected, raw.Body)
	}
}

func TestRendererSource_ArgumentPassing(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")

	// The shell script records its positional arguments; after `sh -c
	// <script>`, the appended symbol and dates arrive as $0 $1 $2
	script := `echo "$0 $1 $2" > ` + argsFile
	src := NewRendererSource([]string{"/bin/sh", "-c", script}, dir, 0)

	_, err := src.Fetch(context.Background(), domain.NewChartRequest("AAPL", "2024-01-01", "2026-01-01"))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	recorded, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("Renderer was not invoked: %v", err)
	}
	if got := strings.TrimSpace(string(recorded)); got != "AAPL 2024-01-01 2026-01-01" {
		t.Errorf("Expected args 'AAPL 2024-01-01 2026-01-01', got %q", got)
	}
}

func TestRendererSource_SymbolOnlyWhenNoDates(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")

	script := `echo "$0 $1" > ` + argsFile
	src := NewRendererSource([]string{"/bin/sh", "-c", script}, dir, 0)

	// No dates given: only the symbol is passed and the renderer itself
	// defaults to a 2-year lookback
	_, err := src.Fetch(context.Background(), domain.NewChartRequest("AAPL", "", ""))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	recorded, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("Renderer was not invoked: %v", err)
	}
	if got := strings.TrimSpace(string(recorded)); got != "AAPL" {
		t.Errorf("Expected only the symbol to be passed, got %q", got)
	}
}

func TestRendererSource_NonZeroExit(t *testing.T) {
	src := NewRendererSource([]string{"false"}, t.TempDir(), 0)

	_, err := src.Fetch(context.Background(), domain.NewChartRequest("AAPL", "", ""))
	if err == nil {
		t.Fatal("Expected error for non-zero renderer exit, got nil")
	}
	if !IsRendererFailed(err) {
		t.Errorf("Expected renderer-failed fetch error, got: %v", err)
	}
}

func TestRendererSource_MissingSymbol(t *testing.T) {
	src := NewRendererSource([]string{"true"}, t.TempDir(), 0)

	req := domain.RequestDescriptor{Kind: domain.RenderedImage, Parameters: map[string]string{}}
	if _, err := src.Fetch(context.Background(), req); err == nil {
		t.Fatal("Expected error for missing symbol, got nil")
	}
}
