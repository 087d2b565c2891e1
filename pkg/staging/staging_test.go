package staging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dailybrief/pkg/domain"
)

func textArtifact(payload string) *domain.Artifact {
	return &domain.Artifact{
		Type:        domain.TextArtifact,
		Payload:     payload,
		ProducedFor: domain.NewDailyTextRequest(time.Now()),
		ProducedAt:  time.Now(),
	}
}

func imageArtifact(path string) *domain.Artifact {
	return &domain.Artifact{
		Type:        domain.ImageArtifact,
		Payload:     path,
		ProducedFor: domain.NewChartRequest("AAPL", "", ""),
		ProducedAt:  time.Now(),
	}
}

func TestStageText_WritesScratchFile(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	staged, err := writer.Stage(textArtifact("San Mario"))
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	if !strings.HasPrefix(staged.Payload, dir) {
		t.Errorf("Staged path %q is not inside staging dir %q", staged.Payload, dir)
	}

	content, err := os.ReadFile(staged.Payload)
	if err != nil {
		t.Fatalf("Failed to read staged file: %v", err)
	}
	if string(content) != "San Mario" {
		t.Errorf("Expected staged content 'San Mario', got %q", content)
	}
}

func TestStageText_Idempotent(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	first, err := writer.Stage(textArtifact("San Mario"))
	if err != nil {
		t.Fatalf("First stage failed: %v", err)
	}
	second, err := writer.Stage(textArtifact("San Mario"))
	if err != nil {
		t.Fatalf("Second stage failed: %v", err)
	}

	if first.Payload != second.Payload {
		t.Errorf("Staging twice produced different paths: %q vs %q", first.Payload, second.Payload)
	}

	// No stale file accumulation under the same key
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to list staging dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected exactly 1 staged file, got %d", len(entries))
	}
}

func TestStageImage_InsideDir(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	path := filepath.Join(dir, "AAPL_chart.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatalf("Failed to write image: %v", err)
	}

	staged, err := writer.Stage(imageArtifact(path))
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if staged.Payload != path {
		t.Errorf("Expected payload %q, got %q", path, staged.Payload)
	}
}

func TestStageImage_OutsideDirRejected(t *testing.T) {
	writer, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	outside := filepath.Join(t.TempDir(), "AAPL_chart.png")
	if _, err := writer.Stage(imageArtifact(outside)); err == nil {
		t.Fatal("Expected error for image outside staging dir, got nil")
	}
}

func TestNewWriter_EmptyDir(t *testing.T) {
	if _, err := NewWriter(""); err == nil {
		t.Fatal("Expected error for empty staging dir, got nil")
	}
}
