package staging

import (
	"fmt"
	"os"
	"path/filepath"

	"dailybrief/pkg/domain"
)

// Writer persists artifacts into the staging directory.
//
// The staging directory is a hard external constraint: it must be exactly
// the directory the delivery channel is permitted to read attachments from.
// Both the renderer invocation and the delivery step consume the same
// configured directory, so an artifact can never end up somewhere the
// channel cannot see.
type Writer struct {
	dir string
}

// NewWriter creates a staging writer rooted at dir
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		return nil, fmt.Errorf("staging directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve staging directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	return &Writer{dir: abs}, nil
}

// Dir returns the staging directory
func (w *Writer) Dir() string {
	return w.dir
}

// Stage persists the artifact and returns it with the payload rewritten to
// the staging location.
//
// Text artifacts are written to a fixed per-key scratch file, overwriting
// any previous content, so staging the same artifact twice yields the same
// path and content. Image artifacts are already written by the renderer
// directly into the staging directory; for those Stage only validates the
// path.
func (w *Writer) Stage(artifact *domain.Artifact) (*domain.Artifact, error) {
	switch artifact.Type {
	case domain.TextArtifact:
		return w.stageText(artifact)
	case domain.ImageArtifact:
		return w.validateImage(artifact)
	}
	return nil, fmt.Errorf("unknown artifact type %q", artifact.Type)
}

func (w *Writer) stageText(artifact *domain.Artifact) (*domain.Artifact, error) {
	path := filepath.Join(w.dir, artifact.ProducedFor.Key()+".txt")
	if !w.inside(path) {
		return nil, fmt.Errorf("staging path %s escapes staging directory %s", path, w.dir)
	}
	if err := os.WriteFile(path, []byte(artifact.Payload), 0o644); err != nil {
		return nil, fmt.Errorf("write staged text: %w", err)
	}

	staged := *artifact
	staged.Payload = path
	return &staged, nil
}

func (w *Writer) validateImage(artifact *domain.Artifact) (*domain.Artifact, error) {
	abs, err := filepath.Abs(artifact.Payload)
	if err != nil {
		return nil, fmt.Errorf("resolve image path: %w", err)
	}
	if !w.inside(abs) {
		return nil, fmt.Errorf("image %s is outside the staging directory %s and cannot be delivered", abs, w.dir)
	}

	staged := *artifact
	staged.Payload = abs
	return &staged, nil
}

// inside reports whether path is within the staging directory
func (w *Writer) inside(path string) bool {
	rel, err := filepath.Rel(w.dir, path)
	if err != nil {
		return false
	}
	return filepath.IsLocal(rel)
}
