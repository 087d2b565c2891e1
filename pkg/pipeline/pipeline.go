package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"dailybrief/pkg/delivery"
	"dailybrief/pkg/domain"
)

// Fetcher fetches raw content for a request (source adapter)
type Fetcher interface {
	Fetch(ctx context.Context, req domain.RequestDescriptor) (*domain.RawContent, error)
}

// Extractor turns raw content into a normalized artifact
type Extractor interface {
	Extract(raw *domain.RawContent, req domain.RequestDescriptor) (*domain.Artifact, error)
}

// Stager persists the artifact into the staging directory
type Stager interface {
	Stage(artifact *domain.Artifact) (*domain.Artifact, error)
}

// Gate decides whether the artifact should be sent now and records
// successful sends. Locked makes check-then-record a critical section.
type Gate interface {
	Locked(key string, fn func() error) error
	ShouldSend(ctx context.Context, req domain.RequestDescriptor, now time.Time) (bool, error)
	RecordSent(ctx context.Context, req domain.RequestDescriptor, now time.Time) error
}

// Outcome reports how a run ended when it did not fail
type Outcome string

const (
	// Delivered means the artifact was handed to the delivery channel
	Delivered Outcome = "delivered"
	// Suppressed means the dispatch gate rejected a stale cadence send;
	// the run succeeded with zero external side effects
	Suppressed Outcome = "suppressed"
)

// Pipeline runs one request strictly sequentially:
// fetch -> extract -> stage -> dispatch-check -> deliver -> record.
// Fetch and extraction errors abort the run before any record is written.
type Pipeline struct {
	fetcher   Fetcher
	extractor Extractor
	stager    Stager
	gate      Gate
	deliverer delivery.Deliverer

	now func() time.Time
}

// New creates a pipeline over the given stages
func New(fetcher Fetcher, extractor Extractor, stager Stager, gate Gate, deliverer delivery.Deliverer) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		stager:    stager,
		gate:      gate,
		deliverer: deliverer,
		now:       time.Now,
	}
}

// Run executes the pipeline for one request
func (p *Pipeline) Run(ctx context.Context, req domain.RequestDescriptor) (Outcome, error) {
	log.Printf("Pipeline: run %s started (kind=%s key=%s)", req.RunID, req.Kind, req.Key())

	raw, err := p.fetcher.Fetch(ctx, req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	log.Printf("Pipeline: run %s fetched %d bytes from %s", req.RunID, len(raw.Body), raw.SourceID)

	artifact, err := p.extractor.Extract(raw, req)
	if err != nil {
		return "", fmt.Errorf("extract: %w", err)
	}

	// The extracted text is what gets delivered; staging rewrites the
	// payload to the scratch-file path
	text := artifact.Payload

	staged, err := p.stager.Stage(artifact)
	if err != nil {
		return "", fmt.Errorf("stage: %w", err)
	}
	log.Printf("Pipeline: run %s staged artifact at %s", req.RunID, staged.Payload)

	outcome := Suppressed
	err = p.gate.Locked(req.Key(), func() error {
		now := p.now()

		send, err := p.gate.ShouldSend(ctx, req, now)
		if err != nil {
			return err
		}
		if !send {
			log.Printf("Pipeline: run %s suppressed, %s already sent today", req.RunID, req.Key())
			return nil
		}

		if err := p.deliver(ctx, req, staged, text); err != nil {
			return fmt.Errorf("deliver: %w", err)
		}
		if err := p.gate.RecordSent(ctx, req, now); err != nil {
			return err
		}
		outcome = Delivered
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Printf("Pipeline: run %s finished (%s)", req.RunID, outcome)
	return outcome, nil
}

// deliver hands the artifact to the delivery channel. Text artifacts send
// the extracted snippet; image artifacts send the staged file path.
func (p *Pipeline) deliver(ctx context.Context, req domain.RequestDescriptor, staged *domain.Artifact, text string) error {
	switch staged.Type {
	case domain.TextArtifact:
		return p.deliverer.SendText(ctx, text)
	case domain.ImageArtifact:
		return p.deliverer.SendImage(ctx, staged.Payload, req.Parameters[domain.ParamSymbol])
	}
	return fmt.Errorf("unknown artifact type %q", staged.Type)
}
