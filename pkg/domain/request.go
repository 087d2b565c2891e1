package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// RequestKind identifies which of the two pipelines a request drives
type RequestKind string

const (
	// ScrapedText is the daily text-snippet pipeline (page or feed source)
	ScrapedText RequestKind = "scraped_text"
	// RenderedImage is the on-demand chart pipeline (external renderer)
	RenderedImage RequestKind = "rendered_image"
)

// Well-known parameter names carried by a RequestDescriptor
const (
	ParamDay       = "day"
	ParamMonth     = "month"
	ParamSymbol    = "symbol"
	ParamStartDate = "start_date"
	ParamEndDate   = "end_date"
)

// RequestDescriptor describes a single pipeline invocation.
// It is created by the scheduler/trigger and is immutable afterwards.
type RequestDescriptor struct {
	Kind       RequestKind
	Parameters map[string]string

	// RunID correlates log lines across the stages of one run
	RunID uuid.UUID

	// Cadence marks requests fired on the daily schedule; only cadence
	// requests are subject to the dispatch gate's dedup check
	Cadence bool
}

// NewDailyTextRequest builds the cadence descriptor for the daily text snippet
// using the day and month of the given time.
func NewDailyTextRequest(now time.Time) RequestDescriptor {
	return RequestDescriptor{
		Kind: ScrapedText,
		Parameters: map[string]string{
			ParamDay:   strconv.Itoa(now.Day()),
			ParamMonth: strconv.Itoa(int(now.Month())),
		},
		RunID:   uuid.New(),
		Cadence: true,
	}
}

// NewChartRequest builds the on-demand descriptor for a chart render.
// startDate and endDate may be empty; the renderer then applies its own
// default lookback.
func NewChartRequest(symbol, startDate, endDate string) RequestDescriptor {
	params := map[string]string{ParamSymbol: symbol}
	if startDate != "" {
		params[ParamStartDate] = startDate
	}
	if endDate != "" {
		params[ParamEndDate] = endDate
	}
	return RequestDescriptor{
		Kind:       RenderedImage,
		Parameters: params,
		RunID:      uuid.New(),
	}
}

// Key returns the logical request identity used for dedup records.
// The daily text key is date-independent: the date lives in the record's
// LastSentAt, not in the key.
func (r RequestDescriptor) Key() string {
	switch r.Kind {
	case ScrapedText:
		return "saints-of-day"
	case RenderedImage:
		return "fibo:" + r.Parameters[ParamSymbol]
	}
	return fmt.Sprintf("unknown:%s", r.Kind)
}

// RawContent is the opaque payload a source adapter hands to the extractor.
// It is discarded after extraction.
type RawContent struct {
	Body      []byte
	SourceID  string // URL or renderer invocation spec
	FetchedAt time.Time
}

// ArtifactType distinguishes the two artifact payload encodings
type ArtifactType string

const (
	// TextArtifact carries the snippet text in Payload
	TextArtifact ArtifactType = "text"
	// ImageArtifact carries a file path in Payload; the path must be inside
	// the staging directory
	ImageArtifact ArtifactType = "image"
)

// Artifact is the normalized output of the extractor, consumed exactly once
// by the delivery channel.
type Artifact struct {
	Type        ArtifactType
	Payload     string
	ProducedFor RequestDescriptor
	ProducedAt  time.Time
}

// DispatchRecord remembers the last successful send for a request key.
// Records are last-write-wins and never deleted.
type DispatchRecord struct {
	RequestKey string    `json:"request_key" bson:"request_key"`
	LastSentAt time.Time `json:"last_sent_at" bson:"last_sent_at"`
}
