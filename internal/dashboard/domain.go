// Package dashboard orchestrates the inventory dashboard: it owns the catalog fetch lifecycle,
// the search and sort state and the selection of what the page renders.
package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/carlux/carlux-inventory/internal/catalog"
)

const (
	// ErrorHeadline titles the failure panel.
	ErrorHeadline = "Could not load inventory"
	// FallbackMessage is shown when a failure carries no text of its own.
	FallbackMessage = "Failed to load inventory"

	emptySearchMessage    = "No vehicles match your search."
	emptyInventoryMessage = "No vehicles in inventory."

	// DefaultSearchDelay is how long search input must settle before it filters the grid.
	DefaultSearchDelay = 500 * time.Millisecond
)

// Fetch outcomes reported to a Recorder.
const (
	OutcomeSuccess   = "success"
	OutcomeHTTP      = "http_error"
	OutcomeTransport = "transport_error"
	OutcomeParse     = "parse_error"
	OutcomeCanceled  = "canceled"
	OutcomeOther     = "error"
)

// Fetcher loads one catalog page.
type Fetcher interface {
	Fetch(ctx context.Context) (catalog.Response, error)
}

// Recorder receives dashboard telemetry.
type Recorder interface {
	ObserveCatalogFetch(outcome string, elapsed time.Duration)
	SetActiveDashboards(n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCatalogFetch(string, time.Duration) {}
func (nopRecorder) SetActiveDashboards(int)                   {}

// Phase is the fetch lifecycle state of a shell.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseFailure
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseFailure:
		return "failure"
	default:
		return "idle"
	}
}

// Message converts a fetch failure into the single line shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var (
		httpErr      *catalog.HTTPError
		parseErr     *catalog.ParseError
		transportErr *catalog.TransportError
	)
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Error()
	case errors.As(err, &parseErr):
		return FallbackMessage + " (invalid response)"
	case errors.As(err, &transportErr):
		return FallbackMessage + " (network error)"
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackMessage
}

// Outcome classifies a fetch result for metrics.
func Outcome(err error) string {
	var (
		httpErr      *catalog.HTTPError
		parseErr     *catalog.ParseError
		transportErr *catalog.TransportError
	)
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	case errors.As(err, &httpErr):
		return OutcomeHTTP
	case errors.As(err, &parseErr):
		return OutcomeParse
	case errors.As(err, &transportErr):
		return OutcomeTransport
	default:
		return OutcomeOther
	}
}
