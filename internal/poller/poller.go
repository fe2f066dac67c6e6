package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"

	"github.com/telemetryhq/trace-smoke/internal/otlp"
)

const (
	DefaultMaxAttempts = 20
	DefaultInterval    = 100 * time.Millisecond
)

// ErrNoTracesObserved is returned when every poll attempt came back
// empty. It is fatal to the calling scenario, unlike a decode failure
// on a single attempt which is retried.
var ErrNoTracesObserved = errors.New("no traces observed before attempts were exhausted")

var (
	pollAttempts metrics.Counter
	pollErrors   metrics.Counter
	spansFetched metrics.Counter
)

func init() {
	pollAttempts = metrics.GetOrRegisterCounter("poller.attempts", metrics.DefaultRegistry)
	pollErrors = metrics.GetOrRegisterCounter("poller.errors", metrics.DefaultRegistry)
	spansFetched = metrics.GetOrRegisterCounter("poller.spans.fetched", metrics.DefaultRegistry)
}

// LogCounters writes every counter in the registry to the log. The
// runner calls this after the last scenario so a failing run shows how
// much polling actually happened.
func LogCounters(registry metrics.Registry) {
	registry.Each(func(name string, metric interface{}) {
		if counter, ok := metric.(metrics.Counter); ok {
			log.Infof("%s: %d", name, counter.Count())
		}
	})
}

// Sink is a handle to the telemetry backend: one idempotent read
// returning the raw body of everything exported so far.
type Sink interface {
	ListExported(ctx context.Context) ([]byte, error)
}

// Poller repeatedly reads the sink until exported trace data shows up.
// Exporters batch and flush on a timer, so the request that produced a
// span typically returns before the span reaches the backend.
type Poller struct {
	sink        Sink
	maxAttempts int
	interval    time.Duration
	sleep       func(time.Duration)
}

func New(sink Sink, maxAttempts int, interval time.Duration) *Poller {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		sink:        sink,
		maxAttempts: maxAttempts,
		interval:    interval,
		sleep:       time.Sleep,
	}
}

// FetchSpans polls the sink until a non-empty set of export requests is
// observed, then returns the flattened spans of that attempt. It stops
// on the first non-empty read rather than waiting for the full batch to
// arrive. Read and decode failures on a single attempt are soft: they
// are logged and the attempt is retried.
func (p *Poller) FetchSpans(ctx context.Context) ([]*otlp.Span, error) {
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pollAttempts.Inc(1)
		requests, err := p.poll(ctx)
		if err != nil {
			pollErrors.Inc(1)
			log.Warnf("poll attempt %d/%d: %v", attempt, p.maxAttempts, err)
		} else if len(requests) > 0 {
			spans := otlp.FlattenSpans(requests)
			spansFetched.Inc(int64(len(spans)))
			log.Debugf("observed %d span(s) across %d export request(s) on attempt %d", len(spans), len(requests), attempt)
			return spans, nil
		}

		if attempt < p.maxAttempts {
			p.sleep(p.interval)
		}
	}
	return nil, ErrNoTracesObserved
}

func (p *Poller) poll(ctx context.Context) ([]*otlp.ExportTraceServiceRequest, error) {
	body, err := p.sink.ListExported(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading exported requests: %v", err)
	}
	return otlp.DecodeExportRequests(body)
}
