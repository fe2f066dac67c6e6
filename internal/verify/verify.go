package verify

import (
	"encoding/binary"
	"fmt"

	"github.com/gobwas/glob"

	"github.com/telemetryhq/trace-smoke/internal/otlp"
)

// Expectation describes one span that must be present in the exported
// set: an exact kind plus a name pattern. The name may use glob syntax
// so scenarios can match framework-generated span names.
type Expectation struct {
	Kind otlp.SpanKind
	Name string

	matcher glob.Glob
}

func NewExpectation(kind otlp.SpanKind, name string) (Expectation, error) {
	matcher, err := glob.Compile(name)
	if err != nil {
		return Expectation{}, fmt.Errorf("invalid span name pattern %q: %v", name, err)
	}
	return Expectation{Kind: kind, Name: name, matcher: matcher}, nil
}

func (e Expectation) Matches(span *otlp.Span) bool {
	return span.Kind == e.Kind && e.matcher.Match(span.Name)
}

func (e Expectation) String() string {
	return fmt.Sprintf("span kind=%s name=%q", e.Kind, e.Name)
}

// ExistsSpan reports whether at least one span matches the expectation.
func ExistsSpan(spans []*otlp.Span, e Expectation) bool {
	for _, span := range spans {
		if e.Matches(span) {
			return true
		}
	}
	return false
}

// TraceIDEpoch decodes the creation timestamp convention: the first 4
// bytes of a trace id, big-endian, are the epoch seconds at which the
// trace was started. Returns false for ids too short to carry one.
func TraceIDEpoch(traceID []byte) (uint32, bool) {
	if len(traceID) < 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(traceID[:4]), true
}

// AllTraceIDsFresh reports whether every span's trace id encodes an
// epoch strictly greater than the threshold, proving the traces were
// created after the test started rather than left over from a prior
// run.
func AllTraceIDsFresh(spans []*otlp.Span, thresholdEpochSecs uint32) bool {
	for _, span := range spans {
		epoch, ok := TraceIDEpoch(span.TraceId)
		if !ok || epoch <= thresholdEpochSecs {
			return false
		}
	}
	return true
}

// Failure records one expectation that did not hold. Failures are
// reported individually; one stale trace id does not mask a missing
// span or vice versa.
type Failure struct {
	Expectation string `json:"expectation"`
	Detail      string `json:"detail"`
}

// Report collects the outcome of evaluating a scenario's expectations.
type Report struct {
	Scenario string    `json:"scenario"`
	Failures []Failure `json:"failures,omitempty"`
}

func NewReport(scenario string) *Report {
	return &Report{Scenario: scenario}
}

func (r *Report) Addf(expectation, format string, args ...interface{}) {
	r.Failures = append(r.Failures, Failure{
		Expectation: expectation,
		Detail:      fmt.Sprintf(format, args...),
	})
}

func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}

// Spans evaluates every expectation plus trace-id freshness over the
// flattened span set, appending one failure per unmet expectation.
func Spans(report *Report, spans []*otlp.Span, expectations []Expectation, startEpochSecs uint32) {
	for _, e := range expectations {
		if !ExistsSpan(spans, e) {
			report.Addf(e.String(), "not found among %s", describeSpans(spans))
		}
	}

	for _, span := range spans {
		epoch, ok := TraceIDEpoch(span.TraceId)
		if !ok {
			report.Addf("fresh trace id", "span %q has trace id %x, too short to carry an epoch", span.Name, span.TraceId)
		} else if epoch <= startEpochSecs {
			report.Addf("fresh trace id", "span %q has trace epoch %d at or before test start %d", span.Name, epoch, startEpochSecs)
		}
	}
}

func describeSpans(spans []*otlp.Span) string {
	if len(spans) == 0 {
		return "0 spans"
	}
	out := fmt.Sprintf("%d span(s):", len(spans))
	for _, span := range spans {
		out += fmt.Sprintf(" [kind=%s name=%q]", span.Kind, span.Name)
	}
	return out
}
