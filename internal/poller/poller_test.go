package poller

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rcrowley/go-metrics"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSink replays a fixed sequence of responses, then keeps
// returning the last one.
type scriptedSink struct {
	responses []response
	reads     int
}

type response struct {
	body []byte
	err  error
}

func (s *scriptedSink) ListExported(ctx context.Context) ([]byte, error) {
	i := s.reads
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	s.reads++
	r := s.responses[i]
	return r.body, r.err
}

func newTestPoller(sink Sink, maxAttempts int) (*Poller, *int) {
	p := New(sink, maxAttempts, time.Millisecond)
	sleeps := 0
	p.sleep = func(time.Duration) { sleeps++ }
	return p, &sleeps
}

func empty() response {
	return response{body: []byte(`[]`)}
}

func withSpans(spanJSON string) response {
	return response{body: []byte(fmt.Sprintf(`[{"resourceSpans":[{"scopeSpans":[{"spans":[%s]}]}]}]`, spanJSON))}
}

func TestFetchSpansFirstSuccess(t *testing.T) {
	sink := &scriptedSink{responses: []response{
		empty(), empty(), empty(),
		withSpans(`{"name":"/hello","kind":"SPAN_KIND_SERVER"},{"name":"AppController.hello","kind":"SPAN_KIND_INTERNAL"}`),
	}}
	p, sleeps := newTestPoller(sink, 20)

	spans, err := p.FetchSpans(context.Background())
	require.NoError(t, err)
	require.Len(t, spans, 2)
	assert.Equal(t, "/hello", spans[0].Name)
	assert.Equal(t, "AppController.hello", spans[1].Name)

	// stops on the first non-empty read, no further polling
	assert.Equal(t, 4, sink.reads)
	assert.Equal(t, 3, *sleeps)
}

func TestFetchSpansExhaustsAttempts(t *testing.T) {
	sink := &scriptedSink{responses: []response{empty()}}
	p, _ := newTestPoller(sink, 20)

	spans, err := p.FetchSpans(context.Background())
	assert.ErrorIs(t, err, ErrNoTracesObserved)
	assert.Nil(t, spans)
	assert.Equal(t, 20, sink.reads)
}

func TestFetchSpansRetriesSoftFailures(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		sink := &scriptedSink{responses: []response{
			{body: []byte(`[{"resourceSpans":`)},
			withSpans(`{"name":"/hello","kind":"SPAN_KIND_SERVER"}`),
		}}
		p, _ := newTestPoller(sink, 20)

		spans, err := p.FetchSpans(context.Background())
		require.NoError(t, err)
		require.Len(t, spans, 1)
		assert.Equal(t, 2, sink.reads)
	})

	t.Run("read error", func(t *testing.T) {
		sink := &scriptedSink{responses: []response{
			{err: errors.New("connection refused")},
			withSpans(`{"name":"/hello","kind":"SPAN_KIND_SERVER"}`),
		}}
		p, _ := newTestPoller(sink, 20)

		spans, err := p.FetchSpans(context.Background())
		require.NoError(t, err)
		require.Len(t, spans, 1)
	})

	t.Run("all attempts malformed", func(t *testing.T) {
		sink := &scriptedSink{responses: []response{{body: []byte(`not json`)}}}
		p, _ := newTestPoller(sink, 5)

		_, err := p.FetchSpans(context.Background())
		assert.ErrorIs(t, err, ErrNoTracesObserved)
		assert.Equal(t, 5, sink.reads)
	})
}

func TestFetchSpansContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &scriptedSink{responses: []response{empty()}}
	p, _ := newTestPoller(sink, 20)

	_, err := p.FetchSpans(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, sink.reads)
}

func TestCountersTrackPolling(t *testing.T) {
	attemptsBefore := pollAttempts.Count()
	errorsBefore := pollErrors.Count()
	spansBefore := spansFetched.Count()

	sink := &scriptedSink{responses: []response{
		{body: []byte(`not json`)},
		empty(),
		withSpans(`{"name":"/hello","kind":"SPAN_KIND_SERVER"},{"name":"AppController.hello","kind":"SPAN_KIND_INTERNAL"}`),
	}}
	p, _ := newTestPoller(sink, 20)

	_, err := p.FetchSpans(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), pollAttempts.Count()-attemptsBefore)
	assert.Equal(t, int64(1), pollErrors.Count()-errorsBefore)
	assert.Equal(t, int64(2), spansFetched.Count()-spansBefore)
}

func TestLogCounters(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	registry := metrics.NewRegistry()
	metrics.GetOrRegisterCounter("poller.attempts", registry).Inc(4)
	metrics.GetOrRegisterCounter("poller.spans.fetched", registry).Inc(2)

	LogCounters(registry)

	messages := make([]string, 0, len(hook.Entries))
	for _, entry := range hook.Entries {
		messages = append(messages, entry.Message)
	}
	assert.Contains(t, messages, "poller.attempts: 4")
	assert.Contains(t, messages, "poller.spans.fetched: 2")
}

func TestNewDefaults(t *testing.T) {
	p := New(&scriptedSink{}, 0, 0)
	assert.Equal(t, DefaultMaxAttempts, p.maxAttempts)
	assert.Equal(t, DefaultInterval, p.interval)
}
