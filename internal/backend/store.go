package backend

import (
	"sync"

	"github.com/telemetryhq/trace-smoke/internal/otlp"
)

// Store buffers every export request received by the fake backend until
// the harness clears it between scenarios. Payloads that failed to
// decode are kept separately so a test can distinguish "nothing
// arrived" from "garbage arrived".
type Store struct {
	requests   []*otlp.ExportTraceServiceRequest
	requestsMu *sync.Mutex

	badPayloads []string
	badMu       *sync.Mutex
}

func NewStore() *Store {
	return &Store{
		requests:   make([]*otlp.ExportTraceServiceRequest, 0, 64),
		requestsMu: &sync.Mutex{},

		badPayloads: make([]string, 0, 16),
		badMu:       &sync.Mutex{},
	}
}

// Requests returns a snapshot copy of everything received so far, in
// arrival order.
func (s *Store) Requests() []*otlp.ExportTraceServiceRequest {
	s.requestsMu.Lock()
	defer s.requestsMu.Unlock()
	cpy := make([]*otlp.ExportTraceServiceRequest, len(s.requests))
	copy(cpy, s.requests)
	return cpy
}

func (s *Store) LogRequest(request *otlp.ExportTraceServiceRequest) {
	s.requestsMu.Lock()
	defer s.requestsMu.Unlock()
	s.requests = append(s.requests, request)
}

func (s *Store) BadPayloads() []string {
	s.badMu.Lock()
	defer s.badMu.Unlock()
	cpy := make([]string, len(s.badPayloads))
	copy(cpy, s.badPayloads)
	return cpy
}

func (s *Store) LogBadPayload(payload string) {
	s.badMu.Lock()
	defer s.badMu.Unlock()
	s.badPayloads = append(s.badPayloads, payload)
}

// Clear empties the store. Called by the harness between scenarios.
func (s *Store) Clear() {
	s.requestsMu.Lock()
	s.requests = s.requests[:0]
	s.requestsMu.Unlock()

	s.badMu.Lock()
	s.badPayloads = s.badPayloads[:0]
	s.badMu.Unlock()
}
