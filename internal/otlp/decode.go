package otlp

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"google.golang.org/protobuf/encoding/protojson"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// protojson cannot decode a top-level JSON array of messages, so the
// array envelope is split first and each element is unmarshaled on its
// own. Unknown fields are discarded since collectors are free to emit
// newer schema revisions than the one compiled in here.
var unmarshalOpts = protojson.UnmarshalOptions{DiscardUnknown: true}

// DecodeExportRequests decodes a response body holding a JSON array of
// ExportTraceServiceRequest messages in the protobuf JSON mapping.
func DecodeExportRequests(body []byte) ([]*ExportTraceServiceRequest, error) {
	var elements []jsoniter.RawMessage
	if err := json.Unmarshal(body, &elements); err != nil {
		return nil, fmt.Errorf("malformed export request list: %v", err)
	}

	requests := make([]*ExportTraceServiceRequest, 0, len(elements))
	for i, element := range elements {
		request := &ExportTraceServiceRequest{}
		if err := unmarshalOpts.Unmarshal(element, request); err != nil {
			return nil, fmt.Errorf("malformed export request at index %d: %v", i, err)
		}
		requests = append(requests, request)
	}
	return requests, nil
}

// EncodeExportRequests is the inverse of DecodeExportRequests: it
// renders the given requests as a JSON array in the protobuf JSON
// mapping. An empty input encodes as "[]", never "null".
func EncodeExportRequests(requests []*ExportTraceServiceRequest) ([]byte, error) {
	elements := make([]jsoniter.RawMessage, 0, len(requests))
	for _, request := range requests {
		element, err := protojson.Marshal(request)
		if err != nil {
			return nil, fmt.Errorf("unable to marshal export request: %v", err)
		}
		elements = append(elements, element)
	}
	return json.Marshal(elements)
}

// FlattenSpans concatenates every span found across the given export
// requests in nested iteration order: request, then resource, then
// instrumentation scope. No sorting or deduplication is performed.
func FlattenSpans(requests []*ExportTraceServiceRequest) []*Span {
	var spans []*Span
	for _, request := range requests {
		for _, resourceSpans := range request.ResourceSpans {
			for _, scopeSpans := range resourceSpans.ScopeSpans {
				spans = append(spans, scopeSpans.Spans...)
			}
		}
	}
	return spans
}
