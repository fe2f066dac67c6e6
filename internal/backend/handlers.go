package backend

import (
	"io"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/telemetryhq/trace-smoke/internal/otlp"
)

const (
	TracesPath        = "/v1/traces"
	GetRequestsPath   = "/get-requests"
	ClearRequestsPath = "/clear-requests"
	HealthPath        = "/health"
)

// TracesHandler ingests OTLP/HTTP trace exports, binary protobuf or
// protobuf JSON depending on Content-Type, and records them verbatim.
func TracesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			log.Errorf("expected method %s but got %s", http.MethodPost, req.Method)
			return
		}

		body, err := io.ReadAll(req.Body)
		if err != nil {
			log.Error(err.Error())
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer req.Body.Close()

		request := &otlp.ExportTraceServiceRequest{}
		contentType := req.Header.Get("Content-Type")
		switch {
		case strings.HasPrefix(contentType, "application/x-protobuf"):
			err = proto.Unmarshal(body, request)
		case strings.HasPrefix(contentType, "application/json"):
			err = protojson.Unmarshal(body, request)
		default:
			w.WriteHeader(http.StatusUnsupportedMediaType)
			log.Errorf("unsupported content type %q", contentType)
			return
		}
		if err != nil {
			log.Errorf("undecodable export request: %v", err)
			store.LogBadPayload(string(body))
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		store.LogRequest(request)
		log.Debugf("recorded export request with %d resource span group(s)", len(request.ResourceSpans))

		writeExportResponse(w, contentType)
	}
}

func writeExportResponse(w http.ResponseWriter, contentType string) {
	response := &otlp.ExportTraceServiceResponse{}
	if strings.HasPrefix(contentType, "application/x-protobuf") {
		body, err := proto.Marshal(response)
		if err != nil {
			log.Error(err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/x-protobuf")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("{}"))
}

// GetRequestsHandler dumps everything received so far as a JSON array
// of export requests in the protobuf JSON mapping.
func GetRequestsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			log.Errorf("expected method %s but got %s", http.MethodGet, req.Method)
			return
		}

		body, err := otlp.EncodeExportRequests(store.Requests())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			log.Error(err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}

// ClearRequestsHandler resets the store between scenarios.
func ClearRequestsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		store.Clear()
		w.WriteHeader(http.StatusOK)
	}
}

func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

// RegisterHandlers wires every backend endpoint onto the given mux.
func RegisterHandlers(mux *http.ServeMux, store *Store) {
	mux.HandleFunc(TracesPath, TracesHandler(store))
	mux.HandleFunc(GetRequestsPath, GetRequestsHandler(store))
	mux.HandleFunc(ClearRequestsPath, ClearRequestsHandler(store))
	mux.HandleFunc(HealthPath, HealthHandler())
}
