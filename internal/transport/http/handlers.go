package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"dvdconv/internal/application/convert"
	"dvdconv/internal/infrastructure/sysinfo"
	"github.com/gorilla/mux"
)

type convertUseCases interface {
	Status() convert.Status
	SelectFolder(path string) (convert.Status, error)
	Start(ctx context.Context) (convert.Status, error)
	Subscribe() (<-chan convert.Event, func())
	OpenOutput() error
	ResolveOutput(name string) (string, error)
}

type systemProbe interface {
	Sample(ctx context.Context) (sysinfo.Snapshot, error)
}

type Handler struct {
	converter convertUseCases
	system    systemProbe
}

// NewHandler wires HTTP handlers with application use cases.
func NewHandler(converter convertUseCases, system systemProbe) *Handler {
	return &Handler{converter: converter, system: system}
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Status handles GET /api/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.converter.Status())
}

// SelectFolder handles the folder selection endpoint.
func (h *Handler) SelectFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	status, err := h.converter.SelectFolder(req.Path)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}

// StartConversion handles the conversion kickoff endpoint.
func (h *Handler) StartConversion(w http.ResponseWriter, r *http.Request) {
	status, err := h.converter.Start(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}

// OpenOutput handles the open output folder endpoint.
func (h *Handler) OpenOutput(w http.ResponseWriter, r *http.Request) {
	if err := h.converter.OpenOutput(); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// System handles GET /api/system.
func (h *Handler) System(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.system.Sample(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snapshot)
}

// Events handles the server-sent session event stream.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, cancel := h.converter.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			_, _ = fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// ServeConverted handles downloads of produced mp4 files.
func (h *Handler) ServeConverted(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	full, err := h.converter.ResolveOutput(name)
	if err != nil {
		if errors.Is(err, convert.ErrNothingToOpen) || errors.Is(err, fs.ErrNotExist) {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.ServeFile(w, r, full)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, convert.ErrInputDirMissing):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, convert.ErrBusy), errors.Is(err, convert.ErrNothingToOpen):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, convert.ErrEncoderMissing):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, convert.ErrNoFolder), errors.Is(err, convert.ErrNoCandidates):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
