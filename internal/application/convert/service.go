package convert

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"dvdconv/internal/domain/dvd"
)

var (
	ErrInputDirMissing = errors.New("input directory not found")
	ErrNoCandidates    = errors.New("no VOB files found to convert")
	ErrEncoderMissing  = errors.New("ffmpeg not available")
	ErrNoFolder        = errors.New("no folder selected")
	ErrBusy            = errors.New("conversion already running")
	ErrNothingToOpen   = errors.New("no converted output to open")
)

// SegmentInfo describes one conversion candidate for the presentation layer.
type SegmentInfo struct {
	Name   string  `json:"name"`
	Size   int64   `json:"size"`
	SizeMB float64 `json:"sizeMB"`
}

// ItemStatus describes the input currently being converted.
type ItemStatus struct {
	Position int    `json:"position"`
	Total    int    `json:"total"`
	Name     string `json:"name"`
	Text     string `json:"text"`
}

// RunResult summarizes a finished conversion run.
type RunResult struct {
	ID         string      `json:"id"`
	Succeeded  int         `json:"succeeded"`
	Total      int         `json:"total"`
	Outcome    dvd.Outcome `json:"outcome"`
	OutputDir  string      `json:"outputDir"`
	Produced   []string    `json:"produced,omitempty"`
	Error      string      `json:"error,omitempty"`
	FinishedAt int64       `json:"finishedAt"`
}

// EncoderStatus reports encoder availability.
type EncoderStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Status is the full session snapshot pushed to the presentation layer.
type Status struct {
	State      dvd.RunState  `json:"state"`
	Folder     string        `json:"folder,omitempty"`
	OutputDir  string        `json:"outputDir,omitempty"`
	Candidates []SegmentInfo `json:"candidates"`
	Item       *ItemStatus   `json:"item,omitempty"`
	Last       *RunResult    `json:"last,omitempty"`
	Encoder    EncoderStatus `json:"encoder"`
}

// Event is emitted to subscribers on session changes. Type is one of
// "snapshot", "state", "item" and "done".
type Event struct {
	Type   string `json:"type"`
	Status Status `json:"status"`
}

// Service drives sequential VOB to MP4 conversion runs and holds the
// interactive session state machine.
type Service struct {
	library Library
	encoder Encoder
	logger  hclog.Logger

	mu          sync.Mutex
	state       dvd.RunState
	folder      string
	outputDir   string
	candidates  []dvd.Segment
	item        *ItemStatus
	last        *RunResult
	encStatus   EncoderStatus
	subscribers map[string]chan Event
}

// NewService creates a conversion service with injected ports.
func NewService(library Library, encoder Encoder, logger hclog.Logger) *Service {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Service{
		library:     library,
		encoder:     encoder,
		logger:      logger,
		state:       dvd.StateIdle,
		subscribers: map[string]chan Event{},
	}
}

// ProbeEncoder refreshes the cached encoder availability shown in status.
func (s *Service) ProbeEncoder(ctx context.Context) EncoderStatus {
	version, err := s.CheckEncoder(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.encStatus = EncoderStatus{Available: false, Error: err.Error()}
	} else {
		s.encStatus = EncoderStatus{Available: true, Version: version}
	}
	return s.encStatus
}

// Status returns the current session snapshot.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SelectFolder validates path and makes it the conversion source. The
// session moves to the ready state; a selection with no candidates is
// still accepted and rejected later by Start.
func (s *Service) SelectFolder(path string) (Status, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Status{}, ErrNoFolder
	}

	s.mu.Lock()
	if s.state == dvd.StateConverting {
		s.mu.Unlock()
		return Status{}, ErrBusy
	}
	s.mu.Unlock()

	candidates, err := s.ListCandidates(path)
	if err != nil {
		return Status{}, err
	}

	s.mu.Lock()
	if s.state == dvd.StateConverting {
		s.mu.Unlock()
		return Status{}, ErrBusy
	}
	s.folder = path
	s.outputDir = s.library.OutputDirFor(path)
	s.candidates = candidates
	s.state = dvd.StateReady
	snapshot := s.snapshotLocked()
	s.broadcastLocked(Event{Type: "state", Status: snapshot})
	s.mu.Unlock()

	s.logger.Info("folder selected", "path", path, "candidates", len(candidates))
	return snapshot, nil
}

// Start begins converting the selected folder on a background goroutine.
// The run is not cancellable; it finishes every selected item.
func (s *Service) Start(ctx context.Context) (Status, error) {
	s.mu.Lock()
	if s.state == dvd.StateConverting {
		s.mu.Unlock()
		return Status{}, ErrBusy
	}
	folder := s.folder
	s.mu.Unlock()

	if folder == "" {
		return Status{}, ErrNoFolder
	}

	version, err := s.CheckEncoder(ctx)
	if err != nil {
		return Status{}, err
	}

	// Folder contents may have changed since selection.
	candidates, err := s.ListCandidates(folder)
	if err != nil {
		return Status{}, err
	}
	if len(candidates) == 0 {
		return Status{}, ErrNoCandidates
	}

	runID := uuid.NewString()
	outputDir := s.library.OutputDirFor(folder)

	s.mu.Lock()
	if s.state == dvd.StateConverting {
		s.mu.Unlock()
		return Status{}, ErrBusy
	}
	s.state = dvd.StateConverting
	s.folder = folder
	s.outputDir = outputDir
	s.candidates = candidates
	s.item = nil
	s.encStatus = EncoderStatus{Available: true, Version: version}
	snapshot := s.snapshotLocked()
	s.broadcastLocked(Event{Type: "state", Status: snapshot})
	s.mu.Unlock()

	s.logger.Info("conversion started", "run", runID, "folder", folder, "items", len(candidates))
	go s.run(runID, candidates, outputDir)

	return snapshot, nil
}

func (s *Service) run(runID string, inputs []dvd.Segment, outputDir string) {
	obs := &sessionObserver{service: s}
	report, err := s.ConvertAll(context.Background(), inputs, outputDir, obs)

	result := &RunResult{
		ID:         runID,
		Succeeded:  report.Succeeded,
		Total:      report.Total,
		Outcome:    report.Outcome(),
		OutputDir:  outputDir,
		Produced:   obs.produced,
		FinishedAt: time.Now().Unix(),
	}
	if err != nil {
		result.Error = err.Error()
		result.Outcome = dvd.OutcomeNone
	}

	s.mu.Lock()
	if s.folder != "" {
		s.state = dvd.StateReady
	} else {
		s.state = dvd.StateIdle
	}
	s.item = nil
	s.last = result
	snapshot := s.snapshotLocked()
	s.broadcastLocked(Event{Type: "done", Status: snapshot})
	s.mu.Unlock()

	switch result.Outcome {
	case dvd.OutcomeAll:
		s.logger.Info("conversion complete", "run", runID, "succeeded", result.Succeeded, "total", result.Total)
	case dvd.OutcomeSome:
		s.logger.Warn("conversion finished with failures", "run", runID, "succeeded", result.Succeeded, "total", result.Total)
	default:
		s.logger.Error("conversion failed", "run", runID, "total", result.Total, "error", result.Error)
	}
}

// Subscribe registers a session event listener. The returned channel
// receives an immediate snapshot event and is closed by the cleanup
// callback.
func (s *Service) Subscribe() (<-chan Event, func()) {
	id := uuid.NewString()
	ch := make(chan Event, 32)
	var once sync.Once

	s.mu.Lock()
	s.subscribers[id] = ch
	ch <- Event{Type: "snapshot", Status: s.snapshotLocked()}
	s.mu.Unlock()

	cleanup := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
	return ch, cleanup
}

// OpenOutput reveals the last run's output directory in the host file
// manager. Allowed only after a run that converted at least one file.
func (s *Service) OpenOutput() error {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last == nil || last.Succeeded == 0 {
		return ErrNothingToOpen
	}
	return s.library.OpenFolder(last.OutputDir)
}

// ResolveOutput maps a produced file name to its path inside the active
// output directory.
func (s *Service) ResolveOutput(name string) (string, error) {
	s.mu.Lock()
	outputDir := s.outputDir
	if outputDir == "" && s.last != nil {
		outputDir = s.last.OutputDir
	}
	s.mu.Unlock()

	if outputDir == "" {
		return "", ErrNothingToOpen
	}
	return s.library.ResolveOutput(outputDir, name)
}

func (s *Service) broadcastLocked(event Event) {
	for _, subscriber := range s.subscribers {
		select {
		case subscriber <- event:
		default:
			// Drop events for slow consumers.
		}
	}
}

func (s *Service) snapshotLocked() Status {
	candidates := make([]SegmentInfo, 0, len(s.candidates))
	for _, seg := range s.candidates {
		candidates = append(candidates, SegmentInfo{Name: seg.Name, Size: seg.Size, SizeMB: seg.SizeMB()})
	}

	status := Status{
		State:      s.state,
		Folder:     s.folder,
		OutputDir:  s.outputDir,
		Candidates: candidates,
		Encoder:    s.encStatus,
	}
	if s.item != nil {
		item := *s.item
		status.Item = &item
	}
	if s.last != nil {
		last := *s.last
		last.Produced = append([]string(nil), s.last.Produced...)
		status.Last = &last
	}
	return status
}

type sessionObserver struct {
	service  *Service
	produced []string
}

func (o *sessionObserver) ItemStarted(p ItemProgress) {
	s := o.service
	s.mu.Lock()
	s.item = &ItemStatus{Position: p.Position, Total: p.Total, Name: p.Name, Text: p.Text()}
	s.broadcastLocked(Event{Type: "item", Status: s.snapshotLocked()})
	s.mu.Unlock()

	s.logger.Info("converting", "position", p.Position, "total", p.Total, "input", p.Name)
}

func (o *sessionObserver) ItemFinished(p ItemProgress, outputPath string, err error) {
	if err != nil {
		return
	}
	o.produced = append(o.produced, filepath.Base(outputPath))
}
