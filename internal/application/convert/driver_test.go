package convert

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"dvdconv/internal/domain/dvd"
	"dvdconv/internal/infrastructure/filesystem"
)

type stubLibrary struct {
	mu        sync.Mutex
	segments  []dvd.Segment
	listErr   error
	ensureErr error
	ensured   []string
	opened    []string
}

func (l *stubLibrary) ListSegments(_ string) ([]dvd.Segment, error) {
	if l.listErr != nil {
		return nil, l.listErr
	}
	return append([]dvd.Segment(nil), l.segments...), nil
}

func (l *stubLibrary) OutputDirFor(inputDir string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(inputDir)), "Converted_MP4")
}

func (l *stubLibrary) OutputPath(outputDir string, seg dvd.Segment) string {
	return filepath.Join(outputDir, dvd.OutputName(seg.Name))
}

func (l *stubLibrary) EnsureDir(dir string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ensureErr != nil {
		return l.ensureErr
	}
	l.ensured = append(l.ensured, dir)
	return nil
}

func (l *stubLibrary) OpenFolder(dir string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opened = append(l.opened, dir)
	return nil
}

func (l *stubLibrary) ResolveOutput(outputDir, name string) (string, error) {
	return filepath.Join(outputDir, name), nil
}

type stubEncoder struct {
	mu         sync.Mutex
	calls      [][2]string
	failNames  map[string]bool
	versionErr error
	block      chan struct{}
}

func (e *stubEncoder) Convert(_ context.Context, inputPath, outputPath string) error {
	if e.block != nil {
		<-e.block
	}
	e.mu.Lock()
	e.calls = append(e.calls, [2]string{inputPath, outputPath})
	e.mu.Unlock()
	if e.failNames[filepath.Base(inputPath)] {
		return errors.New("exit status 1")
	}
	return nil
}

func (e *stubEncoder) Version(_ context.Context) (string, error) {
	if e.versionErr != nil {
		return "", e.versionErr
	}
	return "ffmpeg version 6.1.1", nil
}

func (e *stubEncoder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func testInputs(names ...string) []dvd.Segment {
	inputs := make([]dvd.Segment, 0, len(names))
	for _, name := range names {
		inputs = append(inputs, dvd.Segment{
			Name: name,
			Path: filepath.Join("/in", name),
			Size: 2_000_000,
		})
	}
	return inputs
}

func TestConvertAllAllSucceed(t *testing.T) {
	lib := &stubLibrary{}
	enc := &stubEncoder{}
	svc := NewService(lib, enc, nil)

	inputs := testInputs("VTS_01_1.VOB", "VTS_01_2.VOB", "VTS_01_3.VOB")
	report, err := svc.ConvertAll(context.Background(), inputs, "/out", nil)
	if err != nil {
		t.Fatalf("ConvertAll() error: %v", err)
	}
	if report.Succeeded != 3 || report.Total != 3 {
		t.Fatalf("report = %+v, want (3, 3)", report)
	}
	if len(enc.calls) != 3 {
		t.Fatalf("encoder invoked %d times, want 3", len(enc.calls))
	}
	if enc.calls[0][0] != filepath.Join("/in", "VTS_01_1.VOB") {
		t.Errorf("first input = %q", enc.calls[0][0])
	}
	if enc.calls[0][1] != filepath.Join("/out", "VTS_01_1.mp4") {
		t.Errorf("first output = %q", enc.calls[0][1])
	}
	if enc.calls[2][0] != filepath.Join("/in", "VTS_01_3.VOB") {
		t.Errorf("inputs converted out of order: %v", enc.calls)
	}
	if len(lib.ensured) != 1 || lib.ensured[0] != "/out" {
		t.Errorf("ensured dirs = %v, want [/out]", lib.ensured)
	}
}

func TestConvertAllContinuesPastFailures(t *testing.T) {
	lib := &stubLibrary{}
	enc := &stubEncoder{failNames: map[string]bool{"VTS_01_2.VOB": true}}
	svc := NewService(lib, enc, nil)

	inputs := testInputs("VTS_01_1.VOB", "VTS_01_2.VOB", "VTS_01_3.VOB")
	report, err := svc.ConvertAll(context.Background(), inputs, "/out", nil)
	if err != nil {
		t.Fatalf("ConvertAll() error: %v", err)
	}
	if report.Succeeded != 2 || report.Total != 3 {
		t.Fatalf("report = %+v, want (2, 3)", report)
	}
	if len(enc.calls) != 3 {
		t.Fatalf("encoder invoked %d times, want all 3 despite the failure", len(enc.calls))
	}
}

func TestConvertAllOutputDirFailureIsFatal(t *testing.T) {
	lib := &stubLibrary{ensureErr: errors.New("permission denied")}
	enc := &stubEncoder{}
	svc := NewService(lib, enc, nil)

	_, err := svc.ConvertAll(context.Background(), testInputs("VTS_01_1.VOB"), "/out", nil)
	if err == nil {
		t.Fatalf("expected error when output directory cannot be created")
	}
	if enc.callCount() != 0 {
		t.Fatalf("encoder invoked %d times, want 0", enc.callCount())
	}
}

type recordingObserver struct {
	started  []ItemProgress
	finished []error
}

func (o *recordingObserver) ItemStarted(p ItemProgress) {
	o.started = append(o.started, p)
}

func (o *recordingObserver) ItemFinished(_ ItemProgress, _ string, err error) {
	o.finished = append(o.finished, err)
}

func TestConvertAllNotifiesObserver(t *testing.T) {
	lib := &stubLibrary{}
	enc := &stubEncoder{failNames: map[string]bool{"VTS_01_2.VOB": true}}
	svc := NewService(lib, enc, nil)
	obs := &recordingObserver{}

	_, err := svc.ConvertAll(context.Background(), testInputs("VTS_01_1.VOB", "VTS_01_2.VOB"), "/out", obs)
	if err != nil {
		t.Fatalf("ConvertAll() error: %v", err)
	}

	if len(obs.started) != 2 {
		t.Fatalf("observer started %d items, want 2", len(obs.started))
	}
	if obs.started[0].Position != 1 || obs.started[0].Total != 2 || obs.started[0].Name != "VTS_01_1.VOB" {
		t.Errorf("first progress = %+v", obs.started[0])
	}
	if got := obs.started[0].Text(); got != "Converting 1/2: VTS_01_1.VOB..." {
		t.Errorf("progress text = %q", got)
	}
	if len(obs.finished) != 2 || obs.finished[0] != nil || obs.finished[1] == nil {
		t.Errorf("finished errors = %v", obs.finished)
	}
}

func TestListCandidatesMapsMissingDir(t *testing.T) {
	lib := &stubLibrary{listErr: fs.ErrNotExist}
	svc := NewService(lib, &stubEncoder{}, nil)

	_, err := svc.ListCandidates("/absent")
	if !errors.Is(err, ErrInputDirMissing) {
		t.Fatalf("expected ErrInputDirMissing, got %v", err)
	}
}

func TestCheckEncoderMapsProbeFailure(t *testing.T) {
	enc := &stubEncoder{versionErr: errors.New("exec: \"ffmpeg\": executable file not found in $PATH")}
	svc := NewService(&stubLibrary{}, enc, nil)

	_, err := svc.CheckEncoder(context.Background())
	if !errors.Is(err, ErrEncoderMissing) {
		t.Fatalf("expected ErrEncoderMissing, got %v", err)
	}
}

// touchEncoder stands in for ffmpeg and writes the output file directly.
type touchEncoder struct{}

func (touchEncoder) Convert(_ context.Context, _ string, outputPath string) error {
	return os.WriteFile(outputPath, []byte("mp4"), 0o644)
}

func (touchEncoder) Version(_ context.Context) (string, error) {
	return "ffmpeg version test", nil
}

func createSized(t *testing.T, path string, size int64) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	if err := f.Truncate(size); err != nil {
		t.Fatalf("truncate %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}

func TestConvertAllEndToEnd(t *testing.T) {
	inputDir := t.TempDir()
	createSized(t, filepath.Join(inputDir, "VTS_01_0.VOB"), 500_000)
	createSized(t, filepath.Join(inputDir, "VTS_01_1.VOB"), 50<<20)
	createSized(t, filepath.Join(inputDir, "VTS_01_2.VOB"), 40<<20)

	lib := filesystem.NewLibrary("Converted_MP4")
	svc := NewService(lib, touchEncoder{}, nil)

	candidates, err := svc.ListCandidates(inputDir)
	if err != nil {
		t.Fatalf("ListCandidates() error: %v", err)
	}
	if len(candidates) != 2 || candidates[0].Name != "VTS_01_1.VOB" || candidates[1].Name != "VTS_01_2.VOB" {
		t.Fatalf("candidates = %+v", candidates)
	}

	outputDir := filepath.Join(t.TempDir(), "Converted_MP4")
	report, err := svc.ConvertAll(context.Background(), candidates, outputDir, nil)
	if err != nil {
		t.Fatalf("ConvertAll() error: %v", err)
	}
	if report.Succeeded != 2 || report.Total != 2 {
		t.Fatalf("report = %+v, want (2, 2)", report)
	}

	for _, name := range []string{"VTS_01_1.mp4", "VTS_01_2.mp4"} {
		if _, err := os.Stat(filepath.Join(outputDir, name)); err != nil {
			t.Errorf("expected output %s: %v", name, err)
		}
	}
}

func TestRunAbortsBeforeEncoderWhenDirMissing(t *testing.T) {
	lib := filesystem.NewLibrary("Converted_MP4")
	enc := &stubEncoder{}
	svc := NewService(lib, enc, nil)

	_, err := svc.ListCandidates(filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, ErrInputDirMissing) {
		t.Fatalf("expected ErrInputDirMissing, got %v", err)
	}
	if enc.callCount() != 0 {
		t.Fatalf("encoder invoked %d times, want 0", enc.callCount())
	}
}
