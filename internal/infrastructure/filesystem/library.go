package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dvdconv/internal/domain/dvd"
)

// Library lists DVD segment files and derives output locations.
type Library struct {
	OutputDirName string
}

// NewLibrary creates a filesystem adapter. outputDirName is the fixed name
// of the converted-output directory placed beside a chosen source folder.
func NewLibrary(outputDirName string) *Library {
	return &Library{OutputDirName: outputDirName}
}

// ListSegments returns the content-bearing DVD segments in dir, ordered
// lexicographically by name so segments convert in disc playback order.
func (l *Library) ListSegments(dir string) ([]dvd.Segment, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	segments := make([]dvd.Segment, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !dvd.IsSegmentName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		seg := dvd.Segment{
			Name: entry.Name(),
			Path: filepath.Join(dir, entry.Name()),
			Size: info.Size(),
		}
		if !seg.ContentBearing() {
			continue
		}
		segments = append(segments, seg)
	}

	sort.Slice(segments, func(i, j int) bool {
		return segments[i].Name < segments[j].Name
	})

	return segments, nil
}

// OutputDirFor returns the fixed-name sibling directory that receives
// converted files for the given source folder.
func (l *Library) OutputDirFor(inputDir string) string {
	parent := filepath.Dir(filepath.Clean(inputDir))
	return filepath.Join(parent, l.OutputDirName)
}

// OutputPath places the derived MP4 name for seg inside outputDir.
func (l *Library) OutputPath(outputDir string, seg dvd.Segment) string {
	return filepath.Join(outputDir, dvd.OutputName(seg.Name))
}

// EnsureDir creates dir if it does not exist.
func (l *Library) EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// ResolveOutput validates a produced file name and returns its full path
// inside outputDir. Names that escape the directory are rejected.
func (l *Library) ResolveOutput(outputDir, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name != filepath.Base(name) {
		return "", errors.New("invalid file name")
	}
	full := filepath.Join(outputDir, name)
	if !isWithinDir(outputDir, full) {
		return "", errors.New("invalid file path")
	}
	info, err := os.Stat(full)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", errors.New("invalid file name")
	}
	return full, nil
}

func isWithinDir(basePath, targetPath string) bool {
	baseAbs, err := filepath.Abs(basePath)
	if err != nil {
		return false
	}
	targetAbs, err := filepath.Abs(targetPath)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(baseAbs, targetAbs)
	if err != nil {
		return false
	}
	sep := string(os.PathSeparator)
	if rel == ".." || strings.HasPrefix(rel, ".."+sep) {
		return false
	}
	return true
}
