package dvd

import (
	"path"
	"strings"
)

// SegmentExt is the file extension of DVD video segments. Matching is
// case-sensitive; DVD authoring tools emit upper-case names.
const SegmentExt = ".VOB"

// ContentThresholdBytes separates program video from menu and navigation
// clips. Only segments strictly larger than this are converted.
const ContentThresholdBytes = 1_000_000

// Segment represents one VOB file discovered in a source directory.
type Segment struct {
	Name string
	Path string
	Size int64
}

// ContentBearing reports whether the segment is large enough to hold
// program video rather than a menu or navigation loop.
func (s Segment) ContentBearing() bool {
	return s.Size > ContentThresholdBytes
}

// SizeMB returns the segment size in megabytes for display.
func (s Segment) SizeMB() float64 {
	return float64(s.Size) / (1024 * 1024)
}

// IsSegmentName reports whether name matches the DVD segment extension.
func IsSegmentName(name string) bool {
	return strings.HasSuffix(name, SegmentExt)
}

// OutputName derives the MP4 file name for a segment name.
func OutputName(name string) string {
	return strings.TrimSuffix(name, path.Ext(name)) + ".mp4"
}
