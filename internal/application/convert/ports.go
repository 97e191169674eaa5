package convert

import (
	"context"

	"dvdconv/internal/domain/dvd"
)

// Library is an application port for segment discovery and output path
// derivation.
type Library interface {
	ListSegments(dir string) ([]dvd.Segment, error)
	OutputDirFor(inputDir string) string
	OutputPath(outputDir string, seg dvd.Segment) string
	EnsureDir(dir string) error
	OpenFolder(dir string) error
	ResolveOutput(outputDir, name string) (string, error)
}

// Encoder is an application port for the external transcoding process.
type Encoder interface {
	Convert(ctx context.Context, inputPath, outputPath string) error
	Version(ctx context.Context) (string, error)
}

// Observer receives per-item callbacks during a conversion run. ItemStarted
// fires before the encoder is invoked, ItemFinished after it exits.
type Observer interface {
	ItemStarted(p ItemProgress)
	ItemFinished(p ItemProgress, outputPath string, err error)
}
