package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"dvdconv/internal/domain/dvd"
)

// ItemProgress identifies one input inside a running batch.
type ItemProgress struct {
	Position int
	Total    int
	Name     string
}

// Text renders the status line shown while the item converts.
func (p ItemProgress) Text() string {
	return fmt.Sprintf("Converting %d/%d: %s...", p.Position, p.Total, p.Name)
}

// ConvertAll converts inputs into outputDir in order, one encoder process
// at a time. Per-item failures do not stop the batch; only failure to
// create the output directory aborts the run.
func (s *Service) ConvertAll(ctx context.Context, inputs []dvd.Segment, outputDir string, obs Observer) (dvd.Report, error) {
	if err := s.library.EnsureDir(outputDir); err != nil {
		return dvd.Report{}, fmt.Errorf("create output directory: %w", err)
	}

	report := dvd.Report{Total: len(inputs)}
	for i, seg := range inputs {
		progress := ItemProgress{Position: i + 1, Total: len(inputs), Name: seg.Name}
		if obs != nil {
			obs.ItemStarted(progress)
		}

		outputPath := s.library.OutputPath(outputDir, seg)
		err := s.encoder.Convert(ctx, seg.Path, outputPath)
		if err != nil {
			s.logger.Error("conversion failed", "input", seg.Name, "error", err)
		} else {
			report.Succeeded++
		}
		if obs != nil {
			obs.ItemFinished(progress, outputPath, err)
		}
	}

	return report, nil
}

// ListCandidates returns the content-bearing segments of dir in conversion
// order.
func (s *Service) ListCandidates(dir string) ([]dvd.Segment, error) {
	segments, err := s.library.ListSegments(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputDirMissing, dir)
		}
		return nil, fmt.Errorf("list segments: %w", err)
	}
	return segments, nil
}

// CheckEncoder verifies the encoder binary runs and returns its version
// banner.
func (s *Service) CheckEncoder(ctx context.Context) (string, error) {
	version, err := s.encoder.Version(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoderMissing, err)
	}
	return version, nil
}
