package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNotFound indicates the encoder binary could not be located.
var ErrNotFound = errors.New("ffmpeg not found")

// Runner executes an external encoder process and reports its exit status
// as an error. The returned string is the trimmed combined output.
type Runner interface {
	Run(ctx context.Context, name string, args []string) (string, error)
}

// Encoder invokes ffmpeg with fixed MP4 transcoding parameters.
type Encoder struct {
	Path   string
	runner Runner
}

// NewEncoder creates an ffmpeg adapter for the given binary path. A nil
// runner selects the real process runner.
func NewEncoder(path string, runner Runner) *Encoder {
	if runner == nil {
		runner = execRunner{}
	}
	return &Encoder{Path: path, runner: runner}
}

// BuildArgs returns the fixed conversion argument list for one input:
// H.264 at CRF 20 with the medium preset, 192k AAC audio, faststart
// container layout and unconditional overwrite.
func BuildArgs(inputPath, outputPath string) []string {
	return []string{
		"-i", inputPath,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "20",
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		"-y",
		outputPath,
	}
}

// Convert transcodes one input file into outputPath.
func (e *Encoder) Convert(ctx context.Context, inputPath, outputPath string) error {
	_, err := e.runner.Run(ctx, e.Path, BuildArgs(inputPath, outputPath))
	return err
}

// Version probes the encoder binary and returns its version banner line.
func (e *Encoder) Version(ctx context.Context) (string, error) {
	out, err := e.runner.Run(ctx, e.Path, []string{"-version"})
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, e.Path)
		}
		return "", err
	}
	return firstLine(out), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	hideWindow(cmd)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(output.String()))
	}
	return strings.TrimSpace(output.String()), nil
}
