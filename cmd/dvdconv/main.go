package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dvdconv/internal/application/convert"
	"dvdconv/internal/config"
	"dvdconv/internal/infrastructure/ffmpeg"
	"dvdconv/internal/infrastructure/filesystem"
)

// consoleObserver prints per-item progress the way the batch script did.
type consoleObserver struct{}

func (consoleObserver) ItemStarted(p convert.ItemProgress) {
	fmt.Printf("[%d/%d] Converting: %s\n", p.Position, p.Total, p.Name)
}

func (consoleObserver) ItemFinished(p convert.ItemProgress, outputPath string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "  %s failed: %v\n", p.Name, err)
		return
	}
	fmt.Printf("  -> %s\n", filepath.Base(outputPath))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	library := filesystem.NewLibrary(cfg.OutputDirName)
	encoder := ffmpeg.NewEncoder(cfg.FFmpegPath, nil)
	service := convert.NewService(library, encoder, nil)

	line := strings.Repeat("=", 60)
	fmt.Println(line)
	fmt.Println("DVD to MP4 Converter")
	fmt.Println(line)

	candidates, err := service.ListCandidates(cfg.VideosDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(candidates) == 0 {
		fmt.Fprintf(os.Stderr, "No .VOB files larger than 1 MB found in %s\n", cfg.VideosDir)
		os.Exit(1)
	}

	fmt.Printf("Found %d file(s) to convert:\n", len(candidates))
	for _, seg := range candidates {
		fmt.Printf("  %s (%.1f MB)\n", seg.Name, seg.SizeMB())
	}
	fmt.Println()

	ctx := context.Background()
	if _, err := service.CheckEncoder(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	report, err := service.ConvertAll(ctx, candidates, cfg.OutputDir, consoleObserver{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(line)
	fmt.Printf("Conversion complete: %d/%d files converted\n", report.Succeeded, report.Total)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println(line)
}
