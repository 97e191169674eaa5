package main

import (
	"context"
	"net/http"
	"os"

	"dvdconv/internal/application/convert"
	"dvdconv/internal/config"
	"dvdconv/internal/infrastructure/ffmpeg"
	"dvdconv/internal/infrastructure/filesystem"
	"dvdconv/internal/infrastructure/sysinfo"
	httptransport "dvdconv/internal/transport/http"
	"github.com/hashicorp/go-hclog"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		hclog.Default().Error("config load failed", "error", err)
		os.Exit(1)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "dvdconv",
		Level: hclog.LevelFromString(cfg.LogLevel),
	})

	library := filesystem.NewLibrary(cfg.OutputDirName)
	encoder := ffmpeg.NewEncoder(cfg.FFmpegPath, nil)
	service := convert.NewService(library, encoder, logger.Named("convert"))

	if probed := service.ProbeEncoder(context.Background()); !probed.Available {
		logger.Warn("ffmpeg not available, conversions will fail", "error", probed.Error)
	} else {
		logger.Info("encoder ready", "version", probed.Version)
	}

	handler := httptransport.NewHandler(service, sysinfo.Monitor{})
	router := httptransport.NewRouter(handler)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	})

	logger.Info("server started", "addr", cfg.ServerAddr)
	if err := http.ListenAndServe(cfg.ServerAddr, c.Handler(router)); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
