package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds runtime settings shared by both binaries.
type Config struct {
	ServerAddr    string `mapstructure:"server_addr"`
	VideosDir     string `mapstructure:"videos_dir"`
	OutputDir     string `mapstructure:"output_dir"`
	OutputDirName string `mapstructure:"output_dir_name"`
	FFmpegPath    string `mapstructure:"ffmpeg_path"`
	LogLevel      string `mapstructure:"log_level"`
}

// Load merges defaults, an optional dvdconv.yaml and DVDCONV_* environment
// variables into a normalized runtime config.
func Load() (Config, error) {
	v := viper.New()

	base := baseDir()
	v.SetDefault("server_addr", ":8335")
	v.SetDefault("videos_dir", filepath.Join(base, "videos"))
	v.SetDefault("output_dir", filepath.Join(base, "converted"))
	v.SetDefault("output_dir_name", "Converted_MP4")
	v.SetDefault("ffmpeg_path", "ffmpeg")
	v.SetDefault("log_level", "info")

	v.SetConfigName("dvdconv")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(base)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("DVDCONV")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// baseDir is the directory holding the running binary. The default source
// and output directories live beside the program.
func baseDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}
