// Package app holds process-wide configuration for the compiler, loaded
// with viper the way the teacher's internal/app/config.go does.
package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration object.
type Config struct {
	Render  RenderConfig  `mapstructure:"render"`
	FFmpeg  FFmpegConfig  `mapstructure:"ffmpeg"`
	Probe   ProbeConfig   `mapstructure:"probe"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
}

// RenderConfig holds default output resolution/fps used when a project's
// <output> element omits them.
type RenderConfig struct {
	DefaultWidth  int `mapstructure:"default_width"`
	DefaultHeight int `mapstructure:"default_height"`
	DefaultFPS    int `mapstructure:"default_fps"`
}

// FFmpegConfig configures the render engine invocation.
type FFmpegConfig struct {
	BinaryPath        string        `mapstructure:"binary_path"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxMuxingQueue    int           `mapstructure:"max_muxing_queue_size"`
	DefaultPresetArgs string        `mapstructure:"default_preset_args"`
}

// ProbeConfig configures the asset probe (ffprobe).
type ProbeConfig struct {
	BinaryPath  string        `mapstructure:"binary_path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`
}

// CacheConfig configures the container rasterization cache.
type CacheConfig struct {
	Dir         string `mapstructure:"dir"`
	SweepOnExit bool   `mapstructure:"sweep_on_exit"`
}

// StorageConfig configures where rendered outputs and temp files land.
type StorageConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	TempDir   string `mapstructure:"temp_dir"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig configures the optional --serve HTTP surface.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Address returns the host:port listen address.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from config.yaml (searched in ., ./config, and
// /etc/videocraft/) overlaid with VIDEOCRAFT_-prefixed environment
// variables, same resolution order as the teacher.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/videocraft/")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("VIDEOCRAFT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("render.default_width", 1920)
	viper.SetDefault("render.default_height", 1080)
	viper.SetDefault("render.default_fps", 30)

	viper.SetDefault("ffmpeg.binary_path", "ffmpeg")
	viper.SetDefault("ffmpeg.timeout", "1h")
	viper.SetDefault("ffmpeg.max_muxing_queue_size", 4096)
	viper.SetDefault("ffmpeg.default_preset_args", "-c:v libx264 -c:a aac -preset medium -movflags +faststart -pix_fmt yuv420p")

	viper.SetDefault("probe.binary_path", "ffprobe")
	viper.SetDefault("probe.timeout", "30s")
	viper.SetDefault("probe.concurrency", 4)

	viper.SetDefault("cache.dir", "./cache/containers")
	viper.SetDefault("cache.sweep_on_exit", true)

	viper.SetDefault("storage.output_dir", "./output")
	viper.SetDefault("storage.temp_dir", "./temp")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 3002)
}
