package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Paths     PathsConfig     `yaml:"paths"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Detection DetectionConfig `yaml:"detection"`
	Google    GoogleConfig    `yaml:"google"`
	Server    ServerConfig    `yaml:"server"`
}

// PathsConfig contains directory paths for media processing
type PathsConfig struct {
	// ScratchDirectory is where per-run workspaces are created.
	// Empty means the system temp directory.
	ScratchDirectory string `yaml:"scratch_directory"`
}

// PipelineConfig contains the anonymization pipeline policy settings
type PipelineConfig struct {
	// SamplesPerSecond is the frame sampling rate
	SamplesPerSecond float64 `yaml:"samples_per_second"`

	// MaxWorkers bounds the parallel detect/blur worker pool
	MaxWorkers int `yaml:"max_workers"`

	// PipelineTimeoutSeconds bounds one whole pipeline run
	PipelineTimeoutSeconds int `yaml:"pipeline_timeout_seconds"`

	// TranscodeTimeoutSeconds bounds a single ffmpeg invocation
	TranscodeTimeoutSeconds int `yaml:"transcode_timeout_seconds"`
}

// DetectionConfig contains face detection and blur settings
type DetectionConfig struct {
	// CascadeFile is the path to the Haar cascade XML model
	CascadeFile string `yaml:"cascade_file"`

	// PaddingFraction expands each detection box on every side
	PaddingFraction float64 `yaml:"padding_fraction"`

	// MinFaceSize is the minimum face size in pixels
	MinFaceSize int `yaml:"min_face_size"`

	// BlurSigma is the Gaussian blur sigma; higher = more blur
	BlurSigma float64 `yaml:"blur_sigma"`

	// BlurKernelSize is the Gaussian kernel size; must be odd
	BlurKernelSize int `yaml:"blur_kernel_size"`
}

// GoogleConfig contains Google API settings
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	UploadsFolderID string `yaml:"uploads_folder_id"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// Defaults for the pipeline policy. Sampling rate, padding, and blur
// strength are tunable because they trade detection recall against cost.
const (
	DefaultSamplesPerSecond        = 1.0
	DefaultPaddingFraction         = 0.20
	DefaultMinFaceSize             = 30
	DefaultBlurSigma               = 51.0
	DefaultBlurKernelSize          = 99
	DefaultPipelineTimeoutSeconds  = 120
	DefaultTranscodeTimeoutSeconds = 60
	DefaultServerPort              = 5001
)

// Load reads and parses the configuration from the specified YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyDefaults fills in zero-valued policy settings
func (c *Config) ApplyDefaults() {
	if c.Pipeline.SamplesPerSecond == 0 {
		c.Pipeline.SamplesPerSecond = DefaultSamplesPerSecond
	}
	if c.Pipeline.MaxWorkers == 0 {
		c.Pipeline.MaxWorkers = defaultWorkers()
	}
	if c.Pipeline.PipelineTimeoutSeconds == 0 {
		c.Pipeline.PipelineTimeoutSeconds = DefaultPipelineTimeoutSeconds
	}
	if c.Pipeline.TranscodeTimeoutSeconds == 0 {
		c.Pipeline.TranscodeTimeoutSeconds = DefaultTranscodeTimeoutSeconds
	}
	if c.Detection.PaddingFraction == 0 {
		c.Detection.PaddingFraction = DefaultPaddingFraction
	}
	if c.Detection.MinFaceSize == 0 {
		c.Detection.MinFaceSize = DefaultMinFaceSize
	}
	if c.Detection.BlurSigma == 0 {
		c.Detection.BlurSigma = DefaultBlurSigma
	}
	if c.Detection.BlurKernelSize == 0 {
		c.Detection.BlurKernelSize = DefaultBlurKernelSize
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	if c.Pipeline.SamplesPerSecond <= 0 {
		return fmt.Errorf("pipeline.samples_per_second must be positive, got %g", c.Pipeline.SamplesPerSecond)
	}
	if c.Pipeline.MaxWorkers < 1 {
		return fmt.Errorf("pipeline.max_workers must be at least 1, got %d", c.Pipeline.MaxWorkers)
	}
	if c.Pipeline.PipelineTimeoutSeconds <= 0 {
		return fmt.Errorf("pipeline.pipeline_timeout_seconds must be positive, got %d", c.Pipeline.PipelineTimeoutSeconds)
	}
	if c.Pipeline.TranscodeTimeoutSeconds <= 0 {
		return fmt.Errorf("pipeline.transcode_timeout_seconds must be positive, got %d", c.Pipeline.TranscodeTimeoutSeconds)
	}
	if c.Pipeline.TranscodeTimeoutSeconds > c.Pipeline.PipelineTimeoutSeconds {
		return fmt.Errorf("pipeline.transcode_timeout_seconds (%d) exceeds pipeline_timeout_seconds (%d)",
			c.Pipeline.TranscodeTimeoutSeconds, c.Pipeline.PipelineTimeoutSeconds)
	}
	if c.Detection.PaddingFraction < 0 {
		return fmt.Errorf("detection.padding_fraction must not be negative, got %g", c.Detection.PaddingFraction)
	}
	if c.Detection.BlurKernelSize%2 == 0 {
		return fmt.Errorf("detection.blur_kernel_size must be odd, got %d", c.Detection.BlurKernelSize)
	}
	return nil
}

// PipelineTimeout returns the overall run deadline as a duration
func (c *Config) PipelineTimeout() time.Duration {
	return time.Duration(c.Pipeline.PipelineTimeoutSeconds) * time.Second
}

// TranscodeTimeout returns the per-subprocess deadline as a duration
func (c *Config) TranscodeTimeout() time.Duration {
	return time.Duration(c.Pipeline.TranscodeTimeoutSeconds) * time.Second
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n > 4 {
		n = 4
	}
	if n < 1 {
		n = 1
	}
	return n
}
