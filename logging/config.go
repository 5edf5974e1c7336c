package logging

import (
	"fmt"
	"os"
	"strings"
)

// Environment variables that override a LogConfig.
const (
	EnvLevel  = "SLAVE_LOG_LEVEL"
	EnvFormat = "SLAVE_LOG_FORMAT"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Output destinations.
const (
	OutputStdout = "stdout"
	OutputStderr = "stderr"
	OutputFile   = "file"
)

// LogConfig describes where and how to log.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error
	Level string `toml:"level" yaml:"level"`

	// Format is FormatConsole or FormatJSON
	Format string `toml:"format" yaml:"format"`

	// Output is OutputStdout, OutputStderr or OutputFile
	Output string `toml:"output" yaml:"output"`

	// FilePath is the log file for OutputFile
	FilePath string `toml:"file_path" yaml:"file_path"`

	// MaxSizeMB is the size at which the log file is rotated
	MaxSizeMB int `toml:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of rotated files to keep
	MaxBackups int `toml:"max_backups" yaml:"max_backups"`

	// MaxAgeDays is how long rotated files are kept
	MaxAgeDays int `toml:"max_age_days" yaml:"max_age_days"`

	// Compress gzips rotated files
	Compress bool `toml:"compress" yaml:"compress"`
}

// DefaultLogConfig returns info level console logging to stderr.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Format:     FormatConsole,
		Output:     OutputStderr,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

// ApplyEnv overrides level and format from the environment.
func (c LogConfig) ApplyEnv() LogConfig {
	if v := strings.TrimSpace(os.Getenv(EnvLevel)); v != "" {
		c.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFormat)); v != "" {
		c.Format = v
	}
	return c
}

// Validate checks the format and output settings.
func (c LogConfig) Validate() error {
	switch c.Format {
	case FormatConsole, FormatJSON, "":
	default:
		return fmt.Errorf("unknown log format %q", c.Format)
	}

	switch c.Output {
	case OutputStdout, OutputStderr, "":
	case OutputFile:
		if strings.TrimSpace(c.FilePath) == "" {
			return fmt.Errorf("file_path is required for file output")
		}
	default:
		return fmt.Errorf("unknown log output %q", c.Output)
	}
	return nil
}
