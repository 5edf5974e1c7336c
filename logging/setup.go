package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup builds a zerolog logger from cfg. The returned closer releases the
// log file, if any. Unknown levels fall back to info.
//
// Example:
//
//	log, closer, err := logging.Setup(logging.DefaultLogConfig().ApplyEnv())
//	if err != nil {
//	    panic(err)
//	}
//	defer closer.Close()
func Setup(cfg LogConfig) (zerolog.Logger, io.Closer, error) {
	if err := cfg.Validate(); err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	out, closer := writer(cfg)
	if cfg.Format != FormatJSON {
		out = zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    cfg.Output == OutputFile,
			TimeFormat: time.RFC3339,
		}
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

// SetupLogrus builds a logrus logger from cfg, for programs already using
// logrus. The returned closer releases the log file, if any.
func SetupLogrus(cfg LogConfig) (*logrus.Logger, io.Closer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nopCloser{}, err
	}

	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == FormatJSON {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	out, closer := writer(cfg)
	log.SetOutput(out)
	return log, closer, nil
}

// writer opens the configured destination. File output rotates through
// lumberjack.
func writer(cfg LogConfig) (io.Writer, io.Closer) {
	switch cfg.Output {
	case OutputFile:
		f := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		return f, f
	case OutputStdout:
		return os.Stdout, nopCloser{}
	default:
		return os.Stderr, nopCloser{}
	}
}
