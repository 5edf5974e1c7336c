package logging

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"

	"github.com/moffa90/go-slave/driver"
)

// badKey names a value whose key is missing or not a string.
const badKey = "!BADKEY"

type zerologLogger struct {
	log zerolog.Logger
}

// Zerolog adapts a zerolog logger to driver.Logger.
//
// Example:
//
//	d := driver.New(t, root, driver.WithLogger(logging.Zerolog(log)))
func Zerolog(log zerolog.Logger) driver.Logger {
	return &zerologLogger{log: log}
}

func (l *zerologLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(fields(keysAndValues)).Msg(msg)
}

func (l *zerologLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Info().Fields(fields(keysAndValues)).Msg(msg)
}

func (l *zerologLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(fields(keysAndValues)).Msg(msg)
}

type logrusLogger struct {
	log *logrus.Logger
}

// Logrus adapts a logrus logger to driver.Logger.
func Logrus(log *logrus.Logger) driver.Logger {
	if log == nil {
		panic("logger cannot be nil")
	}
	return &logrusLogger{log: log}
}

func (l *logrusLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(logrus.Fields(fields(keysAndValues))).Debug(msg)
}

func (l *logrusLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(logrus.Fields(fields(keysAndValues))).Info(msg)
}

func (l *logrusLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(logrus.Fields(fields(keysAndValues))).Error(msg)
}

// fields pairs up alternating keys and values. A trailing value without a
// key, or a non-string key, is kept under badKey.
func fields(keysAndValues []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 == len(keysAndValues) {
			out[badKey] = keysAndValues[i]
			break
		}
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%s(%v)", badKey, keysAndValues[i])
		}
		out[key] = keysAndValues[i+1]
	}
	return out
}
