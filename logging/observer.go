package logging

import (
	"github.com/rs/zerolog"

	"github.com/moffa90/go-slave/driver"
)

type observer struct {
	log zerolog.Logger
}

// NewObserver returns a driver.Observer writing one record per command.
// Successful commands log at debug level, failures at error level.
//
// Example:
//
//	d := driver.New(t, root, driver.WithObserver(logging.NewObserver(log)))
func NewObserver(log zerolog.Logger) driver.Observer {
	return &observer{log: log}
}

func (o *observer) Observe(e driver.Event) {
	ev := o.log.Debug()
	if e.Err != nil {
		ev = o.log.Error().Err(e.Err)
	}

	ev = ev.Str("op", e.Op).
		Str("header", e.Header).
		Str("message", e.Message).
		Dur("duration", e.Duration)

	if e.Path != "" {
		ev = ev.Str("path", e.Path)
	}
	if e.Op == driver.OpQuery {
		ev = ev.Str("response", e.Response)
	}
	if e.Value != nil {
		ev = ev.Interface("value", e.Value)
	}

	ev.Msg("command")
}
