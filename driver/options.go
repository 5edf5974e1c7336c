package driver

import "github.com/moffa90/go-slave/protocol"

// Config holds the driver configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger Logger

	// Observers receive an Event after every command (optional)
	Observers []Observer

	// Protocol formats messages for commands without their own config
	Protocol protocol.Config
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Protocol: protocol.DefaultConfig(),
	}
}

// Option is a functional option for configuring the Driver.
type Option func(*Config)

// WithLogger sets a logger for driver operations.
//
// Example:
//
//	d := driver.New(t, root, driver.WithLogger(logging.Zerolog(log)))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithObserver adds an observer. Observers are called in the order added.
//
// Example:
//
//	d := driver.New(t, root,
//	    driver.WithObserver(metrics.New(prometheus.DefaultRegisterer)),
//	    driver.WithObserver(logging.NewObserver(log)),
//	)
func WithObserver(observer Observer) Option {
	return func(c *Config) {
		if observer != nil {
			c.Observers = append(c.Observers, observer)
		}
	}
}

// WithConfig sets the protocol configuration used by commands that do not
// carry their own. The default is protocol.IEC60488().
//
// Example:
//
//	d := driver.New(t, root, driver.WithConfig(protocol.SignalRecovery()))
func WithConfig(cfg protocol.Config) Option {
	return func(c *Config) {
		c.Protocol = cfg
	}
}
