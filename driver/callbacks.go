package driver

import "time"

// Operation names reported in Event.Op.
const (
	OpQuery = "query"
	OpWrite = "write"
)

// Event describes one command execution. Passed to every Observer.
type Event struct {
	// Op is OpQuery or OpWrite
	Op string

	// Path is the command path for Get and Set, empty for ad-hoc commands
	Path string

	// Header is the header that was sent
	Header string

	// Message is the outbound text, empty if the command failed before
	// a message was built
	Message string

	// Response is the raw response text, queries only
	Response string

	// Value is the decoded query result, or the write arguments
	Value any

	// Err is the failure, nil on success
	Err error

	// Duration is the time spent in the command, transport included
	Duration time.Duration
}

// Observer receives an Event after every command execution.
// Implementations should return quickly; they run on the caller's goroutine.
//
// Example:
//
//	d := driver.New(t, root,
//	    driver.WithObserver(driver.ObserverFunc(func(e driver.Event) {
//	        fmt.Printf("%s %q -> %q (%s)\n", e.Op, e.Message, e.Response, e.Duration)
//	    })),
//	)
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) {
	f(e)
}

// Logger is an optional logging interface that can be provided to the driver.
// This allows integration with any logging framework; the logging package
// provides zerolog and logrus adapters.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	d := driver.New(t, root, driver.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
