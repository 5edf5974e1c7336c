package driver

import (
	"context"
	"strconv"
	"time"

	"github.com/moffa90/go-slave/transport"
)

// Driver binds a command tree to a transport. Get and Set address commands
// by path; Query and Write run any command with the driver's configuration.
//
// Driver is safe for concurrent use if its transport is. Use
// transport.NewLocked or transport.Stream to serialize access to a device.
type Driver struct {
	transport transport.Transport
	root      *Group
	config    Config
}

// New creates a Driver for the commands in root, communicating through t.
// A nil root gives a driver that only runs ad-hoc commands.
//
// Example:
//
//	root := driver.NewGroup("lockin")
//	root.Add("sensitivity", driver.ReadWrite("SEN?", "SEN", sensitivity))
//
//	d := driver.New(transport.NewSimulated(), root,
//	    driver.WithLogger(logger),
//	    driver.WithConfig(protocol.SignalRecovery()),
//	)
//	value, err := d.Get(ctx, "sensitivity")
func New(t transport.Transport, root *Group, opts ...Option) *Driver {
	if t == nil {
		panic("transport cannot be nil")
	}
	if root == nil {
		root = NewGroup("")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Driver{
		transport: t,
		root:      root,
		config:    cfg,
	}
	d.logInfo("driver created", "group", root.Name(), "commands", len(root.Paths()))
	return d
}

// Root returns the command tree.
func (d *Driver) Root() *Group {
	return d.root
}

// Transport returns the transport commands are sent through.
func (d *Driver) Transport() transport.Transport {
	return d.transport
}

// Get queries the command at path. A path ending in an index selects an
// item of a sequence, e.g. "channel.-1".
func (d *Driver) Get(ctx context.Context, path string) (any, error) {
	cmd, err := d.root.Command(path)
	if err != nil {
		d.unresolved(OpQuery, path, err)
		return nil, err
	}
	return d.query(ctx, path, cmd)
}

// Set writes value to the command at path. For commands with several
// arguments, value must be a []any holding them in order. For commands
// without arguments, value must be nil.
//
// Example:
//
//	d.Set(ctx, "sensitivity", "10nV")
//	d.Set(ctx, "output.voltage", []any{1, 2.5})
//	d.Set(ctx, "reset", nil)
func (d *Driver) Set(ctx context.Context, path string, value any) error {
	cmd, err := d.root.Command(path)
	if err != nil {
		d.unresolved(OpWrite, path, err)
		return err
	}
	return d.write(ctx, path, cmd, spread(cmd, value))
}

// GetAll queries every command of the sequence at path, in order. It stops
// at the first error.
func (d *Driver) GetAll(ctx context.Context, path string) ([]any, error) {
	seq, err := d.root.Sequence(path)
	if err != nil {
		d.unresolved(OpQuery, path, err)
		return nil, err
	}

	values := make([]any, 0, seq.Len())
	for i, cmd := range seq.commands {
		v, err := d.query(ctx, itemPath(path, i), cmd)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// SetAll writes value to every command of the sequence at path. It stops
// at the first error.
//
// Example:
//
//	d.SetAll(ctx, "channel.enabled", false)
func (d *Driver) SetAll(ctx context.Context, path string, value any) error {
	seq, err := d.root.Sequence(path)
	if err != nil {
		d.unresolved(OpWrite, path, err)
		return err
	}

	for i, cmd := range seq.commands {
		if err := d.write(ctx, itemPath(path, i), cmd, spread(cmd, value)); err != nil {
			return err
		}
	}
	return nil
}

// Query runs cmd with the driver's transport and configuration.
func (d *Driver) Query(ctx context.Context, cmd *Command) (any, error) {
	return d.query(ctx, "", cmd)
}

// Write runs cmd with the driver's transport and configuration.
func (d *Driver) Write(ctx context.Context, cmd *Command, args ...any) error {
	return d.write(ctx, "", cmd, args)
}

func (d *Driver) query(ctx context.Context, path string, cmd *Command) (any, error) {
	start := time.Now()
	d.logDebug("query", "path", path, "header", cmd.query)

	value, ex, err := cmd.ask(ctx, d.transport, cmd.resolve(d.config.Protocol))

	d.notify(Event{
		Op:       OpQuery,
		Path:     path,
		Header:   cmd.query,
		Message:  ex.message,
		Response: ex.response,
		Value:    value,
		Err:      err,
		Duration: time.Since(start),
	})

	if err != nil {
		d.logError("query failed", "path", path, "header", cmd.query, "error", err)
		return nil, err
	}

	d.logDebug("query complete", "path", path, "response", ex.response, "value", value)
	return value, nil
}

func (d *Driver) write(ctx context.Context, path string, cmd *Command, args []any) error {
	start := time.Now()
	d.logDebug("write", "path", path, "header", cmd.write, "args", args)

	ex, err := cmd.send(ctx, d.transport, cmd.resolve(d.config.Protocol), args)

	var value any = args
	if len(args) == 1 {
		value = args[0]
	}
	d.notify(Event{
		Op:       OpWrite,
		Path:     path,
		Header:   cmd.write,
		Message:  ex.message,
		Value:    value,
		Err:      err,
		Duration: time.Since(start),
	})

	if err != nil {
		d.logError("write failed", "path", path, "header", cmd.write, "error", err)
		return err
	}

	d.logDebug("write complete", "path", path, "message", ex.message)
	return nil
}

// unresolved reports a path that names no command.
func (d *Driver) unresolved(op, path string, err error) {
	d.notify(Event{Op: op, Path: path, Err: err})
	d.logError("unknown path", "op", op, "path", path, "error", err)
}

func itemPath(path string, i int) string {
	return path + PathSeparator + strconv.Itoa(i)
}

// spread turns a Set value into write arguments.
func spread(cmd *Command, value any) []any {
	switch n := len(cmd.args); {
	case n == 0 && value == nil:
		return nil
	case n > 1:
		if values, ok := value.([]any); ok {
			return values
		}
	}
	return []any{value}
}

// notify calls every configured observer.
func (d *Driver) notify(e Event) {
	for _, o := range d.config.Observers {
		o.Observe(e)
	}
}

// logDebug logs a debug message if a logger is configured.
func (d *Driver) logDebug(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (d *Driver) logInfo(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (d *Driver) logError(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Error(msg, keysAndValues...)
	}
}
