package driver

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/moffa90/go-slave/protocol"
	"github.com/moffa90/go-slave/transport"
	"github.com/moffa90/go-slave/types"
)

// Spec declares a command.
//
// Types is shorthand for commands whose write arguments and query response
// have the same shape. It cannot be combined with Args or Response.
type Spec struct {
	// Query is the query header, empty for write-only commands
	Query string

	// Write is the write header, empty for query-only commands
	Write string

	// Types are used as both Args and Response
	Types []types.Type

	// Args are the types of the write arguments, in order
	Args []types.Type

	// Response are the types of the query response values, in order
	Response []types.Type

	// Config overrides the driver's protocol configuration (optional)
	Config *protocol.Config
}

// Command describes one instrument command: how to write it, how to query
// it, and the types of its arguments and response values.
//
// Command holds no state between calls and is safe for concurrent use.
type Command struct {
	id       uuid.UUID
	query    string
	write    string
	args     []types.Type
	response []types.Type
	config   *protocol.Config
}

// exchange is the wire-level record of one command execution.
type exchange struct {
	message  string
	response string
}

// NewCommand validates spec and creates a Command.
//
// Example:
//
//	cmd, err := driver.NewCommand(driver.Spec{
//	    Query: "SEN?",
//	    Write: "SEN",
//	    Types: []types.Type{types.NewEnum("2nV", "5nV", "10nV")},
//	})
func NewCommand(spec Spec) (*Command, error) {
	name := spec.Query
	if name == "" {
		name = spec.Write
	}

	if spec.Query == "" && spec.Write == "" {
		return nil, &DeclarationError{Name: name, Reason: "command needs a query or write header"}
	}

	args, response := spec.Args, spec.Response
	if len(spec.Types) > 0 {
		if len(spec.Args) > 0 || len(spec.Response) > 0 {
			return nil, &DeclarationError{Name: name, Reason: "types cannot be combined with args or response"}
		}
		if spec.Query != "" {
			response = spec.Types
		}
		if spec.Write != "" {
			args = spec.Types
		}
	}

	if spec.Write == "" && len(args) > 0 {
		return nil, &DeclarationError{Name: name, Reason: "args declared without a write header"}
	}
	if spec.Query == "" && len(response) > 0 {
		return nil, &DeclarationError{Name: name, Reason: "response declared without a query header"}
	}

	for i, t := range args {
		if err := types.Check(t); err != nil {
			return nil, &DeclarationError{Name: name, Reason: fmt.Sprintf("argument %d", i), Err: err}
		}
	}
	for i, t := range response {
		if err := types.Check(t); err != nil {
			return nil, &DeclarationError{Name: name, Reason: fmt.Sprintf("response %d", i), Err: err}
		}
	}

	cmd := &Command{
		id:       uuid.New(),
		query:    spec.Query,
		write:    spec.Write,
		args:     append([]types.Type(nil), args...),
		response: append([]types.Type(nil), response...),
	}

	if spec.Config != nil {
		if err := spec.Config.Validate(); err != nil {
			return nil, &DeclarationError{Name: name, Reason: "protocol config", Err: err}
		}
		cfg := *spec.Config
		cmd.config = &cfg
	}

	return cmd, nil
}

// Query declares a query-only command. It panics on an invalid declaration.
//
//	idn := driver.Query("*IDN?", types.String{})
func Query(header string, response ...types.Type) *Command {
	return must(NewCommand(Spec{Query: header, Response: response}))
}

// Write declares a write-only command. It panics on an invalid declaration.
//
//	reset := driver.Write("*RST")
func Write(header string, args ...types.Type) *Command {
	return must(NewCommand(Spec{Write: header, Args: args}))
}

// ReadWrite declares a command with both headers sharing the same types.
// It panics on an invalid declaration.
//
//	enabled := driver.ReadWrite("ENABLED?", "ENABLED", types.Boolean{})
func ReadWrite(query, write string, t ...types.Type) *Command {
	return must(NewCommand(Spec{Query: query, Write: write, Types: t}))
}

func must(cmd *Command, err error) *Command {
	if err != nil {
		panic(err)
	}
	return cmd
}

// ID returns the identity of the command.
func (c *Command) ID() uuid.UUID {
	return c.id
}

// QueryHeader returns the query header, empty when not queryable.
func (c *Command) QueryHeader() string {
	return c.query
}

// WriteHeader returns the write header, empty when not writable.
func (c *Command) WriteHeader() string {
	return c.write
}

// Queryable reports whether the command has a query header.
func (c *Command) Queryable() bool {
	return c.query != ""
}

// Writable reports whether the command has a write header.
func (c *Command) Writable() bool {
	return c.write != ""
}

// Args returns the argument types.
func (c *Command) Args() []types.Type {
	return append([]types.Type(nil), c.args...)
}

// Response returns the response types.
func (c *Command) Response() []types.Type {
	return append([]types.Type(nil), c.response...)
}

// Config returns the command's own protocol configuration, if it has one.
func (c *Command) Config() (protocol.Config, bool) {
	if c.config == nil {
		return protocol.Config{}, false
	}
	return *c.config, true
}

func (c *Command) String() string {
	switch {
	case c.query != "" && c.write != "":
		return fmt.Sprintf("Command(%s, %s)", c.query, c.write)
	case c.query != "":
		return fmt.Sprintf("Command(%s)", c.query)
	default:
		return fmt.Sprintf("Command(%s)", c.write)
	}
}

// Query sends the query header and decodes the response using the default
// protocol configuration, or the command's own.
//
// A command with one response type returns that value; with several it
// returns []any in declaration order.
func (c *Command) Query(ctx context.Context, t transport.Transport) (any, error) {
	v, _, err := c.ask(ctx, t, c.resolve(protocol.DefaultConfig()))
	return v, err
}

// Write encodes args and sends them with the write header using the default
// protocol configuration, or the command's own. Arguments are validated
// before anything is sent.
func (c *Command) Write(ctx context.Context, t transport.Transport, args ...any) error {
	_, err := c.send(ctx, t, c.resolve(protocol.DefaultConfig()), args)
	return err
}

func (c *Command) resolve(fallback protocol.Config) protocol.Config {
	if c.config != nil {
		return *c.config
	}
	return fallback
}

func (c *Command) ask(ctx context.Context, t transport.Transport, cfg protocol.Config) (any, exchange, error) {
	var ex exchange
	if c.query == "" {
		return nil, ex, fmt.Errorf("%s: %w", c, ErrNotQueryable)
	}

	ex.message = protocol.BuildMessage(cfg, c.query)
	response, err := t.Ask(ctx, &transport.Request{
		Key:       c.id.String(),
		Header:    c.query,
		Message:   ex.message,
		Response:  c.response,
		Config:    cfg,
		Queryable: true,
		Writable:  c.write != "",
	})
	if err != nil {
		return nil, ex, err
	}
	ex.response = response

	tokens, err := protocol.ParseResponse(cfg, c.query, response, len(c.response))
	if err != nil {
		return nil, ex, err
	}

	values := make([]any, len(c.response))
	for i, typ := range c.response {
		v, err := typ.Decode(tokens[i])
		if err != nil {
			return nil, ex, err
		}
		values[i] = v
	}

	switch len(values) {
	case 0:
		return nil, ex, nil
	case 1:
		return values[0], ex, nil
	default:
		return values, ex, nil
	}
}

func (c *Command) send(ctx context.Context, t transport.Transport, cfg protocol.Config, args []any) (exchange, error) {
	var ex exchange
	if c.write == "" {
		return ex, fmt.Errorf("%s: %w", c, ErrNotWritable)
	}

	if len(args) != len(c.args) {
		return ex, &protocol.ArityError{
			Direction: protocol.DirectionArguments,
			Expected:  len(c.args),
			Got:       len(args),
		}
	}

	data := make([]string, len(args))
	for i, typ := range c.args {
		text, err := typ.Encode(args[i])
		if err != nil {
			return ex, err
		}
		data[i] = text
	}

	ex.message = protocol.BuildMessage(cfg, c.write, data...)
	err := t.Write(ctx, &transport.Request{
		Key:       c.id.String(),
		Header:    c.write,
		Message:   ex.message,
		Data:      data,
		Response:  c.response,
		Config:    cfg,
		Queryable: c.query != "",
		Writable:  true,
	})
	return ex, err
}
