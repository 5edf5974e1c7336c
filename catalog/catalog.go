package catalog

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/moffa90/go-slave/driver"
	"github.com/moffa90/go-slave/protocol"
	"github.com/moffa90/go-slave/types"
)

// Type kind names accepted in catalogs.
const (
	KindInteger  = "integer"
	KindFloat    = "float"
	KindBoolean  = "boolean"
	KindString   = "string"
	KindEnum     = "enum"
	KindRegister = "register"
	KindMapping  = "mapping"
	KindSet      = "set"
)

// Protocol preset names accepted in catalogs.
const (
	PresetIEC60488       = "iec60488"
	PresetSignalRecovery = "signal_recovery"
	PresetOxfordIsobus   = "oxford_isobus"

	// PresetOxfordIsobusNoEcho sends "$" so the device does not answer
	PresetOxfordIsobusNoEcho = "oxford_isobus_no_echo"
)

// Catalog is the file representation of a command tree.
type Catalog struct {
	// Name becomes the name of the root group
	Name string `toml:"name" yaml:"name"`

	// Protocol is the formatting shared by every command
	Protocol *ProtocolDef `toml:"protocol" yaml:"protocol"`

	// Commands are the top level commands
	Commands map[string]CommandDef `toml:"commands" yaml:"commands"`

	// Sequences are the top level indexed command lists
	Sequences map[string][]CommandDef `toml:"sequences" yaml:"sequences"`

	// Groups are the top level sub-groups
	Groups map[string]GroupDef `toml:"groups" yaml:"groups"`
}

// GroupDef declares a nested group of commands.
type GroupDef struct {
	Commands  map[string]CommandDef   `toml:"commands" yaml:"commands"`
	Sequences map[string][]CommandDef `toml:"sequences" yaml:"sequences"`
	Groups    map[string]GroupDef     `toml:"groups" yaml:"groups"`
}

// CommandDef declares one command. See driver.Spec.
type CommandDef struct {
	Query    string       `toml:"query" yaml:"query"`
	Write    string       `toml:"write" yaml:"write"`
	Types    []TypeDef    `toml:"types" yaml:"types"`
	Args     []TypeDef    `toml:"args" yaml:"args"`
	Response []TypeDef    `toml:"response" yaml:"response"`
	Protocol *ProtocolDef `toml:"protocol" yaml:"protocol"`
}

// TypeDef declares a value type. Which fields apply depends on Kind.
type TypeDef struct {
	Kind string `toml:"kind" yaml:"kind"`

	// integer, float
	Min *float64 `toml:"min" yaml:"min"`
	Max *float64 `toml:"max" yaml:"max"`

	// boolean
	True  string `toml:"true" yaml:"true"`
	False string `toml:"false" yaml:"false"`

	// string
	Reserved string `toml:"reserved" yaml:"reserved"`

	// enum
	Symbols []string `toml:"symbols" yaml:"symbols"`
	Start   int      `toml:"start" yaml:"start"`
	Step    int      `toml:"step" yaml:"step"`

	// register, keyed by bit position
	Bits map[string]string `toml:"bits" yaml:"bits"`

	// mapping
	Map map[string]string `toml:"map" yaml:"map"`

	// set
	Values []string `toml:"values" yaml:"values"`
}

// ProtocolDef declares message formatting. Preset selects the starting
// point and every other field present in the file overrides it.
type ProtocolDef struct {
	Preset  string `toml:"preset" yaml:"preset"`
	Address int    `toml:"address" yaml:"address"`

	ProgramHeaderPrefix     *string `toml:"program_header_prefix" yaml:"program_header_prefix"`
	ProgramHeaderSeparator  *string `toml:"program_header_separator" yaml:"program_header_separator"`
	ProgramDataSeparator    *string `toml:"program_data_separator" yaml:"program_data_separator"`
	ResponseHeaderSeparator *string `toml:"response_header_separator" yaml:"response_header_separator"`
	ResponseDataSeparator   *string `toml:"response_data_separator" yaml:"response_data_separator"`
	Terminator              *string `toml:"terminator" yaml:"terminator"`
	ResponseTerminator      *string `toml:"response_terminator" yaml:"response_terminator"`
	EchoHeader              *bool   `toml:"echo_header" yaml:"echo_header"`
	EchoLength              *int    `toml:"echo_length" yaml:"echo_length"`
	ErrorPrefix             *string `toml:"error_prefix" yaml:"error_prefix"`
	StatusBytes             *int    `toml:"status_bytes" yaml:"status_bytes"`
	WriteResponse           *bool   `toml:"write_response" yaml:"write_response"`
}

// Error reports a problem with one entry of a catalog.
type Error struct {
	// Path is the dotted path of the offending entry
	Path string

	// Err is the underlying error
	Err error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("catalog: %v", e.Err)
	}
	return fmt.Sprintf("catalog: %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config resolves the catalog-wide protocol configuration. Catalogs without
// a protocol section use protocol.DefaultConfig().
func (c *Catalog) Config() (protocol.Config, error) {
	cfg, err := c.Protocol.Resolve(protocol.DefaultConfig())
	if err != nil {
		return protocol.Config{}, &Error{Path: "protocol", Err: err}
	}
	return cfg, nil
}

// Build validates the catalog and creates its command tree.
func (c *Catalog) Build() (*driver.Group, error) {
	base, err := c.Config()
	if err != nil {
		return nil, err
	}

	root := driver.NewGroup(c.Name)
	def := GroupDef{Commands: c.Commands, Sequences: c.Sequences, Groups: c.Groups}
	if err := build(root, "", def, base); err != nil {
		return nil, err
	}
	return root, nil
}

func build(g *driver.Group, prefix string, def GroupDef, base protocol.Config) error {
	for _, name := range sortedKeys(def.Commands) {
		path := prefix + name
		cmd, err := def.Commands[name].command(base)
		if err != nil {
			return &Error{Path: path, Err: err}
		}
		if err := g.Add(name, cmd); err != nil {
			return &Error{Path: path, Err: err}
		}
	}

	for _, name := range sortedKeys(def.Sequences) {
		path := prefix + name
		items := def.Sequences[name]
		cmds := make([]*driver.Command, len(items))
		for i, item := range items {
			cmd, err := item.command(base)
			if err != nil {
				return &Error{Path: path + driver.PathSeparator + strconv.Itoa(i), Err: err}
			}
			cmds[i] = cmd
		}
		if err := g.AddSequence(name, cmds...); err != nil {
			return &Error{Path: path, Err: err}
		}
	}

	for _, name := range sortedKeys(def.Groups) {
		path := prefix + name
		sub := driver.NewGroup(name)
		if err := build(sub, path+driver.PathSeparator, def.Groups[name], base); err != nil {
			return err
		}
		if err := g.Attach(sub); err != nil {
			return &Error{Path: path, Err: err}
		}
	}
	return nil
}

func (d CommandDef) command(base protocol.Config) (*driver.Command, error) {
	spec := driver.Spec{Query: d.Query, Write: d.Write}

	var err error
	if spec.Types, err = typeList("types", d.Types); err != nil {
		return nil, err
	}
	if spec.Args, err = typeList("args", d.Args); err != nil {
		return nil, err
	}
	if spec.Response, err = typeList("response", d.Response); err != nil {
		return nil, err
	}

	if d.Protocol != nil {
		cfg, err := d.Protocol.Resolve(base)
		if err != nil {
			return nil, fmt.Errorf("protocol: %w", err)
		}
		spec.Config = &cfg
	}

	return driver.NewCommand(spec)
}

func typeList(field string, defs []TypeDef) ([]types.Type, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	out := make([]types.Type, len(defs))
	for i, def := range defs {
		t, err := def.Type()
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		out[i] = t
	}
	return out, nil
}

// Type creates the declared type and validates it.
func (d TypeDef) Type() (types.Type, error) {
	var t types.Type

	switch d.Kind {
	case KindInteger:
		min, err := wholeBound("min", d.Min)
		if err != nil {
			return nil, err
		}
		max, err := wholeBound("max", d.Max)
		if err != nil {
			return nil, err
		}
		t = types.Integer{Min: min, Max: max}
	case KindFloat:
		t = types.Float{Min: d.Min, Max: d.Max}
	case KindBoolean:
		t = types.Boolean{True: d.True, False: d.False}
	case KindString:
		t = types.String{Reserved: d.Reserved}
	case KindEnum:
		t = types.Enum{Symbols: d.Symbols, Start: d.Start, Step: d.Step}
	case KindRegister:
		bits := make(map[int]string, len(d.Bits))
		for key, name := range d.Bits {
			bit, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("register bit %q is not an integer", key)
			}
			bits[bit] = name
		}
		t = types.Register{Bits: bits}
	case KindMapping:
		t = types.Mapping{Values: d.Map}
	case KindSet:
		t = types.NewSet(d.Values...)
	case "":
		return nil, fmt.Errorf("type kind is required")
	default:
		return nil, fmt.Errorf("unknown type kind %q", d.Kind)
	}

	if err := types.Check(t); err != nil {
		return nil, err
	}
	return t, nil
}

func wholeBound(name string, v *float64) (*int, error) {
	if v == nil {
		return nil, nil
	}
	if *v != math.Trunc(*v) || math.Abs(*v) > 1<<53 {
		return nil, fmt.Errorf("integer %s %v is not a whole number", name, *v)
	}
	return types.Bound(int(*v)), nil
}

// Resolve applies the definition on top of base. A nil definition returns
// base unchanged. The result is validated.
func (p *ProtocolDef) Resolve(base protocol.Config) (protocol.Config, error) {
	cfg := base
	if p == nil {
		return cfg, validate(cfg)
	}

	switch p.Preset {
	case "":
	case PresetIEC60488:
		cfg = protocol.IEC60488()
	case PresetSignalRecovery:
		cfg = protocol.SignalRecovery()
	case PresetOxfordIsobus:
		cfg = protocol.OxfordIsobus(p.Address)
	case PresetOxfordIsobusNoEcho:
		cfg = protocol.OxfordIsobusNoEcho(p.Address)
	default:
		return protocol.Config{}, fmt.Errorf("unknown protocol preset %q", p.Preset)
	}

	overlay(&cfg.ProgramHeaderPrefix, p.ProgramHeaderPrefix)
	overlay(&cfg.ProgramHeaderSeparator, p.ProgramHeaderSeparator)
	overlay(&cfg.ProgramDataSeparator, p.ProgramDataSeparator)
	overlay(&cfg.ResponseHeaderSeparator, p.ResponseHeaderSeparator)
	overlay(&cfg.ResponseDataSeparator, p.ResponseDataSeparator)
	overlay(&cfg.Terminator, p.Terminator)
	overlay(&cfg.ResponseTerminator, p.ResponseTerminator)
	overlay(&cfg.EchoHeader, p.EchoHeader)
	overlay(&cfg.EchoLength, p.EchoLength)
	overlay(&cfg.ErrorPrefix, p.ErrorPrefix)
	overlay(&cfg.StatusBytes, p.StatusBytes)
	overlay(&cfg.WriteResponse, p.WriteResponse)

	return cfg, validate(cfg)
}

func validate(cfg protocol.Config) error {
	if cfg.ResponseTerminator == "" {
		return fmt.Errorf("response terminator cannot be empty")
	}
	return cfg.Validate()
}

func overlay[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
