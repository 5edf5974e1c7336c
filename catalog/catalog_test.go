package catalog

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/moffa90/go-slave/driver"
	"github.com/moffa90/go-slave/protocol"
	"github.com/moffa90/go-slave/transport"
	"github.com/moffa90/go-slave/types"
)

func TestLoadTOML(t *testing.T) {
	root, cfg, err := Load("testdata/lockin.toml")
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if root.Name() != "sr7230" {
		t.Errorf("root name = %q, want sr7230", root.Name())
	}
	if !reflect.DeepEqual(cfg, protocol.SignalRecovery()) {
		t.Errorf("config = %+v, want SignalRecovery()", cfg)
	}

	want := []string{
		"identification",
		"reset",
		"sensitivity",
		"status",
		"reference.frequency",
		"reference.mode",
	}
	if got := root.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}

	sen, err := root.Command("sensitivity")
	if err != nil {
		t.Fatalf("Command() unexpected error: %v", err)
	}
	enum, ok := sen.Args()[0].(types.Enum)
	if !ok {
		t.Fatalf("sensitivity arg type = %T, want types.Enum", sen.Args()[0])
	}
	if text, _ := enum.Encode("5nV"); text != "2" {
		t.Errorf("Encode(5nV) = %q, want %q (start = 1)", text, "2")
	}
}

func TestLoadYAML(t *testing.T) {
	root, cfg, err := Load("testdata/generator.yaml")
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.ProgramHeaderPrefix != ":" {
		t.Errorf("prefix = %q, want %q", cfg.ProgramHeaderPrefix, ":")
	}

	sim := transport.NewSimulated(transport.WithSeed(1), transport.WithTrace(true))
	d := driver.New(sim, root, driver.WithConfig(cfg))
	ctx := context.Background()

	if err := d.Set(ctx, "output", true); err != nil {
		t.Fatalf("Set(output) unexpected error: %v", err)
	}
	if err := d.Set(ctx, "source.wave.function", "SQU"); err != nil {
		t.Fatalf("Set(function) unexpected error: %v", err)
	}
	if err := d.Set(ctx, "source.wave.function", "TRI"); !types.IsValidationError(err) {
		t.Errorf("Set(TRI) error = %v, want *types.ValidationError", err)
	}

	got, err := d.Get(ctx, "output")
	if err != nil {
		t.Fatalf("Get(output) unexpected error: %v", err)
	}
	if got != true {
		t.Errorf("Get(output) = %v, want true", got)
	}

	trace := sim.Trace()
	if trace[0].Message != ":OUTP ON\n" {
		t.Errorf("first message = %q, want %q", trace[0].Message, ":OUTP ON\n")
	}
}

func TestParseReader(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		input   string
		paths   []string
		wantErr bool
		errMsg  string
	}{
		{
			name:   "toml minimal",
			format: FormatTOML,
			input: `
[commands.pos]
query = "POS?"
write = "POS"
types = [{ kind = "integer", min = 0, max = 100 }]
`,
			paths: []string{"pos"},
		},
		{
			name:   "yaml minimal",
			format: FormatYAML,
			input: `
commands:
  pos:
    query: "POS?"
    write: "POS"
    types: [{kind: integer, min: 0, max: 100}]
`,
			paths: []string{"pos"},
		},
		{
			name:   "empty yaml",
			format: FormatYAML,
			input:  "",
			paths:  nil,
		},
		{
			name:   "unknown toml key",
			format: FormatTOML,
			input: `
[commands.pos]
qeury = "POS?"
`,
			wantErr: true,
			errMsg:  "unknown key",
		},
		{
			name:   "unknown yaml key",
			format: FormatYAML,
			input: `
commands:
  pos:
    qeury: "POS?"
`,
			wantErr: true,
			errMsg:  "qeury",
		},
		{
			name:    "malformed toml",
			format:  FormatTOML,
			input:   "[commands.pos\nquery = 1",
			wantErr: true,
			errMsg:  "decode toml",
		},
		{
			name:    "unsupported format",
			format:  Format("json"),
			input:   "{}",
			wantErr: true,
			errMsg:  "unsupported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := ParseReader(strings.NewReader(tt.input), tt.format)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errMsg)
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %v, want substring %q", err, tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			root, err := cat.Build()
			if err != nil {
				t.Fatalf("Build() unexpected error: %v", err)
			}
			if got := root.Paths(); !reflect.DeepEqual(got, tt.paths) {
				t.Errorf("Paths() = %v, want %v", got, tt.paths)
			}
		})
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		path   string
		errMsg string
	}{
		{
			name: "unknown kind",
			input: `
[commands.pos]
query = "POS?"
response = [{ kind = "complex" }]
`,
			path:   "pos",
			errMsg: `unknown type kind "complex"`,
		},
		{
			name: "missing kind",
			input: `
[commands.pos]
query = "POS?"
response = [{ min = 1 }]
`,
			path:   "pos",
			errMsg: "kind is required",
		},
		{
			name: "fractional integer bound",
			input: `
[groups.a.commands.pos]
write = "POS"
args = [{ kind = "integer", max = 1.5 }]
`,
			path:   "a.pos",
			errMsg: "not a whole number",
		},
		{
			name: "inverted range",
			input: `
[groups.a.groups.b.commands.level]
query = "LEV?"
response = [{ kind = "float", min = 5, max = 1 }]
`,
			path:   "a.b.level",
			errMsg: "response[0]",
		},
		{
			name: "empty enum",
			input: `
[commands.mode]
query = "MODE?"
response = [{ kind = "enum" }]
`,
			path:   "mode",
			errMsg: "response[0]",
		},
		{
			name: "bad register bit",
			input: `
[commands.st]
query = "ST?"
response = [{ kind = "register", bits = { x = "flag" } }]
`,
			path:   "st",
			errMsg: `register bit "x"`,
		},
		{
			name: "no headers",
			input: `
[commands.nothing]
types = [{ kind = "integer" }]
`,
			path:   "nothing",
			errMsg: "needs a query or write header",
		},
		{
			name: "name clash between command and group",
			input: `
[commands.source]
write = "SOUR"

[groups.source.commands.freq]
write = "FREQ"
`,
			path:   "source",
			errMsg: "already defined",
		},
		{
			name: "unknown preset",
			input: `
[protocol]
preset = "modbus"
`,
			path:   "protocol",
			errMsg: `unknown protocol preset "modbus"`,
		},
		{
			name: "separator contains terminator",
			input: `
[protocol]
program_data_separator = "\n"
`,
			path:   "protocol",
			errMsg: "contains the terminator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := ParseReader(strings.NewReader(tt.input), FormatTOML)
			if err != nil {
				t.Fatalf("ParseReader() unexpected error: %v", err)
			}

			_, err = cat.Build()
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.errMsg)
			}

			var cerr *Error
			if !errors.As(err, &cerr) {
				t.Fatalf("error type = %T, want *Error", err)
			}
			if cerr.Path != tt.path {
				t.Errorf("error path = %q, want %q", cerr.Path, tt.path)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want substring %q", err, tt.errMsg)
			}
		})
	}
}

func TestCommandProtocolOverride(t *testing.T) {
	input := `
[protocol]
preset = "iec60488"

[commands.level]
query = "R"
response = [{ kind = "float" }]
protocol = { preset = "oxford_isobus", address = 4 }

[commands.gain]
query = "GAIN?"
response = [{ kind = "integer" }]
protocol = { response_terminator = "\r\n" }
`
	cat, err := ParseReader(strings.NewReader(input), FormatTOML)
	if err != nil {
		t.Fatalf("ParseReader() unexpected error: %v", err)
	}
	root, err := cat.Build()
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}

	level, _ := root.Command("level")
	cfg, ok := level.Config()
	if !ok {
		t.Fatal("level has no config override")
	}
	if !reflect.DeepEqual(cfg, protocol.OxfordIsobus(4)) {
		t.Errorf("level config = %+v, want OxfordIsobus(4)", cfg)
	}

	gain, _ := root.Command("gain")
	cfg, ok = gain.Config()
	if !ok {
		t.Fatal("gain has no config override")
	}
	want := protocol.IEC60488()
	want.ResponseTerminator = "\r\n"
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("gain config = %+v, want %+v", cfg, want)
	}
}

func TestProtocolKeys(t *testing.T) {
	input := `
[commands.broadcast]
write = "T"
args = [{ kind = "integer" }]
protocol = { preset = "oxford_isobus_no_echo", address = 2 }

[commands.raw]
query = "X"
response = [{ kind = "float" }]
protocol = { preset = "signal_recovery", status_bytes = 0, write_response = false }

[commands.echo]
query = "MEAS"
response = [{ kind = "float" }]
protocol = { echo_header = true, echo_length = 2, error_prefix = "!" }
`
	cat, err := ParseReader(strings.NewReader(input), FormatTOML)
	if err != nil {
		t.Fatalf("ParseReader() unexpected error: %v", err)
	}
	root, err := cat.Build()
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}

	rawWant := protocol.SignalRecovery()
	rawWant.StatusBytes = 0
	rawWant.WriteResponse = false

	echoWant := protocol.IEC60488()
	echoWant.EchoHeader = true
	echoWant.EchoLength = 2
	echoWant.ErrorPrefix = "!"

	tests := []struct {
		path string
		want protocol.Config
	}{
		{path: "broadcast", want: protocol.OxfordIsobusNoEcho(2)},
		{path: "raw", want: rawWant},
		{path: "echo", want: echoWant},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			cmd, err := root.Command(tt.path)
			if err != nil {
				t.Fatalf("Command() unexpected error: %v", err)
			}
			cfg, ok := cmd.Config()
			if !ok {
				t.Fatal("command has no config override")
			}
			if !reflect.DeepEqual(cfg, tt.want) {
				t.Errorf("config = %+v, want %+v", cfg, tt.want)
			}
		})
	}
}

func TestSequences(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{
			name:   "toml",
			format: FormatTOML,
			input: `
name = "amplifier"

[[groups.input.sequences.gain]]
query = "GAIN1?"
write = "GAIN1"
types = [{ kind = "integer", min = 0, max = 10 }]

[[groups.input.sequences.gain]]
query = "GAIN2?"
write = "GAIN2"
types = [{ kind = "integer", min = 0, max = 10 }]
`,
		},
		{
			name:   "yaml",
			format: FormatYAML,
			input: `
name: amplifier
groups:
  input:
    sequences:
      gain:
        - {query: "GAIN1?", write: GAIN1, types: [{kind: integer, min: 0, max: 10}]}
        - {query: "GAIN2?", write: GAIN2, types: [{kind: integer, min: 0, max: 10}]}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := ParseReader(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("ParseReader() unexpected error: %v", err)
			}
			root, err := cat.Build()
			if err != nil {
				t.Fatalf("Build() unexpected error: %v", err)
			}

			want := []string{"input.gain.0", "input.gain.1"}
			if got := root.Paths(); !reflect.DeepEqual(got, want) {
				t.Errorf("Paths() = %v, want %v", got, want)
			}

			last, err := root.Command("input.gain.-1")
			if err != nil {
				t.Fatalf("Command() unexpected error: %v", err)
			}
			if last.WriteHeader() != "GAIN2" {
				t.Errorf("WriteHeader() = %q, want GAIN2", last.WriteHeader())
			}
		})
	}
}

func TestSequenceErrors(t *testing.T) {
	input := `
[[sequences.gain]]
query = "GAIN1?"
response = [{ kind = "integer" }]

[[sequences.gain]]
response = [{ kind = "integer" }]
`
	cat, err := ParseReader(strings.NewReader(input), FormatTOML)
	if err != nil {
		t.Fatalf("ParseReader() unexpected error: %v", err)
	}

	_, err = cat.Build()
	var catErr *Error
	if !errors.As(err, &catErr) {
		t.Fatalf("Build() error = %v, want *Error", err)
	}
	if catErr.Path != "gain.1" {
		t.Errorf("Path = %q, want gain.1", catErr.Path)
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name string
		path string
		want protocol.Config
	}{
		{
			name: "yaml override",
			path: "testdata/sr830.yml",
			want: func() protocol.Config {
				cfg := protocol.IEC60488()
				cfg.ResponseTerminator = "\r"
				return cfg
			}(),
		},
		{
			name: "toml preset with address",
			path: "testdata/isobus.toml",
			want: protocol.OxfordIsobus(3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadConfig(tt.path)
			if err != nil {
				t.Fatalf("LoadConfig() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LoadConfig() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "a.toml", want: FormatTOML},
		{path: "dir/b.YAML", want: FormatYAML},
		{path: "c.yml", want: FormatYAML},
		{path: "d.json", wantErr: true},
		{path: "noext", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatOf(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatOf() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FormatOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse("testdata/missing.toml")
	if err == nil || !strings.Contains(err.Error(), "failed to open catalog") {
		t.Errorf("Parse() error = %v, want open failure", err)
	}
}
