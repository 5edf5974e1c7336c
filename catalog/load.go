package catalog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/moffa90/go-slave/driver"
	"github.com/moffa90/go-slave/protocol"
)

// Format is a catalog file encoding.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported catalog extension %q (expected .toml, .yaml or .yml)", filepath.Ext(path))
	}
}

// Parse reads a catalog file. The format follows the file extension.
//
// Example:
//
//	cat, err := catalog.Parse("sr7230.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
func Parse(path string) (*Catalog, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f, format)
}

// ParseReader reads a catalog from any io.Reader.
// This is useful for testing and for catalogs embedded in programs.
func ParseReader(r io.Reader, format Format) (*Catalog, error) {
	var c Catalog
	if err := decode(r, format, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load parses a catalog file and builds its command tree. The returned
// protocol configuration is meant for driver.WithConfig.
//
// Example:
//
//	root, cfg, err := catalog.Load("generator.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	d := driver.New(t, root, driver.WithConfig(cfg))
func Load(path string) (*driver.Group, protocol.Config, error) {
	c, err := Parse(path)
	if err != nil {
		return nil, protocol.Config{}, err
	}

	cfg, err := c.Config()
	if err != nil {
		return nil, protocol.Config{}, err
	}
	root, err := c.Build()
	if err != nil {
		return nil, protocol.Config{}, err
	}
	return root, cfg, nil
}

// LoadConfig reads a protocol configuration file. The file holds the keys
// of a catalog's protocol section at its top level:
//
//	preset = "signal_recovery"
//	response_terminator = "\r\n"
func LoadConfig(path string) (protocol.Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return protocol.Config{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return protocol.Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadConfig(f, format)
}

// ReadConfig reads a protocol configuration from any io.Reader.
func ReadConfig(r io.Reader, format Format) (protocol.Config, error) {
	var def ProtocolDef
	if err := decode(r, format, &def); err != nil {
		return protocol.Config{}, err
	}

	cfg, err := def.Resolve(protocol.DefaultConfig())
	if err != nil {
		return protocol.Config{}, &Error{Err: err}
	}
	return cfg, nil
}

func decode(r io.Reader, format Format, v any) error {
	switch format {
	case FormatTOML:
		meta, err := toml.NewDecoder(r).Decode(v)
		if err != nil {
			return fmt.Errorf("decode toml: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("decode toml: unknown key %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil && err != io.EOF {
			return fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported catalog format %q", format)
	}
	return nil
}
