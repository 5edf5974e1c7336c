package driver

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PathSeparator joins group and command names into a path.
const PathSeparator = "."

// Group is a named collection of commands and sub-groups. Commands are
// addressed by dotted paths relative to the group, e.g. "source.frequency".
//
// Sequences of commands, such as one command per channel, are addressed by
// index: "channel.0" is the first item, "channel.-1" the last.
//
// A Group is not safe for concurrent modification. Build it once, then share
// it between drivers.
type Group struct {
	name      string
	commands  map[string]*Command
	sequences map[string]*Sequence
	groups    map[string]*Group
}

// NewGroup creates an empty group.
func NewGroup(name string) *Group {
	return &Group{
		name:      name,
		commands:  make(map[string]*Command),
		sequences: make(map[string]*Sequence),
		groups:    make(map[string]*Group),
	}
}

// Name returns the group name.
func (g *Group) Name() string {
	return g.name
}

// Add registers cmd under name.
//
// Example:
//
//	g := driver.NewGroup("lockin")
//	g.Add("sensitivity", driver.ReadWrite("SEN?", "SEN", sensitivity))
func (g *Group) Add(name string, cmd *Command) error {
	if err := g.checkName(name); err != nil {
		return err
	}
	if cmd == nil {
		return &DeclarationError{Name: name, Reason: "command cannot be nil"}
	}
	g.commands[name] = cmd
	return nil
}

// AddSequence registers an indexed sequence of commands under name.
//
// Example:
//
//	g.AddSequence("gain", driver.ReadWrite("GAIN1?", "GAIN1", gain), driver.ReadWrite("GAIN2?", "GAIN2", gain))
//	d.Get(ctx, "gain.1") // GAIN2?
func (g *Group) AddSequence(name string, cmds ...*Command) error {
	if err := g.checkName(name); err != nil {
		return err
	}
	seq, err := NewSequence(cmds...)
	if err != nil {
		return &DeclarationError{Name: name, Reason: "sequence", Err: err}
	}
	g.sequences[name] = seq
	return nil
}

// Attach adds sub as a child group under its own name.
//
// Example:
//
//	source := driver.NewGroup("source")
//	source.Add("frequency", driver.ReadWrite(":SOUR:FREQ?", ":SOUR:FREQ", types.Float{}))
//	root.Attach(source) // root path "source.frequency"
func (g *Group) Attach(sub *Group) error {
	if sub == nil {
		return &DeclarationError{Name: g.name, Reason: "group cannot be nil"}
	}
	if sub == g || sub.contains(g) {
		return &DeclarationError{Name: sub.name, Reason: "group cannot contain itself"}
	}
	if err := g.checkName(sub.name); err != nil {
		return err
	}
	g.groups[sub.name] = sub
	return nil
}

// Merge copies the commands and sub-groups of other into g, so that an
// optional command set shares g's namespace. Name clashes are errors and
// leave g unchanged.
func (g *Group) Merge(other *Group) error {
	if other == nil {
		return &DeclarationError{Name: g.name, Reason: "group cannot be nil"}
	}
	if other == g {
		return &DeclarationError{Name: g.name, Reason: "group cannot merge itself"}
	}
	for _, name := range other.names() {
		if g.taken(name) {
			return &DeclarationError{Name: name, Reason: fmt.Sprintf("already defined in group %q", g.name)}
		}
	}
	for name, sub := range other.groups {
		if sub == g || sub.contains(g) {
			return &DeclarationError{Name: name, Reason: "group cannot contain itself"}
		}
	}

	for name, cmd := range other.commands {
		g.commands[name] = cmd
	}
	for name, seq := range other.sequences {
		g.sequences[name] = seq
	}
	for name, sub := range other.groups {
		g.groups[name] = sub
	}
	return nil
}

// Command resolves a dotted path to a command. A path ending in an integer
// selects an item of a sequence.
func (g *Group) Command(path string) (*Command, error) {
	if i := strings.LastIndex(path, PathSeparator); i >= 0 {
		if n, err := strconv.Atoi(path[i+1:]); err == nil {
			seq, err := g.Sequence(path[:i])
			if err != nil {
				return nil, err
			}
			cmd, err := seq.At(n)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", path, err)
			}
			return cmd, nil
		}
	}

	parent, name, err := g.walkTo(path)
	if err != nil {
		return nil, err
	}
	cmd, ok := parent.commands[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, path)
	}
	return cmd, nil
}

// Sequence resolves a dotted path to a sequence.
func (g *Group) Sequence(path string) (*Sequence, error) {
	parent, name, err := g.walkTo(path)
	if err != nil {
		return nil, err
	}
	seq, ok := parent.sequences[name]
	if !ok {
		return nil, fmt.Errorf("%w: no sequence %q", ErrUnknownCommand, path)
	}
	return seq, nil
}

// Group resolves a dotted path to a sub-group.
func (g *Group) Group(path string) (*Group, error) {
	parent, name, err := g.walkTo(path)
	if err != nil {
		return nil, err
	}
	sub, ok := parent.groups[name]
	if !ok {
		return nil, fmt.Errorf("%w: no group %q", ErrUnknownCommand, path)
	}
	return sub, nil
}

// Walk calls fn for every command in the tree, depth first in name order.
// Sequence items are visited as "name.0", "name.1" and so on. Walking stops
// at the first error.
func (g *Group) Walk(fn func(path string, cmd *Command) error) error {
	return g.walk("", fn)
}

// Paths returns the paths of every command in the tree, in Walk order.
func (g *Group) Paths() []string {
	var paths []string
	_ = g.Walk(func(path string, _ *Command) error {
		paths = append(paths, path)
		return nil
	})
	return paths
}

func (g *Group) walk(prefix string, fn func(string, *Command) error) error {
	for _, name := range sortedKeys(g.commands) {
		if err := fn(prefix+name, g.commands[name]); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(g.sequences) {
		for i, cmd := range g.sequences[name].commands {
			if err := fn(prefix+name+PathSeparator+strconv.Itoa(i), cmd); err != nil {
				return err
			}
		}
	}
	for _, name := range sortedKeys(g.groups) {
		if err := g.groups[name].walk(prefix+name+PathSeparator, fn); err != nil {
			return err
		}
	}
	return nil
}

// contains reports whether target is reachable from g's sub-groups.
func (g *Group) contains(target *Group) bool {
	for _, sub := range g.groups {
		if sub == target || sub.contains(target) {
			return true
		}
	}
	return false
}

// walkTo descends through every path element but the last.
func (g *Group) walkTo(path string) (*Group, string, error) {
	if path == "" {
		return nil, "", fmt.Errorf("%w: empty path", ErrUnknownCommand)
	}

	parts := strings.Split(path, PathSeparator)
	current := g
	for _, part := range parts[:len(parts)-1] {
		sub, ok := current.groups[part]
		if !ok {
			return nil, "", fmt.Errorf("%w: %q", ErrUnknownCommand, path)
		}
		current = sub
	}
	return current, parts[len(parts)-1], nil
}

func (g *Group) checkName(name string) error {
	if name == "" {
		return &DeclarationError{Name: name, Reason: "name cannot be empty"}
	}
	if strings.Contains(name, PathSeparator) {
		return &DeclarationError{Name: name, Reason: "name cannot contain " + PathSeparator}
	}
	if _, err := strconv.Atoi(name); err == nil {
		return &DeclarationError{Name: name, Reason: "name cannot be a number"}
	}
	if g.taken(name) {
		return &DeclarationError{Name: name, Reason: fmt.Sprintf("already defined in group %q", g.name)}
	}
	return nil
}

func (g *Group) taken(name string) bool {
	_, cmd := g.commands[name]
	_, seq := g.sequences[name]
	_, sub := g.groups[name]
	return cmd || seq || sub
}

// names returns every name defined directly in g.
func (g *Group) names() []string {
	names := append(sortedKeys(g.commands), sortedKeys(g.sequences)...)
	return append(names, sortedKeys(g.groups)...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
