package shell

import (
	"errors"
	"strings"
)

// ErrNoCommand is returned by Validate when a descriptor has nothing to run.
var ErrNoCommand = errors.New("shell descriptor has no command")

// Descriptor identifies a launchable backend.
type Descriptor struct {
	Name    string   `json:"name" yaml:"name" toml:"name"`
	Command string   `json:"command" yaml:"command" toml:"command"`
	Args    []string `json:"args" yaml:"args" toml:"args"`
	Env     []string `json:"env" yaml:"env" toml:"env"` // KEY=VALUE
	Cwd     string   `json:"cwd" yaml:"cwd" toml:"cwd"`
}

// EnvVar is one well-formed environment entry.
type EnvVar struct {
	Key   string
	Value string
}

// Validate reports whether the descriptor can be spawned.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Command) == "" {
		return ErrNoCommand
	}
	return nil
}

// EnvVars returns the well-formed entries of Env in order. Entries without
// '=' or with an empty key are skipped.
func (d Descriptor) EnvVars() []EnvVar {
	vars := make([]EnvVar, 0, len(d.Env))
	for _, entry := range d.Env {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		vars = append(vars, EnvVar{Key: key, Value: value})
	}
	return vars
}

// Environ returns EnvVars formatted as KEY=VALUE strings.
func (d Descriptor) Environ() []string {
	vars := d.EnvVars()
	env := make([]string, len(vars))
	for i, v := range vars {
		env[i] = v.Key + "=" + v.Value
	}
	return env
}

// Clone returns a deep copy so callers cannot alias the slices.
func (d Descriptor) Clone() Descriptor {
	out := d
	out.Args = append([]string(nil), d.Args...)
	out.Env = append([]string(nil), d.Env...)
	return out
}

// DisplayName falls back to the command when the descriptor has no name.
func (d Descriptor) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Command
}
