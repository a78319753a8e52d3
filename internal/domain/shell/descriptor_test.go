package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, Descriptor{Command: "/bin/sh"}.Validate())
	assert.ErrorIs(t, Descriptor{Name: "empty"}.Validate(), ErrNoCommand)
	assert.ErrorIs(t, Descriptor{Command: "   "}.Validate(), ErrNoCommand)
}

func TestEnvVarsSkipsMalformed(t *testing.T) {
	d := Descriptor{Env: []string{
		"TERM=xterm-256color",
		"MALFORMED",
		"=novalue",
		"EMPTY=",
		"EQUALS=a=b",
	}}

	assert.Equal(t, []EnvVar{
		{Key: "TERM", Value: "xterm-256color"},
		{Key: "EMPTY", Value: ""},
		{Key: "EQUALS", Value: "a=b"},
	}, d.EnvVars())
	assert.Equal(t, []string{"TERM=xterm-256color", "EMPTY=", "EQUALS=a=b"}, d.Environ())
}

func TestCloneDoesNotAlias(t *testing.T) {
	d := Descriptor{Command: "sh", Args: []string{"-l"}, Env: []string{"A=1"}}
	c := d.Clone()
	c.Args[0] = "-i"
	c.Env[0] = "A=2"

	assert.Equal(t, "-l", d.Args[0])
	assert.Equal(t, "A=1", d.Env[0])
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "zsh", Descriptor{Name: "zsh", Command: "/bin/zsh"}.DisplayName())
	assert.Equal(t, "/bin/zsh", Descriptor{Command: "/bin/zsh"}.DisplayName())
}
