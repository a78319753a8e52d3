//go:build !windows

package shell

import (
	"os"

	"go.uber.org/zap"
)

func (c *Catalog) platformShells(h hostInfo) []Descriptor {
	var shells []Descriptor

	if c.opts.IncludeLogin && h.user != "" {
		if _, err := h.lookPath("login"); err == nil {
			shells = append(shells, Descriptor{
				Name:    loginTitle(h.user, h.hostname),
				Command: "login",
				Args:    []string{"-f", h.user},
				Env:     c.termEnv(),
				Cwd:     h.home,
			})
		}
	}

	if c.opts.ShellsFile == "" {
		return shells
	}

	f, err := os.Open(c.opts.ShellsFile)
	if err != nil {
		c.logger.Debug("Shells file unavailable", zap.String("path", c.opts.ShellsFile), zap.Error(err))
		return shells
	}
	defer f.Close()

	listed, err := ParseShells(f, Descriptor{Env: c.termEnv(), Cwd: h.home})
	if err != nil {
		c.logger.Warn("Failed to read shells file", zap.String("path", c.opts.ShellsFile), zap.Error(err))
	}
	return append(shells, listed...)
}
