package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

const defaultTerm = "xterm-256color"

// Options configures discovery.
type Options struct {
	ShellsFile   string   // usually /etc/shells
	CatalogFile  string   // optional YAML/TOML/JSON descriptor file
	IncludeLogin bool     // offer "login -f $USER" when available
	Exclude      []string // doublestar patterns matched against Command
	Term         string   // TERM value injected into discovered shells
}

// Catalog lists the shells a session can be opened with.
type Catalog struct {
	opts   Options
	logger *zap.Logger
	host   func() hostInfo
}

// hostInfo is the slice of the environment discovery depends on.
type hostInfo struct {
	user     string
	hostname string
	home     string
	lookPath func(string) (string, error)
	stat     func(string) (os.FileInfo, error)
}

// NewCatalog validates the options and returns a catalog.
func NewCatalog(opts Options, logger *zap.Logger) (*Catalog, error) {
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid shell exclude pattern %q", pattern)
		}
	}
	if opts.Term == "" {
		opts.Term = defaultTerm
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{opts: opts, logger: logger, host: currentHost}, nil
}

// Shells discovers the host's shells, appends catalog file entries, then
// drops excluded and duplicate commands. The first occurrence wins.
func (c *Catalog) Shells() []Descriptor {
	h := c.host()
	found := c.platformShells(h)

	if c.opts.CatalogFile != "" {
		extra, err := LoadFile(c.opts.CatalogFile)
		if err != nil {
			c.logger.Warn("Failed to load shell catalog file",
				zap.String("path", c.opts.CatalogFile),
				zap.Error(err),
			)
		} else {
			found = append(found, extra...)
		}
	}

	seen := make(map[string]bool, len(found))
	shells := make([]Descriptor, 0, len(found))
	for _, d := range found {
		if seen[d.Command] || c.excluded(d.Command) {
			continue
		}
		seen[d.Command] = true
		shells = append(shells, d)
	}
	return shells
}

// Lookup returns the first descriptor with the given name.
func (c *Catalog) Lookup(name string) (Descriptor, bool) {
	for _, d := range c.Shells() {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

func (c *Catalog) excluded(command string) bool {
	for _, pattern := range c.opts.Exclude {
		if ok, _ := doublestar.Match(pattern, command); ok {
			return true
		}
	}
	return false
}

func (c *Catalog) termEnv() []string {
	return []string{"TERM=" + c.opts.Term}
}

// ParseShells reads an /etc/shells formatted list. Each usable line becomes
// a copy of base with Command set to the line and Name to its last path
// segment.
func ParseShells(r io.Reader, base Descriptor) ([]Descriptor, error) {
	var shells []Descriptor
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		d := base.Clone()
		d.Command = line
		d.Name = line[strings.LastIndex(line, "/")+1:]
		shells = append(shells, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return shells, nil
}

// loginTitle renders user@host using the short host name.
func loginTitle(user, hostname string) string {
	if hostname == "" {
		return user
	}
	short, _, _ := strings.Cut(hostname, ".")
	return user + "@" + short
}

func currentHost() hostInfo {
	h := hostInfo{
		user:     firstNonEmpty(os.Getenv("USER"), os.Getenv("USERNAME")),
		lookPath: exec.LookPath,
		stat:     os.Stat,
	}
	h.hostname, _ = os.Hostname()
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = string(os.PathSeparator)
	}
	h.home = home
	return h
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
