//go:build windows

package shell

const gitBashPath = `C:\Program Files\Git\bin\bash.exe`

func (c *Catalog) platformShells(h hostInfo) []Descriptor {
	shells := []Descriptor{{
		Name:    "CMD",
		Command: "cmd.exe",
		Env:     c.termEnv(),
		Cwd:     h.home,
	}}

	if path, err := h.lookPath("powershell.exe"); err == nil {
		shells = append(shells, Descriptor{
			Name:    "PowerShell",
			Command: path,
			Env:     c.termEnv(),
			Cwd:     h.home,
		})
	}

	if _, err := h.stat(gitBashPath); err == nil {
		shells = append(shells, Descriptor{
			Name:    "Git Bash",
			Command: gitBashPath,
			Env:     c.termEnv(),
			Cwd:     h.home,
		})
	}

	return shells
}
