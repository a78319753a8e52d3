// Package shell describes launchable shells and discovers the ones available
// on the host.
//
// A Descriptor is plain data: command, arguments, environment and working
// directory. The terminal package consumes one descriptor per session open
// and never mutates it.
//
// Discovery mirrors what desktop terminal emulators do:
//   - Unix: an optional "login -f $USER" entry titled user@host, then every
//     entry of /etc/shells
//   - Windows: CMD, PowerShell and Git Bash when installed
//
// Extra descriptors can be supplied through a YAML, TOML or JSON catalog
// file with a top-level "shells" list, and entries can be hidden with
// doublestar glob patterns matched against the command path.
package shell
