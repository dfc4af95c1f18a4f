//go:build !debug

package debug

// Enabled is false outside of debug builds.
const Enabled = false

// Log and Assert are no-ops without the debug tag; the compiler inlines
// them away, so callers pay nothing for the logging/assertion call sites.
func Log([]any, string, string, ...any) {}
func Assert(bool, string, ...any)       {}
