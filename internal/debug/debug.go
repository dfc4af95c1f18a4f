//go:build debug

// Package debug provides the engine's zero-cost-when-disabled logging and
// assertions (SPEC_FULL.md's ambient "Logging" section): a line-oriented
// trace for subdivision/merge/cache decisions, and a fail-fast Assert for
// the invariants spec §7 calls InvariantViolation. Built with the debug
// tag, both are live; nodbg.go's stubs take over otherwise and every call
// site compiles to nothing.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/timandy/routine"

	"github.com/lucien-spatial/lucien/internal/xflag"
)

// Enabled is true when the debug build tag is set.
const Enabled = true

var debugPattern = xflag.Func("filter", "regexp to filter debug logs by", regexp.Compile)

// Log writes a trace line to stderr, tagged with the calling package/file
// line and the emitting goroutine's id. context, if non-empty, is a
// (format, args...) pair for a prefix shared by a run of related calls, so
// e.g. several log lines from the same split can be grepped together.
func Log(context []any, operation string, format string, args ...any) {
	skip := 1
again:
	pc, file, line, _ := runtime.Caller(skip)

	fn := runtime.FuncForPC(pc)
	name := fn.Name()
	name = name[strings.LastIndex(name, ".")+1:]
	if strings.HasPrefix(name, "log") || strings.Contains(name, "Log") {
		skip++
		goto again
	}

	pkg := fn.Name()
	pkg = strings.TrimPrefix(pkg, "github.com/lucien-spatial/lucien/")
	pkg = pkg[:strings.Index(pkg, ".")]

	buf := new(strings.Builder)
	_, _ = fmt.Fprintf(buf, "%s/%s:%d [g%04d", pkg, filepath.Base(file), line, routine.Goid())
	if len(context) >= 1 {
		_, _ = fmt.Fprintf(buf, ", "+context[0].(string), context[1:]...)
	}
	_, _ = fmt.Fprintf(buf, "] %s: ", operation)
	_, _ = fmt.Fprintf(buf, format, args...)

	if *debugPattern != nil && !(*debugPattern).MatchString(buf.String()) {
		return
	}

	_, _ = buf.WriteString("\n")
	_, _ = os.Stderr.WriteString(buf.String())
}

// Assert panics with detail if cond is false. Reserved for conditions the
// engine's own invariants (spec §8) guarantee can never fail; a firing
// Assert means a bug in the engine, not caller misuse (see spatial's
// ErrInvariantViolation).
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("lucien: internal assertion failed: "+format, args...))
	}
}
