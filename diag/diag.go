// Package diag wraps the structured logger used for the compiler's
// diagnostics (§6.4): warnings emitted during parsing and resolution.
// Hard failures never go through this logger, only through returned
// errors.
package diag

import (
	"os"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// Logger carries the indentation/verbosity level mentioned in §6.4 as an
// hclog field rather than literal leading whitespace, plus the parse
// session id used to tell concurrent compilations apart in shared log
// output.
type Logger struct {
	base    hclog.Logger
	session uuid.UUID
	depth   int
}

// New creates a root Logger for one Compile invocation.
func New(name string) *Logger {
	return &Logger{
		base: hclog.New(&hclog.LoggerOptions{
			Name:   name,
			Output: os.Stderr,
			Level:  hclog.Warn,
		}),
		session: uuid.New(),
	}
}

// Indent returns a child Logger one level deeper, used when the schema
// parser descends into a nested import/include.
func (l *Logger) Indent() *Logger {
	return &Logger{base: l.base, session: l.session, depth: l.depth + 1}
}

func (l *Logger) fields() []interface{} {
	return []interface{}{"session", l.session.String(), "depth", l.depth}
}

// Warn logs a non-fatal diagnostic, such as an unresolved ref fix-up or a
// skipped construct.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.base.Warn(msg, append(l.fields(), args...)...)
}

// Debug traces production handling, mirroring the original parser's
// indented trace calls.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.base.Debug(msg, append(l.fields(), args...)...)
}
