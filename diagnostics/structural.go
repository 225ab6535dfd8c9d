package diagnostics

import (
	"errors"
	"fmt"

	"github.com/pulse-lang/core-compiler/ast"
)

// StructuralError is an invariant violation inside the compiler: scope or
// loop stack underflow, an unknown scope id, or a parse-tree shape the AST
// builder does not recognize. It always aborts the active pass.
type StructuralError struct {
	Phase   Phase
	Pos     ast.Pos
	Message string
}

func (e *StructuralError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: fatal %s error: %s", e.Pos, e.Phase, e.Message)
	}
	return fmt.Sprintf("fatal %s error: %s", e.Phase, e.Message)
}

// Fatal aborts the active pass by panicking with a *StructuralError.
// Pass entry points turn the panic back into an error with Recover.
func Fatal(phase Phase, pos ast.Pos, format string, args ...any) {
	panic(&StructuralError{Phase: phase, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Recover converts a StructuralError panic into *errp. Other panics
// propagate unchanged. It must be called directly by a deferred function.
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if se, ok := r.(*StructuralError); ok {
		*errp = se
		return
	}
	panic(r)
}

// IsStructural reports whether err is or wraps a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
