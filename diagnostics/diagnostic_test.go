package diagnostics

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/pulse-lang/core-compiler/ast"
)

func TestEngineAccumulates(t *testing.T) {
	d := NewDiagnosticEngine()
	be.True(t, !d.HasErrors())
	be.Err(t, d.Err(), nil)

	d.Error(PhaseSemantic, ast.Pos{Line: 3, Column: 5}, "a", "redeclaration of %q", "a")
	d.Warning(PhaseCodegen, ast.Pos{}, "", "unused value")
	d.Error(PhaseCodegen, ast.Pos{}, "+", "unsupported operation")

	be.Equal(t, d.ErrorCount(), 2)
	be.Equal(t, d.WarningCount(), 1)
	be.Equal(t, len(d.All()), 3)
	be.Equal(t, len(d.InPhase(PhaseCodegen)), 2)
	be.Equal(t, d.All()[0].String(), `3:5: ERROR: semantic 'a': redeclaration of "a"`)

	err := d.Err()
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "unsupported operation"))
	be.True(t, !strings.Contains(err.Error(), "unused value"))
}

func TestPrint(t *testing.T) {
	d := NewDiagnosticEngine()
	d.Warning(PhaseCodegen, ast.Pos{}, "", "first")
	d.Error(PhaseSemantic, ast.Pos{Line: 1, Column: 1}, "x", "second")

	var buf bytes.Buffer
	d.Print(&buf)
	be.Equal(t, buf.String(), "WARNING: codegen: first\n1:1: ERROR: semantic 'x': second\n")
}

func failing() (err error) {
	defer Recover(&err)
	Fatal(PhaseCodegen, ast.Pos{}, "loop context stack is empty")
	return nil
}

func TestFatalRecover(t *testing.T) {
	err := failing()
	be.True(t, IsStructural(err))
	be.Equal(t, err.Error(), "fatal codegen error: loop context stack is empty")
	be.True(t, IsStructural(fmt.Errorf("lowering: %w", err)))
	be.True(t, !IsStructural(fmt.Errorf("plain")))
}

func TestRecoverRepanicsForeignValues(t *testing.T) {
	defer func() {
		be.Equal(t, recover(), any("boom"))
	}()
	func() (err error) {
		defer Recover(&err)
		panic("boom")
	}()
}
