package diagnostics

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pulse-lang/core-compiler/ast"
)

// Severity levels for diagnostics
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	}
	return "INFO"
}

// Phase names the compiler stage that produced a diagnostic.
type Phase string

const (
	PhaseSemantic   Phase = "semantic"
	PhaseCodegen    Phase = "codegen"
	PhaseStructural Phase = "structural"
)

// Diagnostic represents a compiler diagnostic message
type Diagnostic struct {
	Severity Severity
	Phase    Phase
	Pos      ast.Pos
	Ident    string
	Message  string
}

func (d Diagnostic) String() string {
	var sb strings.Builder
	if d.Pos.IsValid() {
		fmt.Fprintf(&sb, "%s: ", d.Pos)
	}
	fmt.Fprintf(&sb, "%s: %s", d.Severity, d.Phase)
	if d.Ident != "" {
		fmt.Fprintf(&sb, " '%s'", d.Ident)
	}
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	return sb.String()
}

// DiagnosticEngine collects and reports diagnostics
type DiagnosticEngine struct {
	diagnostics []Diagnostic
	errorCount  int
	warnCount   int
}

// NewDiagnosticEngine creates a new diagnostic engine
func NewDiagnosticEngine() *DiagnosticEngine {
	return &DiagnosticEngine{
		diagnostics: make([]Diagnostic, 0),
	}
}

// Report records d and updates the counters.
func (d *DiagnosticEngine) Report(diag Diagnostic) {
	d.diagnostics = append(d.diagnostics, diag)
	switch diag.Severity {
	case SeverityError:
		d.errorCount++
	case SeverityWarning:
		d.warnCount++
	}
}

// Error reports an error in phase about ident at pos.
func (d *DiagnosticEngine) Error(phase Phase, pos ast.Pos, ident, format string, args ...any) {
	d.Report(Diagnostic{
		Severity: SeverityError,
		Phase:    phase,
		Pos:      pos,
		Ident:    ident,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warning reports a warning in phase about ident at pos.
func (d *DiagnosticEngine) Warning(phase Phase, pos ast.Pos, ident, format string, args ...any) {
	d.Report(Diagnostic{
		Severity: SeverityWarning,
		Phase:    phase,
		Pos:      pos,
		Ident:    ident,
		Message:  fmt.Sprintf(format, args...),
	})
}

// HasErrors returns true if any errors were reported
func (d *DiagnosticEngine) HasErrors() bool {
	return d.errorCount > 0
}

// ErrorCount returns the number of errors
func (d *DiagnosticEngine) ErrorCount() int {
	return d.errorCount
}

// WarningCount returns the number of warnings
func (d *DiagnosticEngine) WarningCount() int {
	return d.warnCount
}

// All returns the recorded diagnostics in report order.
func (d *DiagnosticEngine) All() []Diagnostic {
	return d.diagnostics
}

// InPhase returns the diagnostics produced by phase.
func (d *DiagnosticEngine) InPhase(phase Phase) []Diagnostic {
	var out []Diagnostic
	for _, diag := range d.diagnostics {
		if diag.Phase == phase {
			out = append(out, diag)
		}
	}
	return out
}

// Err joins every error-severity diagnostic into one error, or returns nil.
func (d *DiagnosticEngine) Err() error {
	if d.errorCount == 0 {
		return nil
	}
	var errs []error
	for _, diag := range d.diagnostics {
		if diag.Severity == SeverityError {
			errs = append(errs, errors.New(diag.String()))
		}
	}
	return errors.Join(errs...)
}

// Print writes all diagnostics to w, one per line.
func (d *DiagnosticEngine) Print(w io.Writer) {
	for _, diag := range d.diagnostics {
		fmt.Fprintln(w, diag.String())
	}
}
