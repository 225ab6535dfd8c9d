package compiler

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestDefaultOptionsValid(t *testing.T) {
	opts := DefaultOptions()
	be.Err(t, opts.Validate(), nil)
	be.Equal(t, opts.EntryFunction, "main")
	be.True(t, opts.FoldConstants)
}

func TestParseOptions(t *testing.T) {
	data := []byte(`
module: blinker
entry: start
fold_constants: false
runtime:
  register: rt_register
log:
  level: debug
  color: never
`)
	opts, err := ParseOptions(data, "pulse.yaml")
	be.Err(t, err, nil)
	be.Equal(t, opts.ModuleName, "blinker")
	be.Equal(t, opts.EntryFunction, "start")
	be.True(t, !opts.FoldConstants)
	be.Equal(t, opts.Runtime.Register, "rt_register")
	// unset keys keep their defaults
	be.Equal(t, opts.Runtime.Schedule, "scheduleEvent")
	be.Equal(t, opts.Log.Level, "debug")
	be.Equal(t, opts.Log.Color, ColorNever)
}

func TestParseOptionsErrors(t *testing.T) {
	cases := []struct{ data, want string }{
		{"module: [", "pulse.yaml"},
		{"module: ''", "module name"},
		{"entry: ''", "entry function"},
		{"log: {level: loud}", "unknown log level"},
		{"log: {color: rainbow}", "unknown color mode"},
		{"runtime: {schedule: registerEvent}", "used for both"},
		{"runtime: {terminate: ''}", "terminate entry point"},
	}
	for _, tc := range cases {
		_, err := ParseOptions([]byte(tc.data), "pulse.yaml")
		be.True(t, err != nil)
		be.True(t, strings.Contains(err.Error(), tc.want))
	}
}

func TestNewCompilerRejectsInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.ModuleName = ""
	_, err := NewCompiler(opts)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "invalid options"))
}
