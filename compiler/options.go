package compiler

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ColorMode controls colored log output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Options configures one compilation.
type Options struct {
	// ModuleName names the produced IR module.
	ModuleName string `yaml:"module"`

	// EntryFunction receives the top-level statements that are not
	// function declarations or definitions.
	EntryFunction string `yaml:"entry"`

	// Runtime names the event scheduler entry points called by lowered code.
	Runtime RuntimeABI `yaml:"runtime"`

	// FoldConstants evaluates operations on constant operands at compile
	// time instead of emitting instructions.
	FoldConstants bool `yaml:"fold_constants"`

	Log LogOptions `yaml:"log"`
}

// RuntimeABI holds the symbol names of the runtime's foreign entry points.
type RuntimeABI struct {
	Register  string `yaml:"register"`
	Schedule  string `yaml:"schedule"`
	Terminate string `yaml:"terminate"`
}

type LogOptions struct {
	Level string    `yaml:"level"`
	Color ColorMode `yaml:"color"`
}

// DefaultOptions returns the options used when no configuration is given.
func DefaultOptions() Options {
	return Options{
		ModuleName:    "main",
		EntryFunction: "main",
		Runtime: RuntimeABI{
			Register:  "registerEvent",
			Schedule:  "scheduleEvent",
			Terminate: "terminateEvent",
		},
		FoldConstants: true,
		Log: LogOptions{
			Level: "info",
			Color: ColorAuto,
		},
	}
}

// ParseOptions decodes YAML configuration on top of DefaultOptions.
// filename is only used in error messages.
func ParseOptions(data []byte, filename string) (Options, error) {
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("%s: %w", filename, err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, fmt.Errorf("%s: %w", filename, err)
	}
	return opts, nil
}

// Validate checks that every field holds a usable value.
func (o Options) Validate() error {
	if o.ModuleName == "" {
		return fmt.Errorf("module name must not be empty")
	}
	if o.EntryFunction == "" {
		return fmt.Errorf("entry function name must not be empty")
	}
	abi := map[string]string{
		"register":  o.Runtime.Register,
		"schedule":  o.Runtime.Schedule,
		"terminate": o.Runtime.Terminate,
	}
	seen := make(map[string]string)
	for role, name := range abi {
		if name == "" {
			return fmt.Errorf("runtime %s entry point must not be empty", role)
		}
		if other, dup := seen[name]; dup {
			return fmt.Errorf("runtime entry point %q used for both %s and %s", name, other, role)
		}
		seen[name] = role
	}
	if _, err := ParseLogLevel(o.Log.Level); err != nil {
		return err
	}
	switch o.Log.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("unknown color mode %q", o.Log.Color)
	}
	return nil
}
