package options

import (
	"errors"
	"fmt"
)

type ShaderOptions struct {
	ShaderFile       *string // background shader source
	CursorShaderFile *string // cursor shader source
	ConfigFile       *string // YAML shader configuration store
	Help             *bool
	Width            *int
	Height           *int
	Chain            *string // background-first or cursor-first
	Opacity          *float64
	KeepTextOpaque   *bool
	Record           *bool
	OutputFile       *string
	Duration         *float64
	FPS              *int
	Codec            *string
	FFMPEGPath       *string
	Verbose          *bool
}

// Validate checks the combinations flag parsing cannot.
func (o *ShaderOptions) Validate() error {
	if *o.ShaderFile == "" && *o.CursorShaderFile == "" {
		return errors.New("at least one of -shader or -cursor-shader is required")
	}
	if *o.Width <= 0 || *o.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", *o.Width, *o.Height)
	}
	if *o.Opacity < 0 || *o.Opacity > 1 {
		return fmt.Errorf("opacity %v out of range 0-1", *o.Opacity)
	}
	if *o.Record {
		if *o.OutputFile == "" {
			return errors.New("-record requires -output")
		}
		if *o.FPS <= 0 || *o.Duration <= 0 {
			return fmt.Errorf("recording needs positive -fps and -duration, got %d and %v", *o.FPS, *o.Duration)
		}
	}
	return nil
}
