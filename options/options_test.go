package options

import "testing"

func valid() *ShaderOptions {
	str := func(s string) *string { return &s }
	num := func(n int) *int { return &n }
	f := func(v float64) *float64 { return &v }
	b := func(v bool) *bool { return &v }
	return &ShaderOptions{
		ShaderFile:       str("bg.glsl"),
		CursorShaderFile: str(""),
		ConfigFile:       str(""),
		Help:             b(false),
		Width:            num(800),
		Height:           num(600),
		Chain:            str("background-first"),
		Opacity:          f(1),
		KeepTextOpaque:   b(false),
		Record:           b(false),
		OutputFile:       str(""),
		Duration:         f(10),
		FPS:              num(60),
		Codec:            str("h264"),
		FFMPEGPath:       str(""),
		Verbose:          b(false),
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *ShaderOptions)
		ok     bool
	}{
		{"defaults", func(o *ShaderOptions) {}, true},
		{"cursor only", func(o *ShaderOptions) { *o.ShaderFile = ""; *o.CursorShaderFile = "c.glsl" }, true},
		{"no shaders", func(o *ShaderOptions) { *o.ShaderFile = "" }, false},
		{"zero width", func(o *ShaderOptions) { *o.Width = 0 }, false},
		{"opacity", func(o *ShaderOptions) { *o.Opacity = 1.5 }, false},
		{"record no output", func(o *ShaderOptions) { *o.Record = true }, false},
		{"record", func(o *ShaderOptions) { *o.Record = true; *o.OutputFile = "out.mp4" }, true},
		{"record zero fps", func(o *ShaderOptions) { *o.Record = true; *o.OutputFile = "out.mp4"; *o.FPS = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid()
			tt.mutate(o)
			if err := o.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
