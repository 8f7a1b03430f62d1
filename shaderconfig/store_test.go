package shaderconfig

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleStore = `
globals:
  shader_dir: /shaders
  brightness: 0.6
  cubemap_enabled: true
  cursor_color: [0, 255, 0]
shader_configs:
  crt.glsl:
    animation_speed: 0.5
    channel0: ""
    channel1: noise.png
cursor_shader_configs:
  trail.glsl:
    animation_speed: 3
    glow_radius: 12
`

func TestParseStore(t *testing.T) {
	s, err := ParseStore([]byte(sampleStore))
	if err != nil {
		t.Fatalf("ParseStore: %v", err)
	}
	if s.Globals.Brightness != 0.6 {
		t.Errorf("brightness = %v", s.Globals.Brightness)
	}
	if s.Globals.AnimationSpeed != DefaultAnimationSpeed {
		t.Errorf("missing key lost its default: %v", s.Globals.AnimationSpeed)
	}

	o := s.Override("crt.glsl")
	if o == nil || o.Channel0 == nil || *o.Channel0 != "" {
		t.Fatalf("explicit empty channel0 not preserved: %+v", o)
	}
	if o.Channel2 != nil {
		t.Errorf("absent channel2 should stay nil")
	}

	meta := &ShaderMetadata{Defaults: ShaderConfig{Channel0: str("/meta0.png")}}
	r := s.ForShader("crt.glsl", meta)
	if r.AnimationSpeed != 0.5 || r.Channels[0] != "" || r.Channels[1] != filepath.Join("/shaders", "noise.png") {
		t.Errorf("resolved = %+v", r)
	}
	if r.Brightness != 0.6 {
		t.Errorf("global brightness not used: %v", r.Brightness)
	}

	rc := s.ForCursorShader("trail.glsl", nil)
	if rc.Base.AnimationSpeed != 3 || rc.GlowRadius != 12 || rc.CursorColor != [3]uint8{0, 255, 0} {
		t.Errorf("cursor resolved = %+v", rc)
	}

	if s.Override("missing.glsl") != nil {
		t.Error("unknown shader returned an override")
	}
}

func TestLoadStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shaders.yaml")
	if err := os.WriteFile(path, []byte(sampleStore), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadStore(path); err != nil {
		t.Fatalf("LoadStore: %v", err)
	}
	if _, err := LoadStore(filepath.Join(dir, "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	empty, err := ParseStore(nil)
	if err != nil {
		t.Fatalf("empty document: %v", err)
	}
	if empty.Globals != DefaultGlobals() {
		t.Error("empty document should yield defaults")
	}
}
