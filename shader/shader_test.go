package shader

import (
	"regexp"
	"strings"
	"testing"

	"github.com/richinsley/termshader/uniforms"
)

func TestUniformBlockMatchesPayload(t *testing.T) {
	start := strings.Index(preamble, "uniform Uniforms {")
	end := strings.Index(preamble, "};")
	if start < 0 || end < start {
		t.Fatal("uniform block not found")
	}
	member := regexp.MustCompile(`(vec2|vec4|float)\s+(\w+);`)
	sizes := map[string]int{"float": 4, "vec2": 8, "vec4": 16}

	offset := 0
	offsets := map[string]int{}
	for _, m := range member.FindAllStringSubmatch(preamble[start:end], -1) {
		size := sizes[m[1]]
		// std140 never lets a member straddle its own alignment.
		if offset%size != 0 && size != 8 {
			t.Fatalf("%s misaligned at %d", m[2], offset)
		}
		offsets[m[2]] = offset
		offset += size
	}
	if offset != uniforms.Size {
		t.Errorf("block size = %d, want %d", offset, uniforms.Size)
	}

	tests := map[string]int{
		"iResolution":          0,
		"iMouse":               16,
		"iOpacity":             48,
		"iFrame":               60,
		"iCurrentCursor":       80,
		"iTimeCursorChange":    144,
		"iCursorShaderColor":   160,
		"iChannelResolution0":  176,
		"iChannelResolution4":  240,
		"iCubemapResolution":   256,
		"iBackgroundColor":     272,
		"iProgress":            288,
		"iCursorGlowIntensity": 156,
	}
	for name, want := range tests {
		if got, ok := offsets[name]; !ok || got != want {
			t.Errorf("%s at %d, want %d", name, got, want)
		}
	}
}

func TestFragmentSource(t *testing.T) {
	user := "void mainImage(out vec4 fragColor, in vec2 fragCoord) { fragColor = vec4(1.0); }"
	src := FragmentSource(user)

	if !strings.HasPrefix(src, "#version 300 es\n") {
		t.Error("missing WebGL2 version line")
	}
	for _, want := range []string{
		"layout(std140) uniform Uniforms {",
		"uniform sampler2D iChannel0;",
		"uniform sampler2D iChannel4;",
		"uniform samplerCube iCubemap;",
		"vec3 iChannelResolution[5];",
		"out vec4 outColor;",
		user,
		"mainImage(shaderColor, gl_FragCoord.xy);",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("source missing %q", want)
		}
	}
	if strings.Index(src, user) > strings.Index(src, "void main(void)") {
		t.Error("author code must precede main")
	}
	if strings.Count(src, "uniform sampler") != len(Samplers) {
		t.Errorf("sampler declarations = %d, want %d", strings.Count(src, "uniform sampler"), len(Samplers))
	}
}

func TestGenerateVertexShader(t *testing.T) {
	vs := GenerateVertexShader()
	if !strings.HasPrefix(vs, "#version 410 core") || !strings.Contains(vs, "gl_VertexID") {
		t.Errorf("unexpected vertex shader:\n%s", vs)
	}
	if strings.Contains(vs, " in ") {
		t.Error("vertex shader should not read attributes")
	}
}
