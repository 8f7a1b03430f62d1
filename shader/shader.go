package shader

import (
	"fmt"
	"strings"
)

// UniformBlock is the name of the std140 block holding the frame uniforms.
const UniformBlock = "Uniforms"

// Samplers lists the sampler uniforms in texture-unit order: iChannel0-3,
// the terminal content as iChannel4, then the cubemap.
var Samplers = []string{"iChannel0", "iChannel1", "iChannel2", "iChannel3", "iChannel4", "iCubemap"}

// ────────────────────────────────── Desktop GL ──────────────────────────────────

// The strip needs no vertex buffer: ids 0..3 map to the corners of clip
// space.
const vertexShaderSourceGL = `#version 410 core
void main() {
    vec2 corner = vec2(float(gl_VertexID & 1), float(gl_VertexID >> 1));
    gl_Position = vec4(corner * 2.0 - 1.0, 0.0, 1.0);
}
`

// ────────────────────── Dynamic preamble / user code glue ──────────────────────

// Member order and padding must match uniforms.Payload.
const preamble = `#version 300 es
precision highp float;
precision highp int;

#define HW_PERFORMANCE 1

layout(std140) uniform Uniforms {
    vec2  iResolution;
    float iTime;
    float iTimeDelta;
    vec4  iMouse;
    vec4  iDate;
    float iOpacity;
    float iTextOpacity;
    float iFullContent;
    float iFrame;
    float iFrameRate;
    float iResolutionZ;
    float iBrightness;
    float iTimeKeyPress;
    vec4  iCurrentCursor;
    vec4  iPreviousCursor;
    vec4  iCurrentCursorColor;
    vec4  iPreviousCursorColor;
    float iTimeCursorChange;
    float iCursorTrailDuration;
    float iCursorGlowRadius;
    float iCursorGlowIntensity;
    vec4  iCursorShaderColor;
    vec4  iChannelResolution0;
    vec4  iChannelResolution1;
    vec4  iChannelResolution2;
    vec4  iChannelResolution3;
    vec4  iChannelResolution4;
    vec4  iCubemapResolution;
    vec4  iBackgroundColor;
    vec4  iProgress;
};

vec3 iChannelResolution[5];
`

const helpers = `
out vec4 outColor;

#define FAST_TANH_BODY(x) ((x) * (27.0 + (x)*(x)) / (27.0 + 9.0*(x)*(x)))
float fast_tanh(float x) { return FAST_TANH_BODY(x); }
vec2  fast_tanh(vec2  x) { return FAST_TANH_BODY(x); }
vec3  fast_tanh(vec3  x) { return FAST_TANH_BODY(x); }
vec4  fast_tanh(vec4  x) { return FAST_TANH_BODY(x); }
#define tanh fast_tanh

`

// iOpacity of zero marks a pass feeding another effect. Such a pass emits
// straight background color under the terminal and terminal-only alpha.
const mainWrapper = `
void main(void)
{
    iChannelResolution[0] = iChannelResolution0.xyz;
    iChannelResolution[1] = iChannelResolution1.xyz;
    iChannelResolution[2] = iChannelResolution2.xyz;
    iChannelResolution[3] = iChannelResolution3.xyz;
    iChannelResolution[4] = iChannelResolution4.xyz;

    vec2 uv = gl_FragCoord.xy / iResolution.xy;
    vec4 shaderColor = vec4(0.0);
    mainImage(shaderColor, gl_FragCoord.xy);

    vec3 dimmedShaderRgb = shaderColor.rgb * iBrightness;
    vec4 terminalColor = texture(iChannel4, uv);
    float useSolidBg = step(0.01, iBackgroundColor.a);
    bool chained = iOpacity <= 0.0;

    if (iFullContent > 0.5) {
        float hasContent = step(0.01, terminalColor.a);
        float pixelOpacity = mix(iOpacity, iTextOpacity, hasContent);

        float useImageBg = step(2.0, iChannelResolution0.x) * (1.0 - useSolidBg);
        vec3 imageBgRgb = texture(iChannel0, uv).rgb * iBrightness;
        vec3 solidBgRgb = iBackgroundColor.rgb * iBrightness;
        vec3 bgRgb = mix(mix(vec3(0.0), imageBgRgb, useImageBg), solidBgRgb, useSolidBg);
        float hasBg = max(useSolidBg, useImageBg);

        vec3 termOverBg = terminalColor.rgb + bgRgb * (1.0 - terminalColor.a);
        vec3 termComposited = mix(terminalColor.rgb, termOverBg, hasBg);
        vec3 glowEffect = max(dimmedShaderRgb - terminalColor.rgb, vec3(0.0));
        vec3 finalRgb = termComposited + glowEffect;

        if (chained) {
            outColor = vec4(finalRgb, hasContent);
        } else {
            outColor = vec4(finalRgb * pixelOpacity, pixelOpacity);
        }
        return;
    }

    vec3 srcPremul = terminalColor.rgb * iTextOpacity;
    float srcA = terminalColor.a * iTextOpacity;
    vec3 bgColor = mix(dimmedShaderRgb, iBackgroundColor.rgb * iBrightness, useSolidBg);

    if (chained) {
        outColor = vec4(srcPremul + bgColor * (1.0 - srcA), srcA);
        return;
    }

    vec3 bgPremul = bgColor * iOpacity;
    vec3 finalRgb = srcPremul + bgPremul * (1.0 - srcA);
    float finalA = srcA + iOpacity * (1.0 - srcA);
    outColor = vec4(finalRgb, finalA);
}
`

// ────────────────────────────────── Public API ─────────────────────────────────

// GenerateVertexShader returns the GLSL 4.10 vertex stage shared by every
// effect.
func GenerateVertexShader() string {
	return vertexShaderSourceGL
}

// GeneratePreamble declares the uniform block, the samplers and the
// helpers available to author code.
func GeneratePreamble() string {
	var b strings.Builder
	b.WriteString(preamble)
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&b, "uniform sampler2D iChannel%d;\n", i)
	}
	b.WriteString("uniform samplerCube iCubemap;\n")
	b.WriteString(helpers)
	return b.String()
}

// GetMain returns the entry point that calls mainImage and composites its
// result with the terminal content.
func GetMain() string {
	return mainWrapper
}

// FragmentSource wraps an author's mainImage shader into a complete
// WebGL2 fragment shader.
func FragmentSource(user string) string {
	return GeneratePreamble() + user + "\n" + GetMain()
}
