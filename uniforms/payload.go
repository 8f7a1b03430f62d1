// Package uniforms builds the per-frame uniform block read by effect
// shaders.
package uniforms

import (
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"
)

// Payload mirrors the std140 Uniforms block declared by the shader
// wrapper. Every member is 4-byte aligned and vec4 members fall on 16-byte
// boundaries, so the Go layout is the GPU layout with no padding.
type Payload struct {
	Resolution mgl32.Vec2 // offset 0
	Time       float32
	TimeDelta  float32
	Mouse      mgl32.Vec4 // 16
	Date       mgl32.Vec4 // 32

	Opacity     float32 // 48
	TextOpacity float32
	FullContent float32
	Frame       float32

	FrameRate    float32 // 64
	ResolutionZ  float32
	Brightness   float32
	TimeKeyPress float32

	CurrentCursor       mgl32.Vec4 // 80
	PreviousCursor      mgl32.Vec4 // 96
	CurrentCursorColor  mgl32.Vec4 // 112
	PreviousCursorColor mgl32.Vec4 // 128

	TimeCursorChange    float32 // 144
	CursorTrailDuration float32
	CursorGlowRadius    float32
	CursorGlowIntensity float32

	CursorShaderColor mgl32.Vec4 // 160

	ChannelResolution [5]mgl32.Vec4 // 176
	CubemapResolution mgl32.Vec4    // 256
	BackgroundColor   mgl32.Vec4    // 272
	Progress          mgl32.Vec4    // 288
}

// Size is the byte size of the uniform block.
const Size = 304

// Bytes packs the payload little-endian in declaration order.
func (p *Payload) Bytes() []byte {
	buf, err := binary.Append(make([]byte, 0, Size), binary.LittleEndian, p)
	if err != nil {
		// Payload holds only fixed-size fields.
		panic(err)
	}
	return buf
}
