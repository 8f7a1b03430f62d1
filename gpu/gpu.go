// Package gpu declares the backend capability an effect slot consumes.
// Objects are created and released explicitly; a backend never frees an
// object that is still referenced by a live bind set.
package gpu

import "github.com/go-gl/mathgl/mgl32"

// Texture is a sampleable 2D texture or cubemap.
type Texture interface {
	Size() (width, height int)
	Release()
}

// RenderTarget is an off-screen color target whose contents can be bound
// as a texture.
type RenderTarget interface {
	Size() (width, height int)
	Texture() Texture
	Release()
}

type Sampler interface {
	Release()
}

type Buffer interface {
	Size() int
	Release()
}

type Pipeline interface {
	Release()
}

// BindSet groups the buffer, textures and sampler a draw reads.
type BindSet interface {
	Release()
}

// TextureDesc describes a 2D RGBA8 texture. Pixels are tightly packed
// rows, bottom row first.
type TextureDesc struct {
	Label         string
	Width, Height int
	Pixels        []byte
}

// CubemapDesc describes a cubemap. Faces are in +X, -X, +Y, -Y, +Z, -Z
// order, each Size*Size RGBA8.
type CubemapDesc struct {
	Label string
	Size  int
	Faces [6][]byte
}

// SamplerDesc uses the Shadertoy spellings: wrap "repeat" or "clamp",
// filter "nearest", "linear" or "mipmap".
type SamplerDesc struct {
	Wrap   string
	Filter string
}

// Program is a translated shader ready for the backend.
type Program struct {
	Name           string
	VertexSource   string
	FragmentSource string
	// Names maps declared uniform and block names to the names the
	// translator emitted.
	Names map[string]string
}

// Channel slots in a bind set.
const (
	NumChannels  = 4
	ContentSlot  = 4
	TextureSlots = 5
)

// BindSetDesc lists what a draw reads. Textures[0..3] are iChannel0-3 and
// Textures[ContentSlot] is the terminal content. Every effect pipeline
// shares one binding layout, so a bind set outlives pipeline reloads.
type BindSetDesc struct {
	Label    string
	Uniforms Buffer
	Textures [TextureSlots]Texture
	Cubemap  Texture
	Sampler  Sampler
}

// PassDesc is one draw of a full-screen strip.
type PassDesc struct {
	Target        RenderTarget
	ClearColor    mgl32.Vec4
	Pipeline      Pipeline
	BindSet       BindSet
	VertexCount   int
	InstanceCount int
}

// Device creates GPU objects and submits passes. Creation calls are
// synchronous; Submit does not wait for the GPU.
type Device interface {
	CreateTexture(desc TextureDesc) (Texture, error)
	CreateCubemap(desc CubemapDesc) (Texture, error)
	CreateRenderTarget(label string, width, height int) (RenderTarget, error)
	CreateSampler(desc SamplerDesc) (Sampler, error)
	CreateUniformBuffer(size int) (Buffer, error)
	// CreatePipeline returns a *CompileError when the backend rejects
	// the program.
	CreatePipeline(p Program) (Pipeline, error)
	CreateBindSet(desc BindSetDesc) (BindSet, error)
	WriteBuffer(b Buffer, data []byte) error
	// Submit returns a *SubmitError when the frame is rejected.
	Submit(pass PassDesc) error
}
