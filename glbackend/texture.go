package glbackend

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/termshader/gpu"
)

type texture struct {
	id       uint32
	target   uint32
	width    int
	height   int
	released bool
}

func (t *texture) Size() (int, int) { return t.width, t.height }

func (t *texture) Release() {
	if t.released {
		return
	}
	gl.DeleteTextures(1, &t.id)
	t.released = true
}

func (d *Device) CreateTexture(desc gpu.TextureDesc) (gpu.Texture, error) {
	if want := desc.Width * desc.Height * 4; desc.Pixels != nil && len(desc.Pixels) != want {
		return nil, fmt.Errorf("texture %s: got %d bytes, want %d", desc.Label, len(desc.Pixels), want)
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	var pix unsafe.Pointer
	if desc.Pixels != nil {
		pix = gl.Ptr(desc.Pixels)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(desc.Width), int32(desc.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, pix)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if err := checkError("create texture " + desc.Label); err != nil {
		gl.DeleteTextures(1, &id)
		return nil, err
	}
	return &texture{id: id, target: gl.TEXTURE_2D, width: desc.Width, height: desc.Height}, nil
}

func (d *Device) CreateCubemap(desc gpu.CubemapDesc) (gpu.Texture, error) {
	for i, f := range desc.Faces {
		if len(f) != desc.Size*desc.Size*4 {
			return nil, fmt.Errorf("cubemap %s: face %d has %d bytes", desc.Label, i, len(f))
		}
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	for i, face := range desc.Faces {
		gl.TexImage2D(
			gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i),
			0,
			gl.RGBA8,
			int32(desc.Size),
			int32(desc.Size),
			0,
			gl.RGBA,
			gl.UNSIGNED_BYTE,
			gl.Ptr(face),
		)
	}
	gl.GenerateMipmap(gl.TEXTURE_CUBE_MAP)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)

	if err := checkError("create cubemap " + desc.Label); err != nil {
		gl.DeleteTextures(1, &id)
		return nil, err
	}
	return &texture{id: id, target: gl.TEXTURE_CUBE_MAP, width: desc.Size, height: desc.Size}, nil
}

// renderTarget is an FBO with one RGBA8 color attachment.
type renderTarget struct {
	fbo      uint32
	tex      *texture
	released bool
}

func (r *renderTarget) Size() (int, int)     { return r.tex.Size() }
func (r *renderTarget) Texture() gpu.Texture { return r.tex }

func (r *renderTarget) Release() {
	if r.released {
		return
	}
	gl.DeleteFramebuffers(1, &r.fbo)
	r.tex.Release()
	r.released = true
}

func (d *Device) CreateRenderTarget(label string, width, height int) (gpu.RenderTarget, error) {
	var fbo, id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, id, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &fbo)
		gl.DeleteTextures(1, &id)
		return nil, fmt.Errorf("framebuffer for %s is not complete (0x%x)", label, status)
	}
	tex := &texture{id: id, target: gl.TEXTURE_2D, width: width, height: height}
	return &renderTarget{fbo: fbo, tex: tex}, nil
}

// Surface is the window's default framebuffer.
type Surface struct {
	width, height int
}

func (s *Surface) Size() (int, int) { return s.width, s.height }

// Texture is nil: the default framebuffer cannot be sampled.
func (s *Surface) Texture() gpu.Texture { return nil }

func (s *Surface) Release() {}

// SetSize records the framebuffer size after a window resize.
func (s *Surface) SetSize(width, height int) {
	s.width, s.height = width, height
}

type sampler struct {
	id       uint32
	released bool
}

func (s *sampler) Release() {
	if s.released {
		return
	}
	gl.DeleteSamplers(1, &s.id)
	s.released = true
}

func (d *Device) CreateSampler(desc gpu.SamplerDesc) (gpu.Sampler, error) {
	var id uint32
	gl.GenSamplers(1, &id)
	minFilter, magFilter := getFilterMode(desc.Filter)
	wrap := getWrapMode(desc.Wrap)
	gl.SamplerParameteri(id, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.SamplerParameteri(id, gl.TEXTURE_MAG_FILTER, magFilter)
	gl.SamplerParameteri(id, gl.TEXTURE_WRAP_S, wrap)
	gl.SamplerParameteri(id, gl.TEXTURE_WRAP_T, wrap)
	gl.SamplerParameteri(id, gl.TEXTURE_WRAP_R, wrap)
	if err := checkError("create sampler"); err != nil {
		gl.DeleteSamplers(1, &id)
		return nil, err
	}
	return &sampler{id: id}, nil
}

type buffer struct {
	id       uint32
	size     int
	released bool
}

func (b *buffer) Size() int { return b.size }

func (b *buffer) Release() {
	if b.released {
		return
	}
	gl.DeleteBuffers(1, &b.id)
	b.released = true
}

func (d *Device) CreateUniformBuffer(size int) (gpu.Buffer, error) {
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(gl.UNIFORM_BUFFER, id)
	gl.BufferData(gl.UNIFORM_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	if err := checkError("create uniform buffer"); err != nil {
		gl.DeleteBuffers(1, &id)
		return nil, err
	}
	return &buffer{id: id, size: size}, nil
}

func (d *Device) WriteBuffer(b gpu.Buffer, data []byte) error {
	buf, ok := b.(*buffer)
	if !ok {
		return fmt.Errorf("foreign buffer %T", b)
	}
	if len(data) > buf.size {
		return fmt.Errorf("write of %d bytes overflows %d byte buffer", len(data), buf.size)
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, buf.id)
	gl.BufferSubData(gl.UNIFORM_BUFFER, 0, len(data), gl.Ptr(data))
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	return checkError("write uniform buffer")
}
