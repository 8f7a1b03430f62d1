// Package glbackend implements gpu.Device on OpenGL 4.1 core.
package glbackend

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/termshader/gpu"
	"github.com/richinsley/termshader/graphics"
)

var glInitOnce sync.Once

var _ gpu.Device = (*Device)(nil)

// Device issues GL calls on the thread that owns the context. It is not
// safe for concurrent use.
type Device struct {
	context graphics.Context
	vao     uint32
	surface *Surface
}

// New makes ctx current, loads the GL bindings and prepares the empty
// vertex array the full-screen strip is drawn from.
func New(ctx graphics.Context) (*Device, error) {
	ctx.MakeCurrent()

	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}
	log.Info("OpenGL initialized", "version", gl.GoStr(gl.GetString(gl.VERSION)), "renderer", gl.GoStr(gl.GetString(gl.RENDERER)))

	d := &Device{context: ctx}
	gl.GenVertexArrays(1, &d.vao)
	w, h := ctx.GetFramebufferSize()
	d.surface = &Surface{width: w, height: h}
	return d, nil
}

// Surface is the render target for the window itself.
func (d *Device) Surface() *Surface {
	return d.surface
}

// bindSet records bindings; GL has no object for them.
type bindSet struct {
	desc     gpu.BindSetDesc
	released bool
}

func (b *bindSet) Release() { b.released = true }

func (d *Device) CreateBindSet(desc gpu.BindSetDesc) (gpu.BindSet, error) {
	if _, ok := desc.Uniforms.(*buffer); !ok {
		return nil, fmt.Errorf("bind set %s: foreign uniform buffer %T", desc.Label, desc.Uniforms)
	}
	for i, t := range desc.Textures {
		tex, ok := t.(*texture)
		if !ok {
			return nil, fmt.Errorf("bind set %s: texture slot %d holds %T", desc.Label, i, t)
		}
		if tex.released {
			return nil, fmt.Errorf("bind set %s: texture slot %d was released", desc.Label, i)
		}
	}
	if tex, ok := desc.Cubemap.(*texture); !ok || tex.target != gl.TEXTURE_CUBE_MAP {
		return nil, fmt.Errorf("bind set %s: cubemap slot holds %T", desc.Label, desc.Cubemap)
	}
	if _, ok := desc.Sampler.(*sampler); !ok {
		return nil, fmt.Errorf("bind set %s: foreign sampler %T", desc.Label, desc.Sampler)
	}
	return &bindSet{desc: desc}, nil
}

// Submit clears pass.Target and draws the strip with the pass's pipeline
// and bindings.
func (d *Device) Submit(pass gpu.PassDesc) error {
	p, ok := pass.Pipeline.(*pipeline)
	if !ok || p.released {
		return &gpu.SubmitError{Err: fmt.Errorf("invalid pipeline %T", pass.Pipeline)}
	}
	bs, ok := pass.BindSet.(*bindSet)
	if !ok || bs.released {
		return &gpu.SubmitError{Err: fmt.Errorf("invalid bind set %T", pass.BindSet)}
	}

	fbo := uint32(0)
	switch t := pass.Target.(type) {
	case *renderTarget:
		fbo = t.fbo
	case *Surface:
	default:
		return &gpu.SubmitError{Err: fmt.Errorf("invalid render target %T", pass.Target)}
	}
	w, h := pass.Target.Size()

	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.Viewport(0, 0, int32(w), int32(h))
	gl.Disable(gl.BLEND)
	c := pass.ClearColor
	gl.ClearColor(c.X(), c.Y(), c.Z(), c.W())
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.UseProgram(p.program)
	gl.BindBufferBase(gl.UNIFORM_BUFFER, uniformBinding, bs.desc.Uniforms.(*buffer).id)
	smp := bs.desc.Sampler.(*sampler).id
	for unit, t := range bs.desc.Textures {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(gl.TEXTURE_2D, t.(*texture).id)
		gl.BindSampler(uint32(unit), smp)
	}
	cubeUnit := uint32(gpu.TextureSlots)
	gl.ActiveTexture(gl.TEXTURE0 + cubeUnit)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, bs.desc.Cubemap.(*texture).id)
	gl.BindSampler(cubeUnit, smp)

	gl.BindVertexArray(d.vao)
	gl.DrawArraysInstanced(gl.TRIANGLE_STRIP, 0, int32(pass.VertexCount), int32(pass.InstanceCount))
	gl.BindVertexArray(0)

	for unit := range bs.desc.Textures {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(gl.TEXTURE_2D, 0)
		gl.BindSampler(uint32(unit), 0)
	}
	gl.ActiveTexture(gl.TEXTURE0 + cubeUnit)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	gl.BindSampler(cubeUnit, 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.UseProgram(0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if err := checkError("submit " + p.name); err != nil {
		return &gpu.SubmitError{Err: err}
	}
	return nil
}

// ClearTarget fills target with one color. The preview uses it to stand
// in for terminal content.
func (d *Device) ClearTarget(target gpu.RenderTarget, x, y, w, h int, rgba [4]float32) {
	fbo := uint32(0)
	if rt, ok := target.(*renderTarget); ok {
		fbo = rt.fbo
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.Enable(gl.SCISSOR_TEST)
	gl.Scissor(int32(x), int32(y), int32(w), int32(h))
	gl.ClearColor(rgba[0], rgba[1], rgba[2], rgba[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.Disable(gl.SCISSOR_TEST)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// ReadPixels returns the RGBA8 contents of target, bottom row first.
func (d *Device) ReadPixels(target gpu.RenderTarget) ([]byte, error) {
	fbo := uint32(0)
	if rt, ok := target.(*renderTarget); ok {
		fbo = rt.fbo
	}
	w, h := target.Size()
	pix := make([]byte, w*h*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, fbo)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	if err := checkError("read pixels"); err != nil {
		return nil, err
	}
	return pix, nil
}

// Release frees the device's own objects. Objects handed out earlier must
// be released by their owners first.
func (d *Device) Release() {
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}
