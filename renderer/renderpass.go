package renderer

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/termshader/gpu"
	"github.com/richinsley/termshader/uniforms"
)

// Full-screen quad drawn as a triangle strip without vertex buffers.
const (
	quadVertexCount   = 4
	quadInstanceCount = 1
)

// Transparent is the clear color for normal compositing.
var Transparent = mgl32.Vec4{0, 0, 0, 0}

// Execute uploads the uniform block and draws one pass of res into target.
// Every failure is returned as a *gpu.SubmitError; there is no partial
// frame to recover.
func Execute(dev gpu.Device, res *Resources, u *uniforms.Payload, target gpu.RenderTarget, clear mgl32.Vec4) error {
	if res.State() == Disposed {
		return &gpu.SubmitError{Err: ErrDisposed}
	}
	if err := dev.WriteBuffer(res.UniformBuffer(), u.Bytes()); err != nil {
		return asSubmitError(err)
	}
	err := dev.Submit(gpu.PassDesc{
		Target:        target,
		ClearColor:    clear,
		Pipeline:      res.Pipeline(),
		BindSet:       res.BindSet(),
		VertexCount:   quadVertexCount,
		InstanceCount: quadInstanceCount,
	})
	if err != nil {
		return asSubmitError(err)
	}
	return nil
}

func asSubmitError(err error) error {
	var se *gpu.SubmitError
	if errors.As(err, &se) {
		return err
	}
	return &gpu.SubmitError{Err: err}
}
