// Package gputest provides a recording gpu.Device for tests.
package gputest

import (
	"fmt"

	"github.com/richinsley/termshader/gpu"
)

// Object kinds reported by Device.Created and Device.Live.
const (
	KindTexture      = "texture"
	KindCubemap      = "cubemap"
	KindRenderTarget = "target"
	KindSampler      = "sampler"
	KindBuffer       = "buffer"
	KindPipeline     = "pipeline"
	KindBindSet      = "bindset"
)

// Object is the common state of every fake GPU object.
type Object struct {
	ID       int
	Kind     string
	Label    string
	Width    int
	Height   int
	Pixels   []byte
	Released bool

	dev *Device
}

func (o *Object) Size() (int, int) { return o.Width, o.Height }

func (o *Object) Release() {
	if o.Released {
		o.dev.DoubleReleases++
		return
	}
	o.Released = true
	o.dev.Events = append(o.dev.Events, fmt.Sprintf("release %s %d", o.Kind, o.ID))
}

type Buffer struct {
	*Object
	Data []byte
}

func (b *Buffer) Size() int { return b.Width }

type RenderTarget struct {
	*Object
	tex *Object
}

func (t *RenderTarget) Texture() gpu.Texture { return t.tex }

func (t *RenderTarget) Release() {
	t.Object.Release()
	t.tex.Released = true
}

type Pipeline struct {
	*Object
	Program gpu.Program
}

type BindSet struct {
	*Object
	Desc gpu.BindSetDesc
}

// Device records every call. Set the error fields to inject failures.
type Device struct {
	// CompileLog, when non-empty, makes CreatePipeline fail with it.
	CompileLog string
	// SubmitErr makes Submit fail.
	SubmitErr error
	// BindSetErr makes CreateBindSet fail.
	BindSetErr error

	Objects        []*Object
	Writes         [][]byte
	Passes         []gpu.PassDesc
	DoubleReleases int

	// Events logs creations and releases in order, as "create <kind> <id>"
	// and "release <kind> <id>".
	Events []string

	nextID      int
	lastBindSet *BindSet
}

func New() *Device {
	return &Device{}
}

func (d *Device) newObject(kind, label string, w, h int) *Object {
	d.nextID++
	o := &Object{ID: d.nextID, Kind: kind, Label: label, Width: w, Height: h, dev: d}
	d.Objects = append(d.Objects, o)
	d.Events = append(d.Events, fmt.Sprintf("create %s %d", kind, o.ID))
	return o
}

// Created counts objects of kind ever created.
func (d *Device) Created(kind string) int {
	n := 0
	for _, o := range d.Objects {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// Live counts objects of kind not yet released.
func (d *Device) Live(kind string) int {
	n := 0
	for _, o := range d.Objects {
		if o.Kind == kind && !o.Released {
			n++
		}
	}
	return n
}

// EventIndex returns the position of event in Events, or -1.
func (d *Device) EventIndex(event string) int {
	for i, e := range d.Events {
		if e == event {
			return i
		}
	}
	return -1
}

// LastBindSet returns the most recently created bind set.
func (d *Device) LastBindSet() *BindSet {
	return d.lastBindSet
}

func (d *Device) CreateTexture(desc gpu.TextureDesc) (gpu.Texture, error) {
	if want := desc.Width * desc.Height * 4; desc.Pixels != nil && len(desc.Pixels) != want {
		return nil, fmt.Errorf("texture %s: got %d bytes, want %d", desc.Label, len(desc.Pixels), want)
	}
	o := d.newObject(KindTexture, desc.Label, desc.Width, desc.Height)
	o.Pixels = desc.Pixels
	return o, nil
}

func (d *Device) CreateCubemap(desc gpu.CubemapDesc) (gpu.Texture, error) {
	for i, f := range desc.Faces {
		if len(f) != desc.Size*desc.Size*4 {
			return nil, fmt.Errorf("cubemap %s: face %d has %d bytes", desc.Label, i, len(f))
		}
	}
	return d.newObject(KindCubemap, desc.Label, desc.Size, desc.Size), nil
}

func (d *Device) CreateRenderTarget(label string, width, height int) (gpu.RenderTarget, error) {
	t := &RenderTarget{Object: d.newObject(KindRenderTarget, label, width, height)}
	t.tex = &Object{Kind: "target-texture", Label: label, Width: width, Height: height, dev: d}
	return t, nil
}

func (d *Device) CreateSampler(desc gpu.SamplerDesc) (gpu.Sampler, error) {
	return d.newObject(KindSampler, desc.Wrap+"/"+desc.Filter, 0, 0), nil
}

func (d *Device) CreateUniformBuffer(size int) (gpu.Buffer, error) {
	return &Buffer{Object: d.newObject(KindBuffer, "uniforms", size, 0)}, nil
}

func (d *Device) CreatePipeline(p gpu.Program) (gpu.Pipeline, error) {
	if d.CompileLog != "" {
		return nil, &gpu.CompileError{Name: p.Name, Log: d.CompileLog}
	}
	return &Pipeline{Object: d.newObject(KindPipeline, p.Name, 0, 0), Program: p}, nil
}

func (d *Device) CreateBindSet(desc gpu.BindSetDesc) (gpu.BindSet, error) {
	if d.BindSetErr != nil {
		return nil, d.BindSetErr
	}
	for i, t := range desc.Textures {
		if t == nil {
			return nil, fmt.Errorf("bind set %s: texture slot %d is empty", desc.Label, i)
		}
		if o := object(t); o != nil && o.Released {
			return nil, fmt.Errorf("bind set %s: texture slot %d was released", desc.Label, i)
		}
	}
	bs := &BindSet{Object: d.newObject(KindBindSet, desc.Label, 0, 0), Desc: desc}
	d.lastBindSet = bs
	return bs, nil
}

func (d *Device) WriteBuffer(b gpu.Buffer, data []byte) error {
	buf, ok := b.(*Buffer)
	if !ok {
		return fmt.Errorf("foreign buffer %T", b)
	}
	if len(data) > buf.Size() {
		return fmt.Errorf("write of %d bytes overflows %d byte buffer", len(data), buf.Size())
	}
	buf.Data = append([]byte(nil), data...)
	d.Writes = append(d.Writes, buf.Data)
	return nil
}

func (d *Device) Submit(pass gpu.PassDesc) error {
	if d.SubmitErr != nil {
		return &gpu.SubmitError{Err: d.SubmitErr}
	}
	d.Passes = append(d.Passes, pass)
	return nil
}

// object unwraps the fake object behind a gpu.Texture, if any.
func object(t gpu.Texture) *Object {
	switch v := t.(type) {
	case *Object:
		return v
	case *RenderTarget:
		return v.Object
	}
	return nil
}
