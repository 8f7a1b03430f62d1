package renderer

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/termshader/gpu"
	"github.com/richinsley/termshader/inputs"
	"github.com/richinsley/termshader/shaderconfig"
	"github.com/richinsley/termshader/uniforms"
)

// State is the lifecycle state of a slot's resources.
type State int

const (
	Uninitialized State = iota
	Ready
	Resizing
	SwappingTexture
	Reloading
	Disposed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Resizing:
		return "resizing"
	case SwappingTexture:
		return "swapping-texture"
	case Reloading:
		return "reloading"
	case Disposed:
		return "disposed"
	}
	return "unknown"
}

// ResourceConfig describes the resources of a new slot.
type ResourceConfig struct {
	Name    string
	Width   int
	Height  int
	Params  shaderconfig.Resolved
	Program gpu.Program
	// Background is the terminal's background image, if any. The slot
	// does not take ownership.
	Background gpu.Texture
}

// Resources owns every GPU object of one shader slot. Any change to a
// referenced object goes through rebuild, which creates the new bind set
// before the old one and any superseded objects are released.
type Resources struct {
	dev   gpu.Device
	name  string
	state State

	content  gpu.RenderTarget
	sampler  gpu.Sampler
	uniforms gpu.Buffer
	channels [gpu.NumChannels]*inputs.ChannelTexture
	cubemap  *inputs.Cubemap
	pipeline gpu.Pipeline
	bindSet  gpu.BindSet

	background    *inputs.ChannelTexture
	useBackground bool
	channel0      *inputs.ChannelTexture

	loadErrs []error
}

// NewResources compiles the program and allocates the slot. Texture and
// cubemap files that fail to load are replaced by placeholders; those
// failures are available from LoadErrors. A *gpu.CompileError is returned
// if the program is rejected.
func NewResources(dev gpu.Device, cfg ResourceConfig) (*Resources, error) {
	r := &Resources{
		dev:           dev,
		name:          cfg.Name,
		state:         Uninitialized,
		useBackground: cfg.Params.UseBackgroundAsChannel,
	}
	if cfg.Background != nil {
		r.background = inputs.BackgroundChannel(cfg.Background)
	}

	var err error
	if r.pipeline, err = dev.CreatePipeline(cfg.Program); err != nil {
		return nil, err
	}
	if err = r.allocate(cfg); err != nil {
		r.Release()
		return nil, err
	}
	if err = r.rebuild(); err != nil {
		r.Release()
		return nil, err
	}
	r.state = Ready
	log.Info("Created shader resources", "shader", r.name, "width", cfg.Width, "height", cfg.Height)
	return r, nil
}

func (r *Resources) allocate(cfg ResourceConfig) error {
	var err error
	if r.content, err = r.dev.CreateRenderTarget(r.name+" content", max(cfg.Width, 1), max(cfg.Height, 1)); err != nil {
		return fmt.Errorf("failed to create content target: %w", err)
	}
	if r.sampler, err = r.dev.CreateSampler(gpu.SamplerDesc{Wrap: "repeat", Filter: "linear"}); err != nil {
		return fmt.Errorf("failed to create sampler: %w", err)
	}
	if r.uniforms, err = r.dev.CreateUniformBuffer(uniforms.Size); err != nil {
		return fmt.Errorf("failed to create uniform buffer: %w", err)
	}
	for i, path := range cfg.Params.ChannelPaths() {
		ct, err := r.loadChannel(path)
		if ct == nil {
			return fmt.Errorf("failed to create iChannel%d: %w", i, err)
		}
		r.channels[i] = ct
	}
	cm, err := inputs.LoadCubemapOrPlaceholder(r.dev, cfg.Params.CubemapPath())
	if cm == nil {
		return err
	}
	r.noteLoadErr(err)
	r.cubemap = cm
	return nil
}

// loadChannel returns a texture for path, recording a load failure and
// falling back to the placeholder.
func (r *Resources) loadChannel(path string) (*inputs.ChannelTexture, error) {
	ct, err := inputs.LoadOrPlaceholder(r.dev, path)
	if ct == nil {
		return nil, err
	}
	r.noteLoadErr(err)
	return ct, err
}

func (r *Resources) noteLoadErr(err error) {
	var loadErr *inputs.TextureLoadError
	if errors.As(err, &loadErr) {
		r.loadErrs = append(r.loadErrs, loadErr)
	}
}

// LoadErrors returns the texture load failures seen so far.
func (r *Resources) LoadErrors() []error {
	return r.loadErrs
}

// effectiveChannel0 applies the channel 0 priority: the background image
// when enabled and present, otherwise the configured texture, which is the
// placeholder when nothing real is configured.
func (r *Resources) effectiveChannel0() *inputs.ChannelTexture {
	if r.useBackground && r.background != nil {
		return r.background
	}
	return r.channels[0]
}

func (r *Resources) rebuild() error {
	ch0 := r.effectiveChannel0()
	desc := gpu.BindSetDesc{
		Label:    r.name,
		Uniforms: r.uniforms,
		Cubemap:  r.cubemap.Texture,
		Sampler:  r.sampler,
	}
	desc.Textures[0] = ch0.Texture
	for i := 1; i < gpu.NumChannels; i++ {
		desc.Textures[i] = r.channels[i].Texture
	}
	desc.Textures[gpu.ContentSlot] = r.content.Texture()

	bs, err := r.dev.CreateBindSet(desc)
	if err != nil {
		return fmt.Errorf("failed to create bind set for %s: %w", r.name, err)
	}
	if r.bindSet != nil {
		r.bindSet.Release()
	}
	r.bindSet = bs
	r.channel0 = ch0
	log.Debug("Rebuilt bind set", "shader", r.name, "channel0", ch0.Kind)
	return nil
}

// Resize reallocates the content target. It does nothing when the size is
// unchanged.
func (r *Resources) Resize(width, height int) error {
	if r.state == Disposed {
		return ErrDisposed
	}
	width, height = max(width, 1), max(height, 1)
	if w, h := r.content.Size(); w == width && h == height {
		return nil
	}

	r.state = Resizing
	defer func() { r.state = Ready }()

	target, err := r.dev.CreateRenderTarget(r.name+" content", width, height)
	if err != nil {
		return fmt.Errorf("failed to resize content target: %w", err)
	}
	old := r.content
	r.content = target
	if err := r.rebuild(); err != nil {
		r.content = old
		target.Release()
		return err
	}
	old.Release()
	log.Debug("Resized shader resources", "shader", r.name, "width", width, "height", height)
	return nil
}

// SwapChannelTexture replaces the texture in 1-based slot index (1-4 map
// to iChannel0-3) with the image at path, or with a placeholder when path
// is empty. A file that fails to load binds the placeholder and returns
// the *inputs.TextureLoadError.
func (r *Resources) SwapChannelTexture(index int, path string) error {
	if index < 1 || index > gpu.NumChannels {
		return &InvalidChannelIndexError{Index: index}
	}
	if r.state == Disposed {
		return ErrDisposed
	}

	r.state = SwappingTexture
	defer func() { r.state = Ready }()

	ct, loadErr := r.loadChannel(path)
	if ct == nil {
		return loadErr
	}
	slot := index - 1
	old := r.channels[slot]
	r.channels[slot] = ct
	if err := r.rebuild(); err != nil {
		r.channels[slot] = old
		ct.Release()
		return err
	}
	old.Release()
	log.Info("Updated channel texture", "shader", r.name, "channel", slot, "kind", ct.Kind, "path", path)
	return loadErr
}

// SwapCubemap replaces the cubemap with the faces at prefix, or with a
// placeholder when prefix is empty.
func (r *Resources) SwapCubemap(prefix string) error {
	if r.state == Disposed {
		return ErrDisposed
	}

	r.state = SwappingTexture
	defer func() { r.state = Ready }()

	cm, loadErr := inputs.LoadCubemapOrPlaceholder(r.dev, prefix)
	if cm == nil {
		return loadErr
	}
	r.noteLoadErr(loadErr)
	old := r.cubemap
	r.cubemap = cm
	if err := r.rebuild(); err != nil {
		r.cubemap = old
		cm.Release()
		return err
	}
	old.Release()
	log.Info("Updated cubemap", "shader", r.name, "cubemap", prefix, "size", cm.FaceSize)
	return loadErr
}

// SetUseBackgroundAsChannel0 toggles the background priority for
// iChannel0.
func (r *Resources) SetUseBackgroundAsChannel0(use bool) error {
	if r.state == Disposed {
		return ErrDisposed
	}
	if r.useBackground == use {
		return nil
	}
	r.useBackground = use
	if err := r.rebuild(); err != nil {
		r.useBackground = !use
		return err
	}
	return nil
}

// SetBackgroundTexture stores the terminal background image, or clears it
// when tex is nil. The bind set is only rebuilt while the background
// priority is active.
func (r *Resources) SetBackgroundTexture(tex gpu.Texture) error {
	if r.state == Disposed {
		return ErrDisposed
	}
	old := r.background
	if tex == nil {
		r.background = nil
	} else {
		r.background = inputs.BackgroundChannel(tex)
	}
	if !r.useBackground {
		return nil
	}
	if err := r.rebuild(); err != nil {
		r.background = old
		return err
	}
	return nil
}

// Reload replaces the pipeline. On failure the previous pipeline stays in
// use and the error, normally a *gpu.CompileError, is returned.
func (r *Resources) Reload(p gpu.Program) error {
	if r.state == Disposed {
		return ErrDisposed
	}

	r.state = Reloading
	defer func() { r.state = Ready }()

	pipeline, err := r.dev.CreatePipeline(p)
	if err != nil {
		log.Error("Shader reload failed, keeping previous pipeline", "shader", r.name, "err", err)
		return err
	}
	r.pipeline.Release()
	r.pipeline = pipeline
	log.Info("Reloaded shader", "shader", r.name)
	return nil
}

// Release frees every owned object. It is safe to call more than once.
func (r *Resources) Release() {
	if r.state == Disposed {
		return
	}
	if r.bindSet != nil {
		r.bindSet.Release()
		r.bindSet = nil
	}
	if r.pipeline != nil {
		r.pipeline.Release()
		r.pipeline = nil
	}
	for i, ct := range r.channels {
		ct.Release()
		r.channels[i] = nil
	}
	r.cubemap.Release()
	r.cubemap = nil
	if r.sampler != nil {
		r.sampler.Release()
		r.sampler = nil
	}
	if r.uniforms != nil {
		r.uniforms.Release()
		r.uniforms = nil
	}
	if r.content != nil {
		r.content.Release()
		r.content = nil
	}
	r.background = nil
	r.channel0 = nil
	r.state = Disposed
	log.Debug("Released shader resources", "shader", r.name)
}

func (r *Resources) State() State { return r.state }

func (r *Resources) Pipeline() gpu.Pipeline { return r.pipeline }

func (r *Resources) BindSet() gpu.BindSet { return r.bindSet }

func (r *Resources) UniformBuffer() gpu.Buffer { return r.uniforms }

// ContentTarget is where the terminal content for this slot is drawn. It
// is bound as iChannel4.
func (r *Resources) ContentTarget() gpu.RenderTarget { return r.content }

// ChannelResolutions returns the sizes of the textures bound to
// iChannel0-3.
func (r *Resources) ChannelResolutions() [gpu.NumChannels]mgl32.Vec2 {
	var res [gpu.NumChannels]mgl32.Vec2
	if r.state == Disposed {
		return res
	}
	res[0] = r.channel0.Resolution()
	for i := 1; i < gpu.NumChannels; i++ {
		res[i] = r.channels[i].Resolution()
	}
	return res
}

func (r *Resources) ContentResolution() mgl32.Vec2 {
	if r.content == nil {
		return mgl32.Vec2{}
	}
	w, h := r.content.Size()
	return mgl32.Vec2{float32(w), float32(h)}
}

func (r *Resources) CubemapResolution() float32 {
	if r.cubemap == nil {
		return 0
	}
	return float32(r.cubemap.FaceSize)
}

// Resolutions gathers what the uniform builder needs for a pass drawn at
// viewport.
func (r *Resources) Resolutions(viewport mgl32.Vec2) uniforms.Resolutions {
	return uniforms.Resolutions{
		Viewport: viewport,
		Channels: r.ChannelResolutions(),
		Content:  r.ContentResolution(),
		Cubemap:  r.CubemapResolution(),
	}
}
