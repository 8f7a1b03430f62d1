package renderer

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/termshader/frame"
	"github.com/richinsley/termshader/gpu"
	"github.com/richinsley/termshader/shaderconfig"
	"github.com/richinsley/termshader/uniforms"
)

// Transpiler turns author shader source into a backend program. Rejected
// source comes back as a *gpu.CompileError.
type Transpiler interface {
	Transpile(name, source string) (gpu.Program, error)
}

// EffectConfig describes one shader slot.
type EffectConfig struct {
	Name   string
	Source string
	Width  int
	Height int
	Params shaderconfig.Resolved
	// Cursor is set for cursor effects; its Base replaces Params.
	Cursor           *shaderconfig.ResolvedCursor
	AnimationEnabled bool
	WindowOpacity    float32
	KeepTextOpaque   bool
	Background       gpu.Texture
}

// Effect is one shader slot: its GPU resources, its frame state and the
// settings that feed its uniforms.
type Effect struct {
	dev        gpu.Device
	transpiler Transpiler
	name       string

	res     *Resources
	tracker *frame.Tracker
	params  uniforms.Params

	hidesCursor        bool
	disableInAltScreen bool
}

// NewEffect transpiles cfg.Source and creates the slot's resources.
func NewEffect(dev gpu.Device, tr Transpiler, cfg EffectConfig, now time.Time) (*Effect, error) {
	prog, err := tr.Transpile(cfg.Name, cfg.Source)
	if err != nil {
		return nil, err
	}

	params := cfg.Params
	e := &Effect{
		dev:        dev,
		transpiler: tr,
		name:       cfg.Name,
		params: uniforms.Params{
			WindowOpacity:  clamp(cfg.WindowOpacity, 0, 1),
			KeepTextOpaque: cfg.KeepTextOpaque,
			Cursor:         uniforms.DefaultCursorGeometry,
		},
	}
	if cfg.Cursor != nil {
		params = cfg.Cursor.Base
		e.hidesCursor = cfg.Cursor.HidesCursor
		e.disableInAltScreen = cfg.Cursor.DisableInAltScreen
		e.params.CursorEffect = cursorEffect(*cfg.Cursor)
	} else {
		e.params.CursorEffect = cursorEffect(shaderconfig.ResolveCursor(nil, nil, shaderconfig.DefaultGlobals()))
	}
	params.Brightness = clamp(params.Brightness, 0.05, 1)
	params.TextOpacity = clamp(params.TextOpacity, 0, 1)
	e.params.Shader = params

	e.res, err = NewResources(dev, ResourceConfig{
		Name:       cfg.Name,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Params:     params,
		Program:    prog,
		Background: cfg.Background,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create effect %s: %w", cfg.Name, err)
	}
	e.tracker = frame.NewTracker(now, cfg.AnimationEnabled, params.AnimationSpeed)
	return e, nil
}

func cursorEffect(rc shaderconfig.ResolvedCursor) uniforms.CursorEffect {
	c := rc.CursorColor
	return uniforms.CursorEffect{
		Color:         mgl32.Vec4{float32(c[0]) / 255, float32(c[1]) / 255, float32(c[2]) / 255, 1},
		TrailDuration: rc.TrailDuration,
		GlowRadius:    rc.GlowRadius,
		GlowIntensity: rc.GlowIntensity,
	}
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}

// Render advances the frame state and draws the effect into target. In
// chain mode the output feeds another effect rather than the surface.
func (e *Effect) Render(now time.Time, target gpu.RenderTarget, chainMode bool) error {
	st := e.tracker.Advance(now)
	w, h := target.Size()
	u := uniforms.Build(st, e.params, e.res.Resolutions(mgl32.Vec2{float32(w), float32(h)}), chainMode)
	if st.Frame%600 == 0 {
		log.Debug("Rendering effect", "shader", e.name, "frame", st.Frame, "fps", st.FrameRate)
	}
	return Execute(e.dev, e.res, &u, target, e.ClearColor())
}

// ClearColor is transparent unless a solid background color is active.
func (e *Effect) ClearColor() mgl32.Vec4 {
	bg := e.params.Background
	if bg.W() <= 0 {
		return Transparent
	}
	o := e.params.WindowOpacity
	return mgl32.Vec4{bg.X() * o, bg.Y() * o, bg.Z() * o, o}
}

// Reload transpiles new source and swaps the pipeline. The animation clock
// restarts only on success; on failure the previous pipeline keeps
// rendering and the error is returned for display.
func (e *Effect) Reload(source string, now time.Time) error {
	prog, err := e.transpiler.Transpile(e.name, source)
	if err != nil {
		log.Error("Shader transpile failed", "shader", e.name, "err", err)
		return err
	}
	if err := e.res.Reload(prog); err != nil {
		return err
	}
	e.tracker.ResetClock(now)
	return nil
}

// UpdateParams applies a freshly resolved parameter set, swapping any
// channel textures or cubemap whose path changed.
func (e *Effect) UpdateParams(p shaderconfig.Resolved) error {
	old := e.params.Shader
	p.Brightness = clamp(p.Brightness, 0.05, 1)
	p.TextOpacity = clamp(p.TextOpacity, 0, 1)
	e.params.Shader = p
	e.tracker.SetAnimationSpeed(p.AnimationSpeed)

	var errs []error
	for i, path := range p.ChannelPaths() {
		if path != old.Channels[i] {
			if err := e.res.SwapChannelTexture(i+1, path); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if p.CubemapPath() != old.CubemapPath() {
		if err := e.res.SwapCubemap(p.CubemapPath()); err != nil {
			errs = append(errs, err)
		}
	}
	if err := e.res.SetUseBackgroundAsChannel0(p.UseBackgroundAsChannel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// UpdateCursorParams applies a freshly resolved cursor parameter set.
func (e *Effect) UpdateCursorParams(rc shaderconfig.ResolvedCursor) error {
	e.hidesCursor = rc.HidesCursor
	e.disableInAltScreen = rc.DisableInAltScreen
	e.params.CursorEffect = cursorEffect(rc)
	return e.UpdateParams(rc.Base)
}

func (e *Effect) Name() string { return e.name }

func (e *Effect) Resources() *Resources { return e.res }

func (e *Effect) Tracker() *frame.Tracker { return e.tracker }

func (e *Effect) Params() uniforms.Params { return e.params }

// ContentTarget is where the terminal draws for this effect.
func (e *Effect) ContentTarget() gpu.RenderTarget { return e.res.ContentTarget() }

// HidesCursor reports whether a cursor effect replaces the normal cursor.
func (e *Effect) HidesCursor() bool { return e.hidesCursor }

// DisableInAltScreen reports whether the effect is bypassed while the alt
// screen is active.
func (e *Effect) DisableInAltScreen() bool { return e.disableInAltScreen }

func (e *Effect) Resize(width, height int) error { return e.res.Resize(width, height) }

func (e *Effect) SwapChannelTexture(index int, path string) error {
	if err := e.res.SwapChannelTexture(index, path); err != nil {
		return err
	}
	if index >= 1 && index <= gpu.NumChannels {
		e.params.Shader.Channels[index-1] = path
	}
	return nil
}

func (e *Effect) SwapCubemap(prefix string) error {
	if err := e.res.SwapCubemap(prefix); err != nil {
		return err
	}
	e.params.Shader.Cubemap = prefix
	e.params.Shader.CubemapEnabled = prefix != ""
	return nil
}

func (e *Effect) SetBackgroundTexture(tex gpu.Texture) error {
	return e.res.SetBackgroundTexture(tex)
}

func (e *Effect) SetUseBackgroundAsChannel0(use bool) error {
	if err := e.res.SetUseBackgroundAsChannel0(use); err != nil {
		return err
	}
	e.params.Shader.UseBackgroundAsChannel = use
	return nil
}

func (e *Effect) SetAnimationEnabled(enabled bool, now time.Time) {
	e.tracker.SetAnimationEnabled(enabled, now)
}

func (e *Effect) SetAnimationSpeed(speed float32) {
	e.params.Shader.AnimationSpeed = speed
	e.tracker.SetAnimationSpeed(speed)
}

func (e *Effect) SetOpacity(opacity float32) {
	e.params.WindowOpacity = clamp(opacity, 0, 1)
}

func (e *Effect) SetBrightness(brightness float32) {
	e.params.Shader.Brightness = clamp(brightness, 0.05, 1)
}

func (e *Effect) SetTextOpacity(opacity float32) {
	e.params.Shader.TextOpacity = clamp(opacity, 0, 1)
}

func (e *Effect) SetKeepTextOpaque(keep bool) {
	e.params.KeepTextOpaque = keep
}

func (e *Effect) SetFullContent(full bool) {
	e.params.Shader.FullContent = full
}

// SetBackgroundColor sets the solid background. Inactive clears it.
func (e *Effect) SetBackgroundColor(rgb mgl32.Vec3, active bool) {
	if !active {
		e.params.Background = mgl32.Vec4{}
		return
	}
	e.params.Background = rgb.Vec4(1)
}

func (e *Effect) SetMousePosition(x, y float32) {
	e.tracker.SetMousePosition(x, y)
}

func (e *Effect) SetMouseButton(pressed bool, x, y float32) {
	e.tracker.SetMouseButton(pressed, x, y)
}

func (e *Effect) KeyPress(now time.Time) {
	e.tracker.UpdateKeyPress(now)
}

// UpdateCursor records the terminal cursor. It reports whether anything
// changed.
func (e *Effect) UpdateCursor(pos frame.GridPos, color mgl32.Vec4, opacity float32, style frame.CursorStyle, now time.Time) bool {
	return e.tracker.UpdateCursor(pos, color, opacity, style, now)
}

func (e *Effect) SetCursorGeometry(g uniforms.CursorGeometry) {
	e.params.Cursor = g
}

func (e *Effect) SetCursorEffect(c uniforms.CursorEffect) {
	e.params.CursorEffect = c
}

func (e *Effect) UpdateProgress(p frame.Progress) {
	e.tracker.UpdateProgress(p)
}

// Release frees the slot's GPU resources.
func (e *Effect) Release() {
	e.res.Release()
}
