package uniforms

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/termshader/frame"
	"github.com/richinsley/termshader/shaderconfig"
)

// CursorGeometry converts grid positions to framebuffer pixels.
type CursorGeometry struct {
	CellWidth  float32
	CellHeight float32
	Padding    float32
	OffsetX    float32
	OffsetY    float32
	// Scale is the display scale factor applied to bar and underline
	// thickness. Zero is treated as 1.
	Scale float32
}

// DefaultCursorGeometry is used until the terminal reports its metrics.
var DefaultCursorGeometry = CursorGeometry{CellWidth: 10, CellHeight: 20, Scale: 1}

// CursorEffect carries the cursor shader's configured look.
type CursorEffect struct {
	Color         mgl32.Vec4
	TrailDuration float32
	GlowRadius    float32
	GlowIntensity float32
}

// Params are the slot settings that feed the uniform block.
type Params struct {
	Shader         shaderconfig.Resolved
	WindowOpacity  float32
	KeepTextOpaque bool
	// Background is the solid background color. Alpha 0 means none.
	Background   mgl32.Vec4
	Cursor       CursorGeometry
	CursorEffect CursorEffect
}

// Resolutions are the sizes of what is actually bound to the slot.
type Resolutions struct {
	Viewport mgl32.Vec2
	Channels [4]mgl32.Vec2
	Content  mgl32.Vec2
	Cubemap  float32
}

// Build assembles the uniform block for one frame. In chain mode the pass
// feeds a later pass, so opacity is zeroed as a signal to the wrapper and
// text stays opaque.
func Build(st frame.State, p Params, res Resolutions, chainMode bool) Payload {
	height := res.Viewport.Y()

	u := Payload{
		Resolution:   res.Viewport,
		Time:         st.Time,
		TimeDelta:    st.Delta,
		Mouse:        mouse(st.Mouse, height),
		Date:         LocalDate(st.Now),
		Opacity:      p.WindowOpacity,
		TextOpacity:  p.Shader.TextOpacity,
		Frame:        float32(st.Frame),
		FrameRate:    st.FrameRate,
		ResolutionZ:  1,
		Brightness:   p.Shader.Brightness,
		TimeKeyPress: st.KeyPressTime,

		CurrentCursor:       cursorRect(st.Current, p.Cursor, height),
		PreviousCursor:      cursorRect(st.Previous, p.Cursor, height),
		CurrentCursorColor:  cursorColor(st.Current),
		PreviousCursorColor: cursorColor(st.Previous),
		TimeCursorChange:    st.CursorChanged,
		CursorTrailDuration: p.CursorEffect.TrailDuration,
		CursorGlowRadius:    p.CursorEffect.GlowRadius,
		CursorGlowIntensity: p.CursorEffect.GlowIntensity,
		CursorShaderColor:   p.CursorEffect.Color,

		CubemapResolution: mgl32.Vec4{res.Cubemap, res.Cubemap, 1, 0},
		BackgroundColor:   p.Background,
		Progress:          mgl32.Vec4{st.Progress.State, st.Progress.Percent, st.Progress.Active, st.Progress.Count},
	}
	if p.Shader.FullContent {
		u.FullContent = 1
	}
	if p.KeepTextOpaque || chainMode {
		u.TextOpacity = 1
	}
	if chainMode {
		u.Opacity = 0
	}

	for i, r := range res.Channels {
		u.ChannelResolution[i] = resolution(r)
	}
	u.ChannelResolution[4] = resolution(res.Content)
	return u
}

func resolution(size mgl32.Vec2) mgl32.Vec4 {
	return mgl32.Vec4{size.X(), size.Y(), 1, 0}
}

// mouse flips Y to a bottom-left origin. The click pair is negated while
// the button is up.
func mouse(m frame.Mouse, height float32) mgl32.Vec4 {
	x, y := m.Pos.X(), height-m.Pos.Y()
	cx, cy := m.Click.X(), height-m.Click.Y()
	if !m.Pressed {
		cx = -float32(math.Abs(float64(cx)))
		cy = -float32(math.Abs(float64(cy)))
	}
	return mgl32.Vec4{x, y, cx, cy}
}

// cursorRect returns xy = top-left corner and zw = size in pixels, in the
// bottom-left origin space of fragCoord.
func cursorRect(s frame.Snapshot, g CursorGeometry, height float32) mgl32.Vec4 {
	scale := g.Scale
	if scale == 0 {
		scale = 1
	}
	left := g.Padding + g.OffsetX + float32(s.Pos.Col)*g.CellWidth
	top := g.Padding + g.OffsetY + float32(s.Pos.Row)*g.CellHeight

	var w, h float32
	switch s.Style {
	case frame.CursorBlock:
		w, h = g.CellWidth, g.CellHeight
	case frame.CursorBar:
		w, h = 2*scale, g.CellHeight
	case frame.CursorUnderline:
		w, h = g.CellWidth, 2*scale
		top += g.CellHeight - h
	}
	return mgl32.Vec4{left, height - top, w, h}
}

func cursorColor(s frame.Snapshot) mgl32.Vec4 {
	c := s.Color
	c[3] *= s.Opacity
	return c
}
