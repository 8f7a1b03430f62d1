// Package frame tracks the state that evolves between frames of a shader
// effect: the animation clock, frame timing, cursor history and input.
package frame

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// InitialFrameRate is reported until the first full second has elapsed.
const InitialFrameRate float32 = 60

// Progress mirrors the terminal's progress indicator (OSC 9;4).
type Progress struct {
	State   float32
	Percent float32
	Active  float32
	Count   float32
}

// Mouse is the pointer state in framebuffer pixels, top-left origin.
type Mouse struct {
	Pos     mgl32.Vec2
	Click   mgl32.Vec2
	Pressed bool
}

// State is the per-frame value copy handed to the uniform builder.
type State struct {
	Now           time.Time
	Time          float32
	Delta         float32
	Frame         uint32
	FrameRate     float32
	Mouse         Mouse
	KeyPressTime  float32
	Current       Snapshot
	Previous      Snapshot
	CursorChanged float32
	Progress      Progress
}

// Tracker holds the mutable frame state of one effect. It is not safe for
// concurrent use; every call happens on the render thread.
type Tracker struct {
	start     time.Time
	lastFrame time.Time
	enabled   bool
	speed     float32

	time  float32
	delta float32
	frame uint32

	fpsAccum  time.Duration
	fpsFrames uint32
	fps       float32

	current       Snapshot
	previous      Snapshot
	cursorChanged float32
	keyPress      float32

	mouse    Mouse
	progress Progress
}

// NewTracker starts the animation clock at now.
func NewTracker(now time.Time, enabled bool, speed float32) *Tracker {
	return &Tracker{
		start:     now,
		lastFrame: now,
		enabled:   enabled,
		speed:     speed,
		fps:       InitialFrameRate,
		current:   defaultSnapshot(),
		previous:  defaultSnapshot(),
	}
}

// Advance moves the tracker to now and returns the state for the frame.
func (t *Tracker) Advance(now time.Time) State {
	t.time = t.animationTime(now)

	d := now.Sub(t.lastFrame)
	if d < 0 {
		d = 0
	}
	t.lastFrame = now
	t.delta = float32(d.Seconds())

	t.fpsAccum += d
	t.fpsFrames++
	if t.fpsAccum >= time.Second {
		t.fps = float32(float64(t.fpsFrames) / t.fpsAccum.Seconds())
		t.fpsAccum = 0
		t.fpsFrames = 0
	}

	st := t.snapshot(now)
	t.frame++
	return st
}

func (t *Tracker) animationTime(now time.Time) float32 {
	if !t.enabled {
		return 0
	}
	speed := t.speed
	if speed < 0 {
		speed = 0
	}
	return float32(now.Sub(t.start).Seconds()) * speed
}

func (t *Tracker) snapshot(now time.Time) State {
	return State{
		Now:           now,
		Time:          t.time,
		Delta:         t.delta,
		Frame:         t.frame,
		FrameRate:     t.fps,
		Mouse:         t.mouse,
		KeyPressTime:  t.keyPress,
		Current:       t.current,
		Previous:      t.previous,
		CursorChanged: t.cursorChanged,
		Progress:      t.progress,
	}
}

// State returns the state as of the last Advance without moving the clock.
func (t *Tracker) State() State {
	return t.snapshot(t.lastFrame)
}

// AnimationEnabled reports whether the clock is running.
func (t *Tracker) AnimationEnabled() bool { return t.enabled }

// SetAnimationEnabled starts or stops the clock. Re-enabling restarts the
// clock at now so the animation does not jump.
func (t *Tracker) SetAnimationEnabled(enabled bool, now time.Time) {
	if enabled && !t.enabled {
		t.ResetClock(now)
	}
	t.enabled = enabled
}

// SetAnimationSpeed sets the clock multiplier. Negative values stop time.
func (t *Tracker) SetAnimationSpeed(speed float32) {
	t.speed = speed
}

// ResetClock restarts animation time at zero. Cursor and key-press stamps
// are rebased onto the new timeline.
func (t *Tracker) ResetClock(now time.Time) {
	t.start = now
	t.time = 0
	t.cursorChanged = 0
	t.keyPress = 0
	t.current.Timestamp = 0
	t.previous.Timestamp = 0
}

// Time returns the animation time computed by the last Advance.
func (t *Tracker) Time() float32 { return t.time }

// FrameRate returns the smoothed frames per second.
func (t *Tracker) FrameRate() float32 { return t.fps }

// UpdateCursor records a new cursor state. It reports whether the state
// differed from the current one; equal updates leave both snapshots
// untouched.
func (t *Tracker) UpdateCursor(pos GridPos, color mgl32.Vec4, opacity float32, style CursorStyle, now time.Time) bool {
	next := Snapshot{Pos: pos, Color: color, Opacity: opacity, Style: style}
	if next.sameState(t.current) {
		return false
	}
	ts := t.animationTime(now)
	if ts < t.current.Timestamp {
		ts = t.current.Timestamp
	}
	next.Timestamp = ts

	t.previous = t.current
	t.current = next
	t.cursorChanged = ts
	return true
}

// Cursor returns the current and previous cursor snapshots.
func (t *Tracker) Cursor() (current, previous Snapshot) {
	return t.current, t.previous
}

// UpdateKeyPress stamps the key-press time with the animation time at now.
func (t *Tracker) UpdateKeyPress(now time.Time) {
	t.keyPress = t.animationTime(now)
}

// SetMousePosition stores the pointer position in framebuffer pixels.
func (t *Tracker) SetMousePosition(x, y float32) {
	t.mouse.Pos = mgl32.Vec2{x, y}
}

// SetMouseButton records the primary button. The click position is only
// captured on press.
func (t *Tracker) SetMouseButton(pressed bool, x, y float32) {
	if pressed {
		t.mouse.Click = mgl32.Vec2{x, y}
	}
	t.mouse.Pressed = pressed
}

// UpdateProgress stores the terminal progress indicator.
func (t *Tracker) UpdateProgress(p Progress) {
	t.progress = p
}
