package renderer

import (
	"errors"
	"time"

	"github.com/richinsley/termshader/gpu"
)

// ChainOrder picks which effect runs first when both are present.
type ChainOrder int

const (
	// BackgroundFirst feeds the background effect into the cursor effect.
	BackgroundFirst ChainOrder = iota
	// CursorFirst feeds the cursor effect into the background effect.
	CursorFirst
)

func (o ChainOrder) String() string {
	if o == CursorFirst {
		return "cursor-first"
	}
	return "background-first"
}

// ParseChainOrder accepts the String forms.
func ParseChainOrder(s string) (ChainOrder, error) {
	switch s {
	case "", "background-first":
		return BackgroundFirst, nil
	case "cursor-first":
		return CursorFirst, nil
	}
	return BackgroundFirst, errors.New("unknown chain order " + s)
}

// Chain runs up to two effects. The first active stage renders into the
// next stage's content target in chain mode; the last stage renders to the
// surface.
type Chain struct {
	background *Effect
	cursor     *Effect
	order      ChainOrder
	altScreen  bool
}

// NewChain takes ownership of both effects. Either may be nil.
func NewChain(background, cursor *Effect, order ChainOrder) *Chain {
	return &Chain{background: background, cursor: cursor, order: order}
}

// Stages returns the effects that run this frame, in order.
func (c *Chain) Stages() []*Effect {
	cursor := c.cursor
	if cursor != nil && c.altScreen && cursor.DisableInAltScreen() {
		cursor = nil
	}
	first, second := c.background, cursor
	if c.order == CursorFirst {
		first, second = cursor, c.background
	}
	stages := make([]*Effect, 0, 2)
	for _, e := range []*Effect{first, second} {
		if e != nil {
			stages = append(stages, e)
		}
	}
	return stages
}

// ContentTarget is where the terminal should draw this frame, or nil when
// no effect is active and the terminal draws straight to the surface.
func (c *Chain) ContentTarget() gpu.RenderTarget {
	stages := c.Stages()
	if len(stages) == 0 {
		return nil
	}
	return stages[0].ContentTarget()
}

// RenderFrame runs every active stage. A returned error is a
// *gpu.SubmitError and is fatal.
func (c *Chain) RenderFrame(now time.Time, surface gpu.RenderTarget) error {
	stages := c.Stages()
	for i, e := range stages {
		target := surface
		chainMode := i < len(stages)-1
		if chainMode {
			target = stages[i+1].ContentTarget()
		}
		if err := e.Render(now, target, chainMode); err != nil {
			return err
		}
	}
	return nil
}

// SetAltScreen records whether the terminal shows the alternate screen.
func (c *Chain) SetAltScreen(active bool) { c.altScreen = active }

// HidesCursor reports whether an active cursor effect replaces the
// terminal's own cursor.
func (c *Chain) HidesCursor() bool {
	for _, e := range c.Stages() {
		if e == c.cursor && e.HidesCursor() {
			return true
		}
	}
	return false
}

func (c *Chain) Background() *Effect { return c.background }

func (c *Chain) Cursor() *Effect { return c.cursor }

func (c *Chain) Order() ChainOrder { return c.order }

// Each calls f for every effect present, active or not.
func (c *Chain) Each(f func(*Effect)) {
	for _, e := range []*Effect{c.background, c.cursor} {
		if e != nil {
			f(e)
		}
	}
}

// Resize resizes every effect's content target.
func (c *Chain) Resize(width, height int) error {
	var errs []error
	c.Each(func(e *Effect) {
		if err := e.Resize(width, height); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

// Release frees both effects.
func (c *Chain) Release() {
	c.Each((*Effect).Release)
}
