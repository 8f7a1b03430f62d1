// Package inputs loads the auxiliary textures an effect samples: the four
// iChannel textures, the terminal background reference and the cubemap.
package inputs

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/termshader/gpu"
)

// Kind says where a channel texture came from.
type Kind int

const (
	Placeholder Kind = iota
	File
	Background
)

func (k Kind) String() string {
	switch k {
	case Placeholder:
		return "placeholder"
	case File:
		return "file"
	case Background:
		return "background"
	}
	return "unknown"
}

var transparentPixel = []byte{0, 0, 0, 0}

// ChannelTexture is one texture bound to an iChannel slot.
type ChannelTexture struct {
	Kind    Kind
	Texture gpu.Texture
	Path    string
	Width   int
	Height  int
}

// NewPlaceholder creates the 1x1 transparent texture bound to unused slots.
func NewPlaceholder(dev gpu.Device) (*ChannelTexture, error) {
	tex, err := dev.CreateTexture(gpu.TextureDesc{
		Label:  "channel placeholder",
		Width:  1,
		Height: 1,
		Pixels: transparentPixel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create placeholder texture: %w", err)
	}
	return &ChannelTexture{Kind: Placeholder, Texture: tex, Width: 1, Height: 1}, nil
}

// LoadChannel reads an image file and uploads it. Decode failures are
// returned as *TextureLoadError.
func LoadChannel(dev gpu.Device, path string) (*ChannelTexture, error) {
	pix, w, h, err := loadPixels(path)
	if err != nil {
		return nil, err
	}
	tex, err := dev.CreateTexture(gpu.TextureDesc{Label: path, Width: w, Height: h, Pixels: pix})
	if err != nil {
		return nil, fmt.Errorf("failed to upload texture %s: %w", path, err)
	}
	log.Info("Loaded channel texture", "path", path, "width", w, "height", h)
	return &ChannelTexture{Kind: File, Texture: tex, Path: path, Width: w, Height: h}, nil
}

// LoadOrPlaceholder loads path, or creates a placeholder when path is
// empty or cannot be read. When the file fails to load the placeholder is
// returned together with the *TextureLoadError; any other error means no
// texture could be created at all.
func LoadOrPlaceholder(dev gpu.Device, path string) (*ChannelTexture, error) {
	if path == "" {
		return NewPlaceholder(dev)
	}
	ct, err := LoadChannel(dev, path)
	if err == nil {
		return ct, nil
	}
	var loadErr *TextureLoadError
	if !errors.As(err, &loadErr) {
		return nil, err
	}
	log.Warn("Using placeholder for channel texture", "path", path, "err", loadErr.Err)
	ph, phErr := NewPlaceholder(dev)
	if phErr != nil {
		return nil, phErr
	}
	return ph, loadErr
}

// BackgroundChannel wraps the terminal's background image texture. The
// caller keeps ownership of tex.
func BackgroundChannel(tex gpu.Texture) *ChannelTexture {
	w, h := tex.Size()
	return &ChannelTexture{Kind: Background, Texture: tex, Width: w, Height: h}
}

// IsReal reports whether the texture carries image data, as opposed to
// the 1x1 placeholder.
func (c *ChannelTexture) IsReal() bool {
	return c != nil && c.Kind != Placeholder && !(c.Width == 1 && c.Height == 1)
}

// Resolution is the texture size in pixels.
func (c *ChannelTexture) Resolution() mgl32.Vec2 {
	return mgl32.Vec2{float32(c.Width), float32(c.Height)}
}

// Release frees the GPU texture if this channel owns it.
func (c *ChannelTexture) Release() {
	if c == nil || c.Kind == Background || c.Texture == nil {
		return
	}
	c.Texture.Release()
	c.Texture = nil
}
