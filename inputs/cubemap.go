package inputs

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/richinsley/termshader/gpu"
)

// FaceSuffixes are the cubemap face file suffixes in +X, -X, +Y, -Y, +Z,
// -Z order.
var FaceSuffixes = [6]string{"px", "nx", "py", "ny", "pz", "nz"}

// FaceExtensions are tried in order when locating face files.
var FaceExtensions = []string{"png", "jpg", "jpeg", "bmp", "tif", "tiff", "webp"}

// Cubemap is the six-face environment texture bound as iCubemap.
type Cubemap struct {
	Texture     gpu.Texture
	FaceSize    int
	Prefix      string
	Placeholder bool
}

// FindFaces locates the six face files for prefix. All faces must share
// the extension of the first one found.
func FindFaces(prefix string) ([6]string, error) {
	var faces [6]string
	for _, ext := range FaceExtensions {
		first := fmt.Sprintf("%s-%s.%s", prefix, FaceSuffixes[0], ext)
		if _, err := os.Stat(first); err != nil {
			continue
		}
		for i, s := range FaceSuffixes {
			faces[i] = fmt.Sprintf("%s-%s.%s", prefix, s, ext)
			if _, err := os.Stat(faces[i]); err != nil {
				return faces, &TextureLoadError{Path: faces[i], Err: err}
			}
		}
		return faces, nil
	}
	return faces, &TextureLoadError{Path: prefix, Err: errors.New("no cubemap faces found")}
}

// LoadCubemap loads the six faces for prefix. Faces must be square and of
// equal size.
func LoadCubemap(dev gpu.Device, prefix string) (*Cubemap, error) {
	paths, err := FindFaces(prefix)
	if err != nil {
		return nil, err
	}

	desc := gpu.CubemapDesc{Label: prefix}
	for i, p := range paths {
		pix, w, h, err := loadPixels(p)
		if err != nil {
			return nil, err
		}
		if w != h {
			return nil, &TextureLoadError{Path: p, Err: fmt.Errorf("cubemap faces must be square, got %dx%d", w, h)}
		}
		if i == 0 {
			desc.Size = w
		} else if w != desc.Size {
			return nil, &TextureLoadError{Path: p, Err: fmt.Errorf("face is %dpx, expected %dpx", w, desc.Size)}
		}
		desc.Faces[i] = pix
	}

	tex, err := dev.CreateCubemap(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to upload cubemap %s: %w", prefix, err)
	}
	log.Info("Loaded cubemap", "cubemap", prefix, "size", desc.Size)
	return &Cubemap{Texture: tex, FaceSize: desc.Size, Prefix: prefix}, nil
}

// NewPlaceholderCubemap creates a 1x1 transparent cubemap.
func NewPlaceholderCubemap(dev gpu.Device) (*Cubemap, error) {
	desc := gpu.CubemapDesc{Label: "cubemap placeholder", Size: 1}
	for i := range desc.Faces {
		desc.Faces[i] = transparentPixel
	}
	tex, err := dev.CreateCubemap(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to create placeholder cubemap: %w", err)
	}
	return &Cubemap{Texture: tex, FaceSize: 1, Placeholder: true}, nil
}

// LoadCubemapOrPlaceholder mirrors LoadOrPlaceholder for cubemaps.
func LoadCubemapOrPlaceholder(dev gpu.Device, prefix string) (*Cubemap, error) {
	if prefix == "" {
		return NewPlaceholderCubemap(dev)
	}
	cm, err := LoadCubemap(dev, prefix)
	if err == nil {
		return cm, nil
	}
	var loadErr *TextureLoadError
	if !errors.As(err, &loadErr) {
		return nil, err
	}
	log.Warn("Using placeholder cubemap", "cubemap", prefix, "err", loadErr.Err)
	ph, phErr := NewPlaceholderCubemap(dev)
	if phErr != nil {
		return nil, phErr
	}
	return ph, loadErr
}

func (c *Cubemap) Release() {
	if c == nil || c.Texture == nil {
		return
	}
	c.Texture.Release()
	c.Texture = nil
}
