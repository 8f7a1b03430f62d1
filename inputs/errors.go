package inputs

import "fmt"

// TextureLoadError reports a texture or cubemap face that could not be
// read or decoded. The caller binds a placeholder in its place.
type TextureLoadError struct {
	Path string
	Err  error
}

func (e *TextureLoadError) Error() string {
	return fmt.Sprintf("failed to load texture %s: %v", e.Path, e.Err)
}

func (e *TextureLoadError) Unwrap() error { return e.Err }
