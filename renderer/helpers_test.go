package renderer

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/richinsley/termshader/gpu"
	"github.com/richinsley/termshader/gpu/gputest"
)

// fakeTranspiler passes source through and rejects "bad".
type fakeTranspiler struct{}

func (fakeTranspiler) Transpile(name, source string) (gpu.Program, error) {
	if source == "bad" {
		return gpu.Program{}, &gpu.CompileError{Name: name, Log: "syntax error"}
	}
	return gpu.Program{Name: name, FragmentSource: source}, nil
}

func writeTexture(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetRGBA(0, 0, color.RGBA{1, 2, 3, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// payloadFloat reads the float32 at byte offset off of a uniform write.
func payloadFloat(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func textureID(tex gpu.Texture) int {
	if o, ok := tex.(*gputest.Object); ok {
		return o.ID
	}
	return -1
}
