package inputs

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/richinsley/termshader/gpu"
	"github.com/richinsley/termshader/gpu/gputest"
)

func writePNG(t *testing.T, path string, w, h int, top color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{0, 0, 255, 255}
			if y == 0 {
				c = top
			}
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadOrPlaceholderEmptyPath(t *testing.T) {
	dev := gputest.New()
	ct, err := LoadOrPlaceholder(dev, "")
	if err != nil {
		t.Fatal(err)
	}
	if ct.Kind != Placeholder || ct.Width != 1 || ct.Height != 1 || ct.IsReal() {
		t.Errorf("placeholder = %+v", ct)
	}
}

func TestLoadOrPlaceholderFallback(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.png")
	if err := os.WriteFile(corrupt, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{filepath.Join(dir, "missing.png"), corrupt} {
		dev := gputest.New()
		ct, err := LoadOrPlaceholder(dev, path)
		var loadErr *TextureLoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("%s: err = %v, want TextureLoadError", path, err)
		}
		if loadErr.Path != path {
			t.Errorf("error path = %q", loadErr.Path)
		}
		if ct == nil || ct.Kind != Placeholder {
			t.Errorf("%s: no placeholder returned", path)
		}
	}
}

func TestLoadChannelFlipsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tex.png")
	red := color.RGBA{255, 0, 0, 255}
	writePNG(t, path, 2, 3, red)

	dev := gputest.New()
	ct, err := LoadChannel(dev, path)
	if err != nil {
		t.Fatal(err)
	}
	if ct.Kind != File || ct.Width != 2 || ct.Height != 3 || !ct.IsReal() {
		t.Fatalf("channel = %+v", ct)
	}
	if ct.Resolution().X() != 2 || ct.Resolution().Y() != 3 {
		t.Errorf("resolution = %v", ct.Resolution())
	}

	pix := dev.Objects[0].Pixels
	if len(pix) != 2*3*4 {
		t.Fatalf("uploaded %d bytes", len(pix))
	}
	last := pix[len(pix)-4:]
	if !bytes.Equal(last, []byte{255, 0, 0, 255}) {
		t.Errorf("top image row should be last in memory, got %v", last)
	}
	if !bytes.Equal(pix[:4], []byte{0, 0, 255, 255}) {
		t.Errorf("first row = %v", pix[:4])
	}
}

func TestReleaseOwnership(t *testing.T) {
	dev := gputest.New()
	ph, _ := NewPlaceholder(dev)
	ph.Release()
	ph.Release()
	if dev.Live(gputest.KindTexture) != 0 || dev.DoubleReleases != 0 {
		t.Errorf("placeholder release: live=%d double=%d", dev.Live(gputest.KindTexture), dev.DoubleReleases)
	}

	bg, _ := dev.CreateTexture(gpuDesc(4, 2))
	ch := BackgroundChannel(bg)
	if ch.Width != 4 || ch.Height != 2 || ch.Kind != Background {
		t.Errorf("background = %+v", ch)
	}
	ch.Release()
	if dev.Live(gputest.KindTexture) != 1 {
		t.Error("background texture released by its channel")
	}
}

func writeCube(t *testing.T, prefix string, sizes [6]int) {
	t.Helper()
	for i, s := range FaceSuffixes {
		writePNG(t, prefix+"-"+s+".png", sizes[i], sizes[i], color.RGBA{uint8(i), 0, 0, 255})
	}
}

func TestLoadCubemap(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "sky")
	writeCube(t, prefix, [6]int{4, 4, 4, 4, 4, 4})

	faces, err := FindFaces(prefix)
	if err != nil {
		t.Fatal(err)
	}
	if faces[2] != prefix+"-py.png" {
		t.Errorf("face order: %v", faces)
	}

	dev := gputest.New()
	cm, err := LoadCubemap(dev, prefix)
	if err != nil {
		t.Fatal(err)
	}
	if cm.FaceSize != 4 || cm.Placeholder {
		t.Errorf("cubemap = %+v", cm)
	}
}

func TestLoadCubemapRejectsBadFaces(t *testing.T) {
	dir := t.TempDir()

	mismatched := filepath.Join(dir, "mismatch")
	writeCube(t, mismatched, [6]int{4, 4, 4, 8, 4, 4})

	nonSquare := filepath.Join(dir, "rect")
	writeCube(t, nonSquare, [6]int{4, 4, 4, 4, 4, 4})
	writePNG(t, nonSquare+"-pz.png", 4, 2, color.RGBA{})

	incomplete := filepath.Join(dir, "partial")
	writeCube(t, incomplete, [6]int{2, 2, 2, 2, 2, 2})
	os.Remove(incomplete + "-nz.png")

	for _, prefix := range []string{mismatched, nonSquare, incomplete, filepath.Join(dir, "none")} {
		dev := gputest.New()
		cm, err := LoadCubemapOrPlaceholder(dev, prefix)
		var loadErr *TextureLoadError
		if !errors.As(err, &loadErr) {
			t.Errorf("%s: err = %v", filepath.Base(prefix), err)
			continue
		}
		if cm == nil || !cm.Placeholder || cm.FaceSize != 1 {
			t.Errorf("%s: want placeholder, got %+v", filepath.Base(prefix), cm)
		}
	}
}

func TestPlaceholderCubemapLogsPath(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	prefix := filepath.Join(t.TempDir(), "sky")
	if _, err := LoadCubemapOrPlaceholder(gputest.New(), prefix); err == nil {
		t.Fatal("expected load error")
	}
	if out := buf.String(); !strings.Contains(out, "cubemap="+prefix) {
		t.Errorf("warning does not name the cubemap: %q", out)
	}
}

func gpuDesc(w, h int) gpu.TextureDesc {
	return gpu.TextureDesc{Label: "bg", Width: w, Height: h}
}
