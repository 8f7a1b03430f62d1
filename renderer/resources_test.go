package renderer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/termshader/gpu"
	"github.com/richinsley/termshader/gpu/gputest"
	"github.com/richinsley/termshader/inputs"
	"github.com/richinsley/termshader/shaderconfig"
)

func newTestResources(t *testing.T, dev *gputest.Device, params shaderconfig.Resolved) *Resources {
	t.Helper()
	r, err := NewResources(dev, ResourceConfig{
		Name:    "test",
		Width:   640,
		Height:  480,
		Params:  params,
		Program: gpu.Program{Name: "test"},
	})
	if err != nil {
		t.Fatalf("NewResources: %v", err)
	}
	return r
}

func TestNewResourcesAllocates(t *testing.T) {
	dev := gputest.New()
	r := newTestResources(t, dev, shaderconfig.Resolved{})

	want := map[string]int{
		gputest.KindRenderTarget: 1,
		gputest.KindSampler:      1,
		gputest.KindBuffer:       1,
		gputest.KindTexture:      4,
		gputest.KindCubemap:      1,
		gputest.KindPipeline:     1,
		gputest.KindBindSet:      1,
	}
	for kind, n := range want {
		if got := dev.Live(kind); got != n {
			t.Errorf("live %s = %d, want %d", kind, got, n)
		}
	}
	if r.State() != Ready {
		t.Errorf("state = %v", r.State())
	}
	for i, res := range r.ChannelResolutions() {
		if res != (mgl32.Vec2{1, 1}) {
			t.Errorf("channel %d resolution = %v", i, res)
		}
	}
	if r.ContentResolution() != (mgl32.Vec2{640, 480}) {
		t.Errorf("content = %v", r.ContentResolution())
	}
}

func TestNewResourcesCompileError(t *testing.T) {
	dev := gputest.New()
	dev.CompileLog = "0:1: error"
	_, err := NewResources(dev, ResourceConfig{Name: "bad", Width: 10, Height: 10})
	var ce *gpu.CompileError
	if !errors.As(err, &ce) || ce.Log != "0:1: error" {
		t.Fatalf("err = %v", err)
	}
	for _, o := range dev.Objects {
		if !o.Released {
			t.Errorf("%s %d leaked", o.Kind, o.ID)
		}
	}
}

func TestNewResourcesBadTexturesDegrade(t *testing.T) {
	dev := gputest.New()
	params := shaderconfig.Resolved{
		Channels:       [4]string{"/nonexistent/a.png", "", "", ""},
		Cubemap:        "/nonexistent/sky",
		CubemapEnabled: true,
	}
	r := newTestResources(t, dev, params)
	if n := len(r.LoadErrors()); n != 2 {
		t.Errorf("load errors = %d, want 2", n)
	}
	if r.ChannelResolutions()[0] != (mgl32.Vec2{1, 1}) || r.CubemapResolution() != 1 {
		t.Error("failed loads should bind placeholders")
	}
}

func TestNewResourcesBadChannelPath(t *testing.T) {
	dir := t.TempDir()
	good := writeTexture(t, dir, "good.png", 8, 8)

	for slot := 0; slot < gpu.NumChannels; slot++ {
		t.Run(fmt.Sprintf("iChannel%d", slot), func(t *testing.T) {
			var params shaderconfig.Resolved
			for i := range params.Channels {
				params.Channels[i] = good
			}
			params.Channels[slot] = "/nonexistent/x.png"

			dev := gputest.New()
			r := newTestResources(t, dev, params)
			errs := r.LoadErrors()
			var loadErr *inputs.TextureLoadError
			if len(errs) != 1 || !errors.As(errs[0], &loadErr) || loadErr.Path != "/nonexistent/x.png" {
				t.Fatalf("load errors = %v", errs)
			}
			for i, res := range r.ChannelResolutions() {
				want := mgl32.Vec2{8, 8}
				if i == slot {
					want = mgl32.Vec2{1, 1}
				}
				if res != want {
					t.Errorf("channel %d = %v, want %v", i, res, want)
				}
			}
			r.Release()
			if n := dev.Live(gputest.KindTexture); n != 0 {
				t.Errorf("%d textures leaked", n)
			}
		})
	}
}

func TestResizeIdempotent(t *testing.T) {
	dev := gputest.New()
	r := newTestResources(t, dev, shaderconfig.Resolved{})

	if err := r.Resize(640, 480); err != nil {
		t.Fatal(err)
	}
	if n := dev.Created(gputest.KindRenderTarget); n != 1 {
		t.Fatalf("same-size resize reallocated: %d targets", n)
	}

	for i := 0; i < 2; i++ {
		if err := r.Resize(800, 600); err != nil {
			t.Fatal(err)
		}
	}
	if n := dev.Created(gputest.KindRenderTarget); n != 2 {
		t.Errorf("targets created = %d, want 2", n)
	}
	if n := dev.Live(gputest.KindRenderTarget); n != 1 {
		t.Errorf("live targets = %d, want 1", n)
	}
	if n := dev.Created(gputest.KindBindSet); n != 2 {
		t.Errorf("bind sets created = %d, want 2", n)
	}
	if n := dev.Created(gputest.KindTexture); n != 4 {
		t.Errorf("resize touched channel textures: %d created", n)
	}
	if r.ContentResolution() != (mgl32.Vec2{800, 600}) {
		t.Errorf("content = %v", r.ContentResolution())
	}
	if r.State() != Ready {
		t.Errorf("state after resize = %v", r.State())
	}
}

func TestChannel0Priority(t *testing.T) {
	dir := t.TempDir()
	path := writeTexture(t, dir, "ch0.png", 8, 8)

	dev := gputest.New()
	r := newTestResources(t, dev, shaderconfig.Resolved{Channels: [4]string{path}})
	if got := r.ChannelResolutions()[0]; got != (mgl32.Vec2{8, 8}) {
		t.Fatalf("configured channel0 = %v", got)
	}

	bg, _ := dev.CreateTexture(gpu.TextureDesc{Label: "bg", Width: 32, Height: 16})
	before := dev.Created(gputest.KindBindSet)
	if err := r.SetBackgroundTexture(bg); err != nil {
		t.Fatal(err)
	}
	if dev.Created(gputest.KindBindSet) != before {
		t.Error("background set while inactive rebuilt the bind set")
	}
	if got := r.ChannelResolutions()[0]; got != (mgl32.Vec2{8, 8}) {
		t.Errorf("inactive background changed channel0 to %v", got)
	}

	if err := r.SetUseBackgroundAsChannel0(true); err != nil {
		t.Fatal(err)
	}
	if got := r.ChannelResolutions()[0]; got != (mgl32.Vec2{32, 16}) {
		t.Errorf("background priority channel0 = %v, want 32x16", got)
	}
	if id := textureID(dev.LastBindSet().Desc.Textures[0]); id != textureID(bg) {
		t.Errorf("bound texture %d, want background %d", id, textureID(bg))
	}

	// Flag active without a background falls back to the configured texture.
	if err := r.SetBackgroundTexture(nil); err != nil {
		t.Fatal(err)
	}
	if got := r.ChannelResolutions()[0]; got != (mgl32.Vec2{8, 8}) {
		t.Errorf("channel0 without background = %v", got)
	}

	r.Release()
	if bg.(*gputest.Object).Released {
		t.Error("resources released the borrowed background texture")
	}
}

func TestChannel0PlaceholderWithBackgroundFlagOnly(t *testing.T) {
	dev := gputest.New()
	r := newTestResources(t, dev, shaderconfig.Resolved{UseBackgroundAsChannel: true})
	if got := r.ChannelResolutions()[0]; got != (mgl32.Vec2{1, 1}) {
		t.Errorf("channel0 = %v, want placeholder", got)
	}
}

func TestSwapChannelTextureRejectsIndex(t *testing.T) {
	dev := gputest.New()
	r := newTestResources(t, dev, shaderconfig.Resolved{})
	events := len(dev.Events)

	for _, idx := range []int{0, 5, -1} {
		err := r.SwapChannelTexture(idx, "")
		if !errors.Is(err, ErrInvalidChannelIndex) {
			t.Errorf("index %d: err = %v", idx, err)
		}
	}
	if len(dev.Events) != events {
		t.Error("rejected swap touched the device")
	}
}

func TestSwapChannelTexture(t *testing.T) {
	dir := t.TempDir()
	path := writeTexture(t, dir, "noise.png", 16, 4)

	dev := gputest.New()
	r := newTestResources(t, dev, shaderconfig.Resolved{})
	oldID := textureID(r.channels[2].Texture)
	oldBindSet := dev.LastBindSet().ID

	if err := r.SwapChannelTexture(3, path); err != nil {
		t.Fatal(err)
	}
	if got := r.ChannelResolutions()[2]; got != (mgl32.Vec2{16, 4}) {
		t.Errorf("iChannel2 = %v", got)
	}

	newBindSet := dev.LastBindSet().ID
	created := dev.EventIndex(fmt.Sprintf("create %s %d", gputest.KindBindSet, newBindSet))
	releasedTex := dev.EventIndex(fmt.Sprintf("release %s %d", gputest.KindTexture, oldID))
	releasedSet := dev.EventIndex(fmt.Sprintf("release %s %d", gputest.KindBindSet, oldBindSet))
	if created < 0 || releasedTex < created || releasedSet < created {
		t.Errorf("old objects released before new bind set: create=%d tex=%d set=%d", created, releasedTex, releasedSet)
	}
	if r.State() != Ready {
		t.Errorf("state = %v", r.State())
	}
}

func TestSwapChannelTextureLoadFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeTexture(t, dir, "ok.png", 4, 4)
	dev := gputest.New()
	r := newTestResources(t, dev, shaderconfig.Resolved{Channels: [4]string{"", path}})

	err := r.SwapChannelTexture(2, dir+"/missing.png")
	var loadErr *inputs.TextureLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("err = %v", err)
	}
	if got := r.ChannelResolutions()[1]; got != (mgl32.Vec2{1, 1}) {
		t.Errorf("failed swap should bind placeholder, got %v", got)
	}
	if dev.Live(gputest.KindTexture) != 4 {
		t.Errorf("live textures = %d", dev.Live(gputest.KindTexture))
	}
}

func TestSwapCubemap(t *testing.T) {
	dev := gputest.New()
	r := newTestResources(t, dev, shaderconfig.Resolved{})
	err := r.SwapCubemap("/nonexistent/sky")
	var loadErr *inputs.TextureLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("err = %v", err)
	}
	if dev.Live(gputest.KindCubemap) != 1 || dev.Created(gputest.KindCubemap) != 2 {
		t.Errorf("cubemaps live=%d created=%d", dev.Live(gputest.KindCubemap), dev.Created(gputest.KindCubemap))
	}
}

func TestRebuildFailureKeepsState(t *testing.T) {
	dir := t.TempDir()
	path := writeTexture(t, dir, "noise.png", 16, 4)
	dev := gputest.New()
	r := newTestResources(t, dev, shaderconfig.Resolved{})
	bs := r.BindSet()

	dev.BindSetErr = errors.New("out of descriptors")
	if err := r.SwapChannelTexture(1, path); err == nil {
		t.Fatal("expected rebuild error")
	}
	if r.BindSet() != bs {
		t.Error("bind set replaced despite failure")
	}
	if got := r.ChannelResolutions()[0]; got != (mgl32.Vec2{1, 1}) {
		t.Errorf("channel0 = %v after failed swap", got)
	}
	if err := r.Resize(100, 100); err == nil {
		t.Fatal("expected resize rebuild error")
	}
	if r.ContentResolution() != (mgl32.Vec2{640, 480}) {
		t.Errorf("content = %v after failed resize", r.ContentResolution())
	}
}

func TestBackgroundRebuildFailureKeepsState(t *testing.T) {
	dir := t.TempDir()
	path := writeTexture(t, dir, "ch0.png", 8, 8)
	dev := gputest.New()
	r := newTestResources(t, dev, shaderconfig.Resolved{Channels: [4]string{path}})
	bg, _ := dev.CreateTexture(gpu.TextureDesc{Label: "bg", Width: 32, Height: 16})
	if err := r.SetBackgroundTexture(bg); err != nil {
		t.Fatal(err)
	}

	dev.BindSetErr = errors.New("out of descriptors")
	if err := r.SetUseBackgroundAsChannel0(true); err == nil {
		t.Fatal("expected rebuild error")
	}
	dev.BindSetErr = nil
	if err := r.Resize(800, 600); err != nil {
		t.Fatal(err)
	}
	if got := r.ChannelResolutions()[0]; got != (mgl32.Vec2{8, 8}) {
		t.Errorf("failed toggle applied by later rebuild: channel0 = %v", got)
	}

	if err := r.SetUseBackgroundAsChannel0(true); err != nil {
		t.Fatal(err)
	}
	other, _ := dev.CreateTexture(gpu.TextureDesc{Label: "bg2", Width: 64, Height: 64})
	dev.BindSetErr = errors.New("out of descriptors")
	if err := r.SetBackgroundTexture(other); err == nil {
		t.Fatal("expected rebuild error")
	}
	dev.BindSetErr = nil
	if err := r.Resize(640, 480); err != nil {
		t.Fatal(err)
	}
	if got := r.ChannelResolutions()[0]; got != (mgl32.Vec2{32, 16}) {
		t.Errorf("failed background swap applied by later rebuild: channel0 = %v", got)
	}
}

func TestReload(t *testing.T) {
	dev := gputest.New()
	r := newTestResources(t, dev, shaderconfig.Resolved{})
	first := r.Pipeline()
	bindSets := dev.Created(gputest.KindBindSet)

	dev.CompileLog = "bad token"
	err := r.Reload(gpu.Program{Name: "v2"})
	var ce *gpu.CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v", err)
	}
	if r.Pipeline() != first || first.(*gputest.Pipeline).Released {
		t.Error("failed reload lost the previous pipeline")
	}

	dev.CompileLog = ""
	if err := r.Reload(gpu.Program{Name: "v3"}); err != nil {
		t.Fatal(err)
	}
	if r.Pipeline() == first || !first.(*gputest.Pipeline).Released {
		t.Error("successful reload did not replace the pipeline")
	}
	if dev.Created(gputest.KindBindSet) != bindSets || dev.Created(gputest.KindTexture) != 4 {
		t.Error("reload touched textures or bind set")
	}
}

func TestReleaseIdempotent(t *testing.T) {
	dev := gputest.New()
	r := newTestResources(t, dev, shaderconfig.Resolved{})
	r.Release()
	r.Release()

	for _, o := range dev.Objects {
		if !o.Released {
			t.Errorf("%s %d not released", o.Kind, o.ID)
		}
	}
	if dev.DoubleReleases != 0 {
		t.Errorf("double releases = %d", dev.DoubleReleases)
	}
	if r.State() != Disposed {
		t.Errorf("state = %v", r.State())
	}
	if err := r.Resize(1, 1); !errors.Is(err, ErrDisposed) {
		t.Errorf("resize after release: %v", err)
	}
	if err := r.SwapChannelTexture(1, ""); !errors.Is(err, ErrDisposed) {
		t.Errorf("swap after release: %v", err)
	}
	if err := r.Reload(gpu.Program{}); !errors.Is(err, ErrDisposed) {
		t.Errorf("reload after release: %v", err)
	}
}
