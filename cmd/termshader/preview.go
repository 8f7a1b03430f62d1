package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/termshader/capture"
	"github.com/richinsley/termshader/frame"
	"github.com/richinsley/termshader/glbackend"
	"github.com/richinsley/termshader/glfwcontext"
	"github.com/richinsley/termshader/options"
	"github.com/richinsley/termshader/renderer"
	"github.com/richinsley/termshader/shaderconfig"
	"github.com/richinsley/termshader/translator"
	"github.com/richinsley/termshader/uniforms"
)

// Sample text lines drawn as blocks to stand in for terminal content.
var sampleLines = []int{38, 12, 54, 0, 27, 61, 9, 44}

// preview drives a chain of effects over a fake terminal grid.
type preview struct {
	opts    *options.ShaderOptions
	store   *shaderconfig.Store
	ctx     *glfwcontext.Context
	dev     *glbackend.Device
	chain   *renderer.Chain
	geom    uniforms.CursorGeometry
	cursor  frame.GridPos
	style   frame.CursorStyle
	paths   map[*renderer.Effect]string
	altMode bool
}

func run(opts *options.ShaderOptions) error {
	order, err := renderer.ParseChainOrder(*opts.Chain)
	if err != nil {
		return err
	}
	store, err := loadStore(opts)
	if err != nil {
		return err
	}

	if err := glfwcontext.InitGraphics(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	defer glfwcontext.TerminateGraphics()

	ctx, err := glfwcontext.New(*opts.Width, *opts.Height, "termshader", !*opts.Record)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer ctx.Shutdown()

	dev, err := glbackend.New(ctx)
	if err != nil {
		return err
	}
	defer dev.Release()

	tr, err := translator.Default()
	if err != nil {
		return err
	}

	scale := ctx.ContentScale()
	if scale <= 0 {
		scale = 1
	}
	p := &preview{
		opts:  opts,
		store: store,
		ctx:   ctx,
		dev:   dev,
		paths: map[*renderer.Effect]string{},
		geom: uniforms.CursorGeometry{
			CellWidth:  10 * scale,
			CellHeight: 20 * scale,
			Padding:    4 * scale,
			Scale:      scale,
		},
	}

	now := time.Now()
	bg, err := p.newEffect(tr, *opts.ShaderFile, false, now)
	if err != nil {
		return err
	}
	cur, err := p.newEffect(tr, *opts.CursorShaderFile, true, now)
	if err != nil {
		if bg != nil {
			bg.Release()
		}
		return err
	}
	p.chain = renderer.NewChain(bg, cur, order)
	defer p.chain.Release()

	p.chain.Each(func(e *renderer.Effect) {
		e.SetCursorGeometry(p.geom)
		e.UpdateCursor(p.cursor, mgl32.Vec4{1, 1, 1, 1}, 1, p.style, now)
	})

	if *opts.Record {
		return p.record()
	}
	p.bindInput()
	return p.loop()
}

func loadStore(opts *options.ShaderOptions) (*shaderconfig.Store, error) {
	store := shaderconfig.NewStore()
	if *opts.ConfigFile != "" {
		var err error
		if store, err = shaderconfig.LoadStore(*opts.ConfigFile); err != nil {
			return nil, err
		}
	}
	if store.Globals.ShaderDir == "" {
		for _, f := range []string{*opts.ShaderFile, *opts.CursorShaderFile} {
			if f != "" {
				store.Globals.ShaderDir = filepath.Dir(f)
				break
			}
		}
	}
	return store, nil
}

func (p *preview) newEffect(tr renderer.Transpiler, path string, cursor bool, now time.Time) (*renderer.Effect, error) {
	if path == "" {
		return nil, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader: %w", err)
	}
	name := filepath.Base(path)
	w, h := p.ctx.GetFramebufferSize()
	cfg := renderer.EffectConfig{
		Name:             name,
		Source:           string(src),
		Width:            w,
		Height:           h,
		AnimationEnabled: true,
		WindowOpacity:    float32(*p.opts.Opacity),
		KeepTextOpaque:   *p.opts.KeepTextOpaque,
	}
	if cursor {
		rc := p.store.ForCursorShader(name, nil)
		cfg.Cursor = &rc
	} else {
		cfg.Params = p.store.ForShader(name, nil)
	}

	e, err := renderer.NewEffect(p.dev, tr, cfg, now)
	if err != nil {
		return nil, err
	}
	for _, loadErr := range e.Resources().LoadErrors() {
		log.Warn("Texture unavailable, using placeholder", "shader", name, "err", loadErr)
	}
	p.paths[e] = path
	return e, nil
}

func (p *preview) bindInput() {
	p.ctx.OnAnyKey(func() {
		now := time.Now()
		p.chain.Each(func(e *renderer.Effect) { e.KeyPress(now) })
	})
	p.ctx.RegisterKeyCallback(glfw.KeyRight, func() { p.moveCursor(1, 0) })
	p.ctx.RegisterKeyCallback(glfw.KeyLeft, func() { p.moveCursor(-1, 0) })
	p.ctx.RegisterKeyCallback(glfw.KeyUp, func() { p.moveCursor(0, -1) })
	p.ctx.RegisterKeyCallback(glfw.KeyDown, func() { p.moveCursor(0, 1) })
	p.ctx.RegisterKeyCallback(glfw.KeyTab, func() {
		p.style = p.style.Next()
		p.moveCursor(0, 0)
	})
	p.ctx.RegisterKeyCallback(glfw.KeyR, p.reload)
	p.ctx.RegisterKeyCallback(glfw.KeyA, func() {
		p.altMode = !p.altMode
		p.chain.SetAltScreen(p.altMode)
		log.Info("Alternate screen", "active", p.altMode)
	})
	p.ctx.RegisterKeyCallback(glfw.KeyP, func() {
		now := time.Now()
		p.chain.Each(func(e *renderer.Effect) {
			e.SetAnimationEnabled(!e.Tracker().AnimationEnabled(), now)
		})
	})

	p.ctx.OnMouseMove(func(x, y float32) {
		p.chain.Each(func(e *renderer.Effect) { e.SetMousePosition(x, y) })
	})
	p.ctx.OnMouseButton(func(pressed bool, x, y float32) {
		p.chain.Each(func(e *renderer.Effect) { e.SetMouseButton(pressed, x, y) })
	})
	p.ctx.OnResize(func(width, height int) {
		p.dev.Surface().SetSize(width, height)
		if err := p.chain.Resize(width, height); err != nil {
			log.Error("Resize failed", "err", err)
		}
	})
}

func (p *preview) moveCursor(dx, dy int) {
	w, h := p.dev.Surface().Size()
	cols := max(int((float32(w)-2*p.geom.Padding)/p.geom.CellWidth), 1)
	rows := max(int((float32(h)-2*p.geom.Padding)/p.geom.CellHeight), 1)
	p.cursor.Col = min(max(p.cursor.Col+dx, 0), cols-1)
	p.cursor.Row = min(max(p.cursor.Row+dy, 0), rows-1)
	now := time.Now()
	p.chain.Each(func(e *renderer.Effect) {
		e.UpdateCursor(p.cursor, mgl32.Vec4{1, 1, 1, 1}, 1, p.style, now)
	})
}

// reload re-reads the configuration and every shader source. Failures are
// logged and leave the previous program running.
func (p *preview) reload() {
	now := time.Now()
	if store, err := loadStore(p.opts); err != nil {
		log.Error("Config reload failed", "err", err)
	} else {
		p.store = store
	}
	p.chain.Each(func(e *renderer.Effect) {
		path := p.paths[e]
		src, err := os.ReadFile(path)
		if err != nil {
			log.Error("Shader reload failed", "path", path, "err", err)
			return
		}
		if err := e.Reload(string(src), now); err != nil {
			p.ctx.SetTitle("termshader: " + e.Name() + " failed to compile")
			return
		}
		if e == p.chain.Cursor() {
			err = e.UpdateCursorParams(p.store.ForCursorShader(e.Name(), nil))
		} else {
			err = e.UpdateParams(p.store.ForShader(e.Name(), nil))
		}
		if err != nil {
			log.Warn("Some shader parameters could not be applied", "shader", e.Name(), "err", err)
		}
		p.ctx.SetTitle("termshader")
	})
}

// drawTerminal paints the fake terminal into the first stage's content
// target.
func (p *preview) drawTerminal() {
	target := p.chain.ContentTarget()
	if target == nil {
		return
	}
	w, h := target.Size()
	p.dev.ClearTarget(target, 0, 0, w, h, [4]float32{0, 0, 0, 0})

	cw, ch := int(p.geom.CellWidth), int(p.geom.CellHeight)
	pad := int(p.geom.Padding)
	for row, n := range sampleLines {
		if n == 0 {
			continue
		}
		top := pad + row*ch
		p.dev.ClearTarget(target, pad, h-top-ch+ch/4, n*cw, ch/2, [4]float32{0.8, 0.8, 0.8, 1})
	}
	if p.chain.HidesCursor() || p.style == frame.CursorHidden {
		return
	}
	top := pad + p.cursor.Row*ch
	p.dev.ClearTarget(target, pad+p.cursor.Col*cw, h-top-ch, cw, ch, [4]float32{1, 1, 1, 1})
}

func (p *preview) loop() error {
	log.Info("Starting preview", "keys", "arrows move cursor, tab cursor style, r reload, a alt screen, p pause")
	for !p.ctx.ShouldClose() {
		p.drawTerminal()
		if err := p.chain.RenderFrame(time.Now(), p.dev.Surface()); err != nil {
			return err
		}
		p.ctx.EndFrame()
	}
	return nil
}

// record renders a fixed number of frames on a synthetic clock and pipes
// them to ffmpeg.
func (p *preview) record() error {
	w, h := p.dev.Surface().Size()
	fps := *p.opts.FPS
	rec, err := capture.Start(capture.Options{
		Output:     *p.opts.OutputFile,
		Width:      w,
		Height:     h,
		FPS:        fps,
		Codec:      *p.opts.Codec,
		FFmpegPath: *p.opts.FFMPEGPath,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	total := int(*p.opts.Duration * float64(fps))
	var renderErr error
	for i := 0; i < total; i++ {
		now := start.Add(time.Duration(i) * time.Second / time.Duration(fps))
		p.drawTerminal()
		if renderErr = p.chain.RenderFrame(now, p.dev.Surface()); renderErr != nil {
			break
		}
		pix, err := p.dev.ReadPixels(p.dev.Surface())
		if err != nil {
			renderErr = err
			break
		}
		if renderErr = rec.WriteFrame(pix); renderErr != nil {
			break
		}
		if i%fps == 0 {
			log.Debug("Recorded", "frame", i, "of", total)
		}
	}
	return errors.Join(renderErr, rec.Close())
}
