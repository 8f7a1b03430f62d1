// Package translator turns author shaders into programs the GL backend can
// link, using ANGLE's translator compiled to WebAssembly.
package translator

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	gst "github.com/richinsley/goshadertranslator"
	"github.com/richinsley/termshader/gpu"
	"github.com/richinsley/termshader/shader"
)

// Translator wraps author source with the effect preamble and translates
// it from WebGL2 GLSL to desktop GLSL 4.10.
type Translator struct {
	mu sync.Mutex
	st *gst.ShaderTranslator
}

func New(ctx context.Context) (*Translator, error) {
	st, err := gst.NewShaderTranslator(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start shader translator: %w", err)
	}
	return &Translator{st: st}, nil
}

var (
	defaultOnce       sync.Once
	defaultTranslator *Translator
	defaultErr        error
)

// Default returns a process-wide translator, starting it on first use.
func Default() (*Translator, error) {
	defaultOnce.Do(func() {
		defaultTranslator, defaultErr = New(context.Background())
	})
	return defaultTranslator, defaultErr
}

// Transpile wraps source with the effect preamble and translates it.
// Rejected source is returned as a *gpu.CompileError carrying the
// translator's diagnostics.
func (t *Translator) Transpile(name, source string) (gpu.Program, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fs, err := t.st.TranslateShader(shader.FragmentSource(source), "fragment", gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		log.Error("Fragment shader translation failed", "shader", name, "err", err)
		return gpu.Program{}, &gpu.CompileError{Name: name, Log: err.Error()}
	}

	names := make(map[string]string, len(fs.Variables))
	for k, v := range fs.Variables {
		names[k] = v.MappedName
	}
	log.Debug("Translated shader", "shader", name, "uniforms", len(names))
	return gpu.Program{
		Name:           name,
		VertexSource:   shader.GenerateVertexShader(),
		FragmentSource: fs.Code,
		Names:          names,
	}, nil
}
