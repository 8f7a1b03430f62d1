package shaderconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Store is a read-only view of the shader section of the configuration
// file. Edits made by a settings UI are persisted elsewhere; the store is
// simply reloaded.
type Store struct {
	Globals       Globals                       `yaml:"globals"`
	Shaders       map[string]ShaderConfig       `yaml:"shader_configs,omitempty"`
	CursorShaders map[string]CursorShaderConfig `yaml:"cursor_shader_configs,omitempty"`
}

// NewStore returns a store holding only the built-in defaults.
func NewStore() *Store {
	return &Store{Globals: DefaultGlobals()}
}

// LoadStore reads a YAML store from path. Keys missing from the file's
// globals section keep their built-in defaults.
func LoadStore(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader config %s: %w", path, err)
	}
	return ParseStore(data)
}

// ParseStore decodes a YAML document into a store.
func ParseStore(data []byte) (*Store, error) {
	s := NewStore()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(s); err != nil {
		if errors.Is(err, io.EOF) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to parse shader config: %w", err)
	}
	return s, nil
}

// Override returns the user override for a background shader, if any.
func (s *Store) Override(name string) *ShaderConfig {
	if c, ok := s.Shaders[name]; ok {
		return &c
	}
	return nil
}

// CursorOverride returns the user override for a cursor shader, if any.
func (s *Store) CursorOverride(name string) *CursorShaderConfig {
	if c, ok := s.CursorShaders[name]; ok {
		return &c
	}
	return nil
}

// ForShader resolves the parameters for the named background shader.
func (s *Store) ForShader(name string, meta *ShaderMetadata) Resolved {
	return Resolve(s.Override(name), meta, s.Globals)
}

// ForCursorShader resolves the parameters for the named cursor shader.
func (s *Store) ForCursorShader(name string, meta *CursorShaderMetadata) ResolvedCursor {
	return ResolveCursor(s.CursorOverride(name), meta, s.Globals)
}
