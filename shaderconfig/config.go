package shaderconfig

// ShaderConfig holds optional per-shader parameters. It is used both for
// user overrides and for author-declared metadata defaults. A nil field
// inherits from the next tier; an empty string on a path field disables
// that input.
type ShaderConfig struct {
	AnimationSpeed         *float32 `yaml:"animation_speed,omitempty"`
	Brightness             *float32 `yaml:"brightness,omitempty"`
	TextOpacity            *float32 `yaml:"text_opacity,omitempty"`
	FullContent            *bool    `yaml:"full_content,omitempty"`
	Channel0               *string  `yaml:"channel0,omitempty"`
	Channel1               *string  `yaml:"channel1,omitempty"`
	Channel2               *string  `yaml:"channel2,omitempty"`
	Channel3               *string  `yaml:"channel3,omitempty"`
	Cubemap                *string  `yaml:"cubemap,omitempty"`
	CubemapEnabled         *bool    `yaml:"cubemap_enabled,omitempty"`
	UseBackgroundAsChannel *bool    `yaml:"use_background_as_channel0,omitempty"`
}

// CursorShaderConfig holds optional per-cursor-shader parameters. Only
// AnimationSpeed is read from the embedded base.
type CursorShaderConfig struct {
	ShaderConfig       `yaml:",inline"`
	HidesCursor        *bool     `yaml:"hides_cursor,omitempty"`
	DisableInAltScreen *bool     `yaml:"disable_in_alt_screen,omitempty"`
	GlowRadius         *float32  `yaml:"glow_radius,omitempty"`
	GlowIntensity      *float32  `yaml:"glow_intensity,omitempty"`
	TrailDuration      *float32  `yaml:"trail_duration,omitempty"`
	CursorColor        *[3]uint8 `yaml:"cursor_color,omitempty"`
}

// ShaderMetadata is produced by the metadata parser from a shader's
// leading comment block.
type ShaderMetadata struct {
	Name        string       `yaml:"name,omitempty"`
	Author      string       `yaml:"author,omitempty"`
	Description string       `yaml:"description,omitempty"`
	Version     string       `yaml:"version,omitempty"`
	Defaults    ShaderConfig `yaml:"defaults,omitempty"`
}

type CursorShaderMetadata struct {
	Name        string             `yaml:"name,omitempty"`
	Author      string             `yaml:"author,omitempty"`
	Description string             `yaml:"description,omitempty"`
	Version     string             `yaml:"version,omitempty"`
	Defaults    CursorShaderConfig `yaml:"defaults,omitempty"`
}

// Globals are the application-wide fallback values.
type Globals struct {
	// ShaderDir anchors relative texture paths.
	ShaderDir string `yaml:"shader_dir,omitempty"`

	AnimationSpeed         float32 `yaml:"animation_speed"`
	Brightness             float32 `yaml:"brightness"`
	TextOpacity            float32 `yaml:"text_opacity"`
	FullContent            bool    `yaml:"full_content"`
	Channel0               string  `yaml:"channel0,omitempty"`
	Channel1               string  `yaml:"channel1,omitempty"`
	Channel2               string  `yaml:"channel2,omitempty"`
	Channel3               string  `yaml:"channel3,omitempty"`
	Cubemap                string  `yaml:"cubemap,omitempty"`
	CubemapEnabled         bool    `yaml:"cubemap_enabled"`
	UseBackgroundAsChannel bool    `yaml:"use_background_as_channel0"`

	CursorAnimationSpeed     float32  `yaml:"cursor_animation_speed"`
	CursorHidesCursor        bool     `yaml:"cursor_hides_cursor"`
	CursorDisableInAltScreen bool     `yaml:"cursor_disable_in_alt_screen"`
	CursorGlowRadius         float32  `yaml:"cursor_glow_radius"`
	CursorGlowIntensity      float32  `yaml:"cursor_glow_intensity"`
	CursorTrailDuration      float32  `yaml:"cursor_trail_duration"`
	CursorColor              [3]uint8 `yaml:"cursor_color"`
}

const (
	DefaultAnimationSpeed float32 = 1.0
	DefaultBrightness     float32 = 1.0
	DefaultTextOpacity    float32 = 1.0
	DefaultFullContent            = false
	DefaultCubemapEnabled         = true

	DefaultGlowRadius    float32 = 80.0
	DefaultGlowIntensity float32 = 0.3
	DefaultTrailDuration float32 = 0.5
)

var DefaultCursorColor = [3]uint8{255, 255, 255}

// DefaultGlobals returns the built-in global tier.
func DefaultGlobals() Globals {
	return Globals{
		AnimationSpeed: DefaultAnimationSpeed,
		Brightness:     DefaultBrightness,
		TextOpacity:    DefaultTextOpacity,
		FullContent:    DefaultFullContent,
		CubemapEnabled: DefaultCubemapEnabled,

		CursorAnimationSpeed: DefaultAnimationSpeed,
		CursorGlowRadius:     DefaultGlowRadius,
		CursorGlowIntensity:  DefaultGlowIntensity,
		CursorTrailDuration:  DefaultTrailDuration,
		CursorColor:          DefaultCursorColor,
	}
}

// Resolved is the fully merged parameter set for a background shader.
// A channel or cubemap path of "" means the input is not configured.
type Resolved struct {
	AnimationSpeed         float32
	Brightness             float32
	TextOpacity            float32
	FullContent            bool
	Channels               [4]string
	Cubemap                string
	CubemapEnabled         bool
	UseBackgroundAsChannel bool
}

// ChannelPaths returns the configured iChannel0-3 paths.
func (r Resolved) ChannelPaths() [4]string {
	return r.Channels
}

// CubemapPath returns the cubemap prefix, or "" when the cubemap is
// disabled or unset.
func (r Resolved) CubemapPath() string {
	if !r.CubemapEnabled {
		return ""
	}
	return r.Cubemap
}

// ResolvedCursor is the merged parameter set for a cursor shader.
type ResolvedCursor struct {
	Base               Resolved
	HidesCursor        bool
	DisableInAltScreen bool
	GlowRadius         float32
	GlowIntensity      float32
	TrailDuration      float32
	CursorColor        [3]uint8
}
