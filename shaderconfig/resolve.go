package shaderconfig

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolve merges a user override, author metadata and the global tier into
// one parameter set. Each field is taken from the first tier that sets it.
// Either of override and meta may be nil.
func Resolve(override *ShaderConfig, meta *ShaderMetadata, g Globals) Resolved {
	var defaults *ShaderConfig
	if meta != nil {
		defaults = &meta.Defaults
	}
	pick := func(f func(*ShaderConfig) *string, global string) string {
		return resolvePath(pathField(override, f), pathField(defaults, f), global, g.ShaderDir)
	}

	return Resolved{
		AnimationSpeed: pickFloat(override, defaults, func(c *ShaderConfig) *float32 { return c.AnimationSpeed }, g.AnimationSpeed),
		Brightness:     pickFloat(override, defaults, func(c *ShaderConfig) *float32 { return c.Brightness }, g.Brightness),
		TextOpacity:    pickFloat(override, defaults, func(c *ShaderConfig) *float32 { return c.TextOpacity }, g.TextOpacity),
		FullContent:    pickBool(override, defaults, func(c *ShaderConfig) *bool { return c.FullContent }, g.FullContent),
		Channels: [4]string{
			pick(func(c *ShaderConfig) *string { return c.Channel0 }, g.Channel0),
			pick(func(c *ShaderConfig) *string { return c.Channel1 }, g.Channel1),
			pick(func(c *ShaderConfig) *string { return c.Channel2 }, g.Channel2),
			pick(func(c *ShaderConfig) *string { return c.Channel3 }, g.Channel3),
		},
		Cubemap:                pick(func(c *ShaderConfig) *string { return c.Cubemap }, g.Cubemap),
		CubemapEnabled:         pickBool(override, defaults, func(c *ShaderConfig) *bool { return c.CubemapEnabled }, g.CubemapEnabled),
		UseBackgroundAsChannel: pickBool(override, defaults, func(c *ShaderConfig) *bool { return c.UseBackgroundAsChannel }, g.UseBackgroundAsChannel),
	}
}

// ResolveCursor merges the tiers for a cursor shader. Cursor shaders always
// run in full-content mode with neutral brightness and text opacity and
// never bind channel textures or a cubemap.
func ResolveCursor(override *CursorShaderConfig, meta *CursorShaderMetadata, g Globals) ResolvedCursor {
	var defaults *CursorShaderConfig
	if meta != nil {
		defaults = &meta.Defaults
	}
	var oBase, dBase *ShaderConfig
	if override != nil {
		oBase = &override.ShaderConfig
	}
	if defaults != nil {
		dBase = &defaults.ShaderConfig
	}

	rc := ResolvedCursor{
		Base: Resolved{
			AnimationSpeed: pickFloat(oBase, dBase, func(c *ShaderConfig) *float32 { return c.AnimationSpeed }, g.CursorAnimationSpeed),
			Brightness:     1.0,
			TextOpacity:    1.0,
			FullContent:    true,
		},
		HidesCursor:        g.CursorHidesCursor,
		DisableInAltScreen: g.CursorDisableInAltScreen,
		GlowRadius:         g.CursorGlowRadius,
		GlowIntensity:      g.CursorGlowIntensity,
		TrailDuration:      g.CursorTrailDuration,
		CursorColor:        g.CursorColor,
	}

	// Apply tiers lowest first so the override lands last.
	for _, c := range []*CursorShaderConfig{defaults, override} {
		if c == nil {
			continue
		}
		if c.HidesCursor != nil {
			rc.HidesCursor = *c.HidesCursor
		}
		if c.DisableInAltScreen != nil {
			rc.DisableInAltScreen = *c.DisableInAltScreen
		}
		if c.GlowRadius != nil {
			rc.GlowRadius = *c.GlowRadius
		}
		if c.GlowIntensity != nil {
			rc.GlowIntensity = *c.GlowIntensity
		}
		if c.TrailDuration != nil {
			rc.TrailDuration = *c.TrailDuration
		}
		if c.CursorColor != nil {
			rc.CursorColor = *c.CursorColor
		}
	}
	return rc
}

func pickFloat(override, defaults *ShaderConfig, f func(*ShaderConfig) *float32, global float32) float32 {
	if override != nil {
		if v := f(override); v != nil {
			return *v
		}
	}
	if defaults != nil {
		if v := f(defaults); v != nil {
			return *v
		}
	}
	return global
}

func pickBool(override, defaults *ShaderConfig, f func(*ShaderConfig) *bool, global bool) bool {
	if override != nil {
		if v := f(override); v != nil {
			return *v
		}
	}
	if defaults != nil {
		if v := f(defaults); v != nil {
			return *v
		}
	}
	return global
}

func pathField(c *ShaderConfig, f func(*ShaderConfig) *string) *string {
	if c == nil {
		return nil
	}
	return f(c)
}

// resolvePath applies the path rules: an override is final, including an
// explicit "" that disables the input; otherwise metadata then global,
// with "" meaning unset.
func resolvePath(override, meta *string, global, dir string) string {
	if override != nil {
		if *override == "" {
			return ""
		}
		return ExpandPath(*override, dir)
	}
	p := global
	if meta != nil {
		p = *meta
	}
	if p == "" {
		return ""
	}
	return ExpandPath(p, dir)
}

// ExpandPath resolves a texture path. A leading "~/" is replaced with the
// user's home directory and relative paths are anchored at dir.
func ExpandPath(path, dir string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}
