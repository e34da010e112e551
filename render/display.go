package render

// DisplayConfig is the window configuration, loadable with package config.
type DisplayConfig struct {
	Title      string     `toml:"title" yaml:"title"`
	Width      int        `toml:"width" yaml:"width"`
	Height     int        `toml:"height" yaml:"height"`
	Fullscreen bool       `toml:"fullscreen" yaml:"fullscreen"`
	VSync      bool       `toml:"vsync" yaml:"vsync"`
	ClearColor [4]float32 `toml:"clear_color" yaml:"clear_color"`
}

// DefaultDisplayConfig is a 1280x720 vsynced window.
func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		Title:      "facet",
		Width:      1280,
		Height:     720,
		VSync:      true,
		ClearColor: [4]float32{0.05, 0.05, 0.08, 1},
	}
}

// Aspect returns Width/Height, or 1 when either is zero.
func (c DisplayConfig) Aspect() float32 {
	if c.Width <= 0 || c.Height <= 0 {
		return 1
	}
	return float32(c.Width) / float32(c.Height)
}
