// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Data    DataConfig    `yaml:"data"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
}

// ViewerConfig holds presentation settings.
type ViewerConfig struct {
	Vista       string     `yaml:"vista"`       // initial viewpoint name
	FOVDegrees  float32    `yaml:"fov_degrees"` // vertical field of view
	Background  [3]float32 `yaml:"background"`  // clear color, RGB 0..1
	ShowFPS     bool       `yaml:"show_fps"`
	AutoFit     bool       `yaml:"auto_fit"` // frame the camera on load
	Wireframe   bool       `yaml:"wireframe"` // startup display modes
	Transparent bool       `yaml:"transparent"`
	Shaded      bool       `yaml:"shaded"`
}

// DataConfig holds asset search paths.
type DataConfig struct {
	ModelPaths    []string `yaml:"model_paths"` // directories searched for models
	ScreenshotDir string   `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:      1280,
			Height:     800,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Viewer: ViewerConfig{
			Vista:       "frontal",
			FOVDegrees:  45,
			Background:  [3]float32{0.15, 0.15, 0.2},
			ShowFPS:     false,
			AutoFit:     true,
			Wireframe:   false,
			Transparent: false,
			Shaded:      true,
		},
		Data: DataConfig{
			ModelPaths:    []string{"./models", "."},
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
