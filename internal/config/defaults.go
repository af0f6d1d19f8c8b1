package config

const (
	defaultStateDir    = "~/.local/share/slasher"
	defaultThreshold   = 0
	defaultCropHeight  = 15000
	defaultAuraMargin  = 100
	defaultScanStep    = 5
	defaultStrategy    = "standard"
	defaultColor       = "rgb"
	defaultFormat      = "png"
	defaultJPEGQuality = 92
	defaultWorkers     = 1
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

var defaultExtensions = []string{"png", "jpg", "jpeg", "webp", "bmp", "gif", "tif", "tiff"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Scan: Scan{
			Threshold:  defaultThreshold,
			CropHeight: defaultCropHeight,
			AuraMargin: defaultAuraMargin,
			ScanStep:   defaultScanStep,
			Strategy:   defaultStrategy,
		},
		Input: Input{
			Color:      defaultColor,
			Extensions: append([]string(nil), defaultExtensions...),
		},
		Output: Output{
			Format:      defaultFormat,
			JPEGQuality: defaultJPEGQuality,
		},
		Run: Run{
			Workers: defaultWorkers,
		},
		Manifest: Manifest{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
