package config

import (
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/ZanzyTHEbar/virtual-photowall/vpw"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	PhotoWall PhotoWallConfig `mapstructure:"photowall"`
}

// PhotoWallConfig stores timeline engine related configurations.
type PhotoWallConfig struct {
	Layout  LayoutConfig  `mapstructure:"layout"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Loader  LoaderConfig  `mapstructure:"loader"`
	Library LibraryConfig `mapstructure:"library"`
}

// LayoutConfig stores wall geometry in scene units (meters).
// These values must match the ones used by the renderer, otherwise computed
// offsets desynchronize from rendered positions.
type LayoutConfig struct {
	GalleryWidth float64 `mapstructure:"galleryWidth"`
	ItemHeight   float64 `mapstructure:"itemHeight"`
	Gap          float64 `mapstructure:"gap"`
}

// EngineConfig stores scroll/visibility tuning for the timeline engine.
type EngineConfig struct {
	LookBehind     float64 `mapstructure:"lookBehind"`
	LookAhead      float64 `mapstructure:"lookAhead"`
	EyeLevel       float64 `mapstructure:"eyeLevel"`
	AnchorEpsilon  float64 `mapstructure:"anchorEpsilon"`
	WheelSpeed     float64 `mapstructure:"wheelSpeed"`
	KeyStep        float64 `mapstructure:"keyStep"`
	AxisSmoothing  float64 `mapstructure:"axisSmoothing"`
	AxisAccelPower float64 `mapstructure:"axisAccelPower"`
	AxisMaxSpeed   float64 `mapstructure:"axisMaxSpeed"`
	MinScrollDelta float64 `mapstructure:"minScrollDelta"`
	MoreThreshold  float64 `mapstructure:"moreThreshold"`
}

// LoaderConfig stores bucket loader settings.
type LoaderConfig struct {
	Workers int `mapstructure:"workers"`
}

// LibraryConfig stores local photo library ingestion settings.
type LibraryConfig struct {
	Root    string `mapstructure:"root"`
	Workers int    `mapstructure:"workers"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Wall geometry defaults - shared with the renderer
	viper.SetDefault("photowall.layout.galleryWidth", 5.5)
	viper.SetDefault("photowall.layout.itemHeight", 0.5)
	viper.SetDefault("photowall.layout.gap", 0.05)

	// Engine tuning defaults
	viper.SetDefault("photowall.engine.lookBehind", 10.0)
	viper.SetDefault("photowall.engine.lookAhead", 20.0)
	viper.SetDefault("photowall.engine.eyeLevel", 1.6)
	viper.SetDefault("photowall.engine.anchorEpsilon", 0.001)
	viper.SetDefault("photowall.engine.wheelSpeed", 0.002)
	viper.SetDefault("photowall.engine.keyStep", 0.75)
	viper.SetDefault("photowall.engine.axisSmoothing", 0.3)
	viper.SetDefault("photowall.engine.axisAccelPower", 1.5)
	viper.SetDefault("photowall.engine.axisMaxSpeed", 4.0)
	viper.SetDefault("photowall.engine.minScrollDelta", 0.001)
	viper.SetDefault("photowall.engine.moreThreshold", 2.0)

	viper.SetDefault("photowall.loader.workers", internal.DefaultLoaderWorkers)

	viper.SetDefault("photowall.library.root", internal.DefaultLibraryRoot)
	viper.SetDefault("photowall.library.workers", internal.DefaultLibraryWorkers)

	viper.AutomaticEnv()                                   // Read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // e.g. photowall.engine.eyeLevel becomes PHOTOWALL_ENGINE_EYELEVEL

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; defaults will be used. This is not an error
			// for the application to halt on.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &AppConfig, nil
}
