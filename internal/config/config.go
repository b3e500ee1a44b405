package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Kernel names accepted by KERNEL.
const (
	KernelPrism = "prism"
	KernelSdfx  = "sdfx"
)

type Config struct {
	Kernel         string  `mapstructure:"KERNEL"`
	MeshCells      int     `mapstructure:"MESH_CELLS"`
	Port           string  `mapstructure:"PORT"`
	LogFile        string  `mapstructure:"LOG_FILE"`
	ViewportWidth  int     `mapstructure:"VIEWPORT_WIDTH"`
	ViewportHeight int     `mapstructure:"VIEWPORT_HEIGHT"`
	MinDistance    float64 `mapstructure:"MIN_DISTANCE"`
	MaxDistance    float64 `mapstructure:"MAX_DISTANCE"`
}

// LoadConfig reads .env.<APP_ENV> from the working directory and the
// BLOCKVIEW_ environment.
func LoadConfig() (Config, error) {
	return Load(".")
}

// Load reads the env file from dir. Environment variables take precedence
// over the file, and a missing file is not an error.
func Load(dir string) (c Config, err error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	v.SetDefault("KERNEL", KernelPrism)
	v.SetDefault("MESH_CELLS", 200)
	v.SetDefault("PORT", ":8080")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("VIEWPORT_WIDTH", 1280)
	v.SetDefault("VIEWPORT_HEIGHT", 720)
	v.SetDefault("MIN_DISTANCE", 10.0)
	v.SetDefault("MAX_DISTANCE", 3000.0)

	v.SetConfigName(fmt.Sprintf(".env.%s", env))
	v.SetConfigType("env")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("BLOCKVIEW")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, fmt.Errorf("config: read %s: %w", env, err)
		}
	}

	if err = v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	return c, c.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch c.Kernel {
	case KernelPrism, KernelSdfx:
	default:
		return fmt.Errorf("config: unknown kernel %q", c.Kernel)
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return fmt.Errorf("config: viewport %dx%d", c.ViewportWidth, c.ViewportHeight)
	}
	if c.MinDistance <= 0 || c.MaxDistance < c.MinDistance {
		return fmt.Errorf("config: distance range [%g, %g]", c.MinDistance, c.MaxDistance)
	}
	return nil
}
