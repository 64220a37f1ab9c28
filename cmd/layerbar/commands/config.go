package commands

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/wlkit/layershell"
)

// Config is the bar configuration as stored on disk.
type Config struct {
	Layer         string   `yaml:"layer" mapstructure:"layer"`
	Anchor        []string `yaml:"anchor" mapstructure:"anchor"`
	Height        uint32   `yaml:"height" mapstructure:"height"`
	ExclusiveZone int32    `yaml:"exclusive_zone" mapstructure:"exclusive_zone"`
	MarginTop     int32    `yaml:"margin_top" mapstructure:"margin_top"`
	MarginRight   int32    `yaml:"margin_right" mapstructure:"margin_right"`
	MarginBottom  int32    `yaml:"margin_bottom" mapstructure:"margin_bottom"`
	MarginLeft    int32    `yaml:"margin_left" mapstructure:"margin_left"`
	Keyboard      string   `yaml:"keyboard" mapstructure:"keyboard"`
	Output        string   `yaml:"output" mapstructure:"output"`
	Namespace     string   `yaml:"namespace" mapstructure:"namespace"`
	Background    string   `yaml:"bg" mapstructure:"bg"`
	Foreground    string   `yaml:"fg" mapstructure:"fg"`
	Text          string   `yaml:"text" mapstructure:"text"`
	LogLevel      string   `yaml:"log_level" mapstructure:"log_level"`
}

func setConfigDefaults() {
	viper.SetDefault("layer", "top")
	viper.SetDefault("anchor", []string{"top", "left", "right"})
	viper.SetDefault("height", 30)
	viper.SetDefault("exclusive_zone", -1)
	viper.SetDefault("keyboard", "on-demand")
	viper.SetDefault("namespace", "layerbar")
	viper.SetDefault("bg", "#1d2021")
	viper.SetDefault("fg", "#ebdbb2")
	viper.SetDefault("text", "layerbar")
	viper.SetDefault("log_level", "info")
}

func loadConfig() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &cfg, nil
}

// surfaceConfig translates the file format into the library config.
func (c *Config) surfaceConfig(output *layershell.Output) (layershell.Config, error) {
	layer, err := parseLayer(c.Layer)
	if err != nil {
		return layershell.Config{}, err
	}
	anchor, err := parseAnchor(c.Anchor)
	if err != nil {
		return layershell.Config{}, err
	}
	kbd, err := parseKeyboard(c.Keyboard)
	if err != nil {
		return layershell.Config{}, err
	}
	return layershell.Config{
		Layer:         layer,
		Anchor:        anchor,
		Height:        c.Height,
		ExclusiveZone: c.ExclusiveZone,
		Margins: layershell.Margins{
			Top:    c.MarginTop,
			Right:  c.MarginRight,
			Bottom: c.MarginBottom,
			Left:   c.MarginLeft,
		},
		Keyboard:  kbd,
		Namespace: c.Namespace,
		Output:    output,
	}, nil
}

func parseLayer(s string) (layershell.Layer, error) {
	switch strings.ToLower(s) {
	case "background":
		return layershell.LayerBackground, nil
	case "bottom":
		return layershell.LayerBottom, nil
	case "top":
		return layershell.LayerTop, nil
	case "overlay":
		return layershell.LayerOverlay, nil
	default:
		return 0, errors.Errorf("unknown layer %q", s)
	}
}

func parseAnchor(edges []string) (layershell.Anchor, error) {
	var a layershell.Anchor
	for _, e := range edges {
		switch strings.ToLower(e) {
		case "top":
			a |= layershell.AnchorTop
		case "bottom":
			a |= layershell.AnchorBottom
		case "left":
			a |= layershell.AnchorLeft
		case "right":
			a |= layershell.AnchorRight
		default:
			return 0, errors.Errorf("unknown anchor edge %q", e)
		}
	}
	return a, nil
}

func parseKeyboard(s string) (layershell.KeyboardMode, error) {
	switch strings.ToLower(s) {
	case "none":
		return layershell.KeyboardNone, nil
	case "exclusive":
		return layershell.KeyboardExclusive, nil
	case "on-demand", "on_demand":
		return layershell.KeyboardOnDemand, nil
	default:
		return 0, errors.Errorf("unknown keyboard mode %q", s)
	}
}

// parseColor accepts "#rrggbb" or "#aarrggbb".
func parseColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	var a, r, g, b uint8 = 0xff, 0, 0, 0
	switch len(s) {
	case 6:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
			return color.RGBA{}, errors.Wrapf(err, "color %q", s)
		}
	case 8:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x%02x", &a, &r, &g, &b); err != nil {
			return color.RGBA{}, errors.Wrapf(err, "color %q", s)
		}
	default:
		return color.RGBA{}, errors.Errorf("color %q: want #rrggbb or #aarrggbb", s)
	}
	// Premultiply for image.RGBA.
	return color.RGBA{
		R: uint8(uint16(r) * uint16(a) / 255),
		G: uint8(uint16(g) * uint16(a) / 255),
		B: uint8(uint16(b) * uint16(a) / 255),
		A: a,
	}, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage layerbar configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	dir := defaultConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create config dir")
	}
	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return errors.Errorf("%s already exists", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write config")
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	fmt.Print(string(data))
	return nil
}
