package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "layerbar",
		Short: "layerbar - a wlr-layer-shell status bar",
		Long: `layerbar puts a simple colored bar on a Wayland compositor that
implements the zwlr_layer_shell_v1 protocol (sway, hyprland, river,
wayfire and most other wlroots compositors).

It doubles as a working example for the layershell library: output
selection, configure handling, shm rendering and pointer input.`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/layerbar/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("layer", "", "shell layer (background, bottom, top, overlay)")
	rootCmd.PersistentFlags().StringSlice("anchor", nil, "anchored edges (top, bottom, left, right)")
	rootCmd.PersistentFlags().Int("height", 0, "bar height in logical pixels")
	rootCmd.PersistentFlags().Int("exclusive-zone", 0, "exclusive zone size, -1 claims the whole edge")
	rootCmd.PersistentFlags().String("keyboard", "", "keyboard interactivity (none, exclusive, on-demand)")
	rootCmd.PersistentFlags().String("output", "", "output name to place the bar on, empty lets the compositor pick")
	rootCmd.PersistentFlags().String("bg", "", "background color (#rrggbb or #aarrggbb)")
	rootCmd.PersistentFlags().String("fg", "", "text color (#rrggbb or #aarrggbb)")
	rootCmd.PersistentFlags().String("text", "", "text drawn in the bar")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("layer", rootCmd.PersistentFlags().Lookup("layer"))
	viper.BindPFlag("anchor", rootCmd.PersistentFlags().Lookup("anchor"))
	viper.BindPFlag("height", rootCmd.PersistentFlags().Lookup("height"))
	viper.BindPFlag("exclusive_zone", rootCmd.PersistentFlags().Lookup("exclusive-zone"))
	viper.BindPFlag("keyboard", rootCmd.PersistentFlags().Lookup("keyboard"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("bg", rootCmd.PersistentFlags().Lookup("bg"))
	viper.BindPFlag("fg", rootCmd.PersistentFlags().Lookup("fg"))
	viper.BindPFlag("text", rootCmd.PersistentFlags().Lookup("text"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(defaultConfigDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("LAYERBAR")
	viper.AutomaticEnv()
	setConfigDefaults()

	// A missing config file is fine, the defaults carry the bar.
	_ = viper.ReadInConfig()
}

func defaultConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "layerbar")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "layerbar")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
