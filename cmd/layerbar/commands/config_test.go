package commands

import (
	"reflect"
	"testing"
)

func TestRootFlagsDeclared(t *testing.T) {
	for _, name := range []string{
		"config", "log-level", "layer", "anchor", "height",
		"exclusive-zone", "keyboard", "output", "bg", "fg", "text",
	} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("flag --%s not declared", name)
		}
	}
}

func TestFlagsOverrideDefaults(t *testing.T) {
	setConfigDefaults()

	flags := rootCmd.PersistentFlags()
	for flag, value := range map[string]string{
		"layer":          "overlay",
		"anchor":         "bottom,left",
		"height":         "48",
		"exclusive-zone": "0",
		"keyboard":       "none",
		"output":         "DP-1",
		"bg":             "#000000",
		"fg":             "#ffffff",
		"text":           "hello",
	} {
		if err := flags.Set(flag, value); err != nil {
			t.Fatalf("set --%s: %v", flag, err)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Layer != "overlay" {
		t.Errorf("Layer = %q, want overlay", cfg.Layer)
	}
	if want := []string{"bottom", "left"}; !reflect.DeepEqual(cfg.Anchor, want) {
		t.Errorf("Anchor = %v, want %v", cfg.Anchor, want)
	}
	if cfg.Height != 48 {
		t.Errorf("Height = %d, want 48", cfg.Height)
	}
	if cfg.ExclusiveZone != 0 {
		t.Errorf("ExclusiveZone = %d, want 0", cfg.ExclusiveZone)
	}
	if cfg.Keyboard != "none" {
		t.Errorf("Keyboard = %q, want none", cfg.Keyboard)
	}
	if cfg.Output != "DP-1" {
		t.Errorf("Output = %q, want DP-1", cfg.Output)
	}
	if cfg.Background != "#000000" || cfg.Foreground != "#ffffff" {
		t.Errorf("colors = %q/%q, want #000000/#ffffff", cfg.Background, cfg.Foreground)
	}
	if cfg.Text != "hello" {
		t.Errorf("Text = %q, want hello", cfg.Text)
	}
}

func TestUnsetFlagsKeepDefaults(t *testing.T) {
	setConfigDefaults()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	// No flag covers the namespace, the default must survive flag binding.
	if cfg.Namespace != "layerbar" {
		t.Errorf("Namespace = %q, want layerbar", cfg.Namespace)
	}
}
