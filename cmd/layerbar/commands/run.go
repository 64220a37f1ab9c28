package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wlkit/layershell"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bar",
	Example: `  # Bar on the compositor's preferred output
  layerbar run

  # Bar on a specific output, bottom edge
  layerbar run --config ~/.config/layerbar/bottom.yaml`,
	RunE: runBar,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBar(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)
	layershell.SetLogger(logger)

	client, err := layershell.Connect()
	if err != nil {
		return errors.Wrap(err, "connect")
	}
	defer client.Close()

	var output *layershell.Output
	if cfg.Output != "" {
		o, ok := client.Outputs().ByName(cfg.Output)
		if !ok {
			return errors.Errorf("output %q not found", cfg.Output)
		}
		output = o
	}

	surfaceCfg, err := cfg.surfaceConfig(output)
	if err != nil {
		return err
	}
	renderer, err := newBarRenderer(cfg)
	if err != nil {
		return err
	}

	bar, err := client.CreateLayerSurface(surfaceCfg)
	if err != nil {
		return errors.Wrap(err, "create surface")
	}
	bar.SetRenderer(renderer)
	bar.OnPointerButton = func(ev layershell.ButtonEvent) {
		if ev.Pressed {
			logger.Info().
				Float64("x", ev.X).
				Float64("y", ev.Y).
				Uint32("button", ev.Button).
				Msg("bar clicked")
		}
	}
	bar.OnClosed = func() {
		logger.Info().Msg("bar closed by compositor")
		client.Stop()
	}

	if err := bar.WaitForConfigure(); err != nil {
		return errors.Wrap(err, "wait for configure")
	}
	w, h := bar.Size()
	logger.Info().Uint32("width", w).Uint32("height", h).Msg("bar mapped")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info().Msg("shutting down")
		client.Stop()
	}()

	return client.Run()
}
