// Command gbagent lets a remote multimodal reasoning service play a Game Boy
// game. It starts in manual play, hands off to the autonomous agent on
// request, and keeps the emulator ticking in real time throughout.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/emberfall/gbagent/pkg/agent"
	"github.com/emberfall/gbagent/pkg/config"
	"github.com/emberfall/gbagent/pkg/emu"
	"github.com/emberfall/gbagent/pkg/model"
	"github.com/emberfall/gbagent/pkg/model/anthropic"
	"github.com/emberfall/gbagent/pkg/model/openai"
	"github.com/emberfall/gbagent/pkg/runtime"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "gbagent",
		Short:         "AI plays Pokemon through an emulator sidecar",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("rom", "pokemon.gb", "path to the ROM file (consumed by the emulator sidecar)")
	flags.Int("steps", 10, "agent steps per worker batch")
	flags.Bool("display", false, "run the emulator with display (not headless)")
	flags.Bool("sound", false, "enable sound (only applicable with display)")
	flags.Int("max-history", 30, "maximum transcript turns before summarization")
	flags.String("load-state", "", "path to a saved emulator state to load")
	flags.String("provider", "anthropic", "reasoning provider: anthropic or openai")
	flags.String("model", "", "model identifier (provider default when empty)")
	flags.Int("max-tokens", 4096, "maximum tokens per reasoning response")
	flags.Float64("temperature", 1.0, "sampling temperature for the reasoning service")
	flags.Bool("navigator", false, "enable the navigate_to tool")
	flags.Int("upscale", 2, "integer upscale factor for encoded frames")
	flags.String("emulator-addr", "", "emulator sidecar address; empty runs a scripted dry-run facade")
	flags.String("log-level", "info", "log level: trace, debug, info, warn, error")
	flags.StringVar(&configPath, "config", "", "optional config file")

	for _, name := range []string{
		"rom", "steps", "display", "sound", "max-history", "load-state",
		"provider", "model", "max-tokens", "temperature", "navigator",
		"upscale", "emulator-addr", "log-level",
	} {
		cobra.CheckErr(v.BindPFlag(flagKey(name), flags.Lookup(name)))
	}

	return cmd
}

// flagKey maps a dashed flag name onto its config key.
func flagKey(name string) string {
	switch name {
	case "max-history":
		return "max_history"
	case "max-tokens":
		return "max_tokens"
	case "load-state":
		return "load_state"
	case "emulator-addr":
		return "emulator_addr"
	case "log-level":
		return "log_level"
	}
	return name
}

func run(parent context.Context, cfg *config.Config) error {
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	facade, err := openFacade(cfg, log)
	if err != nil {
		return err
	}
	if err := facade.Initialize(); err != nil {
		return fmt.Errorf("initialize emulator: %w", err)
	}

	actor := emu.StartActor(facade)
	if cfg.LoadState != "" {
		log.Info().Str("path", cfg.LoadState).Msg("loading saved state")
		if err := actor.LoadState(ctx, cfg.LoadState); err != nil {
			actor.Stop()
			return fmt.Errorf("load state: %w", err)
		}
	}

	reasoner, err := newModel(ctx, cfg)
	if err != nil {
		actor.Stop()
		return err
	}

	session, err := agent.NewSession(reasoner, actor, agent.Config{
		MaxHistory: cfg.MaxHistory,
		Upscale:    cfg.Upscale,
		Navigator:  cfg.Navigator,
		Logger:     log,
	})
	if err != nil {
		actor.Stop()
		return err
	}

	keys, err := runtime.OpenTerminalKeys()
	if err != nil {
		session.Stop()
		return fmt.Errorf("open terminal input: %w", err)
	}
	defer keys.Close()

	coord := runtime.NewCoordinator(actor, session, keys, log, cfg.Steps)
	if err := coord.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openFacade(cfg *config.Config, log zerolog.Logger) (emu.Facade, error) {
	if cfg.EmulatorAddr == "" {
		log.Warn().Msg("no emulator sidecar address; running against a scripted facade")
		return emu.NewScripted(), nil
	}
	if cfg.ROM != "" {
		if _, err := os.Stat(cfg.ROM); err != nil {
			return nil, fmt.Errorf("ROM file not found: %s", cfg.ROM)
		}
	}
	return emu.DialRemote(cfg.EmulatorAddr, emu.InitOptions{
		ROM:     cfg.ROM,
		Display: cfg.Display,
		Sound:   cfg.Sound && cfg.Display,
	})
}

func newModel(ctx context.Context, cfg *config.Config) (model.Model, error) {
	factory := model.NewFactory(
		anthropic.NewProvider(nil),
		openai.NewProvider(),
	)
	return factory.NewModel(ctx, model.ModelConfig{
		Provider:    cfg.Provider,
		Model:       cfg.DefaultModel(),
		APIKey:      resolveAPIKey(cfg),
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})
}

func resolveAPIKey(cfg *config.Config) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	switch cfg.Provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	default:
		return os.Getenv("ANTHROPIC_API_KEY")
	}
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level %q: %w", level, err)
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger(), nil
}
