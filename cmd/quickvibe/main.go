package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yubzen/quickvibe/internal/chat"
	quickvibecli "github.com/yubzen/quickvibe/internal/cli"
	"github.com/yubzen/quickvibe/internal/config"
	"github.com/yubzen/quickvibe/internal/logging"
	"github.com/yubzen/quickvibe/internal/providers"
	"github.com/yubzen/quickvibe/internal/state"
	"github.com/yubzen/quickvibe/internal/tui"
	"github.com/yubzen/quickvibe/internal/vibe"
)

type runtimeDeps struct {
	ctx         context.Context
	cancel      context.CancelFunc
	db          *state.DB
	session     *state.Session
	handler     *chat.Handler
	watcherDone <-chan struct{}
}

func (r *runtimeDeps) Close() {
	if r == nil {
		return
	}
	if r.cancel != nil {
		r.cancel()
	}
	if r.watcherDone != nil {
		select {
		case <-r.watcherDone:
		case <-time.After(3 * time.Second):
			log.Warn("timed out waiting for config watcher shutdown")
		}
	}
	if r.db != nil {
		if r.session != nil {
			_ = r.db.ForgetSession(context.Background(), r.session.ID)
		}
		_ = r.db.Close()
	}
}

func restoreTerminalState() {
	fmt.Fprint(os.Stderr, "\x1b[?25h\x1b[0m")
}

type sessionFlags struct {
	key         string
	vibe        string
	temperature float64
	tempSet     bool
}

func bootstrapRuntime(cfg *config.Config, flags sessionFlags) (*runtimeDeps, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	label := cfg.Defaults.Vibe
	if strings.TrimSpace(flags.vibe) != "" {
		resolved, ok := vibe.Resolve(flags.vibe)
		if !ok {
			return nil, fmt.Errorf("unknown vibe %q (try: %s)", flags.vibe, strings.Join(vibe.Labels(), ", "))
		}
		label = resolved
	}
	temperature := cfg.Defaults.Temperature
	if flags.tempSet {
		temperature = flags.temperature
	}

	key, source, err := providers.ResolveCredential(flags.key)
	if err != nil && !errors.Is(err, providers.ErrCredentialNotFound) {
		return nil, err
	}

	rt := &runtimeDeps{}
	rt.ctx, rt.cancel = context.WithCancel(context.Background())

	db, err := state.Connect(state.MemoryDSN)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.db = db

	rt.session = state.NewSession(state.Options{
		APIKey:        key,
		Vibe:          label,
		MaxTranscript: cfg.Session.MaxTranscript,
	})
	rt.session.SetTemperature(temperature)
	if err := db.RegisterSession(rt.ctx, rt.session.ID, rt.session.CreatedAt); err != nil {
		rt.Close()
		return nil, err
	}

	rt.handler = chat.NewHandler(rt.session, providers.NewGroqFactory(cfg.Groq.BaseURL, cfg.Timeout()))
	rt.session.Logger().WithFields(log.Fields{
		"vibe":       rt.session.Vibe(),
		"credential": string(source),
	}).Info("session started")
	return rt, nil
}

func setupLogging(cfg *config.Config, stderr bool) io.Closer {
	closer, err := logging.Setup(logging.Options{
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
		Stderr: stderr,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
		logging.Discard()
		return nil
	}
	return closer
}

func main() {
	var flags sessionFlags
	var logCloser io.Closer

	rootCmd := &cobra.Command{
		Use:           "quickvibe",
		Short:         "Instant vibe checks: styled text replies from Groq chat models",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				log.WithError(err).Warn("config load failed, using defaults")
			}
			flags.tempSet = cmd.Flags().Changed("temperature")

			rt, err := bootstrapRuntime(cfg, flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			app := tui.NewAppModel(cfg, rt.db, rt.session.ID, rt.handler)
			p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(rt.ctx))

			done, err := config.Watch(rt.ctx, config.GetConfigPath(), func(c *config.Config, err error) {
				p.Send(tui.ConfigReloadedMsg{Config: c, Err: err})
			})
			if err != nil {
				log.WithError(err).Warn("config watcher unavailable")
			} else {
				rt.watcherDone = done
			}

			_, err = p.Run()
			if errors.Is(err, tea.ErrProgramKilled) && rt.ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	rootCmd.Flags().StringVar(&flags.vibe, "vibe", "", "Starting vibe (e.g. savage, dry)")
	rootCmd.Flags().Float64Var(&flags.temperature, "temperature", state.DefaultTemperature, "Starting sampling temperature (0-2)")
	rootCmd.Flags().StringVar(&flags.key, "key", "", "Groq API key (overrides "+providers.APIKeyEnv+")")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Opens TUI config form",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				log.WithError(err).Warn("config load failed, editing defaults")
			}
			return config.RunConfigForm(cfg, config.GetConfigPath())
		},
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, _ := config.Load()
		// Full-screen commands keep stderr clean.
		interactive := cmd == rootCmd || cmd == configCmd
		logCloser = setupLogging(cfg, !interactive)
		return nil
	}

	rootCmd.AddCommand(
		configCmd,
		quickvibecli.NewAskCmd(),
		quickvibecli.NewModelsCmd(),
		quickvibecli.NewVibesCmd(),
		quickvibecli.NewAuthCmd(),
	)

	err := rootCmd.Execute()
	restoreTerminalState()
	if logCloser != nil {
		_ = logCloser.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
