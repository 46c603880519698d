package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yubzen/quickvibe/internal/chat"
	"github.com/yubzen/quickvibe/internal/config"
	"github.com/yubzen/quickvibe/internal/providers"
	"github.com/yubzen/quickvibe/internal/state"
	"github.com/yubzen/quickvibe/internal/vibe"
)

var (
	loadConfig        = config.Load
	resolveCredential = providers.ResolveCredential
	newFactory        = func(cfg *config.Config) providers.ProviderFactory {
		return providers.NewGroqFactory(cfg.Groq.BaseURL, cfg.Timeout())
	}
	stdin io.Reader = os.Stdin
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// loadConfigOrDefault keeps commands usable with a broken config file.
func loadConfigOrDefault(cmd *cobra.Command) *config.Config {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v, using defaults\n", err)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return cfg
}

func requireCredential(explicit string) (string, providers.CredentialSource, error) {
	key, source, err := resolveCredential(explicit)
	if errors.Is(err, providers.ErrCredentialNotFound) {
		return "", source, fmt.Errorf("no API key found: pass --key, set %s, or store one in the OS keyring", providers.APIKeyEnv)
	}
	return key, source, err
}

func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q (want table, json or yaml)", format)
	}
}

func NewAskCmd() *cobra.Command {
	var (
		vibeFlag string
		temp     float64
		keyFlag  string
	)
	askCmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Get one vibe-styled reply suggestion",
		Long:  "Connects, picks the next model in rotation and prints one reply. Reads the message from stdin when no argument is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfigOrDefault(cmd)

			key, _, err := requireCredential(keyFlag)
			if err != nil {
				return err
			}

			label := cfg.Defaults.Vibe
			if cmd.Flags().Changed("vibe") {
				resolved, ok := vibe.Resolve(vibeFlag)
				if !ok {
					return fmt.Errorf("unknown vibe %q (see `quickvibe vibes`)", vibeFlag)
				}
				label = resolved
			}
			temperature := cfg.Defaults.Temperature
			if cmd.Flags().Changed("temperature") {
				temperature = temp
			}

			message := strings.Join(args, " ")
			if strings.TrimSpace(message) == "" {
				data, err := io.ReadAll(stdin)
				if err != nil {
					return fmt.Errorf("read message from stdin: %w", err)
				}
				message = string(data)
			}
			if strings.TrimSpace(message) == "" {
				return errors.New("message cannot be empty")
			}

			ctx, stop := commandContext(cmd)
			defer stop()

			sess := state.NewSession(state.Options{
				APIKey:        key,
				Vibe:          label,
				Temperature:   temperature,
				MaxTranscript: cfg.Session.MaxTranscript,
			})
			h := chat.NewHandler(sess, newFactory(cfg))

			r := h.Handle(ctx, chat.Action{Kind: chat.ActionConnect})
			if r.Failure != nil {
				return errors.New(r.Notice)
			}

			r = h.Handle(ctx, chat.Action{Kind: chat.ActionSend, Text: message})
			if r.Failure != nil {
				return errors.New(r.Failure.Message)
			}
			if r.Reply == nil {
				return errors.New(r.Notice)
			}

			fmt.Fprintln(cmd.OutOrStdout(), r.Reply.Text)
			fmt.Fprintf(cmd.ErrOrStderr(), "🧠: %s (%s)\n", r.Reply.Model, r.Vibe)
			return nil
		},
	}
	askCmd.Flags().StringVar(&vibeFlag, "vibe", "", "Reply style, e.g. savage or \"Chill 😎\"")
	askCmd.Flags().Float64Var(&temp, "temperature", state.DefaultTemperature, "Sampling temperature (0-2)")
	askCmd.Flags().StringVar(&keyFlag, "key", "", "Groq API key (defaults to "+providers.APIKeyEnv+")")
	return askCmd
}

type modelRow struct {
	ID      string `json:"id" yaml:"id"`
	OwnedBy string `json:"owned_by,omitempty" yaml:"owned_by,omitempty"`
	Chat    bool   `json:"chat" yaml:"chat"`
	Reason  string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

func NewModelsCmd() *cobra.Command {
	var (
		showAll bool
		format  string
		keyFlag string
		timeout time.Duration
	)
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List the chat models that would join the rotation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfigOrDefault(cmd)

			key, _, err := requireCredential(keyFlag)
			if err != nil {
				return err
			}

			ctx, stop := commandContext(cmd)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			var rows []modelRow
			if showAll {
				if err := providers.ValidateCredential(key); err != nil {
					return fmt.Errorf("API key validation failed: %w", err)
				}
				all, err := newFactory(cfg)(key).ListModels(ctx)
				if err != nil {
					return fmt.Errorf("Failed to fetch models: %s", providers.ErrorDetail(err))
				}
				for _, m := range all {
					reason := providers.RejectReason(m.ID)
					rows = append(rows, modelRow{ID: m.ID, OwnedBy: m.OwnedBy, Chat: reason == "", Reason: reason})
				}
			} else {
				result := providers.FetchChatModels(ctx, key, newFactory(cfg))
				if !result.OK() {
					return errors.New(result.Failure.Message)
				}
				for _, m := range result.Models {
					rows = append(rows, modelRow{ID: m.ID, OwnedBy: m.OwnedBy, Chat: true})
				}
			}

			out := cmd.OutOrStdout()
			if format != formatTable {
				return writeStructured(out, format, rows)
			}

			w := tabwriter.NewWriter(out, 2, 2, 2, ' ', 0)
			if showAll {
				fmt.Fprintln(w, "MODEL\tOWNED BY\tCHAT\tREASON")
				for _, r := range rows {
					chatCol := "no"
					if r.Chat {
						chatCol = "yes"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.OwnedBy, chatCol, r.Reason)
				}
			} else {
				fmt.Fprintln(w, "#\tMODEL\tOWNED BY")
				for i, r := range rows {
					fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, r.ID, r.OwnedBy)
				}
			}
			return w.Flush()
		},
	}

	modelsCmd.Flags().BoolVar(&showAll, "all", false, "Include models rejected by the chat filter, with the reason")
	modelsCmd.Flags().StringVar(&format, "format", formatTable, "Output format: table, json or yaml")
	modelsCmd.Flags().StringVar(&keyFlag, "key", "", "Groq API key (defaults to "+providers.APIKeyEnv+")")
	modelsCmd.Flags().DurationVar(&timeout, "timeout", providers.DefaultTimeout, "Model listing timeout")
	return modelsCmd
}

type vibeRow struct {
	Label       string `json:"label" yaml:"label"`
	Instruction string `json:"instruction" yaml:"instruction"`
	Default     bool   `json:"default,omitempty" yaml:"default,omitempty"`
}

func NewVibesCmd() *cobra.Command {
	var format string
	vibesCmd := &cobra.Command{
		Use:   "vibes",
		Short: "List the reply styles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfigOrDefault(cmd)

			rows := make([]vibeRow, 0, len(vibe.Labels()))
			for _, label := range vibe.Labels() {
				rows = append(rows, vibeRow{
					Label:       label,
					Instruction: vibe.Instruction(label),
					Default:     label == cfg.Defaults.Vibe,
				})
			}

			out := cmd.OutOrStdout()
			if format != formatTable {
				return writeStructured(out, format, rows)
			}
			w := tabwriter.NewWriter(out, 2, 2, 2, ' ', 0)
			fmt.Fprintln(w, "VIBE\tINSTRUCTION")
			for _, r := range rows {
				label := r.Label
				if r.Default {
					label += " *"
				}
				fmt.Fprintf(w, "%s\t%s\n", label, r.Instruction)
			}
			return w.Flush()
		},
	}
	vibesCmd.Flags().StringVar(&format, "format", formatTable, "Output format: table, json or yaml")
	return vibesCmd
}

func NewAuthCmd() *cobra.Command {
	var (
		keyFlag string
		check   bool
	)
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Show which Groq API key would be used",
		Long:  "Reports where the API key comes from and whether it is well formed. With --check it also lists models to confirm the key works. The key itself is never printed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			key, source, err := resolveCredential(keyFlag)
			if errors.Is(err, providers.ErrCredentialNotFound) {
				fmt.Fprintln(out, chat.StatusNoKey.String())
				fmt.Fprintf(out, "Set %s or pass --key.\n", providers.APIKeyEnv)
				return nil
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(out, 2, 2, 2, ' ', 0)
			fmt.Fprintf(w, "SOURCE\t%s\n", source)
			fmt.Fprintf(w, "KEY\t%s\n", providers.MaskCredential(key))
			ok, reason := providers.ValidateAPIKey(key)
			if ok {
				fmt.Fprintln(w, "FORMAT\tvalid")
			} else {
				fmt.Fprintf(w, "FORMAT\tinvalid: %s\n", reason)
			}
			if !check {
				return w.Flush()
			}

			ctx, stop := commandContext(cmd)
			defer stop()
			result := providers.FetchChatModels(ctx, key, newFactory(loadConfigOrDefault(cmd)))
			if result.OK() {
				fmt.Fprintf(w, "STATUS\t%s (%d chat models)\n", chat.StatusLive, len(result.Models))
			} else {
				fmt.Fprintf(w, "STATUS\t❌ %s\n", result.Failure.Message)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if !result.OK() {
				return errors.New(result.Failure.Message)
			}
			return nil
		},
	}
	authCmd.Flags().StringVar(&keyFlag, "key", "", "Check this key instead of the environment or keyring")
	authCmd.Flags().BoolVar(&check, "check", false, "Call the models endpoint to confirm the key works")
	return authCmd
}
