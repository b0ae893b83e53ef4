package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/n0madic/go-genpipe/internal/codec"
	"github.com/n0madic/go-genpipe/internal/config"
	"github.com/n0madic/go-genpipe/internal/confirm"
	"github.com/n0madic/go-genpipe/internal/endpoint"
	"github.com/n0madic/go-genpipe/internal/host"
	"github.com/n0madic/go-genpipe/internal/limits"
	"github.com/n0madic/go-genpipe/internal/metrics"
	"github.com/n0madic/go-genpipe/internal/pipeline"
	"github.com/n0madic/go-genpipe/internal/server"
	"github.com/n0madic/go-genpipe/internal/types"
)

// globalOptions are the flags shared by every command. Non-empty values
// take precedence over the config file and the environment.
type globalOptions struct {
	configPath string
	verbose    bool
	baseURL    string
	apiKey     string
	model      string

	serverHost string
	serverPort int
}

func (o *globalOptions) override(s *config.Settings) {
	if o.baseURL != "" {
		s.Provider.BaseURL = o.baseURL
		s.Provider.Enabled = true
	}
	if o.apiKey != "" {
		s.Provider.APIKey = o.apiKey
	}
	if o.model != "" {
		s.Provider.Model = o.model
	}
	if o.verbose {
		s.Verbose = true
	}
	if o.serverHost != "" {
		s.Server.Host = o.serverHost
	}
	if o.serverPort != 0 {
		s.Server.Port = o.serverPort
	}
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "genpipe",
		Short:         "Text generation against OpenAI-compatible endpoints of unknown shape",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelInfo
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level})))
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "YAML settings file")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	pf.StringVar(&opts.baseURL, "base-url", "", "Provider base URL (enables the direct provider)")
	pf.StringVar(&opts.apiKey, "api-key", "", "Provider API key")
	pf.StringVar(&opts.model, "model", "", "Provider model id")

	root.AddCommand(
		newGenerateCmd(opts),
		newSelfTestCmd(opts),
		newCandidatesCmd(),
		newServeCmd(opts),
	)
	return root
}

// buildPipeline wires settings, host provider, limiter, and metrics.
func buildPipeline(ctx context.Context, opts *globalOptions, cmd *cobra.Command) (*pipeline.Pipeline, *config.FileStore, error) {
	store, err := config.NewFileStore(opts.configPath, opts.override)
	if err != nil {
		return nil, nil, err
	}
	s := store.Settings()

	p := pipeline.New(store)
	store.OnReload = p.SettingsReloaded
	p.Limiter = limits.NewSpendLimiter(s.Limits.CallsPerMinute, s.Limits.Burst)
	p.Metrics = metrics.NewCollector(nil)
	p.Confirmer = &confirm.Terminal{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()}

	if s.Host.Configured() {
		hp, err := host.New(ctx, s.Host, codec.Params{Temperature: s.Generation.Temperature, MaxTokens: s.Generation.MaxTokens})
		if err != nil {
			slog.Warn("host.disabled", "error", err)
		} else {
			p.Host = hp
		}
	}
	return p, store, nil
}

func newGenerateCmd(opts *globalOptions) *cobra.Command {
	var (
		prompt string
		system string
		kind   string
		yes    bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run one generation call and print the text",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(prompt) == "" {
				return errors.New("--prompt is required")
			}
			ctx := cmd.Context()
			p, _, err := buildPipeline(ctx, opts, cmd)
			if err != nil {
				return err
			}
			if yes {
				p.Confirmer = pipeline.ConfirmFunc(func(context.Context, string, string, string) (bool, error) {
					return true, nil
				})
			}

			out, err := p.Generate(ctx, types.GenerationRequest{Prompt: prompt, System: system, Kind: kind})
			if errors.Is(err, types.ErrUserCancelled) {
				fmt.Fprintln(cmd.ErrOrStderr(), hintStyle.Render("Cancelled."))
				return err
			}
			if err != nil {
				renderOutcome(cmd.ErrOrStderr(), out)
				return err
			}
			if opts.verbose {
				renderOutcome(cmd.ErrOrStderr(), out)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Text)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&prompt, "prompt", "p", "", "Prompt text")
	f.StringVarP(&system, "system", "s", "", "System text")
	f.StringVar(&kind, "kind", "", "Label shown in the confirmation prompt")
	f.BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newSelfTestCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Check the configured provider with a canned prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, store, err := buildPipeline(cmd.Context(), opts, cmd)
			if err != nil {
				return err
			}
			report := p.SelfTest(cmd.Context(), store.Settings().Provider)
			renderSelfTest(cmd.OutOrStdout(), report)
			if !report.OK {
				return errors.New("self-test failed")
			}
			return nil
		},
	}
}

func newCandidatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "candidates <url>",
		Short: "Show the normalized URL and the endpoint candidates derived from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := endpoint.Normalize(args[0])
			renderCandidates(cmd.OutOrStdout(), base, endpoint.IsLocal(base), endpoint.Candidates(base))
			return nil
		},
	}
}

func newServeCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, store, err := buildPipeline(ctx, opts, cmd)
			if err != nil {
				return err
			}
			go func() {
				if err := store.Watch(ctx); err != nil {
					slog.Warn("config.watch", "error", err)
				}
			}()

			srv := server.New(p)
			go func() {
				<-ctx.Done()
				fmt.Fprintln(cmd.ErrOrStderr(), "\nShutting down...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx) //nolint:errcheck
			}()

			slog.Warn("genpipe starting", "addr", srv.Addr())
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("server error", "error", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.serverHost, "host", "", "Bind host")
	cmd.Flags().IntVar(&opts.serverPort, "port", 0, "Listen port")
	return cmd
}
