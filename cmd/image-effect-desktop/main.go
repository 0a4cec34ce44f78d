package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"image-effect-desktop/internal/app"
	"image-effect-desktop/internal/config"
	"image-effect-desktop/internal/effects"
	"image-effect-desktop/internal/logger"
	"image-effect-desktop/internal/services"
)

type options struct {
	envFile  string
	backend  string
	interval time.Duration
	logLevel string
	jsonLogs bool
	seed     int64
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	var cfg config.Config
	var log logger.Logger

	rootCmd := &cobra.Command{
		Use:           "image-effect-desktop",
		Short:         "Apply canned image effects manually or on a timer",
		Version:       app.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cfg, err = loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			log = logger.New(cfg.LogLevel, cfg.JSONLogs)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			configureRuntime(log)

			application, err := app.NewApplication(cfg, log)
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", ".env", "Path to a .env file (missing files are ignored)")
	flags.StringVar(&opts.backend, "backend", config.BackendBild, "Filter backend: bild, opencv or imagick")
	flags.DurationVar(&opts.interval, "interval", config.DefaultAutoInterval, "Delay between auto-cycle frames")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flags.BoolVar(&opts.jsonLogs, "json-logs", false, "Write JSON logs instead of console output")
	flags.Int64Var(&opts.seed, "seed", 0, "Seed for the auto-cycle effect draws")

	rootCmd.AddCommand(newRenderCommand(&cfg, &log))
	rootCmd.AddCommand(newEffectsCommand())

	return rootCmd
}

func newRenderCommand(cfg *config.Config, log *logger.Logger) *cobra.Command {
	var output, effectName string

	cmd := &cobra.Command{
		Use:   "render <input> [--effect <name>|all] [--output <path>]",
		Short: "Apply effects to an image file without opening a window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := parseEffects(effectName)
			if err != nil {
				return err
			}

			library, err := services.NewFilterLibrary(cfg.Backend)
			if err != nil {
				return err
			}
			defer library.Close()

			if output == "" {
				output = defaultOutput(args[0], names)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			written, err := app.Render(ctx, app.RenderRequest{
				Input:   args[0],
				Output:  output,
				Effects: names,
			}, library, *log)
			for _, path := range written {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&effectName, "effect", "e", "all", "Effect name, or \"all\" for the whole catalog")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path; the extension picks png, jpeg or bmp")

	return cmd
}

func newEffectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "effects",
		Short: "List the effects in manual cycling order",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for i, name := range effects.Names() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i, name)
			}
		},
	}
}

// loadConfig layers .env, the environment and then explicitly set flags
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = strings.ToLower(opts.backend)
	}
	if flags.Changed("interval") {
		cfg.AutoInterval = opts.interval
	}
	if flags.Changed("log-level") {
		level, err := logger.ParseLevel(opts.logLevel)
		if err != nil {
			return cfg, err
		}
		cfg.LogLevel = level
	}
	if flags.Changed("json-logs") {
		cfg.JSONLogs = opts.jsonLogs
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.seed
		cfg.HasSeed = true
	}

	return cfg, cfg.Validate()
}

func parseEffects(value string) ([]effects.Name, error) {
	if strings.EqualFold(value, "all") {
		return effects.Names(), nil
	}
	name, err := effects.Parse(value)
	if err != nil {
		return nil, err
	}
	return []effects.Name{name}, nil
}

// defaultOutput writes next to the input: cat.jpg becomes cat-sepia.jpg, or
// cat-effect-<name>.jpg for the whole catalog
func defaultOutput(input string, names []effects.Name) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	if len(names) == 1 {
		return fmt.Sprintf("%s-%s%s", base, strings.ToLower(string(names[0])), ext)
	}
	return base + "-effect" + ext
}

func configureRuntime(log logger.Logger) {
	log.Info("Runtime", "runtime configured", map[string]interface{}{
		"go_version": runtime.Version(),
		"gomaxprocs": runtime.GOMAXPROCS(0),
		"num_cpu":    runtime.NumCPU(),
	})
}
