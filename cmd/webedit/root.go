package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-webedit"
)

const shutdownTimeout = 10 * time.Second

// NewRootCmd creates the webedit command with its subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "webedit",
		Short:         "webedit - inline editing save service",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().String("config", "", "path to a YAML configuration file")
	root.AddCommand(NewServeCmd())
	root.AddCommand(NewNormalizeCmd())
	return root
}

// NewServeCmd boots the editor endpoints.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the inline editing endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			module, err := webedit.New(cfg)
			if err != nil {
				return err
			}
			defer module.Close()

			handler, err := module.Handler()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}, cmd.ErrOrStderr())
		},
	}
}

func serve(ctx context.Context, server *http.Server, out io.Writer) error {
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(out, "webedit listening on %s\n", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// NewNormalizeCmd prints the stored form of a submitted value.
func NewNormalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize --type <key> <value>",
		Short: "Print the normalised value for a field type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typeKey, _ := cmd.Flags().GetString("type")
			if strings.TrimSpace(typeKey) == "" {
				return errors.New("normalize: --type is required")
			}

			var value string
			if len(args) == 0 || args[0] == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("normalize: read input: %w", err)
				}
				value = string(data)
			} else {
				value = args[0]
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Logging.Provider = "noop"
			module, err := webedit.New(cfg)
			if err != nil {
				return err
			}
			defer module.Close()

			fmt.Fprintln(cmd.OutOrStdout(), module.Normalize(typeKey, value))
			return nil
		},
	}
	cmd.Flags().String("type", "", "field type key, for example \"single-line text\"")
	return cmd
}

func loadConfig(cmd *cobra.Command) (webedit.Config, error) {
	cfg := webedit.DefaultConfig()
	if flag := cmd.Flag("config"); flag != nil && strings.TrimSpace(flag.Value.String()) != "" {
		loaded, err := webedit.LoadConfig(flag.Value.String())
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *webedit.Config) {
	cfg.HTTP.Addr = getenv("WEBEDIT_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.BasePath = getenv("WEBEDIT_BASE_PATH", cfg.HTTP.BasePath)
	cfg.DefaultLocale = getenv("WEBEDIT_DEFAULT_LOCALE", cfg.DefaultLocale)
	cfg.WebEdit.ServerURL = getenv("WEBEDIT_SERVER_URL", cfg.WebEdit.ServerURL)
	cfg.Storage.Provider = getenv("WEBEDIT_STORAGE_PROVIDER", cfg.Storage.Provider)
	cfg.Storage.Driver = getenv("WEBEDIT_STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.DSN = getenv("DATABASE_URL", cfg.Storage.DSN)
	cfg.Session.Provider = getenv("WEBEDIT_SESSION_PROVIDER", cfg.Session.Provider)
	cfg.Session.RedisURL = getenv("REDIS_URL", cfg.Session.RedisURL)
	cfg.Logging.Level = getenv("WEBEDIT_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getenv("WEBEDIT_LOG_FORMAT", cfg.Logging.Format)
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
