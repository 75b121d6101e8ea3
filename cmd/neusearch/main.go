package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/neusearch/neusearch/ai/metrics"
	"github.com/neusearch/neusearch/internal/profile"
	"github.com/neusearch/neusearch/internal/version"
	"github.com/neusearch/neusearch/server"
	ingestsvc "github.com/neusearch/neusearch/server/service/ingest"
	"github.com/neusearch/neusearch/store"
	"github.com/neusearch/neusearch/store/db"
)

var (
	rootCmd = &cobra.Command{
		Use:   "neusearch",
		Short: `An AI shopping assistant. Ask in plain language, get products from your catalog.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Systemd units provide their environment explicitly.
			if !isRunningAsSystemdService() {
				_ = godotenv.Load()
			}
			setupLogger(viper.GetString("log-level"), viper.GetString("log-format"))
			return nil
		},
		Run: func(_ *cobra.Command, _ []string) {
			instanceProfile, err := loadProfile()
			if err != nil {
				slog.Error("invalid configuration", "error", err)
				os.Exit(1)
			}

			ctx, cancel := context.WithCancel(context.Background())
			storeInstance, err := openStore(ctx, instanceProfile)
			if err != nil {
				cancel()
				printDatabaseError(err, instanceProfile)
				slog.Error("failed to open store", "error", err)
				os.Exit(1)
			}

			s, err := server.NewServer(ctx, instanceProfile, storeInstance)
			if err != nil {
				cancel()
				_ = storeInstance.Close()
				slog.Error("failed to create server", "error", err)
				os.Exit(1)
			}

			c := make(chan os.Signal, 1)
			signal.Notify(c, terminationSignals...)

			if err := s.Start(ctx); err != nil {
				if !errors.Is(err, http.ErrServerClosed) {
					slog.Error("failed to start server", "error", err)
					cancel()
				}
			}

			printGreetings(instanceProfile)

			go func() {
				<-c
				s.Shutdown(ctx)
				cancel()
			}()

			<-ctx.Done()
		},
	}

	ingestCmd = &cobra.Command{
		Use:   "ingest",
		Short: "Embed products and store their vectors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			missingOnly, _ := cmd.Flags().GetBool("missing")
			limit, _ := cmd.Flags().GetInt("limit")

			return withComponents(cmd.Context(), func(ctx context.Context, c *server.Components) error {
				ingest := c.IngestService.IngestAll
				if missingOnly {
					ingest = func(ctx context.Context) (*ingestsvc.Report, error) {
						return c.IngestService.IngestMissing(ctx, limit)
					}
				}
				report, err := ingest(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Run %s: processed %d products, stored %d embeddings, %d failed\n",
					report.RunID, report.Processed, report.TotalEmbeddings, report.Failed)
				return nil
			})
		},
	}

	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Delete every product and embedding",
		RunE: func(cmd *cobra.Command, _ []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				return errors.New("refusing to delete the catalog without --yes")
			}
			return withComponents(cmd.Context(), func(ctx context.Context, c *server.Components) error {
				deleted, err := c.IngestService.ClearAll(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Deleted %d products\n", deleted)
				return nil
			})
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(version.String())
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8000)
	viper.SetDefault("log-level", "info")
	viper.SetDefault("log-format", "text")

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8000, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory (sqlite)")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver (postgres, sqlite)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")
	rootCmd.PersistentFlags().String("static", "", "directory of the built frontend to serve")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	for _, key := range []string{"mode", "addr", "port", "data", "driver", "dsn", "static", "log-level", "log-format"} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("neusearch")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	ingestCmd.Flags().Bool("missing", false, "only embed products without a vector for the configured model")
	ingestCmd.Flags().Int("limit", 0, "maximum products to embed with --missing (default 100)")
	clearCmd.Flags().Bool("yes", false, "confirm deletion")

	rootCmd.AddCommand(ingestCmd, clearCmd, versionCmd)
}

func loadProfile() (*profile.Profile, error) {
	instanceProfile := &profile.Profile{
		Mode:      viper.GetString("mode"),
		Addr:      viper.GetString("addr"),
		Port:      viper.GetInt("port"),
		Data:      viper.GetString("data"),
		Driver:    viper.GetString("driver"),
		DSN:       viper.GetString("dsn"),
		StaticDir: viper.GetString("static"),
		LogLevel:  viper.GetString("log-level"),
		LogFormat: viper.GetString("log-format"),
		Version:   version.GetCurrentVersion(viper.GetString("mode")),
	}
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		return nil, err
	}
	return instanceProfile, nil
}

func openStore(ctx context.Context, instanceProfile *profile.Profile) (*store.Store, error) {
	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return nil, err
	}
	storeInstance := store.New(dbDriver, instanceProfile)
	if err := storeInstance.Migrate(ctx); err != nil {
		_ = storeInstance.Close()
		return nil, err
	}
	return storeInstance, nil
}

// withComponents opens the store, wires the services and runs fn.
func withComponents(ctx context.Context, fn func(context.Context, *server.Components) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, terminationSignals...)
	defer stop()

	instanceProfile, err := loadProfile()
	if err != nil {
		return err
	}
	storeInstance, err := openStore(ctx, instanceProfile)
	if err != nil {
		printDatabaseError(err, instanceProfile)
		return err
	}
	defer storeInstance.Close()

	components, err := server.NewComponents(ctx, instanceProfile, storeInstance, metrics.NewPrometheusExporter(metrics.DefaultConfig()))
	if err != nil {
		return err
	}
	defer components.Close()

	return fn(ctx, components)
}

func setupLogger(level, format string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("NeuSearch %s started successfully!\n", profile.Version)

	if profile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
		if profile.DSN != "" {
			fmt.Fprintf(os.Stderr, "Database: %s\n", profile.DSN)
		}
	}

	fmt.Printf("Database driver: %s\n", profile.Driver)
	fmt.Printf("Mode: %s\n", profile.Mode)
	fmt.Printf("LLM: %s (%s)\n", profile.LLMProvider, profile.LLMModel)
	fmt.Printf("Embeddings: %s (%s, %d dims)\n", profile.EmbeddingProvider, profile.EmbeddingModel, profile.EmbeddingDimensions)
	if !profile.IsAIEnabled() {
		fmt.Fprint(os.Stderr, "NEUSEARCH_LLM_API_KEY is not set: product answers are disabled\n")
	}

	if len(profile.Addr) == 0 {
		fmt.Printf("Server running on port %d\n", profile.Port)
		fmt.Printf("Access NeuSearch at: http://localhost:%d\n", profile.Port)
	} else {
		fmt.Printf("Server running on %s:%d\n", profile.Addr, profile.Port)
		fmt.Printf("Access NeuSearch at: http://%s:%d\n", profile.Addr, profile.Port)
	}
	if profile.StaticDir != "" {
		fmt.Printf("Frontend: %s\n", profile.StaticDir)
	}
	fmt.Println()
}

// isRunningAsSystemdService detects if the process is running under systemd
func isRunningAsSystemdService() bool {
	return os.Getenv("INVOCATION_ID") != "" || os.Getenv("WATCHDOG_USEC") != ""
}

// printDatabaseError prints a hint for the most common connection failures.
func printDatabaseError(err error, profile *profile.Profile) {
	fmt.Fprintln(os.Stderr, "\nDatabase connection failed")

	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host"):
		fmt.Fprintln(os.Stderr, "  PostgreSQL is not reachable.")
		fmt.Fprintln(os.Stderr, "  Start it with: docker run -d -p 5432:5432 -e POSTGRES_PASSWORD=postgres pgvector/pgvector:pg17")
		fmt.Fprintln(os.Stderr, "  Or use SQLite for development: --driver=sqlite --data=./data")
	case strings.Contains(errMsg, "SSL is not enabled") || strings.Contains(errMsg, "sslmode"):
		fmt.Fprintln(os.Stderr, "  Add ?sslmode=disable to your DSN.")
	case strings.Contains(errMsg, "password authentication failed"):
		fmt.Fprintln(os.Stderr, "  Check the credentials in your DSN or .env file.")
	case strings.Contains(errMsg, "extension \"vector\""):
		fmt.Fprintln(os.Stderr, "  The pgvector extension is not installed. Use the pgvector/pgvector image or install the extension.")
	case strings.Contains(errMsg, "refusing to run older version"):
		fmt.Fprintln(os.Stderr, "  The database was migrated by a newer release. Upgrade this binary.")
	default:
		fmt.Fprintln(os.Stderr, "  Error:", errMsg)
	}
	if profile.Driver == "sqlite" && profile.Data != "" {
		fmt.Fprintf(os.Stderr, "  Data directory: %s\n", profile.Data)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
