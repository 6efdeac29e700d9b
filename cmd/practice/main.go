package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/practice/internal/handler"
	appI18n "github.com/pavelanni/practice/internal/i18n"
	"github.com/pavelanni/practice/internal/llm"
	"github.com/pavelanni/practice/internal/llm/prompts"
	"github.com/pavelanni/practice/internal/store"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "practice",
		Short:        "Interactive language practice with generated exercises",
		SilenceUsage: true,
	}

	serve := serveCmd()
	root.AddCommand(serve, generateCmd(), validateCmd(), configCmd(), exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `practice --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP practice server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("practice-root", ".", "Directory holding the lesson tree with practice/*.json task sets")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /practice)")
	f.Int("max-pages", handler.DefaultMaxPages, "Maximum number of open pages kept in memory")
	addStoreFlags(cmd)
	addLLMFlags(cmd)
	addLogFlags(cmd)
	return cmd
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("db", "practice.db", "SQLite database path (settings and generated tasks)")
}

func addLLMFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("backend", llm.BackendProxy, "Generation backend (proxy, openai, gemini)")
	f.String("llm-url", "", "Proxy endpoint, or OpenAI-compatible API base URL")
	f.String("llm-key", "", "API key for the openai and gemini backends (default: stored gptToken)")
	f.String("llm-model", prompts.DefaultModel, "Model name sent with generation requests")
	f.StringP("lang", "l", appI18n.DefaultLang, "Language of the interface and of generated instructions (uk, en); fixed per server")
}

func addLogFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("PRACTICE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("practice")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/practice")
	v.AddConfigPath("/etc/practice")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// newClient builds the generation client for the configured backend.
func newClient(v *viper.Viper) (*llm.Client, error) {
	t, err := llm.NewTransport(
		v.GetString("backend"),
		v.GetString("llm-url"),
		v.GetString("llm-key"),
		v.GetString("llm-model"),
	)
	if err != nil {
		return nil, err
	}
	return llm.New(t), nil
}

// serverKey reports whether the backend authenticates with --llm-key
// instead of the stored gptToken.
func serverKey(v *viper.Viper) bool {
	return v.GetString("backend") != llm.BackendProxy && v.GetString("llm-key") != ""
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	client, err := newClient(v)
	if err != nil {
		slog.Warn("generation disabled", "backend", v.GetString("backend"), "error", err)
		client = nil
	}

	root := v.GetString("practice-root")
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		return fmt.Errorf("practice root %q is not a directory", root)
	}

	// Normalize base path.
	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	h := handler.New(db, store.NewLoader(os.DirFS(root)), client, handler.Config{
		BasePath:  basePath,
		MaxPages:  v.GetInt("max-pages"),
		Language:  lang,
		Model:     v.GetString("llm-model"),
		ServerKey: serverKey(v),
	})

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))

	if basePath != "" {
		r.Route(basePath, h.Routes)
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		h.Routes(r)
	}

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"practice_root", root,
		"backend", v.GetString("backend"),
		"model", v.GetString("llm-model"),
		"llm_url", v.GetString("llm-url"),
		"lang", lang,
		"base_path", basePath,
		"max_pages", v.GetInt("max-pages"),
	)
	return http.ListenAndServe(addr, r)
}
