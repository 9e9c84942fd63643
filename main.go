package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"liquidvars/api"
	"liquidvars/config"
	"liquidvars/engine"
	"liquidvars/model"
	"liquidvars/storage"
	"liquidvars/watcher"
)

var (
	themeDir   string
	listen     string
	onlyRoot   bool
	noWatch    bool
	appVersion = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "liquidvars",
	Short: "liquidvars - CSS variable extractor for Liquid themes",
	Long: "Liquidvars scans a Shopify-style Liquid theme, resolves templating " +
		"constructs against the theme settings, extracts CSS custom properties " +
		"and serves the live registry over HTTP and websocket.",
	Run: runServe,
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan and print the extracted variables",
	Run:   runScan,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  "Manage liquidvars configuration files.",
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a default configuration file",
	Long:  "Generate a default liquidvars.config file in the theme directory (or current directory if not specified).",
	Run:   runConfigGenerate,
}

func init() {
	wd, _ := os.Getwd()
	rootCmd.Version = appVersion
	rootCmd.PersistentFlags().StringVar(&themeDir, "theme-dir", wd, "Theme directory (default: current directory)")
	rootCmd.Flags().StringVar(&listen, "listen", ":8080", "Address to listen on")
	rootCmd.Flags().BoolVar(&noWatch, "no-watch", false, "Disable file watching")
	rootCmd.PersistentFlags().BoolVar(&onlyRoot, "only-root", true, "Extract :root declarations only")

	rootCmd.AddCommand(scanCmd)
	configCmd.AddCommand(configGenerateCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig(cmd *cobra.Command) config.Config {
	cfg, err := config.Load(themeDir)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// CLI flags win only when explicitly provided.
	if cmd.Flags().Changed("theme-dir") {
		cfg.ThemeDir = themeDir
	}
	if cmd.Flags().Changed("listen") {
		cfg.ListenAddr = listen
	}
	if cmd.Flags().Changed("only-root") {
		cfg.OnlyRoot = onlyRoot
	}

	abs, err := filepath.Abs(cfg.ThemeDir)
	if err != nil {
		log.Fatalf("resolve theme dir: %v", err)
	}
	cfg.ThemeDir = abs
	return cfg
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)

	store := storage.New(cfg.ThemeDir)
	if err := store.EnsureDirs(); err != nil {
		log.Fatalf("ensure data dir: %v", err)
	}

	eng := engine.New(cfg)

	count, err := eng.Rescan()
	if err != nil {
		log.Fatalf("initial scan: %v", err)
	}
	log.Printf("extracted %d variables from %s", count, cfg.ThemeDir)

	saveSnapshot := func(count int) {
		snap := &model.ScanSnapshot{
			Timestamp: time.Now().UTC(),
			Count:     count,
			Variables: eng.Variables(),
		}
		if err := store.SaveSnapshot(snap); err != nil {
			log.Printf("save snapshot: %v", err)
		}
	}
	saveSnapshot(count)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	apiServer := api.NewServer(eng, store, saveSnapshot)

	if !noWatch {
		debounce := time.Duration(cfg.WatchDebounceMS) * time.Millisecond
		w := watcher.New(cfg.ThemeDir, debounce, func() {
			n, err := eng.Rescan()
			if err != nil {
				log.Printf("rescan: %v", err)
				return
			}
			log.Printf("rescan: %d variables", n)
			saveSnapshot(n)
			apiServer.BroadcastScanComplete(n)
		})
		if err := w.Start(ctx); err != nil {
			log.Printf("watcher unavailable, rescan via API only: %v", err)
		}
	}

	mux := http.NewServeMux()
	apiServer.Register(mux)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	log.Printf("listening on http://%s", displayAddr(cfg.ListenAddr))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

func runScan(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)

	eng := engine.New(cfg)
	count, err := eng.Rescan()
	if err != nil {
		log.Fatalf("scan: %v", err)
	}

	for _, v := range eng.Variables() {
		fmt.Printf("%s: %s\t(%s)\n", v.Name, v.Value, v.SourceFile)
		for _, mv := range v.Media {
			fmt.Printf("  @media %s -> %s\n", mv.Query, mv.Value)
		}
	}
	fmt.Printf("%d variables\n", count)
}

func runConfigGenerate(cmd *cobra.Command, args []string) {
	abs, err := filepath.Abs(themeDir)
	if err != nil {
		log.Fatalf("resolve theme dir: %v", err)
	}

	cfg := config.Default()
	cfg.ThemeDir = abs

	cfgPath := filepath.Join(abs, "liquidvars.config")
	if _, err := os.Stat(cfgPath); err == nil {
		log.Fatalf("config file already exists: %s", cfgPath)
	}

	if err := config.Save(cfg); err != nil {
		log.Fatalf("failed to save config: %v", err)
	}

	fmt.Printf("Generated default config file: %s\n", cfgPath)
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
