package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to the YAML config file")
	withTray := flag.Bool("tray", false, "show the system tray menu")
	withCamera := flag.Bool("camera", true, "run the local camera pipeline")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg.TrayEnabled = cfg.TrayEnabled || *withTray
	cfg.Camera.Enabled = cfg.Camera.Enabled && *withCamera

	if err := run(cfg); err != nil {
		logger.S().Fatalf("mudra: %v", err)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()
	logger.S().Infof("Using database %s", st.Path())

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		go m.Run(ctx, 10*time.Second)
	}

	manager := plugin.NewManager(cfg.PluginDir)
	if err := manager.Discover(); err != nil {
		logger.S().Warnf("Plugin discovery failed: %v", err)
	}
	dispatcher := plugin.NewDispatcher(manager, plugin.NewExecutor(cfg.PluginTimeout), 0)
	dispatcher.OnResult(func(req plugin.Request, r plugin.Result) {
		if r.Err != nil {
			logger.S().Warnf("Plugin %s failed on %s: %v", r.Plugin, req.Gesture, r.Err)
		}
	})
	go dispatcher.Run(ctx)

	application := app.New(app.Config{
		Camera: capture.NewCamera(capture.Options{
			DeviceID: cfg.Camera.DeviceID,
			Width:    cfg.Camera.Width,
			Height:   cfg.Camera.Height,
		}),
		Detector:        newDetector(cfg),
		Store:           st,
		Dispatcher:      dispatcher,
		Metrics:         m,
		Threshold:       cfg.Gesture.StabilityThreshold,
		MotionThreshold: cfg.Camera.MotionThreshold,
	})
	defer application.Close()

	registry := session.NewRegistry(session.Options{
		IdleTimeout: cfg.Gesture.SessionIdleTimeout,
		Hooks:       application.SessionHooks(),
	})
	go registry.Run(ctx, 0)

	hub := server.NewHub()
	application.AddListener(func(r app.Result) { hub.Publish(r) })

	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = findWebDir(cfg.DataDir)
	}
	if staticDir != "" {
		logger.S().Infof("Serving static files from %s", staticDir)
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		Registry:  registry,
		Frames:    application,
		Hub:       hub,
		Metrics:   m,
		Pipeline:  application,
	})

	if cfg.Camera.Enabled {
		if err := application.Start(); err != nil {
			logger.S().Warnf("Camera pipeline unavailable: %v", err)
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(cfg.HTTPAddr) }()

	if !cfg.TrayEnabled {
		err := wait(ctx, errCh)
		shutdown(srv)
		return err
	}

	// The tray owns the main goroutine; quitting it cancels ctx via stop.
	t := tray.New()
	t.OnToggle(application.SetEnabled)
	t.OnOpen(func() { openBrowser(browserURL(cfg.HTTPAddr)) })
	t.OnQuit(stop)
	application.AddListener(func(r app.Result) { t.SetGestures(r.Hands) })

	go func() {
		if err := wait(ctx, errCh); err != nil {
			logger.S().Errorf("Server failed: %v", err)
		}
		shutdown(srv)
		t.Quit()
	}()
	t.Run()
	return nil
}

// wait blocks until the server fails or ctx is cancelled.
func wait(ctx context.Context, errCh <-chan error) error {
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}

func shutdown(srv *server.Server) {
	logger.S().Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.S().Errorf("Server shutdown: %v", err)
	}
}

// newDetector builds the configured detector, falling back to the mock so the
// API keeps working without a local detector.
func newDetector(cfg *config.Config) detector.Detector {
	d, err := detector.New(detector.Config{
		Backend:       cfg.Detector.Backend,
		MaxHands:      cfg.Detector.MaxHands,
		MinConfidence: cfg.Detector.MinConfidence,
		RemoteURL:     cfg.Detector.RemoteURL,
		RemoteTimeout: cfg.Detector.RemoteTimeout,
	})
	if err != nil {
		logger.S().Warnf("Detector %q unavailable, using mock: %v", cfg.Detector.Backend, err)
		return detector.NewMockDetector()
	}
	return d
}

func defaultConfigPath() string {
	if p := os.Getenv("MUDRA_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "mudra.yaml"
	}
	return filepath.Join(home, ".mudra", "config.yaml")
}

// findWebDir returns the first existing web directory among the working
// directory's web, ../web, ../../web and dataDir/web.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func browserURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logger.S().Warnf("Failed to open browser: %v", err)
	}
}
