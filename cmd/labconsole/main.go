package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rusenback/labconsole/internal/bridge"
	"github.com/rusenback/labconsole/internal/config"
	"github.com/rusenback/labconsole/internal/console"
	"github.com/rusenback/labconsole/internal/dispatch"
	"github.com/rusenback/labconsole/internal/docker"
	"github.com/rusenback/labconsole/internal/logging"
	"github.com/rusenback/labconsole/internal/poller"
	"github.com/rusenback/labconsole/internal/storage"
	"github.com/rusenback/labconsole/internal/tui"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "labconsole.yaml", "path to the YAML config file")
	backendURL := flag.String("url", "", "bridge backend URL (overrides config and environment)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("labconsole", version)
		return
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *backendURL != "" {
		cfg.BackendURL = *backendURL
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Invalid config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("exit", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		storeOpts []console.Option
		journal   *storage.Journal
		session   string
	)
	if cfg.JournalPath != "" {
		var err error
		journal, err = storage.Open(cfg.JournalPath, storage.WithLogger(log))
		if err != nil {
			return fmt.Errorf("failed to initialize journal: %w", err)
		}
		defer journal.Close()

		session = journal.Session()
		storeOpts = append(storeOpts, console.WithSink(journal))
	}

	store := console.NewStore(storeOpts...)
	client := bridge.New(cfg.BackendURL)

	poll := poller.New(client, func(r console.PollResult) { store.Apply(r) },
		poller.WithInterval(cfg.PollInterval),
		poller.WithTimeout(cfg.PollTimeout),
		poller.WithLogger(log),
	)
	disp := dispatch.New(client, store,
		dispatch.WithTimeout(cfg.RequestTimeout),
		dispatch.WithLogger(log),
	)

	opts := tui.Options{
		Store:      store,
		Dispatcher: disp,
		Commands:   cfg.Commands,
		BackendURL: client.BaseURL(),
		ReportDir:  cfg.ReportDir,
		Logger:     log,
	}
	if journal != nil {
		opts.Journal = journal
	}

	dockerCfg := docker.DefaultConfig()
	if cfg.DockerHost != "" {
		dockerCfg.Host = cfg.DockerHost
	}
	lab, err := docker.NewClient(ctx, dockerCfg)
	if err != nil {
		log.Warn("docker unavailable", zap.String("host", dockerCfg.Host), zap.Error(err))
		opts.LabErr = err
	} else {
		defer lab.Close()
		opts.Lab = lab
	}

	log.Info("starting",
		zap.String("version", version),
		zap.String("backend", client.BaseURL()),
		zap.String("session", session),
	)

	if err := poll.Start(ctx); err != nil {
		return err
	}
	defer poll.Stop()

	p := tea.NewProgram(tui.NewModel(ctx, opts), tea.WithAltScreen())

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, err = p.Run()
	return err
}
