package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BrandonKowalski/voyage/pkg/voyage"
	"github.com/BrandonKowalski/voyage/pkg/voyage/app"
	"github.com/BrandonKowalski/voyage/pkg/voyage/backbutton"
	"github.com/BrandonKowalski/voyage/pkg/voyage/config"
	"github.com/BrandonKowalski/voyage/pkg/voyage/i18n"
	"github.com/BrandonKowalski/voyage/pkg/voyage/statestore"

	tea "github.com/charmbracelet/bubbletea"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", config.DefaultPath(), "path to the TOML config file")
	deepLink := flag.String("open", "", "deep link to open on start, e.g. voyage://city/Goa")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("voyage", version)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	options := voyage.OptionsFromConfig(cfg)
	options.FileOnly = true
	voyage.Init(options)
	defer voyage.Close()

	logger := voyage.GetLogger()
	logger.Info("starting", "version", version, "config", *configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := statestore.Open(ctx, cfg.StatePath)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer store.Close()

	dispatch := newTeaDispatcher()
	root, err := app.New(app.Options{
		Backend:        voyage.NewBackend(cfg),
		Dispatcher:     dispatch,
		Localizer:      i18n.New(cfg.Locales...),
		Store:          store,
		Context:        ctx,
		SearchDebounce: cfg.SearchDebounce,
	})
	if err != nil {
		return err
	}
	defer root.Close()

	if *deepLink != "" {
		if err := root.OpenDeepLink(*deepLink); err != nil {
			logger.Warn("ignoring deep link", "link", *deepLink, "error", err)
		}
	}

	sh := newShell(ctx, root, dispatch)

	if cfg.BackButtonDevice != "" {
		listener := &backbutton.Listener{
			Source: backbutton.NewDevice(backbutton.Config{
				DevicePath: cfg.BackButtonDevice,
				Code:       cfg.BackButtonCode,
			}),
			Back:       root,
			Dispatcher: dispatch,
			Exit:       func() { sh.quit = true },
			CoolDown:   300 * time.Millisecond,
		}
		go listener.Run(ctx)
	}

	p := tea.NewProgram(sh, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("running app: %w", err)
	}

	if err := root.Save(context.Background()); err != nil {
		logger.Error("saving back stack", "error", err)
	}
	return nil
}
