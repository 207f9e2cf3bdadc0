package main

import (
	"flag"
	"fmt"
	"os"

	"cockpit/internal/app"
	"cockpit/internal/config"
	"cockpit/internal/logging"
	"cockpit/internal/notify"
	"cockpit/internal/sessionmeta"
	"cockpit/internal/store"
	"cockpit/internal/workspace"
)

var version = "dev"

func main() {
	fs := flag.NewFlagSet("cockpit", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if *showVersion {
		fmt.Println("cockpit " + version)
		return
	}
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "cockpit:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadCoreConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logPath, err := config.LogPath()
	if err != nil {
		return err
	}
	log, logCloser, err := logging.NewFile(logPath, logging.ParseLevel(cfg.LogLevel()))
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logCloser.Close()
	log.Info("starting", logging.F("version", version))

	paths, err := repositoryPaths()
	if err != nil {
		return err
	}
	repo, err := store.Open(cfg.StoreBackend(), paths)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer repo.Close()

	meta := sessionmeta.NewStore(log)
	dispatcher := notify.NewDefaultDispatcher(log)
	service := workspace.NewService(log, cfg, repo, meta, dispatcher)
	defer service.Close()

	if err := app.Run(service, repo.AppState()); err != nil {
		log.Error("ui exited", logging.F("error", err))
		return err
	}
	log.Info("stopped")
	return nil
}

func repositoryPaths() (store.RepositoryPaths, error) {
	workspacesPath, err := config.WorkspacesPath()
	if err != nil {
		return store.RepositoryPaths{}, err
	}
	statePath, err := config.StatePath()
	if err != nil {
		return store.RepositoryPaths{}, err
	}
	dbPath, err := config.DBPath()
	if err != nil {
		return store.RepositoryPaths{}, err
	}
	return store.RepositoryPaths{
		WorkspacesPath: workspacesPath,
		AppStatePath:   statePath,
		DBPath:         dbPath,
	}, nil
}
