package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automoto/rtspawn/config"
	"github.com/automoto/rtspawn/logging"
	"github.com/automoto/rtspawn/server/core"
	"github.com/automoto/rtspawn/shared/protocol"
	"github.com/automoto/rtspawn/systems"
	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/yohamta/donburi"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (empty = built-in defaults)")
	port := flag.Uint("port", 0, "Server port")
	tickRate := flag.Int("tickrate", 0, "Server tick rate (updates per second)")
	syncRate := flag.Int("syncrate", 0, "Periodic yaw/zoom syncs per second")
	name := flag.String("name", "", "Server display name")
	version := flag.String("version", "", "Required client version (empty = accept any)")
	replication := flag.String("replication", "", "Replication mode: split or versioned")
	masterURL := flag.String("master", "", "Master server URL (empty = no registration)")
	advertise := flag.String("advertise", "", "Address announced to the master (default localhost:<port>)")
	stats := flag.String("statsview", "", "Address for the runtime stats dashboard (empty = off)")
	ownerOnly := flag.Bool("owneronly", false, "Only accept intents from a pawn's owner")
	maxAxis := flag.Float64("maxaxis", 0, "Reject intents with any axis magnitude above this (0 = off)")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Net.Port = *port
		case "tickrate":
			cfg.Net.TickRate = *tickRate
		case "syncrate":
			cfg.Net.SyncRate = *syncRate
		case "name":
			cfg.Net.ServerName = *name
		case "version":
			cfg.Net.Version = *version
		case "replication":
			cfg.Net.Replication = *replication
		case "master":
			cfg.Master.URL = *masterURL
		case "statsview":
			cfg.Net.StatsView = *stats
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()
	log := logging.Named("main")

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			Release:     cfg.Net.Version,
		}); err != nil {
			log.Warnw("sentry disabled", "error", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalw("failed to register components", "error", err)
	}

	if cfg.Net.StatsView != "" {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr(cfg.Net.StatsView))
		mgr := statsview.New()
		go mgr.Start()
		log.Infow("stats dashboard enabled", "addr", cfg.Net.StatsView)
	}

	var opts []core.Option
	if *ownerOnly || *maxAxis > 0 {
		opts = append(opts, core.WithAuthorizer(func(world donburi.World) systems.Authorizer {
			auths := []systems.Authorizer{systems.MagnitudeLimit(*maxAxis, *maxAxis, *maxAxis)}
			if *ownerOnly {
				auths = append(auths, systems.OwnerOnly(world))
			}
			return systems.AllOf(auths...)
		}))
	}

	server, err := core.NewServer(cfg, opts...)
	if err != nil {
		log.Fatalw("failed to create server", "error", err)
	}

	var registration *core.Registration
	if cfg.Master.URL != "" {
		addr := *advertise
		if addr == "" {
			addr = fmt.Sprintf("localhost:%d", cfg.Net.Port)
		}
		registration = core.NewRegistration(cfg.Master.URL, cfg.Net.ServerName, addr,
			cfg.Net.Version, cfg.Net.Region, cfg.Net.MaxPlayers, server, logging.L())
		registration.Start()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down server")
		if registration != nil {
			registration.Stop()
		}
		server.Stop()
		logging.Sync()
		os.Exit(0)
	}()

	log.Infow("starting server",
		"name", cfg.Net.ServerName, "port", cfg.Net.Port,
		"tickRate", cfg.Net.TickRate, "syncRate", cfg.Net.SyncRate,
		"replication", cfg.Net.Replication, "version", cfg.Net.Version)
	if err := server.Start(); err != nil {
		log.Fatalw("server error", "error", err)
	}
}
