package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/automoto/rtspawn/config"
	"github.com/automoto/rtspawn/logging"
	"github.com/automoto/rtspawn/master"
	"github.com/getsentry/sentry-go"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (empty = built-in defaults)")
	port := flag.Int("port", 0, "HTTP listen port")
	ttl := flag.Duration("ttl", 0, "Server TTL before expiry")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Master.Port = *port
	}
	expiry := time.Duration(cfg.Master.TTLSeconds) * time.Second
	if *ttl != 0 {
		expiry = *ttl
	}

	if err := logging.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()
	log := logging.Named("master")

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			log.Warnw("sentry disabled", "error", err)
		}
	}

	reg := master.NewRegistry(expiry, log)
	go func() {
		defer sentry.Recover()
		reg.Run(30 * time.Second)
	}()

	addr := fmt.Sprintf(":%d", cfg.Master.Port)
	log.Infow("starting", "addr", addr, "ttl", expiry)
	if err := http.ListenAndServe(addr, master.NewMux(reg, log)); err != nil {
		log.Fatalw("fatal", "error", err)
	}
}
