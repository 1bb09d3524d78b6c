package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kardianos/service"
	"github.com/zhaobenny/stayboard/server/internal/config"
)

const version = "0.1.0"

func main() {
	args := os.Args[1:]

	// Check for service commands before parsing flags
	var svcCommand string
	if len(args) > 0 {
		switch args[0] {
		case "install", "start", "stop", "uninstall", "status", "run":
			svcCommand = args[0]
			args = args[1:]
		}
	}

	fs := flag.NewFlagSet("stayboard-server", flag.ExitOnError)
	var (
		configPath string
		showVer    bool
	)
	fs.StringVar(&configPath, "config", "./stayboard.yaml", "Path to the YAML configuration file")
	fs.BoolVar(&showVer, "version", false, "Show version")
	fs.BoolVar(&showVer, "v", false, "Show version")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `stayboard-server - monthly sales summary by facility

Usage: stayboard-server [command] [options]

Commands:
  run         Run in the foreground (default)
  install     Install as a background service
  start       Start the background service
  stop        Stop the background service
  uninstall   Remove the background service
  status      Show service status

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Environment variables override the configuration file:
  PORT, SESSION_STORE, DB_PATH, SESSION_LIFETIME, SECURE_COOKIES, MAX_UPLOAD_BYTES,
  UPLOAD_RATE, UPLOAD_BURST, INPUT_ENCODING, CURRENCY_UNIT, LOG_LEVEL, LOG_FORMAT
`)
	}

	fs.Parse(args)

	if showVer {
		fmt.Printf("stayboard-server version %s\n", version)
		return
	}

	if abs, err := filepath.Abs(configPath); err == nil {
		configPath = abs
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	svcConfig := &service.Config{
		Name:        "stayboard",
		DisplayName: "stayboard",
		Description: "Monthly sales summary by facility from uploaded booking CSVs",
		Arguments:   []string{"run", fmt.Sprintf("--config=%s", configPath)},
	}

	prg := &program{cfg: cfg, logger: logger}
	s, err := service.New(prg, svcConfig)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}

	switch svcCommand {
	case "install":
		if err := s.Install(); err != nil {
			log.Fatalf("Failed to install service: %v", err)
		}
		if err := s.Start(); err != nil {
			log.Fatalf("Service installed but failed to start: %v", err)
		}
		fmt.Println("Service installed and started.")
		fmt.Printf("Config: %s\n", configPath)
		return

	case "start":
		if err := s.Start(); err != nil {
			log.Fatalf("Failed to start service: %v", err)
		}
		fmt.Println("Service started.")
		return

	case "stop":
		if err := s.Stop(); err != nil {
			log.Fatalf("Failed to stop service: %v", err)
		}
		fmt.Println("Service stopped.")
		return

	case "uninstall":
		s.Stop() // ignore error
		if err := s.Uninstall(); err != nil {
			log.Fatalf("Failed to uninstall service: %v", err)
		}
		fmt.Println("Service uninstalled.")
		return

	case "status":
		status, err := s.Status()
		if err != nil {
			fmt.Printf("Service status: not installed or error (%v)\n", err)
			return
		}
		switch status {
		case service.StatusRunning:
			fmt.Println("Service status: running")
		case service.StatusStopped:
			fmt.Println("Service status: stopped")
		default:
			fmt.Println("Service status: unknown")
		}
		return
	}

	// Run blocks until SIGINT/SIGTERM or the service manager stops us
	if err := s.Run(); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}
