// Command pipsim drives a synthetic video call through the
// picture-in-picture core and shows the result in the terminal.
//
// Usage:
//
//	pipsim [-config pip.yaml] [-metrics :9090] [-log pipsim.log]
//
// Keys: p toggles the floating window, d rotates the dominant speaker,
// s toggles a remote screen share, r toggles reconnecting, n toggles
// network availability, f toggles foreground/background, v toggles the
// source view, q quits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/opd-ai/pipcore/config"
	"github.com/opd-ai/pipcore/metrics"
	"github.com/opd-ai/pipcore/network"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Flags holds the command line.
type Flags struct {
	ConfigPath  string
	MetricsAddr string
	LogPath     string
	Debug       bool
}

func parseFlags() Flags {
	var f Flags
	flag.StringVar(&f.ConfigPath, "config", "", "YAML configuration file (watched for changes)")
	flag.StringVar(&f.MetricsAddr, "metrics", "", "Serve Prometheus metrics on this address, e.g. :9090")
	flag.StringVar(&f.LogPath, "log", "", "Write logs to this file (logs are discarded otherwise)")
	flag.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	flag.Parse()
	return f
}

func main() {
	if err := run(parseFlags()); err != nil {
		fmt.Fprintln(os.Stderr, "pipsim:", err)
		os.Exit(1)
	}
}

func run(flags Flags) error {
	logFile, err := setupLogging(flags)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	cfg := config.Default()
	if flags.ConfigPath != "" {
		loaded, err := config.Load(flags.ConfigPath)
		if err != nil {
			return err
		}
		cfg = *loaded
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	if flags.MetricsAddr != "" {
		server := serveMetrics(flags.MetricsAddr, registry)
		defer server.Close()
	}

	monitor := network.NewMonitor(true)
	if cfg.Network.STUNServer != "" {
		prober := network.NewSTUNProber(cfg.Network.STUNServer)
		if err := monitor.Start(context.Background(), prober, cfg.Network.ProbeInterval); err != nil {
			return err
		}
		defer monitor.Stop()
	}

	sim, err := NewSimulation(cfg, monitor, m)
	if err != nil {
		return err
	}
	defer sim.Close()

	if flags.ConfigPath != "" {
		watcher, err := config.NewWatcher(flags.ConfigPath, sim.ApplyConfig)
		if err != nil {
			return err
		}
		defer watcher.Close()
	}

	program := tea.NewProgram(newModel(sim), tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func setupLogging(flags Flags) (*os.File, error) {
	if flags.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if flags.LogPath == "" {
		logrus.SetOutput(io.Discard)
		return nil, nil
	}

	f, err := os.OpenFile(flags.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logrus.SetOutput(f)
	return f, nil
}

func serveMetrics(addr string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithFields(logrus.Fields{
				"function": "serveMetrics",
				"addr":     addr,
				"error":    err.Error(),
			}).Error("Metrics server failed")
		}
	}()
	return server
}
