/*
DESCRIPTION
  wifitop is a top-like terminal view of per-AP and per-station traffic
  decoded from a live monitor-mode capture or a pcap file, optionally
  exposing the aggregate as Prometheus metrics.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2025 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package wifitop is a terminal top view over the station aggregator.
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/wifi/monitor"
	"github.com/ausocean/wifi/monitor/config"
	"github.com/ausocean/wifi/stations"
)

// Current software version.
const version = "v1.0.2"

// Logging configuration.
const (
	logPath      = "/var/log/wifitop/wifitop.log"
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logSuppress  = true
)

// Screen geometry of every render; the terminal size is not queried.
const (
	defaultRows = 40
	defaultCols = 120
)

// clearHome repositions the cursor and wipes the screen between
// renders.
const clearHome = "\033[H\033[2J"

func main() {
	var (
		showVersion  = flag.Bool("version", false, "show version")
		configPath   = flag.String("config", "", "YAML config file; flags override it")
		input        = flag.String("input", "", "capture input: file or tcpdump")
		inputPath    = flag.String("path", "", "pcap file path for file input")
		iface        = flag.String("iface", "", "wireless interface for live capture")
		metricsAddr  = flag.String("metrics", "", "serve Prometheus metrics at this address")
		logLevel     = flag.Int("loglevel", int(logging.Info), "log verbosity")
		logToFile    = flag.Bool("logfile", false, "also log to "+logPath)
		watchdogSecs = flag.Int("watchdog", 0, "systemd watchdog kick period in seconds")
	)
	flag.Parse()
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	logSinks := []io.Writer{os.Stderr}
	if *logToFile {
		logSinks = append(logSinks, &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    logMaxSize,
			MaxBackups: logMaxBackup,
			MaxAge:     logMaxAge,
		})
	}
	log := logging.New(int8(*logLevel), io.MultiWriter(logSinks...), logSuppress)
	log.Info("starting wifitop", "version", version)

	var cfg config.Config
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal("could not load config", "error", err.Error())
		}
	}
	cfg.Logger = log
	if *input != "" {
		cfg.InputName = *input
	}
	if *inputPath != "" {
		cfg.InputPath = *inputPath
		if cfg.InputName == "" {
			cfg.InputName = "file"
		}
	}
	if *iface != "" {
		cfg.Interface = *iface
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	agg := stations.NewAggregator(log)
	m, err := monitor.New(cfg, agg)
	if err != nil {
		log.Fatal("could not create monitor", "error", err.Error())
	}
	if *configPath != "" {
		err = m.WatchConfig(*configPath)
		if err != nil {
			log.Warning("config watch unavailable", "error", err.Error())
		}
	}

	cfg = m.Config()
	if cfg.MetricsAddr != "" {
		prometheus.MustRegister(stations.NewCollector(agg))
		go func() {
			log.Info("serving metrics", "addr", cfg.MetricsAddr)
			err := http.ListenAndServe(cfg.MetricsAddr, promhttp.Handler())
			log.Error("metrics server stopped", "error", err.Error())
		}()
	}

	err = m.Start()
	if err != nil {
		log.Fatal("could not start monitor", "error", err.Error())
	}
	defer m.Stop()

	// Under systemd, report readiness and keep the watchdog fed.
	daemon.SdNotify(false, daemon.SdNotifyReady)
	if *watchdogSecs > 0 {
		go func() {
			for range time.Tick(time.Duration(*watchdogSecs) * time.Second) {
				daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.UpdatePeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fmt.Print(clearHome)
			fmt.Println(agg.Render(defaultRows, defaultCols))
		case s := <-sig:
			log.Info("signal received, stopping", "signal", s.String())
			return
		}
	}
}
