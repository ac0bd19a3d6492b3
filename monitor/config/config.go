/*
NAME
  config.go

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

// Package config contains the configuration settings for monitor.
package config

import (
	"os"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Input kinds.
const (
	// Indicates no option has been set.
	NothingDefined = iota

	InputFile
	InputTcpdump
)

// Default configuration values.
const (
	defaultInput        = InputTcpdump
	defaultInterface    = "wlan0"
	defaultTcpdumpPath  = "tcpdump"
	defaultReadSize     = 65536
	defaultUpdatePeriod = 100 * time.Millisecond
	defaultLogLevel     = logging.Info
)

// Config provides parameters relevant to a monitor instance. A new
// config must be passed to the constructor.
type Config struct {
	// Logger is the logger used by the monitor and everything beneath
	// it. It must be set by the caller; it does not come from a file.
	Logger logging.Logger `yaml:"-"`

	LogLevel int8 `yaml:"logLevel"` // Verbosity; logging.Debug .. logging.Fatal.

	// Input selects the capture source: InputFile replays a pcap file
	// (gzip or bzip2 compressed is fine), InputTcpdump captures live
	// from a monitor-mode interface.
	Input int `yaml:"-"`

	// InputName is the yaml form of Input: "file" or "tcpdump".
	InputName string `yaml:"input"`

	InputPath   string `yaml:"inputPath"`   // Capture file path for InputFile.
	Interface   string `yaml:"interface"`   // Wireless interface for InputTcpdump.
	TcpdumpPath string `yaml:"tcpdumpPath"` // tcpdump binary to exec.

	// ReadSize is validated and defaulted here, but the capture decoder
	// does not use it: it requests a fixed 4096 bytes per read.
	ReadSize int `yaml:"readSize"`

	// UpdatePeriod is how often consumers of the live view re-render.
	// The yaml form is integer milliseconds.
	UpdatePeriod   time.Duration `yaml:"-"`
	UpdatePeriodMs int           `yaml:"updatePeriodMs"`

	// MetricsAddr, when non-empty, serves Prometheus metrics at this
	// address.
	MetricsAddr string `yaml:"metricsAddr"`
}

// Load reads a YAML config from path. Fields not present keep their
// zero values; Validate applies defaults afterwards.
func Load(path string) (Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	if err != nil {
		return c, errors.Wrap(err, "could not read config file")
	}
	err = yaml.Unmarshal(b, &c)
	if err != nil {
		return c, errors.Wrap(err, "could not parse config file")
	}
	return c, nil
}

// Validate checks the config, resolving the input kind and applying
// defaults for unset fields. Invalid combinations are hard errors.
func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("no logger set in config")
	}

	switch c.InputName {
	case "file":
		c.Input = InputFile
	case "tcpdump":
		c.Input = InputTcpdump
	case "":
		if c.Input == NothingDefined {
			c.Input = defaultInput
		}
	default:
		return errors.Errorf("invalid input: %s", c.InputName)
	}

	if c.Input == InputFile && c.InputPath == "" {
		return errors.New("file input with no input path")
	}

	if c.Interface == "" {
		c.Logger.Debug("no interface defined, defaulting", "interface", defaultInterface)
		c.Interface = defaultInterface
	}
	if c.TcpdumpPath == "" {
		c.TcpdumpPath = defaultTcpdumpPath
	}
	if c.ReadSize <= 0 {
		c.ReadSize = defaultReadSize
	}
	if c.UpdatePeriod <= 0 && c.UpdatePeriodMs > 0 {
		c.UpdatePeriod = time.Duration(c.UpdatePeriodMs) * time.Millisecond
	}
	if c.UpdatePeriod <= 0 {
		c.UpdatePeriod = defaultUpdatePeriod
	}
	if c.LogLevel < logging.Debug || c.LogLevel > logging.Fatal {
		c.Logger.Debug("log level bad or unset, defaulting", "logLevel", defaultLogLevel)
		c.LogLevel = defaultLogLevel
	}
	return nil
}
