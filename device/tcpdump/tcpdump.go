/*
DESCRIPTION
  tcpdump.go provides an implementation of the Source interface that
  captures live traffic from a monitor-mode wireless interface through
  a tcpdump child process writing pcap to its stdout.

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

// Package tcpdump provides an implementation of Source for live capture
// via a tcpdump child process.
package tcpdump

import (
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/wifi/device"
	"github.com/ausocean/wifi/monitor/config"
)

// To indicate package when logging.
const pkg = "tcpdump: "

// Tcpdump is an implementation of Source that provides control over a
// tcpdump command capturing from a monitor-mode interface.
type Tcpdump struct {
	cfg       config.Config
	cmd       *exec.Cmd
	out       io.ReadCloser
	log       logging.Logger
	isRunning bool
}

// New returns a new Tcpdump.
func New(l logging.Logger) *Tcpdump { return &Tcpdump{log: l} }

// Name returns the name of the device.
func (t *Tcpdump) Name() string {
	return "Tcpdump"
}

// Set validates and stores the config fields Tcpdump uses: Interface
// and TcpdumpPath.
func (t *Tcpdump) Set(c config.Config) error {
	var errs device.MultiError
	if c.Interface == "" {
		errs = append(errs, errors.New("no interface"))
	}
	if c.TcpdumpPath == "" {
		c.TcpdumpPath = "tcpdump"
	}
	t.cfg = c
	if len(errs) != 0 {
		return errs
	}
	return nil
}

// Start launches the tcpdump child in monitor mode, unbuffered, writing
// pcap to its stdout. -I asks for monitor mode, -l for line buffering,
// -n to skip address resolution.
func (t *Tcpdump) Start() error {
	if t.isRunning {
		return nil
	}
	t.cmd = exec.Command(t.cfg.TcpdumpPath, "-Ilni", t.cfg.Interface, "-w", "-")
	var err error
	t.out, err = t.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("could not pipe command output: %w", err)
	}
	err = t.cmd.Start()
	if err != nil {
		return fmt.Errorf("could not start tcpdump: %w", err)
	}
	t.log.Info(pkg+"capture started", "interface", t.cfg.Interface)
	t.isRunning = true
	return nil
}

// Stop kills the tcpdump child and reaps it.
func (t *Tcpdump) Stop() error {
	if !t.isRunning {
		return nil
	}
	t.isRunning = false
	err := t.cmd.Process.Kill()
	if err != nil {
		return fmt.Errorf("could not kill tcpdump: %w", err)
	}
	t.cmd.Wait()
	return nil
}

// Read implements io.Reader, draining the child's pcap stream.
func (t *Tcpdump) Read(p []byte) (int, error) {
	if t.out == nil {
		return 0, errors.New("tcpdump not started")
	}
	return t.out.Read(p)
}

// IsRunning returns true if the child process is capturing.
func (t *Tcpdump) IsRunning() bool {
	return t.isRunning
}
