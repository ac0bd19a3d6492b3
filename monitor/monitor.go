/*
DESCRIPTION
  monitor.go provides the Monitor type, which couples a capture source
  to the frame decoder and fans decoded frames out to consumers such as
  the station aggregator and the airtime grid.

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

// Package monitor ties together a capture source, the frame decoder
// and any number of frame consumers, with config validation and
// optional config-file hot reload.
package monitor

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/ausocean/wifi/capture"
	"github.com/ausocean/wifi/device"
	"github.com/ausocean/wifi/device/file"
	"github.com/ausocean/wifi/device/tcpdump"
	"github.com/ausocean/wifi/monitor/config"
)

// To indicate package when logging.
const pkg = "monitor: "

// Consumer is anything that wants every decoded frame, in capture
// order. Update is called from a single goroutine.
type Consumer interface {
	Update(capture.Frame)
}

// Monitor owns the capture pipeline: source → decoder → consumers.
type Monitor struct {
	cfg       config.Config
	src       device.Source
	consumers []Consumer

	err     chan error
	quit    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	watcher *fsnotify.Watcher
}

// New returns a Monitor for the passed config, which is validated here.
// Consumers receive frames in the order given.
func New(c config.Config, consumers ...Consumer) (*Monitor, error) {
	err := c.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "config struct is bad")
	}
	m := &Monitor{
		cfg:       c,
		consumers: consumers,
		err:       make(chan error),
		quit:      make(chan struct{}),
	}
	go m.handleErrors()

	switch c.Input {
	case config.InputFile:
		m.src = file.NewWith(c.Logger, c.InputPath)
	case config.InputTcpdump:
		t := tcpdump.New(c.Logger)
		err = t.Set(c)
		if err != nil {
			return nil, errors.Wrap(err, "could not set up tcpdump source")
		}
		m.src = t
	default:
		return nil, errors.Errorf("unrecognised input type: %v", c.Input)
	}
	return m, nil
}

func (m *Monitor) handleErrors() {
	for err := range m.err {
		if err != nil {
			m.cfg.Logger.Error(pkg+"async error", "error", err.Error())
		}
	}
}

func (m *Monitor) dispatch(f capture.Frame) {
	for _, c := range m.consumers {
		c.Update(f)
	}
}

// Start opens the source and begins decoding into the consumers. It
// returns once the pipeline is running; decode errors after that are
// logged asynchronously.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}
	m.cfg.Logger.Debug(pkg+"starting source", "source", m.src.Name())
	err := m.src.Start()
	if err != nil {
		return errors.Wrap(err, "could not start capture source")
	}
	m.running = true
	m.wg.Add(1)
	go m.run()
	return nil
}

// run drives the pull decoder over the source until end of stream or a
// fatal container error. Stopping the source unblocks the read; errors
// after a Stop are expected and dropped.
func (m *Monitor) run() {
	defer m.wg.Done()
	err := capture.Packetize(m.src, m.cfg.Logger, m.dispatch)
	select {
	case <-m.quit:
		return
	default:
	}
	if err != nil {
		m.err <- err
		return
	}
	m.cfg.Logger.Info(pkg + "capture stream ended")
}

// Stop halts the source and waits for the decode goroutine to drain.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	close(m.quit)
	err := m.src.Stop()
	if err != nil {
		m.cfg.Logger.Error(pkg+"could not stop source", "error", err.Error())
	}
	m.wg.Wait()
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.running = false
}

// Config returns a copy of the monitor's current config.
func (m *Monitor) Config() config.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// WatchConfig re-applies the config file at path whenever it changes.
// Only fields that can change while a capture is running are applied;
// currently that is the log level.
func (m *Monitor) WatchConfig(path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "could not create config watcher")
	}
	err = w.Add(path)
	if err != nil {
		w.Close()
		return errors.Wrap(err, "could not watch config file")
	}
	m.watcher = w
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) {
					continue
				}
				c, err := config.Load(path)
				if err != nil {
					m.err <- err
					continue
				}
				c.Logger = m.cfg.Logger
				err = c.Validate()
				if err != nil {
					m.err <- err
					continue
				}
				m.mu.Lock()
				m.cfg.LogLevel = c.LogLevel
				m.cfg.Logger.SetLevel(c.LogLevel)
				m.mu.Unlock()
				m.cfg.Logger.Info(pkg+"config reloaded", "logLevel", c.LogLevel)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				m.err <- err
			}
		}
	}()
	return nil
}
