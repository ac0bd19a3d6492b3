/*
DESCRIPTION
  file.go provides an implementation of the Source interface for pcap
  capture files, including bzip2-compressed files by suffix. Gzip is
  not unwrapped here; the capture decoder detects it by magic.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2025 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package file provides an implementation of Source for capture files.
package file

import (
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/wifi/monitor/config"
)

// File is an implementation of the Source interface for a file
// containing pcap capture data.
type File struct {
	f         *os.File
	r         io.Reader
	path      string
	isRunning bool
	log       logging.Logger
	set       bool
	mu        sync.Mutex
}

// New returns a new File.
func New(l logging.Logger) *File { return &File{log: l} }

// NewWith returns a new File with required params provided i.e. the Set
// method does not need to be called.
func NewWith(l logging.Logger, path string) *File {
	return &File{log: l, path: path, set: true}
}

// Name returns the name of the device.
func (m *File) Name() string {
	return "File"
}

// Set simply sets the File's config to the passed config.
func (m *File) Set(c config.Config) error {
	m.path = c.InputPath
	m.set = true
	return nil
}

// Start will open the file at the location of the InputPath field of
// the config struct, stacking a bzip2 inflater on a .bz2 suffix.
func (m *File) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return errors.New("File has not been set with config")
	}
	var err error
	m.f, err = os.Open(m.path)
	if err != nil {
		return fmt.Errorf("could not open capture file: %w", err)
	}
	m.r = m.f
	if strings.HasSuffix(m.path, ".bz2") {
		m.r = bzip2.NewReader(m.f)
	}
	m.isRunning = true
	return nil
}

// Stop will close the file such that any further reads will fail.
func (m *File) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	err := m.f.Close()
	if err == nil {
		m.isRunning = false
		return nil
	}
	return err
}

// Read implements io.Reader. If Start has not been called, or Start has
// been called and Stop has since been called, an error is returned.
func (m *File) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.r == nil || !m.isRunning {
		return 0, errors.New("capture file is closed, File not started")
	}
	return m.r.Read(p)
}

// IsRunning returns true if the file is open for reading.
func (m *File) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isRunning
}
