/*
DESCRIPTION
  device.go provides Source, an interface that describes a configurable
  capture byte source that can be started and stopped from which pcap
  data may be obtained.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2025 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package device provides an interface and implementations for capture
// input sources that can be started and stopped from which pcap data
// can be obtained.
package device

import (
	"fmt"
	"io"

	"github.com/ausocean/wifi/monitor/config"
)

// Source describes a configurable source of pcap capture bytes. Source
// is an io.Reader.
type Source interface {
	io.Reader

	// Name returns the name of the Source.
	Name() string

	// Set allows for configuration of the Source using a Config struct.
	// All, some or none of the fields of the Config struct may be used
	// for configuration by an implementation.
	Set(c config.Config) error

	// Start will start the Source producing capture data; after which
	// the Read method may be called to obtain the data.
	Start() error

	// Stop will stop the Source from producing capture data. From this
	// point Reads will no longer be successful.
	Stop() error

	// IsRunning is used to determine if the source is running.
	IsRunning() bool
}

// MultiError collects multiple errors raised during validation of
// configuration parameters for Sources.
type MultiError []error

func (me MultiError) Error() string {
	if len(me) == 0 {
		panic("device: invalid use of MultiError")
	}
	return fmt.Sprintf("%v", []error(me))
}
