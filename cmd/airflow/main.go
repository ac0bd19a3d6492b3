/*
DESCRIPTION
  airflow is a vmstat-like tool for showing periodic wifi airtime usage:
  it decodes a pcap stream from a file or stdin and prints one character
  per time slot naming the dominant transmitter.

AUTHORS
  Dan Kortschak <dan@ausocean.org>
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2025 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package airflow renders an airtime grid from a capture stream.
package main

import (
	"compress/bzip2"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/wifi/airtime"
	"github.com/ausocean/wifi/capture"
)

const logVerbosity = logging.Warning

func main() {
	flag.Parse()

	log := logging.New(logVerbosity, os.Stderr, true)

	var in io.Reader = os.Stdin
	if path := flag.Arg(0); path != "" {
		f, err := os.Open(path)
		if err != nil {
			log.Fatal("could not open capture", "error", err.Error())
		}
		defer f.Close()
		in = f
		if strings.HasSuffix(path, ".bz2") {
			in = bzip2.NewReader(f)
		}
	}

	grid := airtime.New(os.Stdout, log)
	err := capture.Packetize(in, log, grid.Update)
	if err != nil {
		log.Fatal("decode failed", "error", err.Error())
	}
}
