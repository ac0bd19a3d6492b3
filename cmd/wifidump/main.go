/*
DESCRIPTION
  wifidump decodes a pcap capture and writes one CSV row per frame with
  the commonly wanted fields, timestamps rebased to the first frame.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2025 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package wifidump dumps decoded capture fields as CSV.
package main

import (
	"compress/bzip2"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/wifi/capture"
)

const logVerbosity = logging.Warning

func main() {
	keepBad := flag.Bool("bad", false, "include frames with a failed FCS")
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

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()
	w.Write([]string{
		"pcap_secs", "ta", "ra", "seq", "mcs", "rate", "retry",
		"dbm_antsignal", "dbm_antnoise", "typestr",
	})

	var base float64
	err := capture.Packetize(in, log, func(f capture.Frame) {
		if f.Bad && !*keepBad {
			return
		}
		if base == 0 {
			base = f.PcapSecs
		}
		w.Write([]string{
			fmt.Sprintf("%.6f", f.PcapSecs-base),
			f.TA,
			f.RA,
			opt(f.HasSeq, int(f.Seq)),
			opt(f.HasMCS, int(f.MCS)),
			optFloat(f.HasRate, f.Rate),
			strconv.FormatBool(f.Retry),
			opt(f.HasDBmAntSignal, int(f.DBmAntSignal)),
			opt(f.HasDBmAntNoise, int(f.DBmAntNoise)),
			f.TypeStr,
		})
	})
	if err != nil {
		log.Fatal("decode failed", "error", err.Error())
	}
}

// opt formats v, or nothing when the field was absent.
func opt(has bool, v int) string {
	if !has {
		return ""
	}
	return strconv.Itoa(v)
}

func optFloat(has bool, v float64) string {
	if !has {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
