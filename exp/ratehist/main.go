/*
DESCRIPTION
  ratehist reads a pcap capture and renders a bar chart of data-frame
  counts per MCS rate bin to a PNG, a quick way to eyeball the rate
  distribution of a capture offline.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2025 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package ratehist plots the MCS rate-bin distribution of a capture.
package main

import (
	"flag"
	"log"
	"os"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/wifi/capture"
	"github.com/ausocean/wifi/stations"
)

func main() {
	var (
		inPath  string
		outPath string
	)
	flag.StringVar(&inPath, "in", "capture.pcap", "file path of input capture")
	flag.StringVar(&outPath, "out", "ratehist.png", "file path of output plot")
	flag.Parse()

	f, err := os.Open(inPath)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	bins := make([]int, stations.RateBinMax+1)
	l := logging.New(logging.Warning, os.Stderr, true)
	err = capture.Packetize(f, l, func(fr capture.Frame) {
		if fr.Bad || fr.TypeStr == "" || fr.TypeStr[0] != '2' {
			return
		}
		bin := 0
		if fr.HasMCS {
			bin = int(fr.MCS)
		}
		if bin > stations.RateBinMax {
			bin = stations.RateBinMax
		}
		bins[bin]++
	})
	if err != nil {
		log.Fatal(err)
	}

	values := make(plotter.Values, len(bins))
	names := make([]string, len(bins))
	for i, v := range bins {
		values[i] = float64(v)
		names[i] = strconv.Itoa(i)
	}

	p := plot.New()
	p.Title.Text = "Data frames per MCS bin"
	p.X.Label.Text = "MCS"
	p.Y.Label.Text = "frames"
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		log.Fatal(err)
	}
	p.Add(bars)
	p.NominalX(names...)

	err = p.Save(6*vg.Inch, 4*vg.Inch, outPath)
	if err != nil {
		log.Fatal(err)
	}
}
