/*
NAME
  airtime.go - one-character-per-slot airtime visualization.

DESCRIPTION
  See Readme.md

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2025 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package airtime renders decoded capture frames as a vmstat-like grid:
// each character is one time slot, showing the transmitter that used
// the most airtime in that slot. Beacon-dominated slots print '.', and
// slots less than half busy print in lower case. A legend mapping
// abbreviation letters to MACs is reprinted every 20 rows, and each row
// ends with its airtime utilisation percentage.
package airtime

import (
	"fmt"
	"io"
	"strings"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/wifi/capture"
)

// Grid geometry: half a beacon-ish second per row, split into 64
// columns. The row length is derived from the column length so rounding
// cannot leave a partial final column.
const (
	UsecPerCol = 1024000 / 2 / 64
	UsecPerRow = UsecPerCol * 64

	legendEvery = 20
)

// colFrame is the per-slot memory of one candidate frame.
type colFrame struct {
	ta      string
	airtime float64
	ftype   uint8
}

// Grid consumes frames and writes grid characters to w as time slots
// complete.
type Grid struct {
	w   io.Writer
	log logging.Logger

	timeInit     bool
	rowStartUsec uint64
	colStartUsec uint64
	lastUsec     uint64
	rowAirtime   float64
	colAirtime   float64
	colFrames    []colFrame
	rownum       int

	rowMACs  map[string]bool
	realMACs map[string]bool
	abbrevs  map[string]byte
	queue    []byte
}

// New returns a Grid writing to w.
func New(w io.Writer, l logging.Logger) *Grid {
	g := &Grid{
		w:        w,
		log:      l,
		rowMACs:  make(map[string]bool),
		realMACs: make(map[string]bool),
		abbrevs:  make(map[string]byte),
	}
	for c := byte('Z'); c >= 'A'; c-- {
		g.queue = append(g.queue, c)
	}
	return g
}

// Update folds one frame into the grid, emitting any slots and rows the
// frame's timestamp completes.
func (g *Grid) Update(f capture.Frame) {
	// Control frame timing is not attributed to a slot.
	if f.Type&0xf0 == 0x10 {
		return
	}

	macUsecs := f.MACUsecs
	if !f.HasMACUsecs {
		macUsecs = g.lastUsec
	}
	if macUsecs == 0 {
		return
	}

	g.colFrames = append(g.colFrames, colFrame{ta: g.ta(f), airtime: f.AirtimeUsec, ftype: f.Type})
	g.colAirtime += f.AirtimeUsec
	g.rowAirtime += f.AirtimeUsec
	if !f.Bad {
		g.rowMACs[g.ta(f)] = true
		g.realMACs[g.ta(f)] = true
	}

	if !g.timeInit {
		g.colStartUsec = macUsecs
		g.rowStartUsec = macUsecs
		g.timeInit = true
	}

	for macUsecs-g.colStartUsec >= UsecPerCol {
		if g.colStartUsec-g.rowStartUsec >= UsecPerRow {
			g.endRow()
		}
		g.endCol()
	}
	g.lastUsec = macUsecs
}

// ta is the frame's transmitter for attribution purposes.
func (g *Grid) ta(f capture.Frame) string {
	if f.TA == "" {
		return "???"
	}
	return f.TA
}

// endRow prints the row utilisation figure and, periodically, the
// abbreviation legend.
func (g *Grid) endRow() {
	fmt.Fprintf(g.w, " %2d%%\n", int(g.rowAirtime*100/UsecPerRow))
	if g.rownum%legendEvery == 0 {
		fmt.Fprintf(g.w, "\n--- .=Beacon")
		for mac := range g.rowMACs {
			if a, ok := g.abbrevs[mac]; ok {
				fmt.Fprintf(g.w, " %c=%s", a, mac)
			}
		}
		fmt.Fprintln(g.w)
		g.rowMACs = make(map[string]bool)
	}
	g.rownum++
	g.rowStartUsec += UsecPerRow
	g.rowAirtime = 0
}

// endCol chooses and prints the character for the finished slot.
func (g *Grid) endCol() {
	var most colFrame
	for _, p := range g.colFrames {
		if g.realMACs[p.ta] && p.airtime > most.airtime {
			most = p
		}
	}
	var c byte = ' '
	if most.ta != "" {
		c = g.abbrev(most.ta)
		if most.ftype == 0x08 { // Beacon was the biggest thing in the slot.
			c = '.'
		}
		if g.colAirtime < UsecPerCol/2 {
			c = lower(c)
		}
	}
	g.w.Write([]byte{c})
	g.colStartUsec += UsecPerCol
	g.colAirtime = 0
	g.colFrames = g.colFrames[:0]
}

// abbrev returns the single-letter abbreviation for mac, assigning the
// next free letter on first use.
func (g *Grid) abbrev(mac string) byte {
	if c, ok := g.abbrevs[mac]; ok {
		return c
	}
	c := g.queue[0]
	g.queue = append(g.queue[1:], c)
	g.abbrevs[mac] = c
	return c
}

func lower(c byte) byte {
	return strings.ToLower(string(c))[0]
}
