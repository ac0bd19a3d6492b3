/*
NAME
  airtime_test.go

DESCRIPTION
  airtime_test.go contains testing for functionality found in
  airtime.go.

AUTHORS
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2025 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package airtime

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/wifi/capture"
)

const ta = "aa:aa:aa:aa:aa:aa"

func dataAt(usecs uint64, airtime float64) capture.Frame {
	return capture.Frame{
		Type: 0x20, TypeStr: "20 Data",
		TA:          ta,
		HasMACUsecs: true, MACUsecs: usecs,
		HasAirtime: true, AirtimeUsec: airtime,
		HasFlags: true,
	}
}

func TestGridEmitsColumns(t *testing.T) {
	var out bytes.Buffer
	g := New(&out, (*logging.TestLogger)(t))

	// A busy first slot, then a frame far enough ahead to flush it.
	g.Update(dataAt(1000, UsecPerCol))
	g.Update(dataAt(1000+2*UsecPerCol, 10))

	got := out.String()
	if len(got) != 2 {
		t.Fatalf("unexpected output length. Got: %d (%q) Want: 2", len(got), got)
	}
	// Slot one was dominated by our busy transmitter, upper case; slot
	// two had only spillover, leaving it blank.
	if got[0] != 'Z' {
		t.Errorf("unexpected first slot: %q", got[0])
	}
	if got[1] != ' ' {
		t.Errorf("unexpected second slot: %q", got[1])
	}
}

func TestGridQuietSlotLowercase(t *testing.T) {
	var out bytes.Buffer
	g := New(&out, (*logging.TestLogger)(t))

	g.Update(dataAt(1000, float64(UsecPerCol)/4))
	g.Update(dataAt(1000+UsecPerCol, 10))

	if out.String() != "z" {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestGridBeaconDot(t *testing.T) {
	var out bytes.Buffer
	g := New(&out, (*logging.TestLogger)(t))

	f := dataAt(1000, UsecPerCol)
	f.Type = 0x08
	f.TypeStr = "08 Beacon"
	g.Update(f)
	g.Update(dataAt(1000+UsecPerCol, 10))

	if out.String() != "." {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestGridSkipsControlFrames(t *testing.T) {
	var out bytes.Buffer
	g := New(&out, (*logging.TestLogger)(t))

	g.Update(capture.Frame{Type: 0x1d, TypeStr: "1D ACK", HasMACUsecs: true, MACUsecs: 1000})
	g.Update(dataAt(1000, 10))
	if g.timeInit && g.colStartUsec != 1000 {
		t.Errorf("control frame initialised timing: %d", g.colStartUsec)
	}
}

// TestGridBadFramesNotAttributed checks a transmitter seen only in bad
// frames never earns a slot letter.
func TestGridBadFramesNotAttributed(t *testing.T) {
	var out bytes.Buffer
	g := New(&out, (*logging.TestLogger)(t))

	f := dataAt(1000, UsecPerCol)
	f.Bad = true
	g.Update(f)
	f2 := dataAt(1000+UsecPerCol, 10)
	f2.Bad = true
	g.Update(f2)

	got := out.String()
	if len(got) == 0 || got[0] != ' ' {
		t.Errorf("bad-frame transmitter credited with slot: %q", got)
	}
}

// TestGridRowEnds checks a full row of slots ends with a utilisation
// figure and a legend follows the first row.
func TestGridRowEnds(t *testing.T) {
	var out bytes.Buffer
	g := New(&out, (*logging.TestLogger)(t))

	g.Update(dataAt(1000, 100))
	// Jump a whole row plus a column ahead so every slot of row one
	// flushes.
	g.Update(dataAt(1000+UsecPerRow+UsecPerCol, 10))

	got := out.String()
	if !strings.Contains(got, "%") {
		t.Errorf("row did not end with utilisation: %q", got)
	}
	if !strings.Contains(got, ".=Beacon") {
		t.Errorf("legend missing after first row: %q", got)
	}
	if !strings.Contains(got, "Z="+ta) {
		t.Errorf("legend missing transmitter abbreviation: %q", got)
	}
}
