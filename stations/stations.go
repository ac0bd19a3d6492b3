/*
NAME
  stations.go - per-AP/per-station traffic aggregation for the top view.

DESCRIPTION
  See Readme.md

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

// Package stations aggregates decoded capture frames into per-AP and
// per-station statistics: packet counts binned by MCS rate, RSSI
// distributions, last seen frame type, and AP/station roles inferred
// from the distribution-system mode and beacons. It renders the
// aggregate as terminal rows in the style of top.
package stations

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ausocean/utils/logging"
	"gonum.org/v1/gonum/stat"

	"github.com/ausocean/wifi/capture"
)

// Rate bins. MCS indexes above RateBinMax are counted in bin RateBinMax;
// the display collapses bins at RateBinShowMax and above into one
// "fast enough" column.
const (
	RateBinMax     = 9
	RateBinShowMax = 7
)

// mcast replaces station MACs with the multicast bit set; individual
// multicast receivers are not interesting as stations.
const mcast = "MCAST"

// StationData accumulates per-device counters. A device appears once
// under each AP it exchanges frames with.
type StationData struct {
	PacketsTX [RateBinMax + 1]int // Binned by MCS, frames this device sent.
	PacketsRX [RateBinMax + 1]int // Binned by MCS, frames this device received.
	RSSI      map[int8]int // Signal level → observation count.
	LastType  string
	IsAP      bool
}

func newStationData() *StationData {
	return &StationData{RSSI: make(map[int8]int)}
}

// apEntry is one AP cell: its own counters plus its stations keyed by
// MAC. Keyed lookup, no back-pointers.
type apEntry struct {
	self     *StationData
	stations map[string]*StationData
}

// Aggregator consumes frames and maintains the station table. It is
// safe for one updater and concurrent readers (rendering, metrics
// scrapes).
type Aggregator struct {
	mu       sync.Mutex
	log      logging.Logger
	packets  int
	bad      int
	aps      map[string]*apEntry
}

// NewAggregator returns an empty Aggregator.
func NewAggregator(l logging.Logger) *Aggregator {
	return &Aggregator{log: l, aps: make(map[string]*apEntry)}
}

func (a *Aggregator) ap(mac string) *apEntry {
	e, ok := a.aps[mac]
	if !ok {
		e = &apEntry{self: newStationData(), stations: make(map[string]*StationData)}
		a.aps[mac] = e
	}
	return e
}

// Update folds one frame into the table. Control frames and frames with
// an indeterminate direction (dsmode 0 or 3) are counted but otherwise
// ignored; bad-FCS frames only update devices that are already known.
func (a *Aggregator) Update(f capture.Frame) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.packets++
	if f.Bad {
		a.bad++
	}
	if len(f.TypeStr) == 0 || f.TypeStr[0] == '1' {
		return
	}

	var down bool
	var apMAC, staMAC string
	switch f.DSMode {
	case 2:
		down = true
		apMAC, staMAC = f.TA, f.RA
	case 1:
		down = false
		staMAC, apMAC = f.TA, f.RA
	default:
		// dsmode 0 might be either an AP or a station; ignore for now.
		return
	}
	if staMAC != "" && isMulticast(staMAC) {
		staMAC = mcast
	}

	if f.Bad {
		if _, ok := a.aps[apMAC]; !ok {
			return
		}
		if _, ok := a.aps[apMAC].stations[staMAC]; !ok {
			return
		}
	}
	ent := a.ap(apMAC)
	ap := ent.self
	sta, ok := ent.stations[staMAC]
	if !ok {
		sta = newStationData()
		ent.stations[staMAC] = sta
	}

	if f.TypeStr[0] == '2' { // Only data frames say anything about rates.
		bin := 0
		if f.HasMCS {
			bin = int(f.MCS)
		}
		if bin > RateBinMax {
			bin = RateBinMax
		}
		if down {
			ap.PacketsTX[bin]++
			sta.PacketsRX[bin]++
		} else {
			ap.PacketsRX[bin]++
			sta.PacketsTX[bin]++
		}
	}
	sta.LastType = f.TypeStr
	if f.HasDBmAntSignal {
		if down {
			ap.RSSI[f.DBmAntSignal]++
		} else {
			sta.RSSI[f.DBmAntSignal]++
		}
	}
	if down && f.Type == 0x08 {
		ap.IsAP = true
	}
}

// isMulticast reports whether the formatted MAC has the group bit set.
func isMulticast(mac string) bool {
	b, err := strconv.ParseUint(mac[:2], 16, 8)
	return err == nil && b&1 != 0
}

// Totals returns the total and bad-FCS packet counts seen so far.
func (a *Aggregator) Totals() (packets, bad int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.packets, a.bad
}

// RateArt renders a rate-bin histogram as one character per bin. The
// largest bin is its own digit; bins above a twentieth of it are '*',
// smaller non-empty bins '.'. Bins at and above maxBin collapse into a
// final column; when that column is the largest, it displays the digit
// of the largest collapsed bin.
func RateArt(bins []int, maxBin int) string {
	fix := make([]int, maxBin+1)
	copy(fix, bins[:maxBin])
	for _, v := range bins[maxBin:] {
		fix[maxBin] += v
	}
	most := 1
	for _, v := range fix {
		if v >= most {
			most = v
		}
	}
	var out strings.Builder
	for i, v := range fix {
		switch {
		case v == 0:
			out.WriteByte(' ')
		case v >= most:
			if i == maxBin {
				// Report which collapsed bin dominated.
				big, bigi := 0, maxBin
				for j := maxBin; j < len(bins); j++ {
					if bins[j] >= big {
						big, bigi = bins[j], j
					}
				}
				out.WriteString(strconv.Itoa(bigi))
			} else {
				out.WriteString(strconv.Itoa(i))
			}
		case v > most/20:
			out.WriteByte('*')
		default:
			out.WriteByte('.')
		}
	}
	return out.String()
}

// Row is one rendered line of the top view.
type Row struct {
	Label    string // "AP xx:.." or indented station MAC.
	RSSI     string
	Up       int
	UpArt    string
	Down     int
	DownArt  string
	LastType string
}

// sum of every bin of a counter.
func total(bins [RateBinMax + 1]int) int {
	t := 0
	for _, v := range bins {
		t += v
	}
	return t
}

// rssiAvg is the observation-weighted mean signal level.
func rssiAvg(rssi map[int8]int) string {
	if len(rssi) == 0 {
		return ""
	}
	xs := make([]float64, 0, len(rssi))
	ws := make([]float64, 0, len(rssi))
	for level, count := range rssi {
		xs = append(xs, float64(level))
		ws = append(ws, float64(count))
	}
	return fmt.Sprintf("%d", int(stat.Mean(xs, ws)))
}

// Rows returns up to max rendered rows, APs ordered by traffic and each
// AP's stations ordered by traffic beneath it.
func (a *Aggregator) Rows(max int) []Row {
	a.mu.Lock()
	defer a.mu.Unlock()

	type apRank struct {
		mac string
		ent *apEntry
	}
	ranked := make([]apRank, 0, len(a.aps))
	for mac, ent := range a.aps {
		ranked = append(ranked, apRank{mac, ent})
	}
	sort.Slice(ranked, func(i, j int) bool {
		ti := total(ranked[i].ent.self.PacketsTX) + total(ranked[i].ent.self.PacketsRX)
		tj := total(ranked[j].ent.self.PacketsTX) + total(ranked[j].ent.self.PacketsRX)
		if ti != tj {
			return ti > tj
		}
		return ranked[i].mac < ranked[j].mac
	})

	var rows []Row
	for _, ap := range ranked {
		type staRank struct {
			mac string
			sd  *StationData
		}
		stas := []staRank{{"", ap.ent.self}}
		for mac, sd := range ap.ent.stations {
			stas = append(stas, staRank{mac, sd})
		}
		sort.Slice(stas, func(i, j int) bool {
			ti := total(stas[i].sd.PacketsTX) + total(stas[i].sd.PacketsRX)
			tj := total(stas[j].sd.PacketsTX) + total(stas[j].sd.PacketsRX)
			if ti != tj {
				return ti > tj
			}
			return stas[i].mac < stas[j].mac
		})
		for _, sta := range stas {
			if len(rows) >= max {
				return rows
			}
			isAP := sta.mac == ""
			label := "   " + sta.mac
			if isAP {
				label = "AP " + ap.mac
			}
			// The AP row shows the downlink as its transmit side; a
			// station row shows it as its receive side.
			down, up := sta.sd.PacketsTX, sta.sd.PacketsRX
			if !isAP {
				down, up = sta.sd.PacketsRX, sta.sd.PacketsTX
			}
			rows = append(rows, Row{
				Label:    label,
				RSSI:     rssiAvg(sta.sd.RSSI),
				Up:       total(up),
				UpArt:    RateArt(up[:], RateBinShowMax),
				Down:     total(down),
				DownArt:  RateArt(down[:], RateBinShowMax),
				LastType: sta.sd.LastType,
			})
		}
	}
	return rows
}

// Render writes a whole top screen: a header line then Rows, clipped to
// the given terminal size.
func (a *Aggregator) Render(rows, cols int) string {
	packets, bad := a.Totals()
	var b strings.Builder
	fmt.Fprintf(&b, "%-20.20s %4s %6s %8s %6s %8s %s",
		fmt.Sprintf("%d pkt, %d bad", packets, bad),
		"RSSI", "Up", "-----MCS", "Down", "-----MCS", "Type")
	for _, r := range a.Rows(rows - 1) {
		line := fmt.Sprintf("%-20s %4s %6d %-8s %6d %-8s %s",
			r.Label, r.RSSI, r.Up, r.UpArt, r.Down, r.DownArt, r.LastType)
		if cols > 0 && len(line) > cols-1 {
			line = line[:cols-1]
		}
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}
