/*
NAME
  radiotap.go - decoding of the radiotap per-packet metadata header.

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

// Package radiotap decodes the radiotap header prepended to captured
// 802.11 frames by monitor-mode drivers, and derives bitrate, bandwidth
// and spatial stream counts from its rate, HT and VHT fields.
//
// Radiotap is always little-endian regardless of the enclosing pcap
// byte order. The header is version|pad|it_len followed by a chain of
// present bitmap words; each word's top bit chains another word. Only
// the first present word drives field extraction here, matching common
// capture practice; the chain is skipped when locating field data.
package radiotap

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Flag bits of the radiotap flags field.
const (
	FlagCFP           = 0x01
	FlagShortPreamble = 0x02
	FlagWEP           = 0x04
	FlagFragmentation = 0x08
	FlagFCS           = 0x10
	FlagDataPad       = 0x20
	FlagBadFCS        = 0x40
	FlagShortGI       = 0x80
)

// extendedPresent in a present word chains a further present word.
const extendedPresent = 1 << 31

// Info holds the fields extracted from one radiotap header. Every field
// is optional on the wire; a Has flag accompanies each field whose zero
// value is meaningful.
type Info struct {
	MACUsecs    uint64 // Radio MAC timer at reception, µs.
	HasMACUsecs bool

	Flags    byte
	HasFlags bool

	Rate    float64 // Mb/s, from the legacy, HT or VHT field.
	HasRate bool

	Freq         uint16 // Channel centre frequency, MHz.
	ChannelFlags uint16
	HasChannel   bool

	DBmAntSignal    int8
	HasDBmAntSignal bool
	DBmAntNoise     int8
	HasDBmAntNoise  bool

	MCS            uint8
	HasMCS         bool
	SpatialStreams uint8 // ≥1 when HasMCS.
	Bandwidth      uint  // MHz, one of 20/40/80/160; 0 when unknown.
}

// fieldDef describes one well-known radiotap field: the bit in the first
// present word, the alignment of its first element, its packed size, and
// how to extract it. A nil parse advances the cursor without keeping the
// value.
type fieldDef struct {
	name  string
	align int
	size  int
	parse func(*Info, []byte)
}

// The well-known field table, in present-bit order. Alignment is the
// natural alignment of each field's first element.
var fieldDefs = []fieldDef{
	{"mac_usecs", 8, 8, func(i *Info, b []byte) {
		i.MACUsecs = binary.LittleEndian.Uint64(b)
		i.HasMACUsecs = true
	}},
	{"flags", 1, 1, func(i *Info, b []byte) {
		i.Flags = b[0]
		i.HasFlags = true
	}},
	{"rate", 1, 1, func(i *Info, b []byte) {
		// Stored in half-Mb/s units.
		i.Rate = float64(b[0]) / 2
		i.HasRate = true
	}},
	{"channel", 2, 4, func(i *Info, b []byte) {
		i.Freq = binary.LittleEndian.Uint16(b)
		i.ChannelFlags = binary.LittleEndian.Uint16(b[2:])
		i.HasChannel = true
	}},
	{"fhss", 1, 2, nil},
	{"dbm_antsignal", 1, 1, func(i *Info, b []byte) {
		i.DBmAntSignal = int8(b[0])
		i.HasDBmAntSignal = true
	}},
	{"dbm_antnoise", 1, 1, func(i *Info, b []byte) {
		i.DBmAntNoise = int8(b[0])
		i.HasDBmAntNoise = true
	}},
	{"lock_quality", 2, 2, nil},
	{"tx_attenuation", 2, 2, nil},
	{"db_tx_attenuation", 1, 1, nil},
	{"dbm_tx_power", 1, 1, nil},
	{"antenna", 1, 1, nil},
	{"db_antsignal", 1, 1, nil},
	{"db_antnoise", 1, 1, nil},
	{"rx_flags", 2, 2, nil},
	{"tx_flags", 2, 2, nil},
	{"rts_retries", 1, 1, nil},
	{"data_retries", 1, 1, nil},
	{"channelplus", 4, 8, nil},
	{"ht", 1, 3, func(i *Info, b []byte) {
		known, flags, index := b[0], b[1], b[2]
		i.MCS = index & 0x07
		i.HasMCS = true
		i.SpatialStreams = 1 + (index&0x18)>>3
		width, rate := htRate(known, flags, index)
		i.Bandwidth = 20 << width
		i.Rate = rate
		i.HasRate = true
	}},
	{"ampdu_status", 4, 8, nil},
	{"vht", 2, 12, func(i *Info, b []byte) {
		flags := b[2]
		bw := b[3]
		mcsNSS := b[4] // First user of the group.
		i.MCS = mcsNSS >> 4 & 0x0f
		i.HasMCS = true
		i.SpatialStreams = mcsNSS & 0x0f
		width, rate, ok := vhtRate(flags, bw, mcsNSS)
		i.Bandwidth = 20 << width
		if ok {
			i.Rate = rate
			i.HasRate = true
		}
	}},
}

// align rounds i up to the given alignment, which must be a power of two.
func align(i, alignment int) int {
	return (i + alignment - 1) &^ (alignment - 1)
}

// Decode parses the radiotap header at the start of b, returning the
// extracted Info and the remaining bytes, which are the 802.11 frame.
//
// A non-nil error indicates the header could not be fully decoded; the
// returned Info still carries whatever was extracted before the problem,
// and the returned frame bytes are nil if the frame cannot be located.
func Decode(b []byte) (Info, []byte, error) {
	var info Info
	if len(b) < 8 {
		return info, nil, errors.New("radiotap header truncated")
	}
	version := b[0]
	itLen := int(binary.LittleEndian.Uint16(b[2:4]))
	if version != 0 {
		return info, nil, errors.Errorf("unknown radiotap version %d", version)
	}
	if itLen > len(b) {
		return info, nil, errors.Errorf("radiotap length %d exceeds capture %d", itLen, len(b))
	}
	if itLen < 8 {
		return info, nil, errors.Errorf("radiotap length %d shorter than its own header", itLen)
	}
	frame := b[itLen:]

	// Walk the present chain. Only the first word selects fields; the
	// others are skipped but still shift the start of field data.
	present := binary.LittleEndian.Uint32(b[4:8])
	offset := 8
	for next := present; next&extendedPresent != 0; {
		if offset+4 > itLen {
			return info, frame, errors.New("radiotap present chain exceeds header")
		}
		next = binary.LittleEndian.Uint32(b[offset : offset+4])
		offset += 4
	}

	fields := b[offset:itLen]
	ofs := 0
	for bit, def := range fieldDefs {
		if present&(1<<uint(bit)) == 0 {
			continue
		}
		ofs = align(ofs, def.align)
		if ofs+def.size > len(fields) {
			return info, frame, errors.Errorf("radiotap field %s truncated", def.name)
		}
		if def.parse != nil {
			def.parse(&info, fields[ofs:ofs+def.size])
		}
		ofs += def.size
	}
	return info, frame, nil
}
