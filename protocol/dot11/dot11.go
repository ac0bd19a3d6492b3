/*
NAME
  dot11.go - parsing of the 802.11 MAC frame header.

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

// Package dot11 parses 802.11 MAC frame headers: frame control
// decomposition, per-type address field layout, sequence numbers, and
// the tagged parameters of beacon frames.
package dot11

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// Address field kinds, in the order they may appear after the frame
// control and duration fields.
type fieldKind int

const (
	fieldRA fieldKind = iota
	fieldTA
	fieldXA
	fieldAID
	fieldSeq
)

// frameType is one entry of the frame-type table: the human name and the
// sequence of fields following duration for that type.
type frameType struct {
	name   string
	fields []fieldKind
}

var stdFrame = []fieldKind{fieldRA, fieldTA, fieldXA, fieldSeq}

// frameTypes maps the composite (type<<4)|subtype to its layout. Unknown
// composites fall back to ("Unknown", ra-only).
var frameTypes = map[uint8]frameType{
	// Management.
	0x00: {"AssocReq", stdFrame},
	0x01: {"AssocResp", stdFrame},
	0x02: {"ReassocReq", stdFrame},
	0x03: {"ReassocResp", stdFrame},
	0x04: {"ProbeReq", stdFrame},
	0x05: {"ProbeResp", stdFrame},
	0x08: {"Beacon", stdFrame},
	0x09: {"ATIM", stdFrame},
	0x0a: {"Disassoc", stdFrame},
	0x0b: {"Auth", stdFrame},
	0x0c: {"Deauth", stdFrame},
	0x0d: {"Action", stdFrame},

	// Control.
	0x16: {"CtlExt", []fieldKind{fieldRA}},
	0x18: {"BlockAckReq", []fieldKind{fieldRA, fieldTA}},
	0x19: {"BlockAck", []fieldKind{fieldRA, fieldTA}},
	0x1a: {"PsPoll", []fieldKind{fieldAID, fieldRA, fieldTA}},
	0x1b: {"RTS", []fieldKind{fieldRA, fieldTA}},
	0x1c: {"CTS", []fieldKind{fieldRA}},
	0x1d: {"ACK", []fieldKind{fieldRA}},
	0x1e: {"CongestionFreeEnd", []fieldKind{fieldRA, fieldTA}},
	0x1f: {"CongestionFreeEndAck", []fieldKind{fieldRA, fieldTA}},

	// Data.
	0x20: {"Data", stdFrame},
	0x21: {"DataCongestionFreeAck", stdFrame},
	0x22: {"DataCongestionFreePoll", stdFrame},
	0x23: {"DataCongestionFreeAckPoll", stdFrame},
	0x24: {"Null", stdFrame},
	0x25: {"CongestionFreeAck", stdFrame},
	0x26: {"CongestionFreePoll", stdFrame},
	0x27: {"CongestionFreeAckPoll", stdFrame},
	0x28: {"QosData", stdFrame},
	0x29: {"QosDataCongestionFreeAck", stdFrame},
	0x2a: {"QosDataCongestionFreePoll", stdFrame},
	0x2b: {"QosDataCongestionFreeAckPoll", stdFrame},
	0x2c: {"QosNull", stdFrame},
	0x2d: {"QosCongestionFreeAck", stdFrame},
	0x2e: {"QosCongestionFreePoll", stdFrame},
	0x2f: {"QosCongestionFreeAckPoll", stdFrame},
}

// TypeBeacon is the composite type of a beacon management frame.
const TypeBeacon = 0x08

// Fixed parameters (timestamp, interval, capabilities) between a beacon's
// address block and its tagged parameters, and the trailing FCS length.
const (
	beaconFixedParams = 12
	fcsLen            = 4
)

// Info holds the fields parsed from one 802.11 MAC header. Address
// fields are formatted "aa:bb:cc:dd:ee:ff" and empty when absent.
type Info struct {
	Type    uint8  // Composite (type<<4)|subtype.
	Name    string // "Beacon", "CTS", ... or "Unknown".
	TypeStr string // Hex composite plus name, e.g. "08 Beacon".

	Version  uint8
	DSMode   uint8
	MoreFrag bool
	Retry    bool
	PowerMan bool
	MoreData bool
	WEP      bool
	Order    bool
	Duration uint16

	RA string
	TA string
	XA string

	AID    uint16
	HasAID bool

	Seq    uint16 // 12-bit sequence number.
	Frag   uint8  // 4-bit fragment number.
	HasSeq bool

	SSID    string // Beacons only; absent when hidden or empty.
	HasSSID bool
}

// macAddr formats a 6-byte MAC address.
func macAddr(b []byte) string {
	return net.HardwareAddr(b).String()
}

// Decode parses the 802.11 MAC header in frame. A short frame is not
// fatal: fields that do not fit are simply left absent without an error.
// An error is returned only when the frame is too short to hold frame
// control and duration.
func Decode(frame []byte) (Info, error) {
	var info Info
	var err error
	var fctl, duration uint16
	if len(frame) < 4 {
		err = errors.Errorf("frame control truncated (%d bytes)", len(frame))
	} else {
		fctl = binary.LittleEndian.Uint16(frame[0:2])
		duration = binary.LittleEndian.Uint16(frame[2:4])
	}

	info.Version = uint8(fctl & 0x3)
	typ := uint8(fctl>>2) & 0x3
	subtype := uint8(fctl>>4) & 0xf
	info.Type = typ<<4 | subtype
	info.DSMode = uint8(fctl>>8) & 0x3
	info.MoreFrag = fctl&(1<<10) != 0
	info.Retry = fctl&(1<<11) != 0
	info.PowerMan = fctl&(1<<12) != 0
	info.MoreData = fctl&(1<<13) != 0
	info.WEP = fctl&(1<<14) != 0
	info.Order = fctl&(1<<15) != 0
	info.Duration = duration

	ft, ok := frameTypes[info.Type]
	if !ok {
		ft = frameType{"Unknown", []fieldKind{fieldRA}}
	}
	info.Name = ft.name
	info.TypeStr = fmt.Sprintf("%02X %s", info.Type, ft.name)

	ofs := 4
fields:
	for _, f := range ft.fields {
		switch f {
		case fieldSeq:
			if len(frame) < ofs+2 {
				break fields
			}
			raw := binary.LittleEndian.Uint16(frame[ofs : ofs+2])
			info.Seq = raw >> 4 & 0xfff
			info.Frag = uint8(raw & 0xf)
			info.HasSeq = true
			ofs += 2
		case fieldAID:
			if len(frame) < ofs+2 {
				break fields
			}
			info.AID = binary.LittleEndian.Uint16(frame[ofs : ofs+2])
			info.HasAID = true
			ofs += 2
		default:
			if len(frame) < ofs+6 {
				break fields
			}
			mac := macAddr(frame[ofs : ofs+6])
			switch f {
			case fieldRA:
				info.RA = mac
			case fieldTA:
				info.TA = mac
			case fieldXA:
				info.XA = mac
			}
			ofs += 6
		}
	}

	if info.Type == TypeBeacon {
		ofs += beaconFixedParams
		tags := parseTLVs(frame, ofs, len(frame)-fcsLen)
		if ssid, ok := tags[0]; ok {
			// A single NUL marks a hidden SSID; expose neither it nor an
			// empty one.
			hidden := len(ssid) == 1 && ssid[0] == 0
			if len(ssid) > 0 && !hidden {
				info.SSID = string(ssid)
				info.HasSSID = true
			}
		}
	}
	return info, err
}

// parseTLVs reads tag-length-value triples from frame[start:end], stopping
// at the first tag whose declared length does not fit.
func parseTLVs(frame []byte, start, end int) map[uint8][]byte {
	if end > len(frame) {
		end = len(frame)
	}
	tags := make(map[uint8][]byte)
	ofs := start
	for ofs+1 < end {
		tag := frame[ofs]
		length := int(frame[ofs+1])
		if end-ofs-2 < length {
			break
		}
		tags[tag] = frame[ofs+2 : ofs+2+length]
		ofs += 2 + length
	}
	return tags
}
