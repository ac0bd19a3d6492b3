/*
NAME
  dot11_test.go

DESCRIPTION
  dot11_test.go contains testing for functionality found in dot11.go.

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

package dot11

import (
	"encoding/binary"
	"testing"
)

var (
	broadcast = []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	macA      = []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	macB      = []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
)

// fctl builds a little-endian frame control for the composite type.
func fctl(fulltype uint8, rest uint16) []byte {
	typ := uint16(fulltype) >> 4 & 0x3
	sub := uint16(fulltype) & 0xf
	return binary.LittleEndian.AppendUint16(nil, typ<<2|sub<<4|rest)
}

// frame builds fctl | duration | parts...
func frame(fulltype uint8, rest uint16, parts ...[]byte) []byte {
	b := fctl(fulltype, rest)
	b = binary.LittleEndian.AppendUint16(b, 0x1234) // duration
	for _, p := range parts {
		b = append(b, p...)
	}
	return b
}

func seqField(seq uint16, frag uint8) []byte {
	return binary.LittleEndian.AppendUint16(nil, seq<<4|uint16(frag))
}

func TestDecodeDataFrame(t *testing.T) {
	in := frame(0x20, 1<<11|2<<8, macA, macB, broadcast, seqField(0x010, 2))
	info, err := Decode(in)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if info.Type != 0x20 || info.TypeStr != "20 Data" {
		t.Errorf("unexpected type: %#x %q", info.Type, info.TypeStr)
	}
	if info.RA != "00:11:22:33:44:55" || info.TA != "aa:bb:cc:dd:ee:ff" || info.XA != "ff:ff:ff:ff:ff:ff" {
		t.Errorf("unexpected addresses: ra=%q ta=%q xa=%q", info.RA, info.TA, info.XA)
	}
	if !info.HasSeq || info.Seq != 0x010 || info.Frag != 2 {
		t.Errorf("unexpected seq/frag: %d/%d (has %v)", info.Seq, info.Frag, info.HasSeq)
	}
	if !info.Retry {
		t.Error("retry flag lost")
	}
	if info.DSMode != 2 {
		t.Errorf("unexpected dsmode: %d", info.DSMode)
	}
	if info.Duration != 0x1234 {
		t.Errorf("unexpected duration: %#x", info.Duration)
	}
}

func TestDecodeCTSHasOnlyRA(t *testing.T) {
	info, err := Decode(frame(0x1c, 0, macA))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if info.TypeStr != "1C CTS" {
		t.Errorf("unexpected typestr: %q", info.TypeStr)
	}
	if info.RA != "00:11:22:33:44:55" {
		t.Errorf("unexpected ra: %q", info.RA)
	}
	if info.TA != "" || info.XA != "" || info.HasSeq {
		t.Error("CTS carried fields it cannot have")
	}
}

func TestDecodePsPoll(t *testing.T) {
	aid := binary.LittleEndian.AppendUint16(nil, 0xc001)
	info, err := Decode(frame(0x1a, 0, aid, macA, macB))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if !info.HasAID || info.AID != 0xc001 {
		t.Errorf("unexpected aid: %#x (has %v)", info.AID, info.HasAID)
	}
	if info.RA != "00:11:22:33:44:55" || info.TA != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("unexpected addresses: ra=%q ta=%q", info.RA, info.TA)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	// Composite 0x17 is not in the table.
	info, err := Decode(frame(0x17, 0, macB, macA))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if info.TypeStr != "17 Unknown" {
		t.Errorf("unexpected typestr: %q", info.TypeStr)
	}
	if info.RA != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("unexpected ra: %q", info.RA)
	}
	// Unknown types parse only ra.
	if info.TA != "" {
		t.Errorf("unexpected ta for unknown type: %q", info.TA)
	}
}

func TestDecodeShortFrameStopsSilently(t *testing.T) {
	// A data frame cut partway through its second address.
	in := frame(0x20, 0, macA, macB)
	info, err := Decode(in[:len(in)-2])
	if err != nil {
		t.Fatalf("did not expect error for short address block: %v", err)
	}
	if info.RA != "00:11:22:33:44:55" {
		t.Errorf("unexpected ra: %q", info.RA)
	}
	if info.TA != "" || info.XA != "" || info.HasSeq {
		t.Error("fields parsed beyond the cut")
	}
}

func TestDecodeTruncatedFrameControl(t *testing.T) {
	info, err := Decode([]byte{0x80})
	if err == nil {
		t.Fatal("expected error for truncated frame control")
	}
	// The composite defaults to zero, as if the bytes had been zero.
	if info.Type != 0x00 {
		t.Errorf("unexpected type: %#x", info.Type)
	}
	if info.RA != "" {
		t.Errorf("unexpected ra: %q", info.RA)
	}
}

// beacon builds a beacon frame carrying the passed SSID TLV value.
func beacon(ssid []byte) []byte {
	b := frame(0x08, 0, broadcast, macA, macA, seqField(1, 0))
	b = append(b, make([]byte, 12)...) // timestamp, interval, capabilities
	b = append(b, 0, byte(len(ssid)))
	b = append(b, ssid...)
	b = append(b, 3, 1, 6)             // supported channel tag, ignored
	b = append(b, 0, 0, 0, 0)          // FCS
	return b
}

func TestDecodeBeaconSSID(t *testing.T) {
	info, err := Decode(beacon([]byte("hello")))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if info.TypeStr != "08 Beacon" {
		t.Errorf("unexpected typestr: %q", info.TypeStr)
	}
	if !info.HasSSID || info.SSID != "hello" {
		t.Errorf("unexpected ssid: %q (has %v)", info.SSID, info.HasSSID)
	}
}

func TestDecodeBeaconHiddenSSID(t *testing.T) {
	info, err := Decode(beacon([]byte{0x00}))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if info.HasSSID {
		t.Errorf("hidden ssid exposed: %q", info.SSID)
	}
}

func TestDecodeBeaconEmptySSID(t *testing.T) {
	info, err := Decode(beacon(nil))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if info.HasSSID {
		t.Errorf("empty ssid exposed: %q", info.SSID)
	}
}

// TestTableCoverage spot checks the type table layout groups.
func TestTableCoverage(t *testing.T) {
	for _, tc := range []struct {
		fulltype uint8
		name     string
		nfields  int
	}{
		{0x00, "AssocReq", 4},
		{0x08, "Beacon", 4},
		{0x0d, "Action", 4},
		{0x16, "CtlExt", 1},
		{0x18, "BlockAckReq", 2},
		{0x19, "BlockAck", 2},
		{0x1a, "PsPoll", 3},
		{0x1b, "RTS", 2},
		{0x1d, "ACK", 1},
		{0x1e, "CongestionFreeEnd", 2},
		{0x1f, "CongestionFreeEndAck", 2},
		{0x20, "Data", 4},
		{0x28, "QosData", 4},
		{0x2c, "QosNull", 4},
		{0x2f, "QosCongestionFreeAckPoll", 4},
	} {
		ft, ok := frameTypes[tc.fulltype]
		if !ok {
			t.Errorf("%#02x missing from table", tc.fulltype)
			continue
		}
		if ft.name != tc.name {
			t.Errorf("%#02x: unexpected name. Got: %q Want: %q", tc.fulltype, ft.name, tc.name)
		}
		if len(ft.fields) != tc.nfields {
			t.Errorf("%#02x: unexpected field count. Got: %d Want: %d", tc.fulltype, len(ft.fields), tc.nfields)
		}
	}
	// 12 management, 9 control and 16 data entries.
	if len(frameTypes) != 37 {
		t.Errorf("unexpected table size. Got: %d Want: 37", len(frameTypes))
	}
}
