/*
NAME
  frame.go - the enriched frame record yielded by the capture decoder.

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

package capture

// Frame is one decoded capture record: pcap timing and lengths, the
// radiotap metadata, and the 802.11 MAC header fields, plus quantities
// derived across layers (bad FCS flag, inferred airtime, inherited TA).
//
// Every field below the pcap block is optional on the wire. MAC address
// strings are empty when absent; other optional fields carry a Has flag
// where the zero value is meaningful.
type Frame struct {
	// pcap record framing. Always present.
	PcapSecs float64 // Capture timestamp, seconds since epoch, µs precision.
	InclLen  uint32  // Bytes captured.
	OrigLen  uint32  // Bytes on the wire.

	// Radiotap.
	MACUsecs        uint64 // Radio MAC timer at reception.
	HasMACUsecs     bool
	Flags           byte // Radiotap flags bitfield.
	HasFlags        bool
	Rate            float64 // Mb/s.
	HasRate         bool
	MCS             uint8
	HasMCS          bool
	SpatialStreams  uint8
	Bandwidth       uint // MHz.
	Freq            uint16
	ChannelFlags    uint16
	HasChannel      bool
	DBmAntSignal    int8
	HasDBmAntSignal bool
	DBmAntNoise     int8
	HasDBmAntNoise  bool

	// Derived. Bad is true when the radiotap flags mark a failed FCS, or
	// when no flags were captured at all. AirtimeUsec is present only
	// when both the MAC timer and a rate are known.
	Bad         bool
	AirtimeUsec float64
	HasAirtime  bool

	// 802.11 MAC header.
	Type     uint8  // Composite (type<<4)|subtype.
	TypeStr  string // e.g. "08 Beacon", "1C CTS", "3F Unknown".
	DSMode   uint8
	Retry    bool
	PowerMan bool
	Order    bool
	Duration uint16
	RA       string
	TA       string // For CTS/ACK, may be inherited from the prior frame.
	XA       string
	AID      uint16
	HasAID   bool
	Seq      uint16 // 12-bit sequence number.
	Frag     uint8
	HasSeq   bool
	SSID     string // Beacons only.
	HasSSID  bool
}

// PacketError reports a recoverable problem decoding a single record,
// such as an unknown radiotap version or a truncated 802.11 body. The
// record it concerns is still yielded, with the unaffected fields
// populated, and decoding continues at the next record.
type PacketError struct {
	Err error
}

func (e PacketError) Error() string { return "capture: " + e.Err.Error() }

func (e PacketError) Unwrap() error { return e.Err }
