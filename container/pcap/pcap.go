/*
NAME
  pcap.go - parsing of the pcap capture container: the global file header
  and per-record framing.

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

// Package pcap provides framing of pcap capture streams: detection of
// compression and byte order, parsing of the global header, and
// extraction of per-record timestamps and bodies. The scanner is fed
// through a Buf and tolerates arbitrarily chunked input; whenever it
// cannot make progress it returns ErrNotEnough and may be called again
// once more bytes have been Put.
package pcap

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Magic numbers and required global header values.
const (
	Magic           = 0xa1b2c3d4 // pcap file magic, either byte order.
	VersionMajor    = 2
	VersionMinor    = 4
	LinkTypeRadiotap = 127 // radiotap-wrapped 802.11.

	headerSize       = 24 // global header including magic.
	recordHeaderSize = 16
)

// gzipMagic is the prefix of a gzip stream. A capture stream starting with
// it must be inflated before framing.
var gzipMagic = []byte{0x1f, 0x8b, 0x08}

// IsGzip reports whether p begins with the gzip magic.
func IsGzip(p []byte) bool {
	return len(p) >= len(gzipMagic) && bytes.Equal(p[:len(gzipMagic)], gzipMagic)
}

// FileError indicates a structural problem with the capture container
// itself: bad magic, unsupported version or link type, or an impossible
// record length. The stream is unusable once one is returned.
type FileError struct {
	Reason string
}

func (e FileError) Error() string { return "pcap: " + e.Reason }

func fileErrorf(format string, args ...interface{}) error {
	return FileError{Reason: fmt.Sprintf(format, args...)}
}

// Record is one captured packet as framed by the container.
type Record struct {
	Secs     float64 // Capture timestamp, seconds since epoch, µs precision.
	InclLen  uint32  // Bytes captured.
	OrigLen  uint32  // Bytes on the wire.
	Body     []byte  // The captured bytes (radiotap + 802.11 frame).
}

// Scanner states. The scanner advances ExpectMagic → ExpectHeader →
// ExpectRecordHeader ⇄ ExpectRecordBody; there is no terminal success
// state, end of input between records simply stops producing records.
type state int

const (
	expectMagic state = iota
	expectHeader
	expectRecordHeader
	expectRecordBody
)

// Scanner frames pcap records out of a Buf. It holds enough state to be
// suspended at any input boundary: a Next call that returns ErrNotEnough
// consumed nothing it cannot re-derive, and resuming after more bytes
// arrive behaves as if the bytes had been present up front.
type Scanner struct {
	buf   *Buf
	state state
	order binary.ByteOrder

	snaplen uint32

	// Pending record header, valid in expectRecordBody.
	secs     float64
	inclLen  uint32
	origLen  uint32
}

// NewScanner returns a Scanner framing records from buf.
func NewScanner(buf *Buf) *Scanner {
	return &Scanner{buf: buf}
}

// Snaplen returns the snapshot length from the global header. It is valid
// once the first Next call has progressed past the header.
func (s *Scanner) Snaplen() uint32 { return s.snaplen }

// ByteOrder returns the integer byte order selected by the file magic, or
// nil before the magic has been read.
func (s *Scanner) ByteOrder() binary.ByteOrder { return s.order }

// Next returns the next record in the stream. It returns ErrNotEnough if
// the buffered input ends mid-header or mid-record; the caller should Put
// more bytes and call Next again, or treat ErrNotEnough as clean end of
// stream at EOF. A FileError is fatal to the stream.
func (s *Scanner) Next() (Record, error) {
	for {
		switch s.state {
		case expectMagic:
			p, err := s.buf.Peek(4)
			if err != nil {
				return Record{}, err
			}
			if IsGzip(p) {
				return Record{}, fileErrorf("gzip-compressed input; inflate the stream before framing")
			}
			switch {
			case binary.LittleEndian.Uint32(p) == Magic:
				s.order = binary.LittleEndian
			case binary.BigEndian.Uint32(p) == Magic:
				s.order = binary.BigEndian
			default:
				return Record{}, fileErrorf("unexpected magic %#08x", binary.BigEndian.Uint32(p))
			}
			s.buf.Get(4)
			s.state = expectHeader

		case expectHeader:
			p, err := s.buf.Get(headerSize - 4)
			if err != nil {
				return Record{}, err
			}
			major := s.order.Uint16(p[0:2])
			minor := s.order.Uint16(p[2:4])
			// thiszone (4B) and sigfigs (4B) are read and discarded.
			s.snaplen = s.order.Uint32(p[12:16])
			network := s.order.Uint32(p[16:20])
			if major != VersionMajor || minor != VersionMinor {
				return Record{}, fileErrorf("unexpected version (%d,%d)", major, minor)
			}
			if network != LinkTypeRadiotap {
				return Record{}, fileErrorf("unexpected network type %d", network)
			}
			s.state = expectRecordHeader

		case expectRecordHeader:
			p, err := s.buf.Get(recordHeaderSize)
			if err != nil {
				return Record{}, err
			}
			tsSec := s.order.Uint32(p[0:4])
			tsUsec := s.order.Uint32(p[4:8])
			s.inclLen = s.order.Uint32(p[8:12])
			s.origLen = s.order.Uint32(p[12:16])
			if s.inclLen > s.origLen {
				return Record{}, fileErrorf("record incl_len(%d) > orig_len(%d): invalid", s.inclLen, s.origLen)
			}
			if s.inclLen > s.snaplen {
				return Record{}, fileErrorf("record incl_len(%d) > snaplen(%d): invalid", s.inclLen, s.snaplen)
			}
			s.secs = float64(tsSec) + float64(tsUsec)/1e6
			s.state = expectRecordBody

		case expectRecordBody:
			p, err := s.buf.Get(int(s.inclLen))
			if err != nil {
				return Record{}, err
			}
			s.state = expectRecordHeader
			return Record{
				Secs:    s.secs,
				InclLen: s.inclLen,
				OrigLen: s.origLen,
				Body:    p,
			}, nil
		}
	}
}
