/*
NAME
  capture.go - the frame assembler: drives pcap framing, radiotap and
  802.11 decoding, and yields enriched Frame records.

DESCRIPTION
  See Readme.md

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2025 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package capture decodes radiotap-wrapped 802.11 pcap streams into a
// sequence of Frame records. Two entry points share one decoder: Stream
// pulls frames on demand from an io.Reader (inflating gzip input
// transparently), and Packetizer accepts pushed byte chunks and invokes
// a callback per decoded frame.
//
// Frames are delivered strictly in capture order. Container-level
// problems (pcap.FileError) end the sequence; per-record problems
// (PacketError) are logged, the partial record is still delivered, and
// decoding continues with the next record.
package capture

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/wifi/container/pcap"
	"github.com/ausocean/wifi/protocol/dot11"
	"github.com/ausocean/wifi/protocol/radiotap"
)

// readSize is how much is requested from the source per refill.
const readSize = 4096

// assembler merges the decoded layers of one record into a Frame and
// carries the cross-record shadow state: the TA/RA of the previous frame
// for CTS/ACK transmitter inheritance, and the previous MAC timer for
// aggregate airtime accounting.
type assembler struct {
	lastTA       string
	lastRA       string
	lastMACUsecs uint64
}

// assemble builds a Frame from one pcap record. A non-nil error is
// always a PacketError; the Frame is still valid and carries every field
// decoded before the problem.
func (a *assembler) assemble(rec pcap.Record) (Frame, error) {
	f := Frame{
		PcapSecs: rec.Secs,
		InclLen:  rec.InclLen,
		OrigLen:  rec.OrigLen,
	}

	rt, frame, rtErr := radiotap.Decode(rec.Body)
	f.MACUsecs, f.HasMACUsecs = rt.MACUsecs, rt.HasMACUsecs
	f.Flags, f.HasFlags = rt.Flags, rt.HasFlags
	f.Rate, f.HasRate = rt.Rate, rt.HasRate
	f.MCS, f.HasMCS = rt.MCS, rt.HasMCS
	f.SpatialStreams = rt.SpatialStreams
	f.Bandwidth = rt.Bandwidth
	f.Freq, f.ChannelFlags, f.HasChannel = rt.Freq, rt.ChannelFlags, rt.HasChannel
	f.DBmAntSignal, f.HasDBmAntSignal = rt.DBmAntSignal, rt.HasDBmAntSignal
	f.DBmAntNoise, f.HasDBmAntNoise = rt.DBmAntNoise, rt.HasDBmAntNoise

	// Airtime is approximate: orig_len includes radiotap header bytes
	// but excludes PHY overhead, and the two roughly cancel. Only the
	// first subframe of an aggregate pays the interframe space; all
	// subframes of an aggregate share one MAC timestamp.
	if f.HasMACUsecs && f.HasRate {
		f.AirtimeUsec = float64(f.OrigLen) * 8 / f.Rate
		if f.MACUsecs != a.lastMACUsecs {
			f.AirtimeUsec += radiotap.IFSUsec
		}
		f.HasAirtime = true
	}

	var dErr error
	if frame != nil {
		var d dot11.Info
		d, dErr = dot11.Decode(frame)
		f.Type = d.Type
		f.TypeStr = d.TypeStr
		f.DSMode = d.DSMode
		f.Retry = d.Retry
		f.PowerMan = d.PowerMan
		f.Order = d.Order
		f.Duration = d.Duration
		f.RA, f.TA, f.XA = d.RA, d.TA, d.XA
		f.AID, f.HasAID = d.AID, d.HasAID
		f.Seq, f.Frag, f.HasSeq = d.Seq, d.Frag, d.HasSeq
		f.SSID, f.HasSSID = d.SSID, d.HasSSID
	}

	// A record with no radiotap flags at all is treated as bad; we
	// cannot vouch for its FCS.
	f.Bad = !f.HasFlags || f.Flags&radiotap.FlagBadFCS != 0

	// CTS and ACK frames omit the transmitter address, so fill it from
	// the previous frame's RA, but only when that frame was addressed
	// by this one's receiver and was not a frame this receiver sent to
	// itself.
	if f.TA == "" {
		if a.lastTA != "" && a.lastRA != "" && a.lastTA == f.RA && a.lastRA != f.RA {
			f.TA = a.lastRA
		}
		a.lastTA, a.lastRA = "", ""
	} else {
		a.lastTA, a.lastRA = f.TA, f.RA
	}
	if f.HasMACUsecs {
		a.lastMACUsecs = f.MACUsecs
	}

	err := rtErr
	if err == nil {
		err = dErr
	}
	if err != nil {
		return f, PacketError{Err: err}
	}
	return f, nil
}

// Stream is the pull interface: a lazy sequence of Frames decoded from
// an io.Reader. The source is read only as far as Next demands.
type Stream struct {
	src io.Reader
	buf *pcap.Buf
	sc  *pcap.Scanner
	asm assembler
	log logging.Logger

	rbuf    []byte
	sniffed bool
	err     error // Sticky termination condition.
}

// NewStream returns a Stream decoding frames from src. Gzip input is
// detected by magic and inflated transparently; bzip2 and other wrappers
// are the source's concern.
func NewStream(src io.Reader, l logging.Logger) *Stream {
	buf := &pcap.Buf{}
	return &Stream{
		src:  src,
		buf:  buf,
		sc:   pcap.NewScanner(buf),
		log:  l,
		rbuf: make([]byte, readSize),
	}
}

// sniff inspects the stream head for a gzip wrapper and, if found, swaps
// the source for an inflater over the already-read prefix and the rest.
func (s *Stream) sniff() error {
	s.sniffed = true
	head := make([]byte, 4)
	n, err := io.ReadFull(s.src, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return err
	}
	if pcap.IsGzip(head[:n]) {
		gz, err := gzip.NewReader(io.MultiReader(bytes.NewReader(head[:n]), s.src))
		if err != nil {
			return pcap.FileError{Reason: "bad gzip stream: " + err.Error()}
		}
		s.src = gz
		return nil
	}
	s.buf.Put(head[:n])
	return nil
}

// Next returns the next frame in capture order. It returns io.EOF when
// the stream ends cleanly (including a record truncated by the cut), a
// pcap.FileError when the container is unusable, or the source's read
// error. Records with per-record decode problems are logged and
// delivered anyway, partially populated.
func (s *Stream) Next() (Frame, error) {
	if s.err != nil {
		return Frame{}, s.err
	}
	if !s.sniffed {
		if err := s.sniff(); err != nil {
			s.err = err
			return Frame{}, err
		}
	}
	for {
		rec, err := s.sc.Next()
		if err == nil {
			f, perr := s.asm.assemble(rec)
			if perr != nil {
				s.log.Warning("damaged record", "error", perr.Error())
			}
			return f, nil
		}
		if !errors.Is(err, pcap.ErrNotEnough) {
			s.err = err
			return Frame{}, err
		}

		n, rerr := s.src.Read(s.rbuf)
		if n > 0 {
			s.buf.Put(s.rbuf[:n])
			continue
		}
		if rerr == nil {
			continue
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			// End between records, or a record cut short: both end the
			// sequence cleanly.
			s.err = io.EOF
		} else {
			s.err = rerr
		}
		return Frame{}, s.err
	}
}

// Packetize decodes every frame from src, invoking cb for each. It
// returns nil on clean end of stream.
func Packetize(src io.Reader, l logging.Logger, cb func(Frame)) error {
	s := NewStream(src, l)
	for {
		f, err := s.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		cb(f)
	}
}

// Packetizer is the push interface: bytes are handed in as they arrive
// and the callback fires synchronously once per fully decoded frame.
// Pushed input must be uncompressed pcap; inflation is a stream concern
// and belongs on the pull path.
type Packetizer struct {
	buf *pcap.Buf
	sc  *pcap.Scanner
	asm assembler
	cb  func(Frame)
	log logging.Logger
	err error
}

// NewPacketizer returns a Packetizer invoking cb per decoded frame.
func NewPacketizer(cb func(Frame), l logging.Logger) *Packetizer {
	buf := &pcap.Buf{}
	return &Packetizer{
		buf: buf,
		sc:  pcap.NewScanner(buf),
		cb:  cb,
		log: l,
	}
}

// Handle appends b to the decode buffer and drains every frame that is
// now complete. A returned error is fatal to the stream and sticky;
// running out of buffered bytes is not an error, the next Handle call
// resumes where decoding suspended.
func (p *Packetizer) Handle(b []byte) error {
	if p.err != nil {
		return p.err
	}
	p.buf.Put(b)
	for {
		rec, err := p.sc.Next()
		if errors.Is(err, pcap.ErrNotEnough) {
			return nil
		}
		if err != nil {
			p.err = err
			return err
		}
		f, perr := p.asm.assemble(rec)
		if perr != nil {
			p.log.Warning("damaged record", "error", perr.Error())
		}
		p.cb(f)
	}
}
