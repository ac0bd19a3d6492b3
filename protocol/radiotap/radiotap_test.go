/*
NAME
  radiotap_test.go

DESCRIPTION
  radiotap_test.go contains testing for functionality found in
  radiotap.go and mcs.go.

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

package radiotap

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// header builds a radiotap header from present words and the packed
// field bytes, appending frame as the 802.11 payload.
func header(presents []uint32, fields, frame []byte) []byte {
	b := []byte{0, 0} // version, pad
	itLen := 4 + 4*len(presents) + len(fields)
	b = binary.LittleEndian.AppendUint16(b, uint16(itLen))
	for _, p := range presents {
		b = binary.LittleEndian.AppendUint32(b, p)
	}
	b = append(b, fields...)
	return append(b, frame...)
}

func TestDecodeLegacyRate(t *testing.T) {
	// Present: mac_usecs (bit 0), rate (bit 2), channel (bit 3).
	fields := binary.LittleEndian.AppendUint64(nil, 123456)
	fields = append(fields, 0x18)       // 24 half-Mb/s = 12 Mb/s.
	fields = append(fields, 0x00)       // padding to 2-byte alignment for channel.
	fields = binary.LittleEndian.AppendUint16(fields, 2437)
	fields = binary.LittleEndian.AppendUint16(fields, 0x00a0)

	payload := []byte{0xde, 0xad}
	info, frame, err := Decode(header([]uint32{1<<0 | 1<<2 | 1<<3}, fields, payload))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if !bytes.Equal(frame, payload) {
		t.Errorf("unexpected frame bytes: %v", frame)
	}

	want := Info{
		MACUsecs: 123456, HasMACUsecs: true,
		Rate: 12, HasRate: true,
		Freq: 2437, ChannelFlags: 0x00a0, HasChannel: true,
	}
	if diff := cmp.Diff(want, info); diff != "" {
		t.Errorf("unexpected info (-want +got):\n%s", diff)
	}
}

func TestDecodeAlignment(t *testing.T) {
	// flags (bit 1) and dbm_antsignal (bit 5) pack back to back; the
	// following lock_quality (bit 7) is a u16 and lands on the next
	// 2-byte boundary without padding here.
	present := uint32(1<<1 | 1<<5 | 1<<7)
	fields := []byte{FlagBadFCS, 0xc3} // flags, antsignal (-61).
	fields = binary.LittleEndian.AppendUint16(fields, 99)

	info, _, err := Decode(header([]uint32{present}, fields, nil))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if !info.HasFlags || info.Flags != FlagBadFCS {
		t.Errorf("unexpected flags: %v (has %v)", info.Flags, info.HasFlags)
	}
	if !info.HasDBmAntSignal || info.DBmAntSignal != -61 {
		t.Errorf("unexpected antsignal: %v (has %v)", info.DBmAntSignal, info.HasDBmAntSignal)
	}
}

// TestDecodePresentChain checks that chained present words are skipped:
// only the first drives parsing, but field data starts after the chain.
func TestDecodePresentChain(t *testing.T) {
	fields := []byte{0x10} // flags only: FCS at end.
	presents := []uint32{1<<1 | 1<<31, 1 << 0} // two-word chain.
	info, frame, err := Decode(header(presents, fields, []byte{0xab}))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if !info.HasFlags || info.Flags != 0x10 {
		t.Errorf("unexpected flags: %#x (has %v)", info.Flags, info.HasFlags)
	}
	// The second word's mac_usecs bit must NOT have been honoured.
	if info.HasMACUsecs {
		t.Error("mac_usecs parsed from a chained present word")
	}
	if !bytes.Equal(frame, []byte{0xab}) {
		t.Errorf("unexpected frame bytes: %v", frame)
	}
}

func TestDecodeHT(t *testing.T) {
	// known=0x07 (bw, mcs, gi all known), flags=0, index=3.
	info, _, err := Decode(header([]uint32{1 << 19}, []byte{0x07, 0x00, 0x03}, nil))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if info.MCS != 3 || !info.HasMCS {
		t.Errorf("unexpected mcs: %d", info.MCS)
	}
	if info.SpatialStreams != 1 {
		t.Errorf("unexpected spatial streams: %d", info.SpatialStreams)
	}
	if info.Bandwidth != 20 {
		t.Errorf("unexpected bandwidth: %d", info.Bandwidth)
	}
	if !info.HasRate || info.Rate != 26.0 {
		t.Errorf("unexpected rate: %v", info.Rate)
	}
}

func TestDecodeHTShortGIAndStreams(t *testing.T) {
	// 40 MHz (flags bw=1), short GI, index 0x0b: mcs 3, nss 2.
	info, _, err := Decode(header([]uint32{1 << 19}, []byte{0x07, 0x05, 0x0b}, nil))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if info.SpatialStreams != 2 {
		t.Errorf("unexpected spatial streams: %d", info.SpatialStreams)
	}
	if info.Bandwidth != 40 {
		t.Errorf("unexpected bandwidth: %d", info.Bandwidth)
	}
	want := 54.0 * 2 * 10 / 9
	if math.Abs(info.Rate-want) > 1e-9 {
		t.Errorf("unexpected rate. Got: %v Want: %v", info.Rate, want)
	}
}

func TestDecodeVHT(t *testing.T) {
	// bw code 4 → 80 MHz; mcs_nss 0x92: mcs 9, 2 streams; long GI.
	fields := binary.LittleEndian.AppendUint16(nil, 0) // known.
	fields = append(fields, 0x00, 0x04)                // flags, bw.
	fields = append(fields, 0x92, 0x00, 0x00, 0x00)    // mcs_nss.
	fields = append(fields, 0x00, 0x00)                // coding, group id.
	fields = binary.LittleEndian.AppendUint16(fields, 0) // partial aid.

	info, _, err := Decode(header([]uint32{1 << 21}, fields, nil))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if info.MCS != 9 || info.SpatialStreams != 2 {
		t.Errorf("unexpected mcs/nss: %d/%d", info.MCS, info.SpatialStreams)
	}
	if info.Bandwidth != 80 {
		t.Errorf("unexpected bandwidth: %d", info.Bandwidth)
	}
	if info.Rate != 390.0*2 {
		t.Errorf("unexpected rate: %v", info.Rate)
	}
}

// TestDecodeVHTBandwidthClamp checks bandwidth codes at and above 11
// clamp to 160 MHz.
func TestDecodeVHTBandwidthClamp(t *testing.T) {
	fields := binary.LittleEndian.AppendUint16(nil, 0)
	fields = append(fields, 0x00, 0x19) // bw code 25.
	fields = append(fields, 0x01, 0x00, 0x00, 0x00)
	fields = append(fields, 0x00, 0x00)
	fields = binary.LittleEndian.AppendUint16(fields, 0)

	info, _, err := Decode(header([]uint32{1 << 21}, fields, nil))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if info.Bandwidth != 160 {
		t.Errorf("unexpected bandwidth. Got: %d Want: 160", info.Bandwidth)
	}
}

func TestDecodeBadVersion(t *testing.T) {
	b := header([]uint32{0}, nil, nil)
	b[0] = 2
	_, _, err := Decode(b)
	if err == nil {
		t.Fatal("expected error for unknown radiotap version")
	}
}

func TestDecodeTruncatedField(t *testing.T) {
	// mac_usecs present but only 4 of its 8 bytes supplied.
	info, frame, err := Decode(header([]uint32{1 << 0}, []byte{1, 2, 3, 4}, []byte{0xff}))
	if err == nil {
		t.Fatal("expected error for truncated field")
	}
	if info.HasMACUsecs {
		t.Error("mac_usecs parsed from truncated data")
	}
	// Frame location is still known from it_len.
	if !bytes.Equal(frame, []byte{0xff}) {
		t.Errorf("unexpected frame bytes: %v", frame)
	}
}

func TestMcsTableIdempotence(t *testing.T) {
	for m := 0; m < len(mcsTable); m++ {
		// known=0: bandwidth and GI default, mcs defaults to 0.
		_, rate := htRate(0, 0, byte(m))
		if rate != mcsTable[0].rate[0] {
			t.Errorf("mcs %d: unexpected rate with nothing known. Got: %v Want: %v", m, rate, mcsTable[0].rate[0])
		}
		// known=2: the index is honoured.
		_, rate = htRate(0x02, 0, byte(m&0x07))
		if rate != mcsTable[m&0x07].rate[0] {
			t.Errorf("mcs %d: unexpected rate. Got: %v Want: %v", m, rate, mcsTable[m&0x07].rate[0])
		}
	}
}
