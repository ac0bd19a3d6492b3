/*
NAME
  mcs.go - MCS bitrate tables and HT/VHT rate derivation.

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

// Interframe timing. These are deliberately coarse: interframe spaces
// depend on the PHY standard and band in use, and no attempt is made to
// distinguish frame types or priority levels.
const (
	SIFSUsec     = 16
	SlotTimeUsec = 9
	IFSUsec      = SIFSUsec + 2*SlotTimeUsec
)

// shortGIMult converts a long guard interval rate to short.
const shortGIMult = 10.0 / 9.0

// mcsEntry is one modulation and coding scheme: rates are Mb/s at long
// guard interval for 20/40/80/160 MHz channels.
type mcsEntry struct {
	modulation string
	coding     string
	rate       [4]float64
}

var mcsTable = []mcsEntry{
	{"BPSK", "1/2", [4]float64{6.5, 13.5, 29.3, 58.5}},
	{"QPSK", "1/2", [4]float64{13, 27, 58.5, 117}},
	{"QPSK", "3/4", [4]float64{19.5, 40.5, 87.8, 175.5}},
	{"16-QAM", "1/2", [4]float64{26, 54, 117, 234}},
	{"16-QAM", "3/4", [4]float64{39, 81, 175.5, 351}},
	{"64-QAM", "2/3", [4]float64{52, 108, 234, 468}},
	{"64-QAM", "3/4", [4]float64{58.5, 121.5, 263.3, 526.5}},
	{"64-QAM", "5/6", [4]float64{65, 135, 292.5, 585}},
	// 802.11ac only:
	{"256-QAM", "3/4", [4]float64{78, 162, 351, 702}},
	{"256-QAM", "5/6", [4]float64{86.7, 180, 390, 780}},
}

// htRate derives the bandwidth index and bitrate from an HT field. Each
// quantity is honoured only when its known bit is set: bit 0 for
// bandwidth, bit 1 for MCS index, bit 2 for guard interval.
func htRate(known, flags, index byte) (bwIndex int, rate float64) {
	if known&0x01 != 0 {
		bwIndex = [4]int{0, 1, 0, 0}[flags&0x3]
	}
	giMult := 1.0
	if known&0x04 != 0 && flags&0x04 != 0 {
		giMult = shortGIMult
	}
	mcs, nss := 0, 1
	if known&0x02 != 0 {
		mcs = int(index & 0x07)
		nss = int((index&0x18)>>3) + 1
	}
	return bwIndex, mcsTable[mcs].rate[bwIndex] * float64(nss) * giMult
}

// vhtRate derives the bandwidth index and bitrate from a VHT field.
// Bandwidth codes 1-3 are the 40 MHz variants, 4-10 the 80 MHz variants,
// and anything above is clamped to 160 MHz. ok is false when the MCS
// index has no table entry.
func vhtRate(flags, bw, mcsNSS byte) (bwIndex int, rate float64, ok bool) {
	switch {
	case bw == 0:
		bwIndex = 0
	case bw < 4:
		bwIndex = 1
	case bw < 11:
		bwIndex = 2
	default:
		bwIndex = 3
	}
	mcs := int(mcsNSS >> 4 & 0x0f)
	nss := int(mcsNSS & 0x0f)
	if mcs >= len(mcsTable) {
		return bwIndex, 0, false
	}
	giMult := 1.0
	if flags&0x04 != 0 {
		giMult = shortGIMult
	}
	return bwIndex, mcsTable[mcs].rate[bwIndex] * float64(nss) * giMult, true
}
