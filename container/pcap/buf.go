/*
NAME
  buf.go

DESCRIPTION
  buf.go provides Buf, an auto-sizing byte queue used to feed the pcap
  scanner from arbitrarily chunked input.

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

package pcap

import "errors"

// ErrNotEnough is returned by Buf and Scanner operations that need more
// input before they can make progress. It is a structural signal, not a
// failure; callers should supply more bytes and retry.
var ErrNotEnough = errors.New("pcap: not enough data")

// Buf is a FIFO byte queue. Bytes are appended with Put and consumed from
// the front with Get or inspected with Peek. Consuming a small prefix of a
// large segment advances a front offset rather than reallocating, so
// repeated small Gets from one big Put stay cheap.
type Buf struct {
	segs [][]byte
	off  int // consumed prefix of segs[0]
	used int
}

// Put appends a copy of p to the end of the queue. The copy means callers
// may reuse their read buffer immediately.
func (b *Buf) Put(p []byte) {
	if len(p) == 0 {
		return
	}
	b.segs = append(b.segs, append([]byte(nil), p...))
	b.used += len(p)
}

// Len returns the number of unconsumed bytes in the queue.
func (b *Buf) Len() int { return b.used }

// coagulate merges leading segments until the first segment holds at least
// n unconsumed bytes, so Peek and Get can return a contiguous slice.
func (b *Buf) coagulate(n int) {
	if len(b.segs) == 0 || len(b.segs[0])-b.off >= n {
		return
	}
	merged := make([]byte, 0, n)
	merged = append(merged, b.segs[0][b.off:]...)
	i := 1
	for ; i < len(b.segs) && len(merged) < n; i++ {
		merged = append(merged, b.segs[i]...)
	}
	b.segs = append([][]byte{merged}, b.segs[i:]...)
	b.off = 0
}

// Peek returns the first n bytes of the queue without consuming them.
// ErrNotEnough is returned if fewer than n bytes are buffered.
func (b *Buf) Peek(n int) ([]byte, error) {
	if b.used < n {
		return nil, ErrNotEnough
	}
	if n <= 0 {
		return nil, nil
	}
	b.coagulate(n)
	return b.segs[0][b.off : b.off+n], nil
}

// Get returns the first n bytes of the queue and removes them. The
// returned slice remains valid until the queue is next written to.
// ErrNotEnough is returned if fewer than n bytes are buffered, in which
// case nothing is consumed.
func (b *Buf) Get(n int) ([]byte, error) {
	if b.used < n {
		return nil, ErrNotEnough
	}
	if n <= 0 {
		return nil, nil
	}
	b.coagulate(n)
	ret := b.segs[0][b.off : b.off+n]
	b.off += n
	if b.off == len(b.segs[0]) {
		b.segs = b.segs[1:]
		b.off = 0
	}
	b.used -= n
	return ret, nil
}
