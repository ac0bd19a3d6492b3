/*
NAME
  buf_test.go

DESCRIPTION
  buf_test.go contains testing for functionality found in buf.go.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2025 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pcap

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBufPutGet(t *testing.T) {
	var b Buf
	b.Put([]byte("hello "))
	b.Put([]byte("world"))
	if b.Len() != 11 {
		t.Errorf("unexpected length. Got: %d Want: 11", b.Len())
	}

	got, err := b.Get(5)
	if err != nil {
		t.Fatalf("did not expect error from Get: %v", err)
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Errorf("unexpected bytes. Got: %q Want: %q", got, "hello")
	}
	if b.Len() != 6 {
		t.Errorf("unexpected remaining length. Got: %d Want: 6", b.Len())
	}
}

func TestBufGetSpansSegments(t *testing.T) {
	var b Buf
	b.Put([]byte{1, 2})
	b.Put([]byte{3, 4})
	b.Put([]byte{5, 6, 7})

	got, err := b.Get(5)
	if err != nil {
		t.Fatalf("did not expect error from Get: %v", err)
	}
	want := []byte{1, 2, 3, 4, 5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected bytes (-want +got):\n%s", diff)
	}

	got, err = b.Get(2)
	if err != nil {
		t.Fatalf("did not expect error from second Get: %v", err)
	}
	if !bytes.Equal(got, []byte{6, 7}) {
		t.Errorf("unexpected trailing bytes: %v", got)
	}
	if b.Len() != 0 {
		t.Errorf("expected empty buffer, got length %d", b.Len())
	}
}

func TestBufPeekDoesNotConsume(t *testing.T) {
	var b Buf
	b.Put([]byte{9, 8, 7})

	p1, err := b.Peek(2)
	if err != nil {
		t.Fatalf("did not expect error from Peek: %v", err)
	}
	p2, err := b.Peek(2)
	if err != nil {
		t.Fatalf("did not expect error from second Peek: %v", err)
	}
	if !bytes.Equal(p1, p2) {
		t.Errorf("peeks disagree: %v vs %v", p1, p2)
	}
	if b.Len() != 3 {
		t.Errorf("peek consumed bytes; length now %d", b.Len())
	}
}

func TestBufNotEnough(t *testing.T) {
	var b Buf
	b.Put([]byte{1, 2, 3})

	_, err := b.Get(4)
	if err != ErrNotEnough {
		t.Fatalf("expected ErrNotEnough, got %v", err)
	}
	// Nothing may have been consumed by the failed Get.
	got, err := b.Get(3)
	if err != nil {
		t.Fatalf("did not expect error after refused Get: %v", err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("unexpected bytes after refused Get: %v", got)
	}

	_, err = b.Peek(1)
	if err != ErrNotEnough {
		t.Errorf("expected ErrNotEnough on empty Peek, got %v", err)
	}
}

func TestBufManySmallGetsFromOneBigPut(t *testing.T) {
	var b Buf
	big := make([]byte, 4096)
	for i := range big {
		big[i] = byte(i)
	}
	b.Put(big)

	var out []byte
	for b.Len() > 0 {
		g, err := b.Get(16)
		if err != nil {
			t.Fatalf("did not expect error from Get: %v", err)
		}
		out = append(out, g...)
	}
	if !bytes.Equal(out, big) {
		t.Error("reassembled bytes do not match input")
	}
}
