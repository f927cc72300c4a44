// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics

import (
	"strings"
	"testing"
	"time"
)

func TestTimer(t *testing.T) {
	m := New()
	timer := m.Timer("t")
	timer.Start()
	time.Sleep(time.Millisecond)
	if delta := timer.Stop(); delta <= 0 {
		t.Fatalf("Expected positive delta, got %d", delta)
	}
	if timer.Int64() <= 0 {
		t.Fatal("Expected accumulated time")
	}

	// Stopping a never-started timer accumulates nothing.
	idle := m.Timer("idle")
	if delta := idle.Stop(); delta != 0 {
		t.Fatalf("Expected zero delta, got %d", delta)
	}
}

func TestCounter(t *testing.T) {
	m := New()
	c := m.Counter("c")
	c.Incr()
	c.Add(2)
	if v := c.Value().(uint64); v != 3 {
		t.Fatalf("Expected 3, got %d", v)
	}
}

func TestHistogram(t *testing.T) {
	m := New()
	h := m.Histogram("h")
	for i := int64(1); i <= 100; i++ {
		h.Update(i)
	}
	values := h.Value().(map[string]any)
	if values["count"].(int64) != 100 {
		t.Fatalf("Expected count 100, got %v", values["count"])
	}
	if values["max"].(int64) != 100 {
		t.Fatalf("Expected max 100, got %v", values["max"])
	}
}

func TestAllAndClear(t *testing.T) {
	m := New()
	m.Counter("x").Incr()
	m.Timer("y")

	all := m.All()
	if _, ok := all["counter_x"]; !ok {
		t.Fatalf("Expected counter_x in %v", all)
	}
	if _, ok := all["timer_y_ns"]; !ok {
		t.Fatalf("Expected timer_y_ns in %v", all)
	}

	if !strings.Contains(m.(interface{ String() string }).String(), "counter_x") {
		t.Fatal("Expected String to include counter_x")
	}

	m.Clear()
	if len(m.All()) != 0 {
		t.Fatal("Expected Clear to empty the metrics")
	}
}

func TestNoOp(t *testing.T) {
	m := NoOp()
	m.Counter("c").Incr()
	m.Timer("t").Start()
	if len(m.All()) != 0 {
		t.Fatal("Expected NoOp metrics to record nothing")
	}
}
