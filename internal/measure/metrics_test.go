///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package measure

import (
	"strings"
	"sync"
	"testing"
	"time"
)

// Tests that Measure() records every tag in order with non decreasing
// timestamps
func TestMetrics_Measure(t *testing.T) {
	metrics := NewMetrics("op")
	tags := []string{TagOpenStart, TagFanOut, TagSiblingsDone, TagOpenComplete}
	stamps := make([]time.Time, len(tags))
	for i, tag := range tags {
		stamps[i] = metrics.Measure(tag)
	}

	if len(metrics.Events) != len(tags) {
		t.Fatalf("Measure() recorded %d events, expected %d",
			len(metrics.Events), len(tags))
	}
	for i, m := range metrics.Events {
		if m.Tag != tags[i] || !m.Timestamp.Equal(stamps[i]) {
			t.Errorf("Event %d is %+v, expected %s at %s", i, m, tags[i],
				stamps[i])
		}
		if i > 0 && m.Timestamp.Before(metrics.Events[i-1].Timestamp) {
			t.Errorf("Event %d is older than event %d", i, i-1)
		}
	}
}

// Test that Measure() waits for the lock before writing to Events
func TestMetrics_Measure_Lock(t *testing.T) {
	metrics := NewMetrics("op")
	metrics.Lock()

	result := make(chan bool)
	go func() {
		metrics.Measure("test1")
		result <- true
	}()

	select {
	case <-result:
		t.Error("Measure() did not correctly lock the thread when expected")
	case <-time.After(100 * time.Millisecond):
	}
	metrics.Unlock()
	<-result
}

func TestMetrics_Measure_Concurrent(t *testing.T) {
	metrics := NewMetrics("op")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metrics.Measure(TagFanOut)
		}()
	}
	wg.Wait()
	if len(metrics.Events) != 50 {
		t.Errorf("Expected 50 events, got %d", len(metrics.Events))
	}
}

func TestMetrics_Elapsed(t *testing.T) {
	metrics := NewMetrics("op")
	metrics.Events = []Metric{
		{Tag: TagOpenStart, Timestamp: time.Unix(100, 0)},
		{Tag: TagOpenComplete, Timestamp: time.Unix(103, 0)},
	}
	d, ok := metrics.Elapsed(TagOpenStart, TagOpenComplete)
	if !ok || d != 3*time.Second {
		t.Errorf("Expected 3s, got %s (%v)", d, ok)
	}
	if _, ok = metrics.Elapsed(TagOpenStart, TagOpenFailed); ok {
		t.Errorf("Elapsed() found an event that was never recorded")
	}
	if s := metrics.String(); !strings.Contains(s, TagOpenComplete+": +3s") {
		t.Errorf("Unexpected printout %q", s)
	}
}
