///////////////////////////////////////////////////////////////////////////////
// Copyright © 2020 xx network SEZC                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

// Package measure records timestamped events while an operation runs
package measure

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Metrics holds the events of one operation. The RWMutex prevents two threads
// from writing to the list at the same time.
type Metrics struct {
	Label  string
	Events []Metric
	sync.RWMutex
}

// Metric holds a single measurement: a tag and the time it was taken
type Metric struct {
	Tag       string
	Timestamp time.Time
}

// NewMetrics creates an empty event list for the labelled operation
func NewMetrics(label string) *Metrics {
	return &Metrics{Label: label}
}

// Measure appends an event with the given tag, timestamped now, and returns
// the timestamp
func (ms *Metrics) Measure(tag string) time.Time {
	metric := Metric{
		Tag:       tag,
		Timestamp: time.Now(),
	}

	ms.Lock()
	ms.Events = append(ms.Events, metric)
	ms.Unlock()

	return metric.Timestamp
}

// Elapsed returns the time between the first events tagged from and to. The
// bool is false if either event was never recorded.
func (ms *Metrics) Elapsed(from, to string) (time.Duration, bool) {
	ms.RLock()
	defer ms.RUnlock()
	var start, end *time.Time
	for i := range ms.Events {
		e := &ms.Events[i]
		if start == nil && e.Tag == from {
			start = &e.Timestamp
		}
		if end == nil && e.Tag == to {
			end = &e.Timestamp
		}
	}
	if start == nil || end == nil {
		return 0, false
	}
	return end.Sub(*start), true
}

// String prints every event relative to the first one
func (ms *Metrics) String() string {
	ms.RLock()
	defer ms.RUnlock()
	var b strings.Builder
	b.WriteString(ms.Label)
	if len(ms.Events) == 0 {
		return b.String()
	}
	first := ms.Events[0].Timestamp
	for _, e := range ms.Events {
		fmt.Fprintf(&b, "\n\t%s: +%s", e.Tag, e.Timestamp.Sub(first))
	}
	return b.String()
}
