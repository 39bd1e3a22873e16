//go:build linux

package watch

import (
	"maps"
	"sync"
	"time"
)

// Stats is a point-in-time copy of a [Watcher]'s counters. LastFill is the
// number of bytes the most recent read returned, out of BufferCap.
type Stats struct {
	Backend    string
	Watches    int
	Events     uint64
	Reads      uint64
	Bytes      uint64
	LastFill   int
	Overflows  uint64
	ByKind     map[string]uint64
	BufferCap  int
	StartTime  time.Time
	LastEvent  time.Time
	LastRecord string
}

type statistics struct {
	sync.RWMutex
	events     uint64
	reads      uint64
	bytes      uint64
	lastFill   int
	overflows  uint64
	byKind     map[string]uint64
	startTime  time.Time
	lastEvent  time.Time
	lastRecord string
}

func newStatistics() *statistics {
	return &statistics{
		byKind:    make(map[string]uint64),
		startTime: time.Now(),
	}
}

func (s *statistics) read(n int) {
	s.Lock()
	defer s.Unlock()

	s.reads++
	s.bytes += uint64(n) //nolint:gosec
	s.lastFill = n
}

func (s *statistics) record(r Record) {
	s.Lock()
	defer s.Unlock()

	s.events++
	s.lastEvent = time.Now()
	s.lastRecord = r.String()

	if r.Overflow() {
		s.overflows++
	}

	s.byKind[r.Kind()]++
}

func (s *statistics) snapshot() Stats {
	s.RLock()
	defer s.RUnlock()

	return Stats{
		Events:     s.events,
		Reads:      s.reads,
		Bytes:      s.bytes,
		LastFill:   s.lastFill,
		Overflows:  s.overflows,
		ByKind:     maps.Clone(s.byKind),
		StartTime:  s.startTime,
		LastEvent:  s.lastEvent,
		LastRecord: s.lastRecord,
	}
}
