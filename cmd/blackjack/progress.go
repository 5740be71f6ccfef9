package main

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// progressMonitor prints a fixed-width row of dots as rounds complete
type progressMonitor struct {
	mu          sync.Mutex
	out         io.Writer
	total       int
	dotsPrinted int
	startTime   time.Time
}

const progressDots = 40

func newProgressMonitor(out io.Writer, total int) *progressMonitor {
	return &progressMonitor{out: out, total: max(total, 1), startTime: time.Now()}
}

// OnRounds is called with the running total of completed rounds
func (m *progressMonitor) OnRounds(done int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	target := min(done, m.total) * progressDots / m.total
	for ; m.dotsPrinted < target; m.dotsPrinted++ {
		fmt.Fprint(m.out, ".")
	}
}

// Finish completes the row and reports throughput
func (m *progressMonitor) Finish(rounds int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for ; m.dotsPrinted < progressDots; m.dotsPrinted++ {
		fmt.Fprint(m.out, ".")
	}
	duration := time.Since(m.startTime)
	fmt.Fprintf(m.out, " ✓ %d rounds in %.1fs (%.0f/sec)\n", rounds, duration.Seconds(), float64(rounds)/duration.Seconds())
}
