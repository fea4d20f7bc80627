package ichspi

import "time"

// Progress phases.
const (
	PhaseReading  = "reading"
	PhaseWriting  = "writing"
	PhaseErasing  = "erasing"
	PhaseComplete = "complete"
)

// Progress contains information about a chunked operation.
// Passed to ProgressCallback after every cycle.
type Progress struct {
	// Phase describes the current operation:
	//   "reading"  - reading flash
	//   "writing"  - programming flash
	//   "erasing"  - erasing blocks
	//   "complete" - operation completed successfully
	Phase string

	// Address is the flash address of the next chunk
	Address uint32

	// Done is the number of bytes processed so far
	Done int

	// Total is the number of bytes in the request
	Total int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time elapsed since the operation started
	ElapsedTime time.Duration
}

// ProgressCallback is called during chunked operations to report progress.
// Implementations should return quickly.
//
// Example:
//
//	ctrl, err := ichspi.New(regs, gen,
//	    ichspi.WithProgressCallback(func(p ichspi.Progress) {
//	        fmt.Printf("[%s] %.1f%% - 0x%06x\n", p.Phase, p.Percentage, p.Address)
//	    }),
//	)
type ProgressCallback func(Progress)

// tracker reports progress for one chunked operation.
type tracker struct {
	c     *Controller
	phase string
	addr  uint32
	total int
	start time.Time
}

func (c *Controller) track(phase string, addr uint32, total int) *tracker {
	return &tracker{c: c, phase: phase, addr: addr, total: total, start: time.Now()}
}

func (t *tracker) advance(done int) {
	if t.c.config.ProgressCallback == nil {
		return
	}
	pct := 100.0
	if t.total > 0 {
		pct = float64(done) * 100 / float64(t.total)
	}
	t.c.config.ProgressCallback(Progress{
		Phase:       t.phase,
		Address:     t.addr + uint32(done),
		Done:        done,
		Total:       t.total,
		Percentage:  pct,
		ElapsedTime: time.Since(t.start),
	})
}

func (t *tracker) complete() {
	if t.c.config.ProgressCallback == nil {
		return
	}
	t.c.config.ProgressCallback(Progress{
		Phase:       PhaseComplete,
		Address:     t.addr + uint32(t.total),
		Done:        t.total,
		Total:       t.total,
		Percentage:  100,
		ElapsedTime: time.Since(t.start),
	})
}
