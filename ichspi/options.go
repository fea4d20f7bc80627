package ichspi

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/moffa90/go-ichspi/chipset"
	"github.com/moffa90/go-ichspi/descriptor"
	"github.com/moffa90/go-ichspi/hwaccess"
	"github.com/moffa90/go-ichspi/logging"
)

// Mode selects the sequencing engine.
type Mode int

const (
	// ModeAuto picks hardware sequencing only when software sequencing cannot work.
	ModeAuto Mode = iota

	// ModeSoftware forces software sequencing.
	ModeSoftware

	// ModeHardware forces hardware sequencing.
	ModeHardware
)

func (m Mode) String() string {
	switch m {
	case ModeSoftware:
		return "swseq"
	case ModeHardware:
		return "hwseq"
	default:
		return "auto"
	}
}

// ParseMode resolves "auto", "swseq" or "hwseq".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "auto":
		return ModeAuto, true
	case "swseq", "software":
		return ModeSoftware, true
	case "hwseq", "hardware":
		return ModeHardware, true
	}
	return ModeAuto, false
}

// Config holds the controller configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger logging.Logger

	// Mode selects the sequencing engine
	Mode Mode

	// SWPollIterations bounds the software sequencing completion poll
	SWPollIterations int

	// HWPollIterations bounds the hardware read/write/status poll
	HWPollIterations int

	// ErasePollIterations bounds erase completion polls
	ErasePollIterations int

	// SWPollDelay is the delay between software sequencing polls, in microseconds
	SWPollDelay int

	// HWPollDelay is the delay between hardware sequencing polls, in microseconds
	HWPollDelay int

	// Delayer performs the poll delay
	Delayer hwaccess.Delayer

	// Descriptor overrides the descriptor read through FDOC/FDOD (optional)
	Descriptor *descriptor.Descriptor

	// ChipSize is the flash size in bytes when no descriptor tells it (optional)
	ChipSize uint32

	// Registerer receives the cycle metrics (optional)
	Registerer prometheus.Registerer

	// ProgressCallback is called during chunked operations (optional)
	ProgressCallback ProgressCallback

	// Generation overrides the generation Probe derives from the PCI ID (optional)
	Generation chipset.Generation
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Mode:                ModeAuto,
		SWPollIterations:    6000,
		HWPollIterations:    6000,
		ErasePollIterations: 5000000,
		SWPollDelay:         10,
		HWPollDelay:         8,
		Delayer:             hwaccess.BusyDelay{},
	}
}

// Option is a functional option for configuring the Controller.
type Option func(*Config)

// WithLogger sets a logger for controller operations.
//
// Example:
//
//	z, _ := zap.NewDevelopment()
//	ctrl, err := ichspi.New(regs, gen, ichspi.WithLogger(logging.NewZap(z)))
func WithLogger(logger logging.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMode selects the sequencing engine. The default is ModeAuto.
//
// Example:
//
//	ctrl, err := ichspi.New(regs, gen, ichspi.WithMode(ichspi.ModeHardware))
func WithMode(mode Mode) Option {
	return func(c *Config) {
		c.Mode = mode
	}
}

// WithPollBudget sets the number of status polls allowed per cycle.
// Non-positive values keep the default.
//
// Example:
//
//	ctrl, err := ichspi.New(regs, gen, ichspi.WithPollBudget(12000, 12000, 10000000))
func WithPollBudget(sw, hw, erase int) Option {
	return func(c *Config) {
		if sw > 0 {
			c.SWPollIterations = sw
		}
		if hw > 0 {
			c.HWPollIterations = hw
		}
		if erase > 0 {
			c.ErasePollIterations = erase
		}
	}
}

// WithPollDelay sets the delay in microseconds between status polls.
// Negative values keep the default.
func WithPollDelay(sw, hw int) Option {
	return func(c *Config) {
		if sw >= 0 {
			c.SWPollDelay = sw
		}
		if hw >= 0 {
			c.HWPollDelay = hw
		}
	}
}

// WithDelayer replaces the busy delay used between polls.
//
// Example:
//
//	ctrl, err := ichspi.New(regs, gen, ichspi.WithDelayer(hwaccess.NoDelay))
func WithDelayer(d hwaccess.Delayer) Option {
	return func(c *Config) {
		if d != nil {
			c.Delayer = d
		}
	}
}

// WithDescriptor supplies a descriptor, typically parsed from a dump, instead
// of reading it through the controller.
//
// Example:
//
//	desc, _ := descriptor.ParseFile("image.bin")
//	ctrl, err := ichspi.New(regs, gen, ichspi.WithDescriptor(desc))
func WithDescriptor(d *descriptor.Descriptor) Option {
	return func(c *Config) {
		c.Descriptor = d
	}
}

// WithChipSize sets the flash size used when the descriptor does not
// provide one.
func WithChipSize(size uint32) Option {
	return func(c *Config) {
		c.ChipSize = size
	}
}

// WithMetrics registers cycle counters and poll histograms.
//
// Example:
//
//	ctrl, err := ichspi.New(regs, gen, ichspi.WithMetrics(prometheus.DefaultRegisterer))
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registerer = reg
	}
}

// WithProgressCallback sets a callback to track chunked read, write and erase progress.
//
// Example:
//
//	ctrl, err := ichspi.New(regs, gen,
//	    ichspi.WithProgressCallback(func(p ichspi.Progress) {
//	        fmt.Printf("%s %.1f%%\n", p.Phase, p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithGeneration makes Probe treat the detected controller as gen instead of
// the generation its PCI ID maps to. New ignores it.
func WithGeneration(gen chipset.Generation) Option {
	return func(c *Config) {
		c.Generation = gen
	}
}
