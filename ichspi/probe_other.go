//go:build !linux

package ichspi

import "github.com/moffa90/go-ichspi/hwaccess"

// Probe is only available on Linux.
func Probe(opts ...Option) (*Controller, error) {
	return nil, fatalf("%v", hwaccess.ErrUnsupportedPlatform)
}
