package cryptox

import (
	"errors"
	"fmt"
)

// Params are the tunable Argon2id costs. They are persisted next to the salt
// so records created under older costs keep verifying after defaults change.
type Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultParams: one pass over 64 MiB with four lanes.
func DefaultParams() Params {
	return Params{Time: 1, MemoryKiB: 64 * 1024, Threads: 4}
}

// Validate rejects zero costs, which argon2 would otherwise accept or panic on.
func (p Params) Validate() error {
	if p.Time == 0 {
		return errors.New("argon2 time must be positive")
	}
	if p.MemoryKiB < 8*uint32(p.Threads) || p.MemoryKiB == 0 {
		return errors.New("argon2 memory is too small")
	}
	if p.Threads == 0 {
		return errors.New("argon2 threads must be positive")
	}
	return nil
}

// String encodes the parameters in the form stored in master key records.
func (p Params) String() string {
	return fmt.Sprintf("argon2id$t=%d$m=%d$p=%d", p.Time, p.MemoryKiB, p.Threads)
}

// ParseParams decodes Params.String output. An empty string predates stored
// parameters and means DefaultParams.
func ParseParams(s string) (Params, error) {
	if s == "" {
		return DefaultParams(), nil
	}
	var p Params
	var threads uint32
	if _, err := fmt.Sscanf(s, "argon2id$t=%d$m=%d$p=%d", &p.Time, &p.MemoryKiB, &threads); err != nil {
		return Params{}, fmt.Errorf("parse kdf params %q: %w", s, err)
	}
	if threads == 0 || threads > 255 {
		return Params{}, fmt.Errorf("parse kdf params %q: threads out of range", s)
	}
	p.Threads = uint8(threads)
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}
