// Package config centralizes the flag parsing and validation shared by
// every cmd/ binary: bit width selection, mutually-exclusive transmission
// frequency flags, threshold/address validation. It is deliberately
// decoupled from cobra's Command type (a *pflag.FlagSet is all any binary
// needs to bind) the way cake-stats' main() builds a flat options struct
// before handing it to server.New, just re-expressed with pflag instead of
// the standard flag package so cmd/ binaries can share one definition
// across cobra subcommands.
package config

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/pflag"
)

// Config holds the flags common to every quACK CLI driver.
type Config struct {
	Interface string
	Threshold int
	Bits      int

	FrequencyMS   time.Duration
	FrequencyPkts int

	TargetAddr string
	MyAddr     string
}

// Bind registers the common flags on fs: --interface, --threshold (20),
// --bits (32), --frequency-ms or --frequency-pkts (mutually exclusive,
// neither set by default), --target-addr, --my-addr.
func Bind(fs *pflag.FlagSet) *Config {
	c := &Config{}
	fs.StringVar(&c.Interface, "interface", "", "network interface to observe or bind to")
	fs.IntVar(&c.Threshold, "threshold", 20, "maximum decodable set-difference size")
	fs.IntVar(&c.Bits, "bits", 32, "quACK element width: 16, 32 or 64")
	fs.DurationVar(&c.FrequencyMS, "frequency-ms", 0, "emit a snapshot every interval (mutually exclusive with --frequency-pkts)")
	fs.IntVar(&c.FrequencyPkts, "frequency-pkts", 0, "emit a snapshot every N inserts (mutually exclusive with --frequency-ms)")
	fs.StringVar(&c.TargetAddr, "target-addr", "", "UDP address to emit snapshots toward")
	fs.StringVar(&c.MyAddr, "my-addr", "", "local UDP address to bind the transmitter/receiver socket to")
	return c
}

// Validate checks the flags for internal consistency. It does not require
// every field to be set: individual binaries decide which of
// Interface/TargetAddr/MyAddr they actually need and call the narrower
// ResolveTargetAddr/ResolveMyAddr/ValidateFrequency/ValidateBits helpers themselves, but every
// binary should call Validate first for the checks all of them share.
func (c *Config) Validate() error {
	if err := c.ValidateBits(); err != nil {
		return err
	}
	if err := c.ValidateThreshold(); err != nil {
		return err
	}
	return c.ValidateFrequency()
}

// ValidateBits rejects any element width other than the three monomorphized
// quACK variants pkg/quack actually provides.
func (c *Config) ValidateBits() error {
	switch c.Bits {
	case 16, 32, 64:
		return nil
	default:
		return fmt.Errorf("config: unsupported bit width %d (must be 16, 32 or 64)", c.Bits)
	}
}

// ValidateThreshold rejects a non-positive threshold; pkg/quack's New16/32/64
// treat threshold as a slice length and a zero or negative value makes the
// digest unable to ever decode a nonzero set difference.
func (c *Config) ValidateThreshold() error {
	if c.Threshold <= 0 {
		return fmt.Errorf("config: threshold must be positive, got %d", c.Threshold)
	}
	return nil
}

// ValidateFrequency enforces that --frequency-ms and --frequency-pkts are
// mutually exclusive, and that whichever is set carries a positive value.
func (c *Config) ValidateFrequency() error {
	haveMS := c.FrequencyMS > 0
	havePkts := c.FrequencyPkts > 0
	if haveMS && havePkts {
		return fmt.Errorf("config: --frequency-ms and --frequency-pkts are mutually exclusive")
	}
	if c.FrequencyMS < 0 {
		return fmt.Errorf("config: --frequency-ms must not be negative")
	}
	if c.FrequencyPkts < 0 {
		return fmt.Errorf("config: --frequency-pkts must not be negative")
	}
	return nil
}

// ResolveTargetAddr parses TargetAddr as a UDP address. It returns an error
// naming the flag if TargetAddr is empty or malformed, since a binary that
// needs a transmitter has no reasonable default to fall back to.
func (c *Config) ResolveTargetAddr() (*net.UDPAddr, error) {
	if c.TargetAddr == "" {
		return nil, fmt.Errorf("config: --target-addr is required")
	}
	addr, err := net.ResolveUDPAddr("udp", c.TargetAddr)
	if err != nil {
		return nil, fmt.Errorf("config: --target-addr %q: %w", c.TargetAddr, err)
	}
	return addr, nil
}

// ResolveMyAddr parses MyAddr as a UDP address, defaulting to an ephemeral
// port on all interfaces when unset.
func (c *Config) ResolveMyAddr() (*net.UDPAddr, error) {
	if c.MyAddr == "" {
		return &net.UDPAddr{}, nil
	}
	addr, err := net.ResolveUDPAddr("udp", c.MyAddr)
	if err != nil {
		return nil, fmt.Errorf("config: --my-addr %q: %w", c.MyAddr, err)
	}
	return addr, nil
}
