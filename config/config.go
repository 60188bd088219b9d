// Package config holds the storage core's tunable options, loaded from
// a TOML file the way influxd's run.Config loads its own.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Durability trades write latency against how much unflushed data a
// crash can lose.
type Durability int

const (
	// MaxDurability flushes the active volume on every checkpoint.
	MaxDurability Durability = iota
	// SpeedTradeoff flushes only after checkpoints whose sequence
	// number is 1 modulo 8; the number advances by two per checkpoint,
	// so that is one checkpoint in four.
	SpeedTradeoff
	// MaxWriteSpeed never flushes proactively; only close() does.
	MaxWriteSpeed
)

func (d Durability) String() string {
	switch d {
	case MaxDurability:
		return "MAX_DURABILITY"
	case SpeedTradeoff:
		return "SPEED_TRADEOFF"
	case MaxWriteSpeed:
		return "MAX_WRITE_SPEED"
	default:
		return fmt.Sprintf("Durability(%d)", int(d))
	}
}

// UnmarshalText lets Durability be decoded from its TOML string form.
func (d *Durability) UnmarshalText(text []byte) error {
	switch string(text) {
	case "MAX_DURABILITY":
		*d = MaxDurability
	case "SPEED_TRADEOFF":
		*d = SpeedTradeoff
	case "MAX_WRITE_SPEED":
		*d = MaxWriteSpeed
	default:
		return fmt.Errorf("config: unrecognized durability %q", text)
	}

	return nil
}

// MarshalText is the inverse of UnmarshalText.
func (d Durability) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

const (
	// DefaultWindowSize is the late-write tolerance, in nanoseconds.
	DefaultWindowSize = 1_000_000_000
	// DefaultCompressionThreshold is the minimum batch size a
	// checkpoint needs before it is worth compressing into a chunk.
	DefaultCompressionThreshold = 1000
	// DefaultMaxCacheSize is the chunk cache's default byte budget.
	DefaultMaxCacheSize = 128 << 20
	// MinTTL is the smallest window size the core will honor.
	MinTTL = 2
)

// Config is the set of options recognized by the storage core.
type Config struct {
	WindowSize           uint64     `toml:"window-size"`
	CompressionThreshold uint32     `toml:"compression-threshold"`
	MaxCacheSize         uint32     `toml:"max-cache-size"`
	Durability           Durability `toml:"durability"`
	EnableHugeTLB        bool       `toml:"enable-huge-tlb"`
}

// Default returns a Config populated with the spec's documented
// defaults.
func Default() Config {
	return Config{
		WindowSize:           DefaultWindowSize,
		CompressionThreshold: DefaultCompressionThreshold,
		MaxCacheSize:         DefaultMaxCacheSize,
		Durability:           MaxDurability,
		EnableHugeTLB:        false,
	}
}

// Validate rejects settings that would violate the core's invariants.
func (c *Config) Validate() error {
	if c.WindowSize < MinTTL {
		return fmt.Errorf("config: window-size must be >= %d, got %d", MinTTL, c.WindowSize)
	}

	if c.CompressionThreshold == 0 {
		return fmt.Errorf("config: compression-threshold must be positive")
	}

	return nil
}

// Load reads and decodes a Config from a TOML file, starting from
// Default() so unset fields keep their documented defaults.
func Load(path string) (Config, error) {
	c := Default()

	bs, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	if _, err := toml.Decode(string(bs), &c); err != nil {
		return Config{}, err
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}
