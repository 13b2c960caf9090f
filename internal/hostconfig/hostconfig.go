// Package hostconfig loads VM tunables from an optional `.embrrc.yaml`
// file and the environment, the way mna-nenuphar's internal/maincmd
// layers a YAML file under github.com/caarlos0/env/v6 env-var overrides.
// The teacher (kristofer-smog) hardcodes these as bare constants in
// pkg/vm/vm.go; embr starts from those defaults (the value stack scaled up,
// see Config) and makes them overridable without a recompile, file first,
// environment last (environment wins).
package hostconfig

import (
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Config holds every overridable VM tunable. Field defaults mirror the
// teacher's hardcoded constants (1024-entry value stack, 256-frame call
// stack), scaled up for embr's fixed (non-growing) stack.
type Config struct {
	// InitialStackSize is the value stack's fixed capacity. It does not
	// grow at runtime — open upvalues hold raw pointers into its backing
	// array (spec §4.4), and reallocating would dangle them — so
	// exceeding it is a runtime stack-overflow error rather than a
	// reallocation.
	InitialStackSize int `yaml:"stackSize" env:"EMBR_STACK_SIZE" envDefault:"4096"`

	// MaxFrames caps how deep nested calls may go before the VM reports a
	// stack-overflow runtime error.
	MaxFrames int `yaml:"maxFrames" env:"EMBR_MAX_FRAMES" envDefault:"256"`

	// GCAllocThreshold is how many heap-object allocations accumulate
	// before the demonstrative mark-sweep pass runs (spec §5).
	GCAllocThreshold int `yaml:"gcThreshold" env:"EMBR_GC_THRESHOLD" envDefault:"1024"`
}

// Default returns Config's zero-environment, zero-file defaults.
func Default() Config {
	return Config{InitialStackSize: 4096, MaxFrames: 256, GCAllocThreshold: 1024}
}

// Load builds a Config by layering, in increasing priority: built-in
// defaults, a `.embrrc.yaml` in the current directory if one exists, then
// environment variables. A missing .embrrc.yaml is not an error — most
// embeddings never have one.
func Load() (Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(".embrrc.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
