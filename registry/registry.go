// Package registry tracks the set of testbenches known to the verification suite.
package registry

import (
	"fmt"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"
)

// DefaultTestbenches is the built-in testbench set of the JTAG/1500/1687 suite,
// used when no registry file is configured.
var DefaultTestbenches = []string{
	"tb_jtag_controller",
	"tb_ieee1500_wrapper",
	"tb_ieee1687_network",
	"tb_boundary_scan_chain",
	"tb_loopback_module",
	"tb_top_module",
}

// Config contains registry configuration
type Config struct {
	Log log.Logger
	// TestbenchFile optionally points to a YAML file overriding the built-in
	// testbench set.
	TestbenchFile string
}

// Registry manages the known testbench names.
type Registry struct {
	config      Config
	testbenches []string
	known       map[string]struct{}
	mu          sync.RWMutex
}

// testbenchFile is the on-disk registry format.
type testbenchFile struct {
	Testbenches []string `yaml:"testbenches"`
}

// NewRegistry creates a new registry instance
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	r := &Registry{config: cfg}

	names := DefaultTestbenches
	if cfg.TestbenchFile != "" {
		loaded, err := loadTestbenchFile(cfg.TestbenchFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load testbench registry: %w", err)
		}
		names = loaded
	}
	r.setTestbenches(names)

	cfg.Log.Debug("Registry loaded", "len(testbenches)", len(names))

	return r, nil
}

func loadTestbenchFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg testbenchFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(cfg.Testbenches) == 0 {
		return nil, fmt.Errorf("%s defines no testbenches", path)
	}
	return cfg.Testbenches, nil
}

func (r *Registry) setTestbenches(names []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.testbenches = append([]string(nil), names...)
	r.known = make(map[string]struct{}, len(names))
	for _, name := range names {
		r.known[name] = struct{}{}
	}
}

// Testbenches returns the known testbench names in registry order.
func (r *Registry) Testbenches() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.testbenches...)
}

// IsKnown reports whether name is a registered testbench.
// IsKnown implements plan.TestbenchSet.
func (r *Registry) IsKnown(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.known[name]
	return ok
}
