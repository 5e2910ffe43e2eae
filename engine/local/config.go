package local

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

const (
	defaultPartitionSize = 128
	modelCacheSize       = 16
)

// Options configures a local Engine. Zero-valued fields fall back to
// defaults when the Engine is created.
type Options struct {
	PartitionSize int         `yaml:"partition_size"` // rows per dataset partition
	Parallelism   int         `yaml:"parallelism"`    // concurrent partition workers per operation
	Logger        *zap.Logger `yaml:"-"`              // structured logger; Nop when unset
}

// LoadOptions reads engine Options from a YAML file
func LoadOptions(path string) (*Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	opts := &Options{}
	if err := yaml.Unmarshal(raw, opts); err != nil {
		return nil, fmt.Errorf("parsing engine options %s: %w", path, err)
	}
	return opts, nil
}
