// Package config loads the command line configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/honeybbq/rosreconcile/internal/logging"
	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
	"github.com/honeybbq/rosreconcile/pkg/reconcile"
)

// Target formats.
const (
	FormatNative           = "native"
	FormatNetJSONOpenWrt   = "netjson-openwrt"
	FormatNetJSONWireguard = "netjson-wireguard"
	FormatNetJSONVxlan     = "netjson-vxlan"
	FormatNetJSONOpenVPN   = "netjson-openvpn"
)

const (
	EnvDeviceVersion = "ROSRECONCILE_DEVICE_VERSION"
	EnvOrphans       = "ROSRECONCILE_ORPHANS"
)

// Rename is an explicit reference rename applied to the target before
// diffing.
type Rename struct {
	Kind string `yaml:"kind" toml:"kind"`
	Old  string `yaml:"old" toml:"old"`
	New  string `yaml:"new" toml:"new"`
}

// Config is the file form of the command line options.
type Config struct {
	// Targets are layered in order, later files override earlier ones.
	Targets []string `yaml:"targets" toml:"targets"`
	Format  string   `yaml:"format" toml:"format"`
	// Current is an exported script describing the device state.
	Current string `yaml:"current" toml:"current"`
	// PreviousTarget enables rename detection against the last applied target.
	PreviousTarget string         `yaml:"previous_target" toml:"previous_target"`
	Output         string         `yaml:"output" toml:"output"`
	Orphans        string         `yaml:"orphans" toml:"orphans"`
	DeviceVersion  string         `yaml:"device_version" toml:"device_version"`
	Renames        []Rename       `yaml:"renames" toml:"renames"`
	GenerationTag  string         `yaml:"generation_tag" toml:"generation_tag"`
	Graph          string         `yaml:"graph" toml:"graph"`
	Strict         bool           `yaml:"strict" toml:"strict"`
	Logging        logging.Config `yaml:"logging" toml:"logging"`
}

// Default returns a configuration with every optional field filled.
func Default() *Config {
	return &Config{
		Format:  FormatNative,
		Output:  "-",
		Orphans: reconcile.OrphanIgnore.String(),
		Logging: logging.DefaultConfig(),
	}
}

// Load reads a YAML or TOML file (by extension), applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, nxerrors.New(nxerrors.KindValidation, fmt.Errorf("parsing config file: %w", err))
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, nxerrors.New(nxerrors.KindValidation, fmt.Errorf("parsing config file: %w", err))
		}
	}

	base := filepath.Dir(path)
	for i, t := range cfg.Targets {
		cfg.Targets[i] = resolve(base, t)
	}
	cfg.Current = resolve(base, cfg.Current)
	cfg.PreviousTarget = resolve(base, cfg.PreviousTarget)

	ApplyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolve(base, p string) string {
	if p == "" || p == "-" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// ApplyEnv applies environment overrides, including the logging ones.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvDeviceVersion)); v != "" {
		cfg.DeviceVersion = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOrphans)); v != "" {
		cfg.Orphans = v
	}
	logging.ApplyEnv(&cfg.Logging)
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if len(c.Targets) == 0 {
		errs = append(errs, "at least one target is required")
	}
	switch c.Format {
	case FormatNative, FormatNetJSONOpenWrt, FormatNetJSONWireguard, FormatNetJSONVxlan, FormatNetJSONOpenVPN:
	default:
		errs = append(errs, fmt.Sprintf("format %q is not supported", c.Format))
	}
	if _, err := reconcile.ParseOrphanPolicy(c.Orphans); err != nil {
		errs = append(errs, fmt.Sprintf("orphans %q must be ignore or remove", c.Orphans))
	}
	if c.DeviceVersion != "" {
		if _, err := semver.NewVersion(c.DeviceVersion); err != nil {
			errs = append(errs, fmt.Sprintf("device_version %q: %v", c.DeviceVersion, err))
		}
	}
	switch c.Graph {
	case "", "dot", "mermaid":
	default:
		errs = append(errs, fmt.Sprintf("graph %q must be dot or mermaid", c.Graph))
	}
	for i, r := range c.Renames {
		if r.Kind == "" || r.Old == "" || r.New == "" {
			errs = append(errs, fmt.Sprintf("renames[%d] needs kind, old and new", i))
		}
	}
	if c.Logging.Level != "" && !logging.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Sprintf("logging.level %q is not a level", c.Logging.Level))
	}

	if len(errs) > 0 {
		return nxerrors.New(nxerrors.KindValidation, fmt.Errorf("configuration errors: %s", strings.Join(errs, "; ")))
	}
	return nil
}

// Version parses DeviceVersion, nil when unset.
func (c *Config) Version() *semver.Version {
	if c.DeviceVersion == "" {
		return nil
	}
	v, err := semver.NewVersion(c.DeviceVersion)
	if err != nil {
		return nil
	}
	return v
}

// OrphanPolicy returns the parsed orphan policy.
func (c *Config) OrphanPolicy() reconcile.OrphanPolicy {
	p, _ := reconcile.ParseOrphanPolicy(c.Orphans)
	return p
}
