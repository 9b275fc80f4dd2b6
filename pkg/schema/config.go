package schema

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/topotab/topotab/pkg/errors"
)

// validate is the shared validator instance. validator caches struct
// metadata, so a single instance is reused across loads.
var validate = validator.New()

// =============================================================================
// Config
// =============================================================================

// Config controls column classification, label parsing, and diagram styling.
// All fields have working defaults; a config file overrides selectively.
type Config struct {
	// SourcePrefixes mark source-endpoint columns, checked in order.
	SourcePrefixes []string `toml:"source_prefixes" yaml:"source_prefixes" validate:"min=1,dive,min=1"`

	// TargetPrefixes mark target-endpoint columns, checked in order.
	TargetPrefixes []string `toml:"target_prefixes" yaml:"target_prefixes" validate:"min=1,dive,min=1"`

	// Columns is the output column order. Empty means DefaultColumns.
	Columns []string `toml:"columns" yaml:"columns"`

	// PortKeywords maps canonical port fields to the label keywords that
	// introduce them on edge labels.
	PortKeywords map[string][]string `toml:"port_keywords" yaml:"port_keywords"`

	// Encoding selects table output encoding: utf-8, utf-8-sig, gbk, or
	// universal (both).
	Encoding string `toml:"encoding" yaml:"encoding" validate:"omitempty,oneof=utf-8 utf8 utf-8-sig gbk universal auto"`

	// Styles are the mxGraph style strings applied when writing diagrams.
	Styles StyleConfig `toml:"styles" yaml:"styles"`
}

// StyleConfig holds the mxGraph style strings for generated cells.
type StyleConfig struct {
	Region    string `toml:"region" yaml:"region"`
	Device    string `toml:"device" yaml:"device"`
	Edge      string `toml:"edge" yaml:"edge"`
	EdgeLabel string `toml:"edge_label" yaml:"edge_label"`
}

// Default mxGraph styles for generated diagrams.
const (
	defaultRegionStyle = "swimlane;fontStyle=1;align=center;verticalAlign=top;horizontal=1;" +
		"startSize=40;collapsible=0;marginBottom=0;fillColor=#fff2cc;strokeColor=#d6b656;fontSize=18;"
	defaultDeviceStyle = "rounded=1;whiteSpace=wrap;html=1;fillColor=#dae8fc;strokeColor=#6c8ebf;fontSize=16;"
	defaultEdgeStyle   = "edgeStyle=orthogonalEdgeStyle;rounded=0;orthogonalLoop=1;jettySize=auto;" +
		"html=1;strokeColor=#000000;orthogonal=1;endArrow=classic;endFill=1;"
	defaultEdgeLabelStyle = "edgeLabel;html=1;align=center;verticalAlign=middle;resizable=0;points=[];fontSize=12;"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SourcePrefixes: []string{"源-", "src-", "source-", "from-"},
		TargetPrefixes: []string{"目标-", "dst-", "target-", "to-", "dest-"},
		Columns:        append([]string(nil), DefaultColumns...),
		PortKeywords: map[string][]string{
			FieldPortChannel: {"port-channel", "portchannel", "pc号", "po"},
			FieldInterface:   {"物理接口", "interface", "接口", "eth", "port"},
			FieldVRF:         {"vrf", "所属vrf"},
			FieldVLAN:        {"vlan", "所属vlan"},
			FieldInterfaceIP: {"接口ip", "ip"},
		},
		Encoding: "universal",
		Styles: StyleConfig{
			Region:    defaultRegionStyle,
			Device:    defaultDeviceStyle,
			Edge:      defaultEdgeStyle,
			EdgeLabel: defaultEdgeLabelStyle,
		},
	}
}

// Load reads a configuration file (TOML or YAML by extension), overlays it on
// the defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse TOML config %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse YAML config %s", path)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q (expected .toml, .yaml, or .yml)", filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks structural constraints and the encoding name.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid configuration")
	}
	if c.Encoding != "" {
		if err := errors.ValidateEncodingName(c.Encoding); err != nil {
			return err
		}
	}
	for _, col := range c.Columns {
		if err := errors.ValidateColumnName(col); err != nil {
			return err
		}
	}
	return nil
}

// Schema returns the output schema implied by the configured column order.
func (c *Config) Schema() *Schema {
	cols := c.Columns
	if len(cols) == 0 {
		cols = DefaultColumns
	}
	return FromHeader(cols, c)
}
