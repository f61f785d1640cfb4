package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"fser/persist/bin"
	"fser/persist/ini"
	"fser/persist/jsondoc"
	"fser/persist/xmldoc"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	StorageConfig struct {
		BaseDir string `yaml:"base_dir"`
	}

	JSONConfig struct {
		Indent   int  `yaml:"indent" validate:"min=0,max=16"`
		Comments bool `yaml:"comments"`
	}

	XMLConfig struct {
		Indent int `yaml:"indent" validate:"min=0,max=16"`
	}

	INIConfig struct {
		Codepage string `yaml:"codepage" validate:"required"`
	}

	BINConfig struct {
		ByteOrder ByteOrder `yaml:"byte_order" validate:"gte=0"`
	}

	FormatsConfig struct {
		JSON JSONConfig `yaml:"json"`
		XML  XMLConfig  `yaml:"xml"`
		INI  INIConfig  `yaml:"ini"`
		BIN  BINConfig  `yaml:"bin"`
	}

	Config struct {
		Version int           `yaml:"version" validate:"eq=1"`
		Storage StorageConfig `yaml:"storage"`
		Formats FormatsConfig `yaml:"formats"`
		Logging LoggingConfig `yaml:"logging"`
	}
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
		if _, err := cfg.Formats.INI.Encoding(); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration tamplate to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}

// Encoding resolves configured codepage, nil stands for UTF-8.
func (c *INIConfig) Encoding() (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(c.Codepage)
	if err != nil {
		return nil, fmt.Errorf("unknown codepage '%s': %w", c.Codepage, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("codepage '%s' is not supported", c.Codepage)
	}
	if name, _ := ianaindex.IANA.Name(enc); name == "UTF-8" {
		return nil, nil
	}
	return enc, nil
}

// Adapter option builders below let programs embedding fser configure
// every adapter from the same configuration file.

func (conf *Config) JSONOptions() []jsondoc.Option {
	return []jsondoc.Option{
		jsondoc.WithIndent(conf.Formats.JSON.Indent),
		jsondoc.WithComments(conf.Formats.JSON.Comments),
		jsondoc.WithBaseDir(conf.Storage.BaseDir),
	}
}

func (conf *Config) XMLOptions() []xmldoc.Option {
	return []xmldoc.Option{
		xmldoc.WithIndent(conf.Formats.XML.Indent),
		xmldoc.WithBaseDir(conf.Storage.BaseDir),
	}
}

// INIOptions fails when configured codepage is unknown, command line ini
// commands start from these options.
func (conf *Config) INIOptions() ([]ini.Option, error) {
	enc, err := conf.Formats.INI.Encoding()
	if err != nil {
		return nil, err
	}
	return []ini.Option{
		ini.WithCodepage(enc),
		ini.WithBaseDir(conf.Storage.BaseDir),
	}, nil
}

func (conf *Config) BINOptions() []bin.Option {
	return []bin.Option{
		bin.WithByteOrder(conf.Formats.BIN.ByteOrder.Order()),
		bin.WithBaseDir(conf.Storage.BaseDir),
	}
}
