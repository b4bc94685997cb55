package main

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/luachunk/chunk"
	"github.com/wippyai/luachunk/errors"
	"github.com/wippyai/luachunk/export"
)

// defaultConfigFile is read from the working directory when -config is
// not given. A missing default file is not an error.
const defaultConfigFile = "luachunk.toml"

// Config is the luachunk.toml layout. Command line flags override it.
type Config struct {
	Output OutputConfig `toml:"output"`
	Decode DecodeConfig `toml:"decode"`
	Log    LogConfig    `toml:"log"`
}

type OutputConfig struct {
	Format string `toml:"format"`
	Full   bool   `toml:"full"`
}

type DecodeConfig struct {
	Strings       string `toml:"strings"`
	Validate      bool   `toml:"validate"`
	AllowTrailing bool   `toml:"allow-trailing"`
	MaxDepth      int    `toml:"max-depth"`
}

type LogConfig struct {
	Verbose bool `toml:"verbose"`
}

func defaultConfig() *Config {
	return &Config{
		Output: OutputConfig{Format: string(export.FormatList)},
		Decode: DecodeConfig{Strings: chunk.StringsLua.String(), MaxDepth: chunk.DefaultMaxDepth},
	}
}

// loadConfig reads the config file at path, or the default file if path
// is empty. Keys missing from the file keep their defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Load("cannot read "+path, err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Load("parse error in "+path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Load("unknown key "+undecoded[0].String()+" in "+path, nil)
	}
	return cfg, nil
}

// options converts the decode section to chunk options.
func (c *Config) options() (chunk.Options, error) {
	strs, err := chunk.ParseStringFormat(c.Decode.Strings)
	if err != nil {
		return chunk.Options{}, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "decode.strings")
	}
	opts := chunk.DefaultOptions()
	opts.Strings = strs
	opts.Validate = c.Decode.Validate
	opts.AllowTrailing = c.Decode.AllowTrailing
	if c.Decode.MaxDepth > 0 {
		opts.MaxDepth = c.Decode.MaxDepth
	}
	return opts, nil
}

func (c *Config) format() (export.Format, error) {
	return export.ParseFormat(c.Output.Format)
}
