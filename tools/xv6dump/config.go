// Copyright 2026 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"gvisor.dev/xv6dump/pkg/xv6/dump"
)

const envPrefix = "XV6DUMP"

// Config holds the settings shared by every command.
//
// Values are layered: defaults, then the TOML config file, then XV6DUMP_*
// environment variables, then flags given on the command line.
type Config struct {
	// Image is the path of the filesystem image.
	Image string `toml:"image" envconfig:"IMAGE"`

	// PreviewLen is the number of bytes previewed per data block.
	PreviewLen int `toml:"preview" envconfig:"PREVIEW"`

	// LogPreviewLen is the number of bytes previewed per log slot.
	LogPreviewLen int `toml:"log_preview" envconfig:"LOG_PREVIEW"`

	// Format is the output format, text or yaml.
	Format string `toml:"format" envconfig:"FORMAT"`

	// Mmap maps the image into memory instead of reading it.
	Mmap bool `toml:"mmap" envconfig:"MMAP"`

	// DirectOnly lists only the direct blocks of directories.
	DirectOnly bool `toml:"dir_direct_only" envconfig:"DIR_DIRECT_ONLY"`

	// Debug enables debug logging.
	Debug bool `toml:"debug" envconfig:"DEBUG"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Image:         "fs.img",
		PreviewLen:    dump.DefaultPreviewLen,
		LogPreviewLen: dump.DefaultLogPreviewLen,
		Format:        "text",
	}
}

// RegisterFlags registers a flag for every field of Config on f, storing
// parsed values in c.
func RegisterFlags(f *flag.FlagSet, c *Config) {
	d := DefaultConfig()
	f.StringVar(&c.Image, "image", d.Image, "path to the xv6 filesystem image.")
	f.IntVar(&c.PreviewLen, "preview", d.PreviewLen, "bytes previewed per data block.")
	f.IntVar(&c.LogPreviewLen, "log-preview", d.LogPreviewLen, "bytes previewed per log block.")
	f.StringVar(&c.Format, "format", d.Format, "output format (text, yaml).")
	f.BoolVar(&c.Mmap, "mmap", d.Mmap, "map the image into memory instead of reading it.")
	f.BoolVar(&c.DirectOnly, "dir-direct-only", d.DirectOnly, "list directory entries from direct blocks only.")
	f.BoolVar(&c.Debug, "debug", d.Debug, "enable debug logging.")
}

// LoadConfig builds the configuration. path names a TOML file; if empty,
// XV6DUMP_CONFIG is consulted and a missing setting means no file. Only the
// flags explicitly set on f are copied from flags.
func LoadConfig(path string, f *flag.FlagSet, flags *Config) (*Config, error) {
	c := DefaultConfig()
	if path == "" {
		path = os.Getenv(envPrefix + "_CONFIG")
	}
	if path != "" {
		md, err := toml.DecodeFile(path, c)
		if err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown keys in config file %q: %v", path, undecoded)
		}
	}
	if err := envconfig.Process(envPrefix, c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "image":
			c.Image = flags.Image
		case "preview":
			c.PreviewLen = flags.PreviewLen
		case "log-preview":
			c.LogPreviewLen = flags.LogPreviewLen
		case "format":
			c.Format = flags.Format
		case "mmap":
			c.Mmap = flags.Mmap
		case "dir-direct-only":
			c.DirectOnly = flags.DirectOnly
		case "debug":
			c.Debug = flags.Debug
		}
	})
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.Image == "" {
		return fmt.Errorf("missing required configuration: image / %s_IMAGE", envPrefix)
	}
	if err := dump.CheckFormat(c.Format); err != nil {
		return err
	}
	opts := c.DumpOptions()
	return opts.Validate()
}

// DumpOptions returns the report options selected by c.
func (c *Config) DumpOptions() dump.Options {
	return dump.Options{
		PreviewLen:    c.PreviewLen,
		LogPreviewLen: c.LogPreviewLen,
		DirectOnly:    c.DirectOnly,
	}
}
