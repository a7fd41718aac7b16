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

// Binary xv6dump prints diagnostic dumps of xv6 filesystem images.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"
)

var configPath = flag.String("config", "", "path to a TOML config file. Defaults to $XV6DUMP_CONFIG.")

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&fsCmd{out: os.Stdout}, "")
	subcommands.Register(&logCmd{out: os.Stdout}, "")
	subcommands.Register(&sbCmd{out: os.Stdout}, "")

	var flags Config
	RegisterFlags(flag.CommandLine, &flags)
	flag.Parse()

	conf, err := LoadConfig(*configPath, flag.CommandLine, &flags)
	if err != nil {
		log.Fatalf("Loading configuration: %v", err)
	}
	setupLogging(conf)
	os.Exit(int(subcommands.Execute(context.Background(), conf)))
}

// setupLogging sends logs to stderr, keeping stdout for reports.
func setupLogging(conf *Config) {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)
	if conf.Debug {
		log.SetLevel(log.DebugLevel)
	}
	log.Debugf("Configuration: %+v", *conf)
}
