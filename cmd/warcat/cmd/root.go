/*
 * Copyright 2021 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cmd

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/nlnwa/warcat"
	"github.com/nlnwa/warcat/cmd/warcat/cmd/concat"
	"github.com/nlnwa/warcat/cmd/warcat/cmd/extract"
	"github.com/nlnwa/warcat/cmd/warcat/cmd/list"
	"github.com/nlnwa/warcat/cmd/warcat/cmd/pass"
	"github.com/nlnwa/warcat/cmd/warcat/cmd/split"
	"github.com/nlnwa/warcat/cmd/warcat/cmd/verify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type conf struct {
	cfgFile  string
	logLevel string
	verbose  int
}

// NewCommand returns a new cobra.Command implementing the root command for
// warcat
func NewCommand() *cobra.Command {
	c := &conf{}
	cmd := &cobra.Command{
		Use:     "warcat",
		Short:   "A tool for handling Web ARChive (WARC) files",
		Long:    ``,
		Version: warcat.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(c.logLevel)
			if err != nil {
				return fmt.Errorf("'%s' is not part of the valid levels: 'panic', 'fatal', 'error', 'warn', 'warning', 'info', 'debug', 'trace'", c.logLevel)
			}
			switch {
			case c.verbose >= 2:
				level = log.DebugLevel
			case c.verbose == 1:
				level = log.InfoLevel
			}
			log.SetLevel(level)
			return nil
		},
		SilenceUsage: true,
	}

	cobra.OnInitialize(func() { c.initConfig() })

	// Flags
	cmd.PersistentFlags().StringVarP(&c.logLevel, "log-level", "l", "warning", "fatal, error, warn, info, debug or trace")
	cmd.PersistentFlags().CountVarP(&c.verbose, "verbose", "v", "increase verbosity, can be used more than once")
	cmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file. If not set, /etc/warcat/, $HOME/.warcat/ and current working dir will be searched for file config.yaml")
	if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		log.Fatalf("Failed to bind flags: %v", err)
	}

	// Subcommands
	cmd.AddCommand(list.NewCommand())
	cmd.AddCommand(pass.NewCommand())
	cmd.AddCommand(concat.NewCommand())
	cmd.AddCommand(split.NewCommand())
	cmd.AddCommand(extract.NewCommand())
	cmd.AddCommand(verify.NewCommand())

	return cmd
}

// initConfig reads in config file and ENV variables if set.
func (c *conf) initConfig() {
	viper.SetTypeByDefaultValue(true)

	viper.AutomaticEnv() // read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if c.cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(c.cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("/etc/warcat/")
		viper.AddConfigPath("$HOME/.warcat")
		viper.AddConfigPath(".")
	}

	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Infof("Config file changed: %s", e.Name)
	})

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("Failed to read config file: %v", err)
		}
	}
}
