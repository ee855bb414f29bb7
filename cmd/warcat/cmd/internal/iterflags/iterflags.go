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

// Package iterflags defines the flags shared by the record iterating
// subcommands and their translation to a tool.Config.
package iterflags

import (
	"os"

	"github.com/nlnwa/warcat/tool"
	"github.com/spf13/cobra"
)

type Conf struct {
	Output        string
	Gzip          bool
	ForceReadGzip bool
	RecordIDs     []string
	PreserveBlock bool
	OutputDir     string
	Progress      bool
	KeepGoing     bool
}

// AddFlags registers the shared flags on cmd.
func (c *Conf) AddFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&c.Output, "output", "o", "", "output to FILE instead of standard out")
	f.BoolVarP(&c.Gzip, "gzip", "z", false, "use gzip compression when outputting")
	f.BoolVar(&c.ForceReadGzip, "force-read-gzip", false, "force reading archives as gzip compressed instead of guessing by filename")
	f.StringArrayVar(&c.RecordIDs, "record", nil, "apply command to record with given ID when reading, can be used more than once")
	f.BoolVar(&c.PreserveBlock, "preserve-block", false, "don't attempt to parse content blocks; parsed content blocks may not match content-length and hash digests on serialization")
	f.StringVarP(&c.OutputDir, "output-dir", "d", ".", "for output operations that make multiple files, use given directory instead of the current working directory")
	f.BoolVar(&c.Progress, "progress", false, "show progress or activity")
	f.BoolVar(&c.KeepGoing, "keep-going", false, "continue processing records despite errors")
}

// ToolConfig builds the tool configuration, opening the output file when one
// is set. The returned function closes the output.
func (c *Conf) ToolConfig() (tool.Config, func() error, error) {
	cfg := tool.Config{
		Out:           os.Stdout,
		WriteGzip:     c.Gzip,
		ForceReadGzip: c.ForceReadGzip,
		RecordIDs:     c.RecordIDs,
		PreserveBlock: c.PreserveBlock,
		OutDir:        c.OutputDir,
		Progress:      c.Progress,
		KeepGoing:     c.KeepGoing,
	}
	closeOut := func() error { return nil }
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return cfg, nil, err
		}
		cfg.Out = f
		closeOut = f.Close
	}
	return cfg, closeOut, nil
}
