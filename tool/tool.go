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

// Package tool implements the drivers behind the warcat subcommands: the
// record iteration loop shared by all of them and the list, pass, concat,
// split, extract and verify operations.
package tool

import (
	"fmt"
	"io"

	"github.com/nlnwa/warcat"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	log "github.com/sirupsen/logrus"
)

// Config holds the options shared by the tools.
type Config struct {
	// Out receives archive data for tools writing to a single output.
	Out io.Writer
	// WriteGzip gzip compresses written output. Concat wraps each record
	// in its own gzip member; split compresses each output file.
	WriteGzip bool
	// ForceReadGzip reads archives as gzip regardless of file name.
	ForceReadGzip bool
	// RecordIDs, when non-empty, restricts processing to records whose id
	// is in the list.
	RecordIDs []string
	// PreserveBlock skips content block parsing so records round-trip
	// byte for byte.
	PreserveBlock bool
	// OutDir is the directory used by tools writing multiple files.
	OutDir string
	// Progress enables terminal activity reporting.
	Progress bool
	// KeepGoing logs per-record action errors and continues instead of
	// aborting.
	KeepGoing bool
}

// ProblemsError is returned by Verify when an archive has verification
// problems.
type ProblemsError struct {
	Problems int
}

func (e *ProblemsError) Error() string {
	return fmt.Sprintf("validation failed, problems: %d", e.Problems)
}

// runner drives a per-record action over a list of archive files.
type runner struct {
	Config
	numRecords      int
	recordOrder     int
	currentFilename string
	spinner         *pterm.SpinnerPrinter
}

func (r *runner) process(filenames []string, action func(*warcat.Record) error) error {
	if r.Progress {
		r.spinner, _ = pterm.DefaultSpinner.Start("Processing")
		defer func() {
			if r.spinner != nil {
				_ = r.spinner.Stop()
			}
		}()
	}

	for _, filename := range filenames {
		if err := r.processFile(filename, action); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) processFile(filename string, action func(*warcat.Record) error) error {
	r.recordOrder = 0
	r.currentFilename = filename

	var opts []warcat.OpenOption
	if r.ForceReadGzip {
		opts = append(opts, warcat.WithForceGzip())
	}
	f, err := warcat.Open(filename, opts...)
	if err != nil {
		return errors.Wrapf(err, "opening %s", filename)
	}
	defer func() { _ = f.Close() }()

	for {
		record, hasMore, err := warcat.ReadRecord(f, r.PreserveBlock)
		if err != nil {
			return errors.Wrapf(err, "reading %s", filename)
		}

		if r.skip(record) {
			log.Debugf("skipping %s due to filter", record.RecordID())
		} else if err := action(record); err != nil {
			if !r.KeepGoing {
				return errors.Wrapf(err, "processing record %s in %s", record.RecordID(), filename)
			}
			log.Errorf("processing record %s in %s: %v", record.RecordID(), filename, err)
		}

		if !hasMore {
			break
		}
		r.recordOrder++
		r.numRecords++
		if r.spinner != nil && r.numRecords%100 == 0 {
			r.spinner.UpdateText(fmt.Sprintf("%s: %d records", filename, r.numRecords))
		}
	}
	return nil
}

func (r *runner) skip(record *warcat.Record) bool {
	if len(r.RecordIDs) == 0 {
		return false
	}
	id := record.RecordID()
	for _, want := range r.RecordIDs {
		if id == want {
			return false
		}
	}
	return true
}
