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

package tool

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nlnwa/warcat"
	"github.com/prometheus/tsdb/fileutil"
	log "github.com/sirupsen/logrus"
)

// openFileSuffix marks output files still being written. The suffix is
// removed when the file is complete.
const openFileSuffix = ".open"

// Split writes each record of the input archives to a file of its own in
// OutDir, named <stem>.<8 digit order>.warc with a .gz suffix when output
// compression is on.
func Split(c Config, filenames []string) error {
	r := &runner{Config: c}
	return r.process(filenames, func(record *warcat.Record) error {
		name := fmt.Sprintf("%s.%08d.warc",
			warcat.StripWARCExtension(filepath.Base(r.currentFilename)),
			r.recordOrder)
		if c.WriteGzip {
			name += ".gz"
		}
		path := filepath.Join(c.OutDir, name)

		if err := writeRecordFile(path, record, c.WriteGzip); err != nil {
			return err
		}
		if r.numRecords%1000 == 0 {
			log.Infof("wrote %d records so far", r.numRecords)
		}
		return nil
	})
}

func writeRecordFile(path string, record *warcat.Record, compress bool) error {
	f, err := os.OpenFile(path+openFileSuffix, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0666)
	if err != nil {
		return err
	}

	if compress {
		gz := gzip.NewWriter(f)
		_, err = record.WriteTo(gz)
		if err == nil {
			err = gz.Close()
		}
	} else {
		_, err = record.WriteTo(f)
	}
	if e := f.Close(); err == nil {
		err = e
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	return fileutil.Rename(f.Name(), path)
}
