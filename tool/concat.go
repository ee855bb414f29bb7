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

	"github.com/nlnwa/warcat"
	log "github.com/sirupsen/logrus"
)

// Concat streams the records of every input archive to a single output.
// With WriteGzip each record is wrapped in a gzip member of its own, which
// is the per record compression layout of ISO 28500 annex D.
func Concat(c Config, filenames []string) error {
	var bytesWritten int64
	r := &runner{Config: c}
	return r.process(filenames, func(record *warcat.Record) error {
		var n int64
		var err error
		if c.WriteGzip {
			gz := gzip.NewWriter(c.Out)
			n, err = record.WriteTo(gz)
			if err == nil {
				err = gz.Close()
			}
		} else {
			n, err = record.WriteTo(c.Out)
		}
		if err != nil {
			return err
		}
		bytesWritten += n

		if r.numRecords%1000 == 0 {
			log.Infof("wrote %d records (%d bytes) so far", r.numRecords, bytesWritten)
		}
		return nil
	})
}
