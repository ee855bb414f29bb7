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
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/nlnwa/warcat"
)

// List prints a multi line summary of every record in the given archives.
func List(c Config, filenames []string) error {
	r := &runner{Config: c}
	return r.process(filenames, func(record *warcat.Record) error {
		size, _ := record.ContentLength()
		var date string
		if d, err := record.Date(); err == nil {
			date = d.Format(time.RFC3339)
		} else {
			date = record.Header.Fields.Get(warcat.WarcDate)
		}

		fmt.Fprintf(c.Out, "Record: %s\n", color.CyanString(record.RecordID()))
		fmt.Fprintf(c.Out, "  Order: %d\n", r.numRecords)
		fmt.Fprintf(c.Out, "  File offset: %d\n", record.FileOffset)
		fmt.Fprintf(c.Out, "  Type: %s\n", record.Type())
		fmt.Fprintf(c.Out, "  Date: %s\n", date)
		fmt.Fprintf(c.Out, "  Size: %d\n", size)
		return nil
	})
}
