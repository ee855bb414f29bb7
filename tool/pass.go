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
	"github.com/nlnwa/warcat"
	"github.com/pkg/errors"
)

// Pass loads each archive and writes it back out, a round-trip through the
// record model. Archives are read in preserve-block mode so output is byte
// identical to input.
func Pass(c Config, filenames []string) error {
	for _, filename := range filenames {
		var opts []warcat.OpenOption
		if c.ForceReadGzip {
			opts = append(opts, warcat.WithForceGzip())
		}
		warc := &warcat.WARC{}
		if err := warc.Load(filename, opts...); err != nil {
			return errors.Wrapf(err, "loading %s", filename)
		}
		if _, err := warc.WriteTo(c.Out); err != nil {
			return errors.Wrapf(err, "writing %s", filename)
		}
	}
	return nil
}
