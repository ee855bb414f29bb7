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
	log "github.com/sirupsen/logrus"
)

// Verify checks every record of the input archives against the WARC
// specification, including block and payload digests. Problems are logged;
// if any were found the returned error is a ProblemsError carrying the
// count.
func Verify(c Config, filenames []string) error {
	verifier := warcat.NewVerifier()
	r := &runner{Config: c}

	err := r.process(filenames, func(record *warcat.Record) error {
		for _, problem := range verifier.VerifyRecord(record) {
			log.Warnf("%s: %s", record.RecordID(), problem)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if verifier.Count() > 0 {
		return &ProblemsError{Problems: verifier.Count()}
	}
	return nil
}
