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

package warcat

import (
	"fmt"
	"strings"
)

// Problem is a violation of the WARC specification found by a Verifier.
type Problem struct {
	// Message describes the violation.
	Message string
	// Section is the ISO 28500 section the violated rule comes from, or
	// "" for rules without one.
	Section string
	// Major marks violations of mandatory rules; minor problems are
	// advisory.
	Major bool
}

func (p Problem) String() string {
	severity := "minor"
	if p.Major {
		severity = "major"
	}
	if p.Section != "" {
		return fmt.Sprintf("%s (%s, ISO 28500 §%s)", p.Message, severity, p.Section)
	}
	return fmt.Sprintf("%s (%s)", p.Message, severity)
}

// mandatoryFields must be present on every record.
var mandatoryFields = []string{WarcRecordID, ContentLength, WarcDate, WarcType}

// Verifier checks records against the WARC specification. Record id
// uniqueness and WARC-Concurrent-To ordering are tracked across every record
// given to VerifyRecord, so one Verifier verifies one archive.
type Verifier struct {
	seenIDs map[string]bool
	// Problems accumulates the problems of all verified records.
	Problems []Problem
}

func NewVerifier() *Verifier {
	return &Verifier{seenIDs: map[string]bool{}}
}

// Count returns the number of accumulated problems.
func (v *Verifier) Count() int {
	return len(v.Problems)
}

// VerifyRecord checks a single record and returns its problems. The
// problems are also added to v.Problems.
func (v *Verifier) VerifyRecord(r *Record) []Problem {
	var problems []Problem
	report := func(major bool, section string, format string, args ...interface{}) {
		problems = append(problems, Problem{
			Message: fmt.Sprintf(format, args...),
			Section: section,
			Major:   major,
		})
	}

	fields := r.Header.Fields
	recordType := strings.ToLower(r.Type())

	for _, name := range mandatoryFields {
		if !fields.Has(name) {
			report(true, "", "missing mandatory field %s", name)
		}
	}

	recordID := r.RecordID()
	if strings.ContainsAny(recordID, " \t\r\n") {
		report(true, "5.2", "record id %q contains whitespace", recordID)
	}
	if recordID != "" {
		if v.seenIDs[recordID] {
			report(true, "", "duplicate record id %q", recordID)
		}
		v.seenIDs[recordID] = true
	}

	v.verifyDigests(r, report)

	length, _ := r.ContentLength()
	if recordType == Continuation && length > 0 && !fields.Has(ContentType) {
		report(false, "5.6", "continuation record with content should declare %s", ContentType)
	}

	if fields.Has(WarcConcurrentTo) {
		switch recordType {
		case Warcinfo, Conversion, Continuation:
			report(true, "5.7", "%s not allowed on %s record", WarcConcurrentTo, recordType)
		}
		for _, target := range fields.GetAll(WarcConcurrentTo) {
			if !v.seenIDs[target] {
				report(false, "", "%s target %q does not precede this record", WarcConcurrentTo, target)
			}
		}
	}

	if fields.Has(WarcRefersTo) {
		switch recordType {
		case Warcinfo, Response, Request, Continuation:
			report(true, "5.11", "%s not allowed on %s record", WarcRefersTo, recordType)
		}
	}

	switch recordType {
	case Response, Resource, Request, Revisit, Conversion, Continuation:
		if !fields.Has(WarcTargetURI) {
			report(true, "5.12", "%s record requires %s", recordType, WarcTargetURI)
		}
	}
	if uri := fields.Get(WarcTargetURI); strings.ContainsAny(uri, " \t\r\n") {
		report(true, "5.12", "target uri %q contains whitespace", uri)
	}

	if fields.Has(WarcFilename) && recordType != Warcinfo {
		report(true, "5.15", "%s only allowed on warcinfo records", WarcFilename)
	}

	if fields.Has(WarcWarcinfoID) && recordType == Warcinfo {
		report(true, "5.14", "%s not allowed on warcinfo records", WarcWarcinfoID)
	}

	if recordType == Revisit && !fields.Has(WarcProfile) {
		report(true, "5.16", "revisit record requires %s", WarcProfile)
	}

	if recordType == Continuation {
		if !fields.Has(WarcSegmentOriginID) {
			report(true, "5.19", "continuation record requires %s", WarcSegmentOriginID)
		}
		if !fields.Has(WarcSegmentTotalLength) {
			report(true, "5.20", "continuation record requires %s", WarcSegmentTotalLength)
		}
	} else {
		if fields.Has(WarcSegmentOriginID) {
			report(true, "5.19", "%s only allowed on continuation records", WarcSegmentOriginID)
		}
		if fields.Has(WarcSegmentTotalLength) {
			report(true, "5.20", "%s only allowed on continuation records", WarcSegmentTotalLength)
		}
	}

	v.Problems = append(v.Problems, problems...)
	return problems
}

func (v *Verifier) verifyDigests(r *Record, report func(bool, string, string, ...interface{})) {
	if r.Header.Fields.Has(WarcBlockDigest) {
		ok, err := VerifyBlockDigest(r)
		if err != nil {
			report(true, "5.8", "cannot verify block digest: %v", err)
		} else if !ok {
			report(true, "5.8", "block digest mismatch")
		}
	}
	// A payload is only defined for parsed blocks; in preserve-block mode
	// there is nothing to check the payload digest against.
	if _, ok := r.ContentBlock.(*BlockWithPayload); ok && r.Header.Fields.Has(WarcPayloadDigest) {
		ok, err := VerifyPayloadDigest(r)
		if err != nil {
			report(true, "5.9", "cannot verify payload digest: %v", err)
		} else if !ok {
			report(true, "5.9", "payload digest mismatch")
		}
	}
}
