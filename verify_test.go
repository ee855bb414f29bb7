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
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRecordCount int

func newTestRecord(recordType string, extra ...*NameValue) *Record {
	testRecordCount++
	header := NewHeader()
	header.Fields.Add(WarcType, recordType)
	header.Fields.Add(WarcRecordID, fmt.Sprintf("<urn:uuid:00000000-0000-0000-0001-%012d>", testRecordCount))
	header.Fields.Add(WarcDate, "2021-04-14T10:00:00Z")
	header.Fields.Add(ContentLength, "0")
	for _, nv := range extra {
		header.Fields.Add(nv.Name, nv.Value)
	}
	return &Record{
		Header:       header,
		ContentBlock: &BinaryBlock{FileRef: FileRef{File: bytes.NewReader(nil), Length: 0}},
	}
}

func problemMessages(problems []Problem) []string {
	var messages []string
	for _, p := range problems {
		messages = append(messages, p.String())
	}
	return messages
}

func TestVerifyValidRecord(t *testing.T) {
	v := NewVerifier()
	problems := v.VerifyRecord(newTestRecord(Warcinfo))
	assert.Empty(t, problems)
	assert.Equal(t, 0, v.Count())
}

func TestVerifyMissingMandatoryFields(t *testing.T) {
	v := NewVerifier()
	record := &Record{Header: NewHeader()}
	problems := v.VerifyRecord(record)

	missing := 0
	for _, p := range problems {
		if p.Major && p.Section == "" {
			missing++
		}
	}
	assert.GreaterOrEqual(t, missing, 4, problemMessages(problems))
}

func TestVerifyRecordIDWhitespace(t *testing.T) {
	v := NewVerifier()
	record := newTestRecord(Metadata)
	record.Header.Fields.Set(WarcRecordID, "<urn:uuid:with space>")
	problems := v.VerifyRecord(record)

	require.Len(t, problems, 1, problemMessages(problems))
	assert.True(t, problems[0].Major)
	assert.Equal(t, "5.2", problems[0].Section)
}

func TestVerifyDuplicateRecordID(t *testing.T) {
	v := NewVerifier()
	first := newTestRecord(Metadata)
	second := newTestRecord(Metadata)
	second.Header.Fields.Set(WarcRecordID, first.RecordID())

	assert.Empty(t, v.VerifyRecord(first))
	problems := v.VerifyRecord(second)
	require.Len(t, problems, 1, problemMessages(problems))
	assert.True(t, problems[0].Major)
}

func TestVerifyConcurrentTo(t *testing.T) {
	v := NewVerifier()

	// forbidden on warcinfo, and the target has not been seen
	record := newTestRecord(Warcinfo, &NameValue{WarcConcurrentTo, "<urn:uuid:unseen>"})
	problems := v.VerifyRecord(record)
	require.Len(t, problems, 2, problemMessages(problems))
	assert.True(t, problems[0].Major)
	assert.Equal(t, "5.7", problems[0].Section)
	assert.False(t, problems[1].Major)

	// allowed on request when the target precedes it
	target := newTestRecord(Response, &NameValue{WarcTargetURI, "http://example.com/"})
	assert.Empty(t, v.VerifyRecord(target))
	req := newTestRecord(Request,
		&NameValue{WarcTargetURI, "http://example.com/"},
		&NameValue{WarcConcurrentTo, target.RecordID()})
	assert.Empty(t, v.VerifyRecord(req))
}

func TestVerifyRefersTo(t *testing.T) {
	v := NewVerifier()
	record := newTestRecord(Response,
		&NameValue{WarcTargetURI, "http://example.com/"},
		&NameValue{WarcRefersTo, "<urn:uuid:other>"})
	problems := v.VerifyRecord(record)
	require.Len(t, problems, 1, problemMessages(problems))
	assert.Equal(t, "5.11", problems[0].Section)

	// allowed on metadata
	v = NewVerifier()
	record = newTestRecord(Metadata, &NameValue{WarcRefersTo, "<urn:uuid:other>"})
	assert.Empty(t, v.VerifyRecord(record))
}

func TestVerifyTargetURIRequired(t *testing.T) {
	for _, recordType := range []string{Response, Resource, Request, Conversion} {
		v := NewVerifier()
		problems := v.VerifyRecord(newTestRecord(recordType))
		require.NotEmpty(t, problems, recordType)
		assert.Equal(t, "5.12", problems[0].Section, recordType)
	}

	// not required on metadata
	v := NewVerifier()
	assert.Empty(t, v.VerifyRecord(newTestRecord(Metadata)))
}

func TestVerifyTargetURIWhitespace(t *testing.T) {
	v := NewVerifier()
	record := newTestRecord(Resource, &NameValue{WarcTargetURI, "http://example.com/a b"})
	problems := v.VerifyRecord(record)
	require.Len(t, problems, 1, problemMessages(problems))
	assert.Equal(t, "5.12", problems[0].Section)
}

func TestVerifyFilenameOnlyOnWarcinfo(t *testing.T) {
	v := NewVerifier()
	record := newTestRecord(Metadata, &NameValue{WarcFilename, "crawl.warc"})
	problems := v.VerifyRecord(record)
	require.Len(t, problems, 1, problemMessages(problems))
	assert.Equal(t, "5.15", problems[0].Section)

	v = NewVerifier()
	record = newTestRecord(Warcinfo, &NameValue{WarcFilename, "crawl.warc"})
	assert.Empty(t, v.VerifyRecord(record))
}

func TestVerifyWarcinfoIDNotOnWarcinfo(t *testing.T) {
	v := NewVerifier()
	record := newTestRecord(Warcinfo, &NameValue{WarcWarcinfoID, "<urn:uuid:info>"})
	problems := v.VerifyRecord(record)
	require.Len(t, problems, 1, problemMessages(problems))
	assert.Equal(t, "5.14", problems[0].Section)

	// expected on other records
	v = NewVerifier()
	record = newTestRecord(Metadata, &NameValue{WarcWarcinfoID, "<urn:uuid:info>"})
	assert.Empty(t, v.VerifyRecord(record))
}

func TestVerifyRevisitProfile(t *testing.T) {
	v := NewVerifier()
	record := newTestRecord(Revisit, &NameValue{WarcTargetURI, "http://example.com/"})
	problems := v.VerifyRecord(record)
	require.Len(t, problems, 1, problemMessages(problems))
	assert.Equal(t, "5.16", problems[0].Section)
}

func TestVerifyContinuationSegmentFields(t *testing.T) {
	v := NewVerifier()
	record := newTestRecord(Continuation, &NameValue{WarcTargetURI, "http://example.com/"})
	problems := v.VerifyRecord(record)
	require.Len(t, problems, 2, problemMessages(problems))
	assert.Equal(t, "5.19", problems[0].Section)
	assert.Equal(t, "5.20", problems[1].Section)

	// segment fields are not allowed elsewhere
	v = NewVerifier()
	other := newTestRecord(Metadata, &NameValue{WarcSegmentOriginID, "<urn:uuid:origin>"})
	problems = v.VerifyRecord(other)
	require.Len(t, problems, 1, problemMessages(problems))
	assert.Equal(t, "5.19", problems[0].Section)
}

func TestVerifyContinuationContentType(t *testing.T) {
	v := NewVerifier()
	record := newTestRecord(Continuation,
		&NameValue{WarcTargetURI, "http://example.com/"},
		&NameValue{WarcSegmentOriginID, "<urn:uuid:origin>"},
		&NameValue{WarcSegmentTotalLength, "100"})
	record.Header.Fields.Set(ContentLength, "10")
	problems := v.VerifyRecord(record)

	require.Len(t, problems, 1, problemMessages(problems))
	assert.False(t, problems[0].Major)
	assert.Equal(t, "5.6", problems[0].Section)
}
