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
	"io"
	"strings"
)

// WARC header field name constants
const (
	ContentLength          = "Content-Length"
	ContentType            = "Content-Type"
	WarcBlockDigest        = "WARC-Block-Digest"
	WarcConcurrentTo       = "WARC-Concurrent-To"
	WarcDate               = "WARC-Date"
	WarcFilename           = "WARC-Filename"
	WarcPayloadDigest      = "WARC-Payload-Digest"
	WarcProfile            = "WARC-Profile"
	WarcRecordID           = "WARC-Record-ID"
	WarcRefersTo           = "WARC-Refers-To"
	WarcSegmentNumber      = "WARC-Segment-Number"
	WarcSegmentOriginID    = "WARC-Segment-Origin-ID"
	WarcSegmentTotalLength = "WARC-Segment-Total-Length"
	WarcTargetURI          = "WARC-Target-URI"
	WarcType               = "WARC-Type"
	WarcWarcinfoID         = "WARC-Warcinfo-ID"
)

type NameValue struct {
	Name  string
	Value string
}

// Fields is an ordered list of name/value pairs. Duplicate names are allowed
// and name lookup is ASCII case insensitive.
type Fields []*NameValue

// Get gets the value of the first field with the given name. It is case
// insensitive. If no such field exists, Get returns "". To access multiple
// values of a name, use GetAll.
func (f *Fields) Get(name string) string {
	for _, nv := range *f {
		if strings.EqualFold(nv.Name, name) {
			return nv.Value
		}
	}
	return ""
}

func (f *Fields) GetAll(name string) []string {
	var result []string
	for _, nv := range *f {
		if strings.EqualFold(nv.Name, name) {
			result = append(result, nv.Value)
		}
	}
	return result
}

func (f *Fields) Has(name string) bool {
	return f.Index(name) >= 0
}

// Index returns the position of the first field with the given name or -1.
func (f *Fields) Index(name string) int {
	for idx, nv := range *f {
		if strings.EqualFold(nv.Name, name) {
			return idx
		}
	}
	return -1
}

// Count returns the number of fields with the given name.
func (f *Fields) Count(name string) int {
	n := 0
	for _, nv := range *f {
		if strings.EqualFold(nv.Name, name) {
			n++
		}
	}
	return n
}

// Add appends a field to the list.
func (f *Fields) Add(name string, value string) {
	*f = append(*f, &NameValue{Name: name, Value: value})
}

// Set removes every field with the given name and inserts the new value at
// the position of the removed first occurrence. If the name was not present,
// the field is appended.
func (f *Fields) Set(name string, value string) {
	idx := f.Index(name)
	if idx < 0 {
		f.Add(name, value)
		return
	}
	f.Delete(name)
	rest := append(Fields{&NameValue{Name: name, Value: value}}, (*f)[idx:]...)
	*f = append((*f)[:idx], rest...)
}

// Delete removes every field with the given name.
func (f *Fields) Delete(name string) {
	var result Fields
	for _, nv := range *f {
		if !strings.EqualFold(nv.Name, name) {
			result = append(result, nv)
		}
	}
	*f = result
}

// Write serializes the fields as newline delimited name/value lines. No
// continuation lines are produced; values containing folded whitespace are
// written as is.
func (f *Fields) Write(w io.Writer) (bytesWritten int64, err error) {
	var n int
	for _, field := range *f {
		if field.Value == "" {
			n, err = fmt.Fprintf(w, "%s:\r\n", field.Name)
		} else {
			n, err = fmt.Fprintf(w, "%s: %s\r\n", field.Name, field.Value)
		}
		bytesWritten += int64(n)
		if err != nil {
			return
		}
	}
	return
}

// Size returns the serialized length of the fields in bytes.
func (f *Fields) Size() int64 {
	var size int64
	for _, field := range *f {
		if field.Value == "" {
			size += int64(len(field.Name)) + 3
		} else {
			size += int64(len(field.Name)) + int64(len(field.Value)) + 4
		}
	}
	return size
}

func (f *Fields) String() string {
	sb := &strings.Builder{}
	_, _ = f.Write(sb)
	return sb.String()
}

// ParseFields parses a named field block. Input is split on CRLF. Each line
// is split on the first ':' and the value is left-stripped. A line starting
// with space or horizontal tab is a continuation of the previous field: its
// content, with the single leading whitespace byte removed, is appended to
// the value. A blank line terminates parsing.
func ParseFields(b []byte) (*Fields, error) {
	fields := &Fields{}
	lines := bytes.Split(b, []byte(crlf))

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if len(line) == 0 {
			break
		}

		idx := bytes.IndexByte(line, ':')
		if idx < 0 {
			return nil, newSyntaxError(fmt.Sprintf("could not parse field line, missing ':' in %q", line), i+1)
		}

		name := string(line[:idx])
		value := strings.TrimLeft(string(line[idx+1:]), " \t")

		for i+1 < len(lines) && len(lines[i+1]) > 0 && (lines[i+1][0] == sp || lines[i+1][0] == ht) {
			i++
			value += string(lines[i][1:])
		}

		fields.Add(name, value)
	}
	return fields, nil
}
