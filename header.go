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
	"strconv"
	"strings"
	"time"
)

// Header is the header of a WARC record: the version from the first line and
// the named fields following it.
type Header struct {
	// Version is the text after "WARC/" on the first header line.
	Version string
	Fields  *Fields
}

func NewHeader() *Header {
	return &Header{Version: "1.0", Fields: &Fields{}}
}

// ParseHeader parses raw header bytes, from the version line up to and
// including the terminating CRLF CRLF.
func ParseHeader(b []byte) (*Header, error) {
	idx := bytes.Index(b, []byte(crlf))
	if idx < 0 {
		return nil, newSyntaxError("header without newline", 1)
	}
	versionLine := string(b[:idx])
	if !strings.HasPrefix(versionLine, "WARC") {
		return nil, newSyntaxError(fmt.Sprintf("not a WARC header line: %q", versionLine), 1)
	}

	fields, err := ParseFields(b[idx+2:])
	if err != nil {
		return nil, err
	}
	return &Header{Version: strings.TrimPrefix(versionLine, "WARC/"), Fields: fields}, nil
}

// Write serializes the header including the terminating CRLF.
func (h *Header) Write(w io.Writer) (bytesWritten int64, err error) {
	n, err := fmt.Fprintf(w, "WARC/%s\r\n", h.Version)
	bytesWritten = int64(n)
	if err != nil {
		return
	}
	bw, err := h.Fields.Write(w)
	bytesWritten += bw
	if err != nil {
		return
	}
	n, err = w.Write([]byte(crlf))
	bytesWritten += int64(n)
	return
}

func (h *Header) String() string {
	sb := &strings.Builder{}
	_, _ = h.Write(sb)
	return sb.String()
}

// RecordID returns the value of the WARC-Record-ID field.
func (h *Header) RecordID() string {
	return h.Fields.Get(WarcRecordID)
}

// ContentLength returns the Content-Length field as an integer.
func (h *Header) ContentLength() (int64, error) {
	return strconv.ParseInt(h.Fields.Get(ContentLength), 10, 64)
}

// Date returns the WARC-Date field parsed as an ISO 8601 date-time.
func (h *Header) Date() (time.Time, error) {
	return time.Parse(time.RFC3339, h.Fields.Get(WarcDate))
}

// Type returns the value of the WARC-Type field.
func (h *Header) Type() string {
	return h.Fields.Get(WarcType)
}

// ContentType returns the value of the Content-Type field.
func (h *Header) ContentType() string {
	return h.Fields.Get(ContentType)
}

// HTTPHeader is a field block preceded by an HTTP status or request line,
// as found in application/http content blocks.
type HTTPHeader struct {
	// Status is the first line, e.g. "HTTP/1.1 200 OK".
	Status string
	Fields *Fields
}

// ParseHTTPHeader parses an HTTP style header: a status line followed by
// named fields.
func ParseHTTPHeader(b []byte) (*HTTPHeader, error) {
	idx := bytes.Index(b, []byte(crlf))
	if idx < 0 {
		return nil, newSyntaxError("http header without newline", 1)
	}
	fields, err := ParseFields(b[idx+2:])
	if err != nil {
		return nil, err
	}
	return &HTTPHeader{Status: string(b[:idx]), Fields: fields}, nil
}

// StatusCode returns the second whitespace delimited token of the status
// line as an integer.
func (h *HTTPHeader) StatusCode() (int, error) {
	t := strings.Fields(h.Status)
	if len(t) < 2 {
		return 0, fmt.Errorf("warcat: malformed status line %q", h.Status)
	}
	return strconv.Atoi(t[1])
}

// Write serializes the status line and fields. The field terminator is not
// included.
func (h *HTTPHeader) Write(w io.Writer) (bytesWritten int64, err error) {
	n, err := fmt.Fprintf(w, "%s\r\n", h.Status)
	bytesWritten = int64(n)
	if err != nil {
		return
	}
	bw, err := h.Fields.Write(w)
	bytesWritten += bw
	return
}

// Size returns the serialized length of the header in bytes.
func (h *HTTPHeader) Size() int64 {
	return int64(len(h.Status)) + 2 + h.Fields.Size()
}
