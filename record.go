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
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// WARC record type name constants
const (
	Warcinfo     = "warcinfo"
	Response     = "response"
	Resource     = "resource"
	Request      = "request"
	Metadata     = "metadata"
	Revisit      = "revisit"
	Conversion   = "conversion"
	Continuation = "continuation"
)

// Record is a single WARC record: a header, a content block and, when the
// record was read from an archive, the offset of its first byte in the
// archive stream.
type Record struct {
	Header       *Header
	ContentBlock ContentBlock
	FileOffset   int64
}

// NewRecord returns an empty record with a generated record id and the
// current time as WARC-Date.
func NewRecord() *Record {
	r := &Record{Header: NewHeader()}
	r.Header.Fields.Set(WarcRecordID, NewRecordID())
	r.Header.Fields.Set(WarcDate, time.Now().UTC().Format(time.RFC3339))
	return r
}

// NewRecordID returns a new record id: a UUID URN in angle brackets.
func NewRecordID() string {
	return "<" + uuid.New().URN() + ">"
}

func (r *Record) RecordID() string {
	return r.Header.RecordID()
}

func (r *Record) Type() string {
	return r.Header.Type()
}

func (r *Record) ContentLength() (int64, error) {
	return r.Header.ContentLength()
}

func (r *Record) Date() (time.Time, error) {
	return r.Header.Date()
}

func (r *Record) String() string {
	return fmt.Sprintf("WARC record: version: %s, type: %s", r.Header.Version, r.Type())
}

// refreshContentLength sets the header's Content-Length to the block's
// current serialized length. A change is logged; it happens when a parsed
// block does not re-serialize to the original length or when the caller
// mutated the block.
func (r *Record) refreshContentLength() {
	if r.ContentBlock == nil {
		return
	}
	size := r.ContentBlock.Size()
	if old, err := r.Header.ContentLength(); err != nil || old != size {
		if err == nil {
			log.Warnf("content block length changed from %d to %d", old, size)
		}
		r.Header.Fields.Set(ContentLength, strconv.FormatInt(size, 10))
	}
}

// WriteTo serializes the record: header, content block and the record
// separator. The header's Content-Length is refreshed to the block's
// serialized length first.
func (r *Record) WriteTo(w io.Writer) (bytesWritten int64, err error) {
	r.refreshContentLength()

	bytesWritten, err = r.Header.Write(w)
	if err != nil {
		return
	}
	if r.ContentBlock != nil {
		var bw int64
		bw, err = r.ContentBlock.WriteTo(w)
		bytesWritten += bw
		if err != nil {
			return
		}
	}
	n, err := w.Write(fieldDelim)
	bytesWritten += int64(n)
	return
}

// loadRecord parses the record starting at the current position of f.
// When preserveBlock is true the content block is loaded as opaque binary
// data regardless of its Content-Type, which guarantees bit identical
// round-trips.
func loadRecord(f ArchiveFile, preserveBlock bool) (*Record, error) {
	offset, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	log.Debugf("record start at %d 0x%x", offset, offset)

	headerLength, err := FindPattern(f, fieldDelim, 0, true)
	if err == ErrPatternNotFound {
		return nil, newFramingError("header not terminated", offset)
	} else if err != nil {
		return nil, err
	}

	raw := make([]byte, headerLength)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, err
	}
	header, err := ParseHeader(raw)
	if err != nil {
		return nil, err
	}

	record := &Record{Header: header, FileOffset: offset}

	blockLength, err := header.ContentLength()
	if err != nil {
		return nil, newFramingError("missing or malformed Content-Length", offset)
	}
	log.Debugf("block length=%d", blockLength)

	if preserveBlock {
		record.ContentBlock, err = loadBinaryBlock(f, blockLength)
	} else {
		record.ContentBlock, err = loadContentBlock(f, blockLength, header.ContentType())
	}
	if err != nil {
		return nil, err
	}

	record.refreshContentLength()
	return record, nil
}
