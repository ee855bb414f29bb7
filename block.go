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
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ContentBlock is the content of a WARC record. It is either a BinaryBlock
// or a BlockWithPayload.
type ContentBlock interface {
	// Size returns the serialized length of the block in bytes.
	Size() int64
	// WriteTo serializes the block.
	WriteTo(w io.Writer) (int64, error)
}

// BinaryBlock is a content block of opaque octet data.
type BinaryBlock struct {
	FileRef
}

// Payload is the data following the fields of a BlockWithPayload.
type Payload struct {
	FileRef
}

// BlockWithPayload is a content block with named fields and a payload.
// Exactly one of HTTP and Fields is set, selected by the record's
// Content-Type. Binary is a view over the block's original bytes, retained
// for block digest verification; it is nil for blocks built in memory.
type BlockWithPayload struct {
	HTTP    *HTTPHeader
	Fields  *Fields
	Payload *Payload
	Binary  *BinaryBlock
}

func (b *BlockWithPayload) fieldsSize() int64 {
	if b.HTTP != nil {
		return b.HTTP.Size()
	}
	return b.Fields.Size()
}

// Size returns the serialized length: the fields, the separating CRLF and
// the payload.
func (b *BlockWithPayload) Size() int64 {
	return b.fieldsSize() + 2 + b.Payload.Size()
}

func (b *BlockWithPayload) WriteTo(w io.Writer) (bytesWritten int64, err error) {
	if b.HTTP != nil {
		bytesWritten, err = b.HTTP.Write(w)
	} else {
		bytesWritten, err = b.Fields.Write(w)
	}
	if err != nil {
		return
	}
	n, err := w.Write([]byte(crlf))
	bytesWritten += int64(n)
	if err != nil {
		return
	}
	bw, err := b.Payload.WriteTo(w)
	bytesWritten += bw
	return
}

// loadContentBlock captures byte range references for the next length bytes
// of f and advances f past them. The block type is selected by contentType:
// an application/http prefix gives a BlockWithPayload with an HTTP header,
// application/warc-fields a BlockWithPayload with plain fields, anything
// else a BinaryBlock.
func loadContentBlock(f ArchiveFile, length int64, contentType string) (ContentBlock, error) {
	switch {
	case strings.HasPrefix(contentType, "application/http"):
		return loadBlockWithPayload(f, length, true)
	case strings.HasPrefix(contentType, "application/warc-fields"):
		return loadBlockWithPayload(f, length, false)
	default:
		return loadBinaryBlock(f, length)
	}
}

func loadBinaryBlock(f ArchiveFile, length int64) (*BinaryBlock, error) {
	block := &BinaryBlock{FileRef: refAt(f, length)}
	if _, err := f.Seek(length, io.SeekCurrent); err != nil {
		return nil, err
	}
	log.Debugf("binary content block length=%d", length)
	return block, nil
}

func loadBlockWithPayload(f ArchiveFile, length int64, http bool) (*BlockWithPayload, error) {
	binary := &BinaryBlock{FileRef: refAt(f, length)}

	// The fields end with the first CRLF CRLF in the block; without one the
	// whole block is fields and the payload is empty.
	fieldLength := length
	var err error
	if length > 0 {
		fieldLength, err = FindPattern(f, fieldDelim, length, true)
		if err == ErrPatternNotFound {
			fieldLength = length
		} else if err != nil {
			return nil, err
		}
	}

	raw := make([]byte, fieldLength)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, err
	}

	block := &BlockWithPayload{Binary: binary}
	if http {
		if block.HTTP, err = ParseHTTPHeader(raw); err != nil {
			return nil, err
		}
	} else {
		if block.Fields, err = ParseFields(raw); err != nil {
			return nil, err
		}
	}

	block.Payload = &Payload{FileRef: refAt(f, length-fieldLength)}
	if _, err := f.Seek(length-fieldLength, io.SeekCurrent); err != nil {
		return nil, err
	}
	log.Debugf("field length=%d, payload length=%d", fieldLength, length-fieldLength)
	return block, nil
}

// refAt returns a reference to the next length bytes of f without advancing
// its position. File backed sources are referenced by name so the reference
// stays readable after f is closed.
func refAt(f ArchiveFile, length int64) FileRef {
	offset, _ := f.Seek(0, io.SeekCurrent)
	if name := f.Name(); name != "" {
		return FileRef{Filename: name, Offset: offset, Length: length}
	}
	return FileRef{File: f, Offset: offset, Length: length}
}
