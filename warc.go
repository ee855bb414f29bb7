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
	"io"
	"os"
	"strings"

	"github.com/nlnwa/warcat/internal/blockreader"
	log "github.com/sirupsen/logrus"
)

// ArchiveFile is the seekable byte source records are read from. For gzip
// compressed archives offsets address the decompressed stream. Name returns
// the path the archive was opened from, or "" for archives over anonymous
// streams. An ArchiveFile is not safe for concurrent use.
type ArchiveFile interface {
	io.ReadSeeker
	io.Closer
	Peek(n int) ([]byte, error)
	Name() string
}

// Open opens an archive file for reading. The archive is read through a
// seekable view over the decompressed stream when the file name ends in
// ".gz" or WithForceGzip is set. Per record gzip members and whole stream
// gzip are both handled: the decompressor concatenates members.
func Open(filename string, opts ...OpenOption) (ArchiveFile, error) {
	o := defaultOpenOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}

	if strings.HasSuffix(filename, ".gz") || o.forceGzip {
		log.Infof("opened gzipped file %s", filename)
		r := blockreader.New(func() (io.ReadCloser, error) {
			return openGzip(filename)
		}, o.blockReaderOptions...)
		return &gzipArchiveFile{Reader: r, name: filename}, nil
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	log.Infof("opened file %s", filename)
	return &rawArchiveFile{File: f}, nil
}

// rawArchiveFile adds Peek to an uncompressed archive file.
type rawArchiveFile struct {
	*os.File
}

func (f *rawArchiveFile) Peek(n int) ([]byte, error) {
	offset, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	p := make([]byte, n)
	m, err := f.ReadAt(p, offset)
	if err != nil && err != io.EOF {
		return p[:m], err
	}
	if m < n {
		return p[:m], io.EOF
	}
	return p, nil
}

// gzipArchiveFile is a seekable view over a gzip compressed archive.
type gzipArchiveFile struct {
	*blockreader.Reader
	name string
}

func (f *gzipArchiveFile) Name() string {
	// Byte range references resolve ".gz" paths through a decompressed
	// view of their own. A forced-gzip archive without the extension
	// would be reopened raw, so its references must stay on this reader.
	if strings.HasSuffix(f.name, ".gz") {
		return f.name
	}
	return ""
}

// ReadRecord reads the record starting at the current position of f and
// consumes the separator following it. The returned bool is false exactly
// when the record was the archive's last: the next byte after the separator
// is EOF. Content block bytes are not read, only referenced; see FileRef.
//
// When preserveBlock is true content blocks are not parsed into fields and
// payloads, guaranteeing that the record serializes back byte for byte.
func ReadRecord(f ArchiveFile, preserveBlock bool) (*Record, bool, error) {
	record, err := loadRecord(f, preserveBlock)
	if err != nil {
		return nil, false, err
	}
	log.Debugf("finished reading record %s", record.RecordID())

	delim := make([]byte, len(fieldDelim))
	if _, err := io.ReadFull(f, delim); err != nil || !bytes.Equal(delim, fieldDelim) {
		offset, _ := f.Seek(0, io.SeekCurrent)
		return nil, false, newFramingError("records not separated correctly", offset)
	}

	if p, err := f.Peek(1); err != nil || len(p) == 0 {
		log.Debug("finished reading archive")
		return record, false, nil
	}
	return record, true, nil
}

// WARC is a Web ARChive: an ordered list of records. Streaming operations
// should use Open and ReadRecord directly instead of keeping every record.
type WARC struct {
	Records []*Record
}

// Load opens filename and reads all its records into Records.
func (w *WARC) Load(filename string, opts ...OpenOption) error {
	f, err := Open(filename, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return w.ReadFileObject(f)
}

// ReadFileObject reads records until f is exhausted.
func (w *WARC) ReadFileObject(f ArchiveFile) error {
	for {
		record, hasMore, err := ReadRecord(f, true)
		if err != nil {
			return err
		}
		w.Records = append(w.Records, record)
		if !hasMore {
			return nil
		}
	}
}

// WriteTo serializes every record in order.
func (w *WARC) WriteTo(wr io.Writer) (bytesWritten int64, err error) {
	for _, record := range w.Records {
		var n int64
		n, err = record.WriteTo(wr)
		bytesWritten += n
		if err != nil {
			return
		}
	}
	return
}

// OpenOption configures Open.
type OpenOption interface {
	apply(*openOptions)
}

type openOptions struct {
	forceGzip          bool
	blockReaderOptions []blockreader.Option
}

type funcOpenOption struct {
	f func(*openOptions)
}

func (fo *funcOpenOption) apply(o *openOptions) {
	fo.f(o)
}

func defaultOpenOptions() openOptions {
	return openOptions{}
}

// WithForceGzip reads the archive as gzip regardless of its file name.
func WithForceGzip() OpenOption {
	return &funcOpenOption{f: func(o *openOptions) {
		o.forceGzip = true
	}}
}

// WithBlockReaderOptions sets the options for the seekable view used for
// gzip compressed archives.
func WithBlockReaderOptions(opts ...blockreader.Option) OpenOption {
	return &funcOpenOption{f: func(o *openOptions) {
		o.blockReaderOptions = opts
	}}
}
