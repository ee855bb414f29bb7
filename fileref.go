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
	"compress/gzip"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/nlnwa/warcat/internal/blockreader"
	"github.com/nlnwa/warcat/internal/diskbuffer"
	"github.com/nlnwa/warcat/internal/filecache"
	log "github.com/sirupsen/logrus"
)

// fileHandles caches open archive readers for byte range reads against file
// backed references. It is a pure optimization; see internal/filecache.
var fileHandles = filecache.New(4)

// CloseFileCache closes the process wide cache of archive readers used for
// byte range reads. Live FileRefs reopen their file on the next read.
func CloseFileCache() error {
	return fileHandles.Close()
}

// FileRef is a lazy reference to a range of bytes in an archive. Exactly one
// of Filename and File is set. A FileRef can be read any number of times;
// every read yields the same bytes and leaves the source's position
// unchanged. The referenced range must stay readable for as long as the
// reference is used: the archive file, or the stream it was read from, has
// to outlive the reference.
type FileRef struct {
	// Filename is the path of the archive holding the data. Paths ending
	// in ".gz" are read through a seekable view over the decompressed
	// stream, so Offset and Length address decompressed bytes.
	Filename string
	// File is an open stream holding the data.
	File io.ReadSeeker
	// Offset is the start of the range.
	Offset int64
	// Length is the size of the range; negative means until EOF.
	Length int64
}

// Size returns the length of the referenced range.
func (r FileRef) Size() int64 {
	return r.Length
}

// Open returns a reader over a private copy of the referenced bytes, spooled
// to memory or disk. The source's position is unchanged. The caller closes
// the returned reader to release the copy.
func (r FileRef) Open() (io.ReadCloser, error) {
	buf := diskbuffer.New()
	var err error
	if r.Filename != "" {
		err = fileHandles.With(r.Filename, func() (filecache.Handle, error) {
			return openArchiveSource(r.Filename)
		}, func(h filecache.Handle) error {
			return r.copyRange(h, buf)
		})
	} else if r.File != nil {
		err = r.copyRange(r.File, buf)
	} else {
		err = errors.New("warcat: FileRef without source")
	}
	if err != nil {
		_ = buf.Close()
		return nil, err
	}
	return buf, nil
}

func (r FileRef) copyRange(src io.ReadSeeker, buf diskbuffer.Buffer) error {
	origin, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = src.Seek(origin, io.SeekStart)
	}()

	if _, err := src.Seek(r.Offset, io.SeekStart); err != nil {
		return err
	}
	var rd io.Reader = src
	if r.Length >= 0 {
		rd = io.LimitReader(src, r.Length)
	}
	n, err := buf.ReadFrom(rd)
	if err != nil {
		return err
	}
	if r.Length >= 0 && n < r.Length {
		return io.ErrUnexpectedEOF
	}
	log.Debugf("copied %d bytes from %s at offset %d", n, r.name(), r.Offset)
	return nil
}

// WriteTo streams the referenced bytes to w.
func (r FileRef) WriteTo(w io.Writer) (int64, error) {
	src, err := r.Open()
	if err != nil {
		return 0, err
	}
	defer func() { _ = src.Close() }()
	return io.Copy(w, src)
}

func (r FileRef) name() string {
	if r.Filename != "" {
		return r.Filename
	}
	return "stream"
}

// openArchiveSource opens a file for byte range reads. Gzip compressed files
// are exposed as a seekable view over the decompressed stream.
func openArchiveSource(filename string) (filecache.Handle, error) {
	if strings.HasSuffix(filename, ".gz") {
		return blockreader.New(func() (io.ReadCloser, error) {
			return openGzip(filename)
		}), nil
	}
	return os.Open(filename)
}

// gzipStream couples a gzip reader with the file it reads from so both are
// closed together.
type gzipStream struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipStream) Close() error {
	err := g.Reader.Close()
	if e := g.f.Close(); err == nil {
		err = e
	}
	return err
}

func openGzip(filename string) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	z, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &gzipStream{Reader: z, f: f}, nil
}
