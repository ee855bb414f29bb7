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

// Package blockreader turns a forward-only stream, typically a gzip reader,
// into a seekable one. The stream is materialized in fixed size blocks which
// are spilled to spooled buffers; a small number of recently used blocks is
// kept. Seeking backwards past the cached blocks reopens the stream and
// discards up to the wanted block.
package blockreader

import (
	"io"
	"sync"

	"github.com/nlnwa/warcat/internal/diskbuffer"
	log "github.com/sirupsen/logrus"
)

// Opener returns a fresh instance of the underlying stream positioned at
// offset zero.
type Opener func() (io.ReadCloser, error)

// Reader is a seekable view over the stream produced by an Opener.
// Reader implements io.ReadSeeker and io.Closer. All methods are serialized
// by an internal lock so a Reader handed out by a shared cache is never
// raced, but interleaved use from several goroutines will still fight over
// the position and is not supported.
type Reader struct {
	open   Opener
	opts   options
	mu     sync.Mutex
	off    int64
	raw    io.ReadCloser
	rawOff int64
	blocks []*block // most recently used last
	size   int64    // total stream size, -1 until known
}

type block struct {
	index int64
	buf   diskbuffer.Buffer
	size  int64
}

// New creates a Reader over the stream produced by open.
func New(open Opener, opts ...Option) *Reader {
	r := &Reader{open: open, opts: defaultOptions(), size: -1}
	for _, opt := range opts {
		opt.apply(&r.opts)
	}
	return r
}

func (r *Reader) Read(p []byte) (n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for n < len(p) {
		b, err := r.block(r.off / r.opts.blockSize)
		if err != nil {
			return n, err
		}
		inner := r.off % r.opts.blockSize
		if inner >= b.size {
			if n > 0 {
				return n, nil
			}
			return n, io.EOF
		}
		m, err := b.buf.ReadAtOffset(inner, p[n:])
		n += m
		r.off += int64(m)
		if err != nil && err != io.EOF {
			return n, err
		}
		if b.size < r.opts.blockSize && r.off%r.opts.blockSize >= b.size {
			// short block is the last one
			if n == 0 {
				return n, io.EOF
			}
			return n, nil
		}
	}
	return n, nil
}

func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch whence {
	case io.SeekStart:
		r.off = offset
	case io.SeekCurrent:
		r.off += offset
	case io.SeekEnd:
		if r.size < 0 {
			// materialize the remaining blocks to learn the size
			for i := r.off / r.opts.blockSize; r.size < 0; i++ {
				if _, err := r.block(i); err != nil {
					return r.off, err
				}
			}
		}
		r.off = r.size + offset
	}
	return r.off, nil
}

// Peek returns the next n bytes without advancing the position. If fewer
// bytes are available the result is short and the error is io.EOF.
func (r *Reader) Peek(n int) ([]byte, error) {
	r.mu.Lock()
	off := r.off
	r.mu.Unlock()

	p := make([]byte, n)
	m, err := io.ReadFull(r, p)
	if err == io.ErrUnexpectedEOF || (err == nil && m < n) {
		err = io.EOF
	}
	r.mu.Lock()
	r.off = off
	r.mu.Unlock()
	return p[:m], err
}

func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.blocks {
		_ = b.buf.Close()
	}
	r.blocks = nil
	if r.raw != nil {
		err := r.raw.Close()
		r.raw = nil
		return err
	}
	return nil
}

// block returns the block with the given index, fetching it from the
// underlying stream when it is not cached.
func (r *Reader) block(index int64) (*block, error) {
	for i, b := range r.blocks {
		if b.index == index {
			// move to most recently used
			r.blocks = append(append(r.blocks[:i], r.blocks[i+1:]...), b)
			return b, nil
		}
	}

	start := index * r.opts.blockSize
	if r.raw == nil || r.rawOff > start {
		if r.raw != nil {
			_ = r.raw.Close()
		}
		log.Debugf("blockreader: reopening stream for block %d", index)
		raw, err := r.open()
		if err != nil {
			return nil, err
		}
		r.raw = raw
		r.rawOff = 0
	}
	if r.rawOff < start {
		n, err := io.CopyN(io.Discard, r.raw, start-r.rawOff)
		r.rawOff += n
		if err == io.EOF {
			r.size = r.rawOff
		} else if err != nil {
			return nil, err
		}
	}

	buf := diskbuffer.New(r.opts.bufferOptions...)
	n, err := buf.ReadFrom(io.LimitReader(r.raw, r.opts.blockSize))
	if err != nil {
		_ = buf.Close()
		return nil, err
	}
	r.rawOff += n
	if n < r.opts.blockSize && r.size < 0 {
		r.size = r.rawOff
	}
	log.Debugf("blockreader: materialized block %d, %d bytes", index, n)

	b := &block{index: index, buf: buf, size: n}
	r.blocks = append(r.blocks, b)
	if len(r.blocks) > r.opts.maxBlocks {
		evicted := r.blocks[0]
		r.blocks = r.blocks[1:]
		_ = evicted.buf.Close()
	}
	return b, nil
}
