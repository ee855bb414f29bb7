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

package blockreader

import "github.com/nlnwa/warcat/internal/diskbuffer"

type options struct {
	blockSize     int64
	maxBlocks     int
	bufferOptions []diskbuffer.Option
}

// Option configures a Reader created by New.
type Option interface {
	apply(*options)
}

type funcOption struct {
	f func(*options)
}

func (fo *funcOption) apply(o *options) {
	fo.f(o)
}

func newFuncOption(f func(*options)) *funcOption {
	return &funcOption{f: f}
}

func defaultOptions() options {
	return options{
		blockSize: 100 * 1024 * 1024, // 100 MiB
		maxBlocks: 4,
	}
}

// WithBlockSize sets the size of the materialized blocks.
//
// defaults to 100 MiB
func WithBlockSize(size int64) Option {
	return newFuncOption(func(o *options) {
		o.blockSize = size
	})
}

// WithMaxCachedBlocks sets how many materialized blocks are kept before the
// least recently used one is released.
//
// defaults to 4
func WithMaxCachedBlocks(n int) Option {
	return newFuncOption(func(o *options) {
		o.maxBlocks = n
	})
}

// WithBufferOptions sets the options used for the spooled buffers holding
// materialized blocks.
func WithBufferOptions(opts ...diskbuffer.Option) Option {
	return newFuncOption(func(o *options) {
		o.bufferOptions = opts
	})
}
