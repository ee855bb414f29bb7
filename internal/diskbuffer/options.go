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

package diskbuffer

type options struct {
	maxMemBytes int64
	tmpDir      string
}

// Option configures a Buffer created by New.
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
		maxMemBytes: 10 * 1024 * 1024, // 10 MiB
		tmpDir:      "",               // OS default
	}
}

// WithMaxMemBytes sets the amount of memory the buffer may use before
// spilling to a temporary file.
//
// defaults to 10 MiB
func WithMaxMemBytes(size int64) Option {
	return newFuncOption(func(o *options) {
		o.maxMemBytes = size
	})
}

// WithTmpDir sets the directory used for spill files.
//
// If not set or dir is the empty string the default directory for temporary
// files is used (see os.TempDir).
func WithTmpDir(dir string) Option {
	return newFuncOption(func(o *options) {
		o.tmpDir = dir
	})
}
