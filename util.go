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
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nlnwa/whatwg-url/url"
)

const findPatternBufSize = 512

// ErrPatternNotFound is returned by FindPattern when the stream is exhausted
// before the pattern occurs.
var ErrPatternNotFound = errors.New("warcat: pattern not found")

// ErrPathTraversal is returned by SplitURLToFilename for URLs containing '.'
// or '..' path components.
var ErrPathTraversal = errors.New("warcat: path traversal in url")

// FindPattern returns the smallest offset, relative to the current stream
// position, at which pattern occurs. At most limit bytes are examined when
// limit is positive. If inclusive is true the returned offset points past the
// pattern. The stream position is left unchanged.
func FindPattern(f io.ReadSeeker, pattern []byte, limit int64, inclusive bool) (int64, error) {
	origin, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	defer func() {
		_, _ = f.Seek(origin, io.SeekStart)
	}()

	// carry holds the tail of the previous chunk so that a pattern
	// straddling a chunk boundary is still found.
	var carry []byte
	var base int64
	var bytesRead int64
	chunk := make([]byte, findPatternBufSize)

	for {
		size := int64(len(chunk))
		if limit > 0 && limit-bytesRead < size {
			size = limit - bytesRead
		}
		if size <= 0 {
			return 0, ErrPatternNotFound
		}

		n, err := f.Read(chunk[:size])
		bytesRead += int64(n)
		window := append(carry, chunk[:n]...)

		if i := bytes.Index(window, pattern); i >= 0 {
			offset := base + int64(i)
			if inclusive {
				offset += int64(len(pattern))
			}
			return offset, nil
		}

		if err != nil {
			if err == io.EOF {
				return 0, ErrPatternNotFound
			}
			return 0, err
		}
		if n == 0 {
			continue
		}

		if keep := len(pattern) - 1; len(window) > keep {
			carry = append([]byte(nil), window[len(window)-keep:]...)
		} else {
			carry = window
		}
		base += int64(len(window) - len(carry))
	}
}

// StripWARCExtension removes a trailing ".warc" or ".warc.gz" from a file
// name.
func StripWARCExtension(s string) string {
	s = strings.TrimSuffix(s, ".gz")
	return strings.TrimSuffix(s, ".warc")
}

// IndexName returns the placeholder file name used for empty URL path
// components and for files displaced by a directory of the same name.
func IndexName(basename string) string {
	sum := sha1.Sum([]byte(basename))
	return "_index_" + hex.EncodeToString(sum[:])[:6]
}

// sanitizeComponent replaces characters unsafe in file names with '_'.
func sanitizeComponent(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 || r == 0x7f {
			return '_'
		}
		return r
	}, s)
}

// SplitURLToFilename maps a URL to a list of path components suitable for
// writing the resource to a filesystem: the host, followed by the sanitized
// path components, with the query appended to the last component. Empty
// components are replaced with an index placeholder. URLs containing '.' or
// '..' path components are rejected.
func SplitURLToFilename(s string) ([]string, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("warcat: cannot parse url %q: %w", s, err)
	}

	// The parsed URL has dot segments resolved, so take path and query
	// from the raw string to be able to reject traversal.
	raw := s
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	var query string
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw, query = raw[:i], raw[i+1:]
	}
	var path string
	if i := strings.Index(raw, "://"); i >= 0 {
		rest := raw[i+3:]
		if j := strings.IndexByte(rest, '/'); j >= 0 {
			path = rest[j+1:]
		}
	}

	parts := []string{u.Host()}
	for _, component := range strings.Split(path, "/") {
		if component == "." || component == ".." {
			return nil, fmt.Errorf("%w: %q", ErrPathTraversal, s)
		}
		parts = append(parts, component)
	}

	if query != "" {
		parts[len(parts)-1] += "?" + query
	}

	for i, component := range parts {
		component = sanitizeComponent(component)
		if component == "" {
			component = IndexName(component)
		}
		parts[i] = component
	}
	return parts, nil
}
