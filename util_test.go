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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPattern(t *testing.T) {
	f := bytes.NewReader([]byte("abcdefg\r\n\r\nhijklmnop"))

	offset, err := FindPattern(f, []byte(crlfcrlf), 0, true)
	require.NoError(t, err)
	assert.Equal(t, int64(11), offset)

	pos, err := f.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos, "stream position must be unchanged")

	offset, err = FindPattern(f, []byte(crlfcrlf), 0, false)
	require.NoError(t, err)
	assert.Equal(t, int64(7), offset)
}

func TestFindPatternChunkBoundary(t *testing.T) {
	// the pattern must be found even when it straddles the read chunk size
	for i := findPatternBufSize - 8; i < findPatternBufSize+8; i++ {
		data := strings.Repeat("x", i) + crlfcrlf + "abcdefghijklmnop"
		f := bytes.NewReader([]byte(data))

		offset, err := FindPattern(f, []byte(crlfcrlf), 0, false)
		require.NoError(t, err)
		assert.Equal(t, int64(i), offset)
	}
}

func TestFindPatternNotFound(t *testing.T) {
	f := bytes.NewReader([]byte("no delimiter here"))
	_, err := FindPattern(f, []byte(crlfcrlf), 0, false)
	assert.ErrorIs(t, err, ErrPatternNotFound)

	pos, _ := f.Seek(0, io.SeekCurrent)
	assert.Equal(t, int64(0), pos)
}

func TestFindPatternLimit(t *testing.T) {
	f := bytes.NewReader([]byte("aaaa\r\n\r\nbbbb"))

	_, err := FindPattern(f, []byte(crlfcrlf), 4, false)
	assert.ErrorIs(t, err, ErrPatternNotFound)

	offset, err := FindPattern(f, []byte(crlfcrlf), 8, false)
	require.NoError(t, err)
	assert.Equal(t, int64(4), offset)
}

func TestFindPatternPreservesPosition(t *testing.T) {
	f := bytes.NewReader([]byte("junk\r\n\r\nmore\r\n\r\ntail"))
	_, err := f.Seek(8, io.SeekStart)
	require.NoError(t, err)

	offset, err := FindPattern(f, []byte(crlfcrlf), 0, true)
	require.NoError(t, err)
	assert.Equal(t, int64(8), offset, "offset is relative to the current position")

	pos, _ := f.Seek(0, io.SeekCurrent)
	assert.Equal(t, int64(8), pos)
}

func TestStripWARCExtension(t *testing.T) {
	assert.Equal(t, "at", StripWARCExtension("at.warc"))
	assert.Equal(t, "at", StripWARCExtension("at.warc.gz"))
	assert.Equal(t, "at", StripWARCExtension("at"))
}

func TestSplitURLToFilename(t *testing.T) {
	parts, err := SplitURLToFilename("http://example.com/index.php?article=Main_Page")
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com", "index.php_article=Main_Page"}, parts)
}

func TestSplitURLToFilenameTraversal(t *testing.T) {
	_, err := SplitURLToFilename("http://example.com/../system")
	assert.ErrorIs(t, err, ErrPathTraversal)

	_, err = SplitURLToFilename("http://example.com/./system")
	assert.ErrorIs(t, err, ErrPathTraversal)
}

func TestSplitURLToFilenameIndexPlaceholder(t *testing.T) {
	parts, err := SplitURLToFilename("http://example.com/")
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, "example.com", parts[0])
	assert.Equal(t, "_index_da39a3", parts[1])
}

func TestIndexName(t *testing.T) {
	assert.Equal(t, "_index_da39a3", IndexName(""))
	assert.Equal(t, "_index_aaf4c6", IndexName("hello"))
}
