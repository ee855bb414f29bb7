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
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRefOverStream(t *testing.T) {
	src := bytes.NewReader([]byte("0123456789abcdef"))
	_, err := src.Seek(3, io.SeekStart)
	require.NoError(t, err)

	ref := FileRef{File: src, Offset: 4, Length: 6}

	for i := 0; i < 2; i++ {
		assert.Equal(t, "456789", string(readRef(t, ref)))
	}

	// the source position is restored after every read
	pos, err := src.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pos)
}

func TestFileRefOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.warc")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0666))

	ref := FileRef{Filename: path, Offset: 2, Length: 5}
	assert.Equal(t, "23456", string(readRef(t, ref)))
	assert.Equal(t, "23456", string(readRef(t, ref)))
	assert.Equal(t, int64(5), ref.Size())
}

func TestFileRefOverGzipFile(t *testing.T) {
	// offsets address the decompressed stream
	path := filepath.Join(t.TempDir(), "data.warc.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("0123456789abcdef"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	ref := FileRef{Filename: path, Offset: 10, Length: 6}
	assert.Equal(t, "abcdef", string(readRef(t, ref)))
	assert.Equal(t, "abcdef", string(readRef(t, ref)))
}

func TestFileRefUnbounded(t *testing.T) {
	src := bytes.NewReader([]byte("0123456789"))
	ref := FileRef{File: src, Offset: 6, Length: -1}
	assert.Equal(t, "6789", string(readRef(t, ref)))
}

func TestFileRefShortSource(t *testing.T) {
	src := bytes.NewReader([]byte("0123"))
	ref := FileRef{File: src, Offset: 0, Length: 10}
	_, err := ref.Open()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestFileRefWriteTo(t *testing.T) {
	src := bytes.NewReader([]byte("0123456789"))
	ref := FileRef{File: src, Offset: 2, Length: 4}

	buf := &bytes.Buffer{}
	n, err := ref.WriteTo(buf)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, "2345", buf.String())
}
