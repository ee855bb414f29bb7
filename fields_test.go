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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFields(t *testing.T) {
	input := "WARC-Type: response\r\n" +
		"Non-ASCII:    ðëARCHIVE#:>Þ   \r\n" +
		"Multiline: The quick brown fox\r\n" +
		" jumps\r\n" +
		"\tover\n   the lazy dog.\r\n" +
		"Content-LENGTH: 10\r\n"

	fields, err := ParseFields([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, "response", fields.Get("warc-type"))
	assert.Equal(t, "ðëARCHIVE#:>Þ   ", fields.Get("non-ascii"))
	assert.Equal(t, "The quick brown foxjumpsover\n   the lazy dog.", fields.Get("multiline"))
	assert.Equal(t, "10", fields.Get("content-length"))
	assert.Len(t, *fields, 4)
}

func TestParseFieldsStopsAtBlankLine(t *testing.T) {
	input := "a: 1\r\nb: 2\r\n\r\nnot: parsed\r\n"
	fields, err := ParseFields([]byte(input))
	require.NoError(t, err)
	assert.Len(t, *fields, 2)
	assert.False(t, fields.Has("not"))
}

func TestParseFieldsMissingColon(t *testing.T) {
	_, err := ParseFields([]byte("no colon here\r\n"))
	require.Error(t, err)
	assert.IsType(t, &SyntaxError{}, err)
}

func TestFieldsCaseInsensitiveLookup(t *testing.T) {
	fields := &Fields{}
	fields.Add("Content-Length", "42")
	assert.Equal(t, fields.Get("content-length"), fields.Get("CONTENT-LENGTH"))
	assert.True(t, fields.Has("CoNtEnT-lEnGtH"))
	assert.Equal(t, 0, fields.Index("content-LENGTH"))
}

func TestFieldsSet(t *testing.T) {
	fields := &Fields{}
	fields.Add("My-Name", "a")
	fields.Set("Animal", "kitten")
	fields.Add("my-name", "b")

	assert.Equal(t, Fields{
		{Name: "My-Name", Value: "a"},
		{Name: "Animal", Value: "kitten"},
		{Name: "my-name", Value: "b"},
	}, *fields)
	assert.True(t, fields.Has("my-name"))
	assert.False(t, fields.Has("content-length"))
	assert.Equal(t, "a", fields.Get("my-name"))
	assert.Equal(t, 2, fields.Count("my-name"))

	// Set removes duplicates and keeps the position of the first occurrence
	fields.Set("my-name", "c")

	assert.Equal(t, 1, fields.Count("my-name"))
	assert.Equal(t, "c", fields.Get("MY-NAME"))
	assert.Equal(t, "kitten", fields.Get("animal"))
	assert.Equal(t, 0, fields.Index("my-name"))
}

func TestFieldsWrite(t *testing.T) {
	fields := &Fields{}
	fields.Add("a", "1")
	fields.Add("empty", "")
	fields.Add("a", "2")

	want := "a: 1\r\nempty:\r\na: 2\r\n"
	assert.Equal(t, want, fields.String())
	assert.Equal(t, int64(len(want)), fields.Size())
}

func TestFieldsRoundTrip(t *testing.T) {
	input := "a: 1\r\nB: two\r\na: 3\r\n"
	fields, err := ParseFields([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, input, fields.String())
}
