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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const headerBytes = "WARC/1.0\r\n" +
	"WARC-Type: warcinfo\r\n" +
	"WARC-Record-ID: <urn:uuid:b5b45a54-be0f-4af4-a45a-e8a9ae58b4e4>\r\n" +
	"WARC-Date: 2021-04-14T10:00:00Z\r\n" +
	"Content-Length: 0\r\n" +
	"\r\n"

func TestParseHeader(t *testing.T) {
	header, err := ParseHeader([]byte(headerBytes))
	require.NoError(t, err)

	assert.Equal(t, "1.0", header.Version)
	assert.Equal(t, "warcinfo", header.Type())
	assert.Equal(t, "<urn:uuid:b5b45a54-be0f-4af4-a45a-e8a9ae58b4e4>", header.RecordID())

	length, err := header.ContentLength()
	require.NoError(t, err)
	assert.Equal(t, int64(0), length)

	date, err := header.Date()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 4, 14, 10, 0, 0, 0, time.UTC), date)
}

func TestParseHeaderRejectsNonWarc(t *testing.T) {
	_, err := ParseHeader([]byte("HTTP/1.1 200 OK\r\n\r\n"))
	require.Error(t, err)
	assert.IsType(t, &SyntaxError{}, err)
}

func TestHeaderRoundTrip(t *testing.T) {
	header, err := ParseHeader([]byte(headerBytes))
	require.NoError(t, err)
	assert.Equal(t, headerBytes, header.String())
}

func TestHTTPHeaderStatusCode(t *testing.T) {
	header, err := ParseHTTPHeader([]byte("HTTP/1.1 404 Not Found\r\nContent-Type: text/html\r\n\r\n"))
	require.NoError(t, err)

	assert.Equal(t, "HTTP/1.1 404 Not Found", header.Status)
	code, err := header.StatusCode()
	require.NoError(t, err)
	assert.Equal(t, 404, code)
	assert.Equal(t, "text/html", header.Fields.Get("content-type"))
}

func TestHTTPHeaderMalformedStatus(t *testing.T) {
	header, err := ParseHTTPHeader([]byte("HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)
	_, err = header.StatusCode()
	assert.Error(t, err)
}
