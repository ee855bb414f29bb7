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

package tool

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/nlnwa/warcat"
	"github.com/pkg/errors"
	"github.com/prometheus/tsdb/fileutil"
	log "github.com/sirupsen/logrus"
)

// Extract writes the decoded bodies of HTTP 200 response records to files
// under OutDir, at paths mapped from each record's target URI. Extraction
// needs parsed content blocks, so archives should not be read in
// preserve-block mode.
func Extract(c Config, filenames []string) error {
	r := &runner{Config: c}
	return r.process(filenames, func(record *warcat.Record) error {
		return extractRecord(c, record)
	})
}

func extractRecord(c Config, record *warcat.Record) error {
	if !strings.EqualFold(record.Type(), warcat.Response) {
		return nil
	}
	block, ok := record.ContentBlock.(*warcat.BlockWithPayload)
	if !ok || block.HTTP == nil {
		return nil
	}
	if code, err := block.HTTP.StatusCode(); err != nil || code != http.StatusOK {
		return nil
	}

	targetURI := record.Header.Fields.Get(warcat.WarcTargetURI)
	parts, err := warcat.SplitURLToFilename(targetURI)
	if err != nil {
		return err
	}

	// The HTTP parser gets the full raw block bytes so it can undo the
	// transfer encoding itself.
	src, err := block.Binary.Open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	resp, err := http.ReadResponse(bufio.NewReader(src), nil)
	if err != nil {
		return errors.Wrapf(err, "parsing http response for %s", targetURI)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := decodeBody(resp)
	if err != nil {
		return errors.Wrapf(err, "decoding body for %s", targetURI)
	}

	path, err := resolveOutputPath(c.OutDir, parts)
	if err != nil {
		return err
	}
	if err := writeBody(path, body); err != nil {
		return err
	}
	log.Debugf("extracted %s to %s", targetURI, path)

	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			_ = os.Chtimes(path, t, t)
		}
	}
	return nil
}

// decodeBody undoes the content encoding of a response. The transfer
// encoding is already undone by http.ReadResponse.
func decodeBody(resp *http.Response) (io.Reader, error) {
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip", "x-gzip":
		return gzip.NewReader(resp.Body)
	case "deflate":
		return flate.NewReader(resp.Body), nil
	default:
		return resp.Body, nil
	}
}

// resolveOutputPath joins the mapped URL components under outDir, creating
// the intermediate directories. A file occupying a needed directory name is
// moved into the new directory under an index placeholder name; a directory
// occupying the final file name redirects the file into it the same way.
func resolveOutputPath(outDir string, parts []string) (string, error) {
	dir := outDir
	for _, component := range parts[:len(parts)-1] {
		next := filepath.Join(dir, component)
		if fi, err := os.Stat(next); err == nil && !fi.IsDir() {
			if err := displaceFile(next, component); err != nil {
				return "", err
			}
		} else if err := os.MkdirAll(next, 0777); err != nil {
			return "", err
		}
		dir = next
	}

	last := parts[len(parts)-1]
	path := filepath.Join(dir, last)
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, warcat.IndexName(last))
	}
	return path, nil
}

// displaceFile turns the file at path into a directory of the same name,
// moving the file into it under an index placeholder name.
func displaceFile(path, basename string) error {
	displaced := path + openFileSuffix
	if err := os.Rename(path, displaced); err != nil {
		return err
	}
	if err := os.MkdirAll(path, 0777); err != nil {
		return err
	}
	index := filepath.Join(path, warcat.IndexName(basename))
	log.Debugf("moving %s to %s", path, index)
	return fileutil.Rename(displaced, index)
}

func writeBody(path string, body io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	_, err = io.Copy(f, body)
	if e := f.Close(); err == nil {
		err = e
	}
	return err
}
