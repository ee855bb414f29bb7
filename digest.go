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
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"hash"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

var digestAlgorithms = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha224": sha256.New224,
	"sha256": sha256.New,
	"sha384": sha512.New384,
	"sha512": sha512.New,
}

// ParseDigestField parses a digest header value of the form
// "algorithm:encoded-digest". The encoded digest is decoded trying base64,
// base32 and base16 in that order; the first decoding that succeeds and
// matches the algorithm's digest length wins.
func ParseDigestField(s string) (algorithm string, digest []byte, err error) {
	t := strings.SplitN(s, ":", 2)
	if len(t) != 2 {
		return "", nil, newDigestError("missing ':'", s)
	}
	algorithm = strings.ToLower(t[0])
	newHash, ok := digestAlgorithms[algorithm]
	if !ok {
		return "", nil, newDigestError("unsupported digest algorithm '"+algorithm+"'", s)
	}
	size := newHash().Size()

	encoded := t[1]
	decoders := []func(string) ([]byte, error){
		base64.StdEncoding.DecodeString,
		func(s string) ([]byte, error) {
			return base32.StdEncoding.DecodeString(strings.ToUpper(s))
		},
		func(s string) ([]byte, error) {
			return hex.DecodeString(strings.ToLower(s))
		},
	}
	for _, decode := range decoders {
		if d, e := decode(encoded); e == nil && len(d) == size {
			return algorithm, d, nil
		}
	}
	return "", nil, newDigestError("cannot decode digest", s)
}

// blockDigestSource returns the byte range the block digest covers. For a
// parsed BlockWithPayload this is the retained binary view over the original
// bytes, never the re-serialized fields and payload.
func blockDigestSource(r *Record) (FileRef, error) {
	switch block := r.ContentBlock.(type) {
	case *BinaryBlock:
		return block.FileRef, nil
	case *BlockWithPayload:
		if block.Binary == nil {
			return FileRef{}, newDigestError("block has no binary view", r.RecordID())
		}
		return block.Binary.FileRef, nil
	default:
		return FileRef{}, newDigestError("record has no content block", r.RecordID())
	}
}

// VerifyBlockDigest re-hashes the record's content block and compares it to
// the WARC-Block-Digest field.
func VerifyBlockDigest(r *Record) (bool, error) {
	algorithm, want, err := ParseDigestField(r.Header.Fields.Get(WarcBlockDigest))
	if err != nil {
		return false, err
	}
	ref, err := blockDigestSource(r)
	if err != nil {
		return false, err
	}
	return hashRange(algorithm, ref, want)
}

// VerifyPayloadDigest re-hashes the payload of the record's content block
// and compares it to the WARC-Payload-Digest field.
func VerifyPayloadDigest(r *Record) (bool, error) {
	algorithm, want, err := ParseDigestField(r.Header.Fields.Get(WarcPayloadDigest))
	if err != nil {
		return false, err
	}
	block, ok := r.ContentBlock.(*BlockWithPayload)
	if !ok {
		return false, newDigestError("record has no payload", r.RecordID())
	}
	return hashRange(algorithm, block.Payload.FileRef, want)
}

func hashRange(algorithm string, ref FileRef, want []byte) (bool, error) {
	h := digestAlgorithms[algorithm]()
	src, err := ref.Open()
	if err != nil {
		return false, err
	}
	defer func() { _ = src.Close() }()
	if _, err := io.Copy(h, src); err != nil {
		return false, err
	}
	got := h.Sum(nil)
	if !bytes.Equal(got, want) {
		log.Debugf("%s digest mismatch: computed %x, recorded %x", algorithm, got, want)
		return false, nil
	}
	return true, nil
}
