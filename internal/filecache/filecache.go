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

// Package filecache keeps a small, bounded number of open archive readers so
// that repeated byte range reads against the same file do not reopen it.
// Correctness must not depend on the cache: an evicted handle is closed and
// the next access reopens the file.
package filecache

import (
	"io"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Handle is the reader type held by the cache.
type Handle interface {
	io.ReadSeeker
	io.Closer
}

type entry struct {
	name   string
	handle Handle
	mu     sync.Mutex
}

// Cache is a fixed capacity cache of open file handles keyed by path.
// Access to a cached handle is serialized per entry: With holds the entry
// lock for the duration of the callback so the handle's position is never
// raced.
type Cache struct {
	capacity int
	mu       sync.Mutex
	entries  []*entry // most recently used last
}

func New(capacity int) *Cache {
	return &Cache{capacity: capacity}
}

// With invokes f with the cached handle for name, opening it with open on a
// cache miss. The handle must not be retained after f returns.
func (c *Cache) With(name string, open func() (Handle, error), f func(Handle) error) error {
	e, err := c.acquire(name, open)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()
	return f(e.handle)
}

// acquire returns the entry for name with its lock held.
func (c *Cache) acquire(name string, open func() (Handle, error)) (*entry, error) {
	c.mu.Lock()
	for i, e := range c.entries {
		if e.name == name {
			c.entries = append(append(c.entries[:i], c.entries[i+1:]...), e)
			c.mu.Unlock()
			e.mu.Lock()
			return e, nil
		}
	}
	c.mu.Unlock()

	handle, err := open()
	if err != nil {
		return nil, err
	}
	e := &entry{name: name, handle: handle}
	e.mu.Lock()

	c.mu.Lock()
	c.entries = append(c.entries, e)
	var evicted *entry
	if len(c.entries) > c.capacity {
		evicted = c.entries[0]
		c.entries = c.entries[1:]
	}
	c.mu.Unlock()
	if evicted != nil {
		closeEntry(evicted)
	}
	return e, nil
}

// Close closes every cached handle. The cache is usable afterwards.
func (c *Cache) Close() error {
	c.mu.Lock()
	entries := c.entries
	c.entries = nil
	c.mu.Unlock()

	var err error
	for _, e := range entries {
		e.mu.Lock()
		if e2 := e.handle.Close(); e2 != nil {
			err = e2
		}
		e.mu.Unlock()
	}
	return err
}

func closeEntry(e *entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.handle.Close(); err != nil {
		log.Warnf("filecache: closing evicted handle for %s: %v", e.name, err)
	}
}
