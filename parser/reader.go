package parser

import (
	"errors"
	"fmt"
	"io"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// This reader is needed for reading raw devices, such as \\.\c: or
// /dev/sdb. On windows such devices may only be read using sector
// alignment in whole sector numbers. This reader implements page
// aligned reading and keeps pages in an LRU cache so the many small
// header reads made while decoding a record do not each hit the disk.
type PagedReader struct {
	mu sync.Mutex

	reader   io.ReaderAt
	pagesize int64
	lru      *lru.Cache[int64, []byte]

	// Keep pages in a free list to avoid allocations.
	freelist sync.Pool

	Hits int64
	Miss int64
}

// ReadAt reads a buffer from an offset in the backing file.
//
// The following semantics are used:
//  1. Reading within the file will always fill the buffer completely
//     with n = len(buf) and err = nil
//  2. Reading a buffer that starts within the file and ends past the
//     file returns the bytes which exist with err = EOF. The tail of
//     buf is never invented.
//  3. Reading outside the bounds of the file will return n = 0 and
//     err = EOF
func (self *PagedReader) ReadAt(buf []byte, offset int64) (int, error) {
	if offset < 0 {
		return 0, io.EOF
	}

	self.mu.Lock()
	defer self.mu.Unlock()

	// Large page multiples are cheaper to delegate directly.
	if len(buf) > 10*int(self.pagesize) && len(buf)%int(self.pagesize) == 0 {
		return self.reader.ReadAt(buf, offset)
	}

	buf_idx := 0
	for buf_idx < len(buf) {
		// How much is left in this page to read?
		to_read := int(self.pagesize - offset%self.pagesize)
		if to_read > len(buf)-buf_idx {
			to_read = len(buf) - buf_idx
		}

		page := offset - offset%self.pagesize
		page_buf, pres := self.lru.Get(page)
		if pres {
			self.Hits++

		} else {
			self.Miss++
			DebugPrint("Cache miss for %#x (%#x) (%d)\n", page, self.pagesize,
				self.lru.Len())

			page_buf = self.freelist.Get().([]byte)[:self.pagesize]
			n, err := self.reader.ReadAt(page_buf, page)
			if err != nil && !errors.Is(err, io.EOF) {
				self.freelist.Put(page_buf)
				return buf_idx, err
			}

			// Entirely outside the file.
			if n == 0 {
				self.freelist.Put(page_buf)
				return buf_idx, io.EOF
			}

			// The last page of the file is cached short.
			page_buf = page_buf[:n]
			self.lru.Add(page, page_buf)
		}

		page_offset := int(offset % self.pagesize)
		if page_offset >= len(page_buf) {
			return buf_idx, io.EOF
		}

		copied := copy(buf[buf_idx:buf_idx+to_read], page_buf[page_offset:])
		offset += int64(copied)
		buf_idx += copied

		if copied < to_read {
			return buf_idx, io.EOF
		}
	}

	return buf_idx, nil
}

func (self *PagedReader) DebugString() string {
	self.mu.Lock()
	defer self.mu.Unlock()

	return fmt.Sprintf("PagedReader: pagesize %d, cached %d, hits %d, miss %d",
		self.pagesize, self.lru.Len(), self.Hits, self.Miss)
}

func (self *PagedReader) Flush() {
	self.lru.Purge()

	flusher, ok := self.reader.(Flusher)
	if ok {
		flusher.Flush()
	}
}

func NewPagedReader(reader io.ReaderAt, pagesize int64, cache_size int) (*PagedReader, error) {
	if pagesize <= 0 {
		return nil, formatErrorf("invalid page size %d", pagesize)
	}

	DebugPrint("Creating cache of size %v\n", cache_size)

	self := &PagedReader{
		reader:   reader,
		pagesize: pagesize,
	}
	self.freelist.New = func() interface{} {
		return make([]byte, pagesize)
	}

	cache, err := lru.NewWithEvict(cache_size, func(key int64, value []byte) {
		// Put the page back on the free list
		self.freelist.Put(value[:cap(value)])
	})
	if err != nil {
		return nil, err
	}

	self.lru = cache

	return self, nil
}

// Invalidate the disk cache
type Flusher interface {
	Flush()
}
