// internal/storage/pager.go
package storage

import (
	"fmt"
	"os"
)

// Pager owns a single heap file on disk and reads/writes it one fixed-size
// Page at a time. It holds no page cache: every ReadPage is a fresh read
// from disk, matching this engine's single-threaded, rebuild-on-open
// design rather than a buffer-pool architecture.
type Pager struct {
	file *os.File
}

// OpenPager opens (creating if necessary) the heap file at path.
func OpenPager(path string) (*Pager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("open heap file %s: %w", path, err)
	}
	return &Pager{file: f}, nil
}

// Close releases the underlying file handle.
func (p *Pager) Close() error {
	return p.file.Close()
}

// NumPages reports how many full pages the heap file currently holds.
func (p *Pager) NumPages() int {
	info, err := p.file.Stat()
	if err != nil {
		return 0
	}
	return int(info.Size() / PageSize)
}

// ReadPage reads page index (0-based) from disk. Reading a page index
// equal to NumPages() is not valid; callers append via WritePage instead.
func (p *Pager) ReadPage(index int) (*Page, error) {
	buf := make([]byte, PageSize)
	off := int64(index) * PageSize
	n, err := p.file.ReadAt(buf, off)
	if err != nil && n != PageSize {
		return nil, fmt.Errorf("read page %d: %w", index, err)
	}
	return pageFromBytes(buf), nil
}

// WritePage writes page at index, extending the file if index equals the
// current page count.
func (p *Pager) WritePage(index int, page *Page) error {
	off := int64(index) * PageSize
	if _, err := p.file.WriteAt(page.Bytes(), off); err != nil {
		return fmt.Errorf("write page %d: %w", index, err)
	}
	return p.file.Sync()
}
