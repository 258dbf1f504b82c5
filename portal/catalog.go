package portal

import (
	"sort"
	"strings"
	"sync"
)

// CatalogStore holds the authoritative in-memory copy of the book catalog.
// Records are seeded once at construction and never added or removed; only
// the Available/ReservedBy fields change, via SetAvailability.
type CatalogStore struct {
	mu    sync.Mutex
	books []Book
}

// NewCatalogStore seeds the catalog. The seed slice is copied.
func NewCatalogStore(seed []Book) *CatalogStore {
	books := make([]Book, len(seed))
	copy(books, seed)
	return &CatalogStore{books: books}
}

// Books returns a snapshot of the whole catalog.
func (c *CatalogStore) Books() []Book {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Book, len(c.books))
	copy(out, c.books)
	return out
}

// BookByID scans for the record with the given ID.
func (c *CatalogStore) BookByID(id int) (Book, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.books {
		if b.ID == id {
			return b, true
		}
	}
	return Book{}, false
}

// PhysicalBooks returns every physical book.
func (c *CatalogStore) PhysicalBooks() []Book {
	return c.byType(Physical)
}

// Ebooks returns every e-book.
func (c *CatalogStore) Ebooks() []Book {
	return c.byType(Ebook)
}

func (c *CatalogStore) byType(t BookType) []Book {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Book
	for _, b := range c.books {
		if b.Type == t {
			out = append(out, b)
		}
	}
	return out
}

// BooksByIDs returns all and only the books whose ID is in ids.
func (c *CatalogStore) BooksByIDs(ids []int) []Book {
	wanted := make(map[int]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Book
	for _, b := range c.books {
		if wanted[b.ID] {
			out = append(out, b)
		}
	}
	return out
}

// Categories returns the distinct categories in the catalog, sorted.
func (c *CatalogStore) Categories() []string {
	c.mu.Lock()
	seen := make(map[string]bool)
	for _, b := range c.books {
		seen[b.Category] = true
	}
	c.mu.Unlock()
	out := make([]string, 0, len(seen))
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// Search filters the catalog by an ANDed combination of predicates:
// exact type match when bookType is non-empty, exact category match when
// category is non-empty, and a case-insensitive substring match of query
// against title or author, or an exact substring match against the ISBN.
// A blank query matches everything.
func (c *CatalogStore) Search(query, category string, bookType BookType) []Book {
	q := strings.ToLower(strings.TrimSpace(query))
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Book
	for _, b := range c.books {
		if bookType != "" && b.Type != bookType {
			continue
		}
		if category != "" && b.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(b.Title), q) &&
			!strings.Contains(strings.ToLower(b.Author), q) &&
			!strings.Contains(b.ISBN, strings.TrimSpace(query)) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// SetAvailability replaces the Available and ReservedBy fields of the book
// with the given ID. Unknown IDs are a silent no-op.
func (c *CatalogStore) SetAvailability(id int, available bool, reservedBy string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.books {
		if c.books[i].ID == id {
			c.books[i].Available = available
			c.books[i].ReservedBy = reservedBy
			return
		}
	}
}
