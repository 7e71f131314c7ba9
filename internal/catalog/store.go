package catalog

import "sync/atomic"

// Store holds the catalog currently being served.  Readers call Load once per
// request and keep using that reference; a reload builds a new Catalog off to
// the side and publishes it with Swap.
type Store struct {
	cur atomic.Pointer[Catalog]
}

// NewStore returns a Store serving c.  c may be nil until the first Swap.
func NewStore(c *Catalog) *Store {
	s := &Store{}
	if c != nil {
		s.cur.Store(c)
	}
	return s
}

// Load returns the current catalog, or nil when none has been loaded.
func (s *Store) Load() *Catalog { return s.cur.Load() }

// Swap publishes c and returns the catalog it replaced.  A nil c is ignored
// so a failed rebuild can never blank the store.
func (s *Store) Swap(c *Catalog) *Catalog {
	if c == nil {
		return s.cur.Load()
	}
	return s.cur.Swap(c)
}
