package user

import (
	"sync"

	"nexussync/internal/collab"
)

// Directory resolves user IDs to collaboration display profiles. Lookups
// are cached; the set of known users is effectively static in this system,
// so entries are never evicted.
type Directory struct {
	repository UserRepository

	mu    sync.Mutex
	cache map[string]collab.Profile
}

func NewDirectory(repository UserRepository) *Directory {
	return &Directory{
		repository: repository,
		cache:      make(map[string]collab.Profile),
	}
}

// Lookup implements collab.Directory.
func (d *Directory) Lookup(id string) (collab.Profile, bool) {
	d.mu.Lock()
	p, ok := d.cache[id]
	d.mu.Unlock()
	if ok {
		return p, true
	}

	u, err := d.repository.FindByID(id)
	if err != nil {
		return collab.Profile{}, false
	}

	p = u.Profile()
	d.mu.Lock()
	d.cache[id] = p
	d.mu.Unlock()
	return p, true
}
