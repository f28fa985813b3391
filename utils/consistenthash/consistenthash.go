// Package consistenthash maps keys onto a changing set of members so that
// adding or removing a member relocates only the keys it owned.
package consistenthash

import (
	"crypto/sha256"
	"encoding/binary"
	"slices"
	"strconv"
	"sync"
)

// Hash maps bytes onto the ring.
type Hash func(data []byte) uint32

const DefaultReplicas = 50

// Ring is safe for concurrent use.
type Ring struct {
	mu       sync.RWMutex
	hash     Hash
	replicas int
	points   []uint32
	owners   map[uint32]string
	members  map[string]struct{}
}

// New returns an empty ring with replicas virtual points per member.
// A nil fn selects the first four bytes of SHA-256.
func New(replicas int, fn Hash) *Ring {
	if replicas <= 0 {
		replicas = DefaultReplicas
	}
	if fn == nil {
		fn = sha256Hash
	}
	return &Ring{
		hash:     fn,
		replicas: replicas,
		owners:   make(map[uint32]string),
		members:  make(map[string]struct{}),
	}
}

func sha256Hash(data []byte) uint32 {
	sum := sha256.Sum256(data)
	return binary.BigEndian.Uint32(sum[:4])
}

func (r *Ring) point(member string, i int) uint32 {
	return r.hash([]byte(member + "#" + strconv.Itoa(i)))
}

// Add inserts members. Empty names and existing members are ignored.
func (r *Ring) Add(members ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range members {
		if m == "" {
			continue
		}
		if _, ok := r.members[m]; ok {
			continue
		}
		r.members[m] = struct{}{}
		for i := range r.replicas {
			p := r.point(m, i)
			r.points = append(r.points, p)
			r.owners[p] = m
		}
	}
	slices.Sort(r.points)
}

func (r *Ring) Remove(members ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range members {
		if _, ok := r.members[m]; !ok {
			continue
		}
		delete(r.members, m)
		for i := range r.replicas {
			p := r.point(m, i)
			if r.owners[p] == m {
				delete(r.owners, p)
			}
		}
	}

	r.points = r.points[:0]
	for p := range r.owners {
		r.points = append(r.points, p)
	}
	slices.Sort(r.points)
}

// Get returns the member owning key, or "" on an empty ring.
func (r *Ring) Get(key []byte) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.points) == 0 {
		return ""
	}
	h := r.hash(key)
	idx, _ := slices.BinarySearch(r.points, h)
	if idx == len(r.points) {
		idx = 0
	}
	return r.owners[r.points[idx]]
}

func (r *Ring) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
