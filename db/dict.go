package db

import (
	"hash/maphash"
)

const (
	loadFactor = 0.7
)

type Entry[K comparable, V any] struct {
	Key   K
	Value V
	Next  *Entry[K, V]
}

// HashTable is a chained hash table. It is not safe for concurrent writers,
// but any number of readers may call Get/Range once writes have stopped.
type HashTable[K comparable, V any] struct {
	Table []*Entry[K, V]
	Size  int
	Count int
	seed  maphash.Seed
}

func NewHashTable[K comparable, V any](initSize int) *HashTable[K, V] {
	if initSize < 1 {
		initSize = 1
	}
	return &HashTable[K, V]{
		Table: make([]*Entry[K, V], initSize),
		Size:  initSize,
		seed:  maphash.MakeSeed(),
	}
}

func (h *HashTable[K, V]) Hash(key K) int {
	return int(maphash.Comparable(h.seed, key) % uint64(h.Size))
}

func (h *HashTable[K, V]) Set(key K, value V) {
	// Check if we need to resize the hash table
	if float64(h.Count)/float64(h.Size) > loadFactor {
		h.resize()
	}

	index := h.Hash(key)
	entry := &Entry[K, V]{Key: key, Value: value}
	if h.Table[index] == nil {
		h.Table[index] = entry
		h.Count++
		return
	}

	curr := h.Table[index]
	for curr != nil {
		if curr.Key == key {
			curr.Value = value // Update the value
			return
		}
		if curr.Next == nil {
			curr.Next = entry
			h.Count++
			return
		}
		curr = curr.Next
	}
}

func (h *HashTable[K, V]) resize() {
	oldTable := h.Table
	h.Size *= 2
	h.Table = make([]*Entry[K, V], h.Size)
	h.Count = 0 // Reset count because we'll be re-adding the elements

	for _, entry := range oldTable {
		for entry != nil {
			h.Set(entry.Key, entry.Value)
			entry = entry.Next
		}
	}
}

func (h *HashTable[K, V]) Get(key K) (V, bool) {
	for curr := h.Table[h.Hash(key)]; curr != nil; curr = curr.Next {
		if curr.Key == key {
			return curr.Value, true
		}
	}
	var zero V
	return zero, false
}

// Len returns the number of elements in the hash table
func (h *HashTable[K, V]) Len() int {
	return h.Count
}
