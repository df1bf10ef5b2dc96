package db

import (
	"bytes"
	"sort"
)

// https://en.wikipedia.org/wiki/Radix_tree

type edges[T any] []Edge[T]

func (e edges[T]) Len() int {
	return len(e)
}

func (e edges[T]) Less(i, j int) bool {
	return e[i].label < e[j].label
}

func (e edges[T]) Swap(i, j int) {
	e[i], e[j] = e[j], e[i]
}

type LeafNode[T any] struct {
	key []byte
	val T
}

// Edge points to a child node. label is the first byte of the child's prefix.
type Edge[T any] struct {
	label byte
	next  *Node[T]
}

type Node[T any] struct {
	prefix []byte
	edges  edges[T]
	leaf   *LeafNode[T] // nil if not a leaf
}

func (n *Node[T]) isLeaf() bool {
	return n.leaf != nil
}

// addEdge inserts the given edge into the node's edges in sorted order.
func (n *Node[T]) addEdge(e Edge[T]) {
	idx := sort.Search(len(n.edges), func(i int) bool {
		return n.edges[i].label >= e.label
	})
	n.edges = append(n.edges, Edge[T]{})
	copy(n.edges[idx+1:], n.edges[idx:])
	n.edges[idx] = e
}

func (n *Node[T]) findEdge(label byte) int {
	idx := sort.Search(len(n.edges), func(i int) bool {
		return n.edges[i].label >= label
	})
	if idx < len(n.edges) && n.edges[idx].label == label {
		return idx
	}
	return -1
}

func (n *Node[T]) getEdge(label byte) *Node[T] {
	if idx := n.findEdge(label); idx >= 0 {
		return n.edges[idx].next
	}
	return nil
}

func (n *Node[T]) updateEdge(label byte, node *Node[T]) {
	idx := n.findEdge(label)
	if idx < 0 {
		panic("edge not found")
	}
	n.edges[idx].next = node
}

// RaxTree maps byte strings to values and supports ordered prefix walks.
// Like HashTable it is safe for concurrent readers once writes stop.
type RaxTree[T any] struct {
	root *Node[T]
	size int
}

func NewRaxTree[T any]() *RaxTree[T] {
	return &RaxTree[T]{root: &Node[T]{}}
}

func (t *RaxTree[T]) Len() int {
	return t.size
}

// Insert adds or updates key. It returns true when the key was not present.
func (t *RaxTree[T]) Insert(key []byte, val T) bool {
	key = bytes.Clone(key)
	n := t.root
	search := key
	for {
		if len(search) == 0 {
			if n.isLeaf() {
				n.leaf.val = val
				return false
			}
			n.leaf = &LeafNode[T]{key: key, val: val}
			t.size++
			return true
		}

		parent := n
		n = n.getEdge(search[0])
		if n == nil {
			parent.addEdge(Edge[T]{
				label: search[0],
				next:  &Node[T]{prefix: search, leaf: &LeafNode[T]{key: key, val: val}},
			})
			t.size++
			return true
		}

		common := longestCommonPrefix(search, n.prefix)
		if common == len(n.prefix) {
			search = search[common:]
			continue
		}

		// Split the node at the common prefix
		split := &Node[T]{prefix: search[:common]}
		parent.updateEdge(search[0], split)
		split.addEdge(Edge[T]{label: n.prefix[common], next: n})
		n.prefix = n.prefix[common:]

		leaf := &LeafNode[T]{key: key, val: val}
		search = search[common:]
		if len(search) == 0 {
			split.leaf = leaf
		} else {
			split.addEdge(Edge[T]{label: search[0], next: &Node[T]{prefix: search, leaf: leaf}})
		}
		t.size++
		return true
	}
}

// WalkPrefix visits, in lexicographic order, every key starting with prefix
// until fn returns false.
func (t *RaxTree[T]) WalkPrefix(prefix []byte, fn func(key []byte, val T) bool) {
	n := t.root
	search := prefix
	for len(search) > 0 {
		n = n.getEdge(search[0])
		if n == nil {
			return
		}
		if bytes.HasPrefix(search, n.prefix) {
			search = search[len(n.prefix):]
			continue
		}
		if !bytes.HasPrefix(n.prefix, search) {
			return
		}
		break
	}
	walk(n, fn)
}

func walk[T any](n *Node[T], fn func(key []byte, val T) bool) bool {
	if n.isLeaf() && !fn(n.leaf.key, n.leaf.val) {
		return false
	}
	for _, e := range n.edges {
		if !walk(e.next, fn) {
			return false
		}
	}
	return true
}

func longestCommonPrefix(a, b []byte) int {
	var i int
	for i = 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			break
		}
	}
	return i
}
