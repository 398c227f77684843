package merkle

import (
	"sync"

	"didanchor/pkg/domain"
)

type nodeID struct {
	height int
	prefix domain.Hash
}

// Map is an in-memory sparse Merkle map. Only populated paths are stored;
// every other node is read from the precomputed empty subtree hashes.
//
// The core never uses Map. It exists for off-chain parties that need to
// produce witnesses: the indexer, the CLI and tests.
type Map struct {
	mu     sync.RWMutex
	leaves map[domain.Hash]domain.Hash
	nodes  map[nodeID]domain.Hash
}

// NewMap returns an empty map whose root is EmptyRoot().
func NewMap() *Map {
	return &Map{
		leaves: make(map[domain.Hash]domain.Hash),
		nodes:  make(map[nodeID]domain.Hash),
	}
}

// Get returns the value stored at key, zero when unset.
func (m *Map) Get(key domain.Hash) domain.Hash {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.leaves[key]
}

// Len returns the number of nonzero leaves.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.leaves)
}

// Root returns the current root.
func (m *Map) Root() domain.Hash {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.node(Depth, domain.Zero)
}

// Set writes value at key and returns the new root. Writing zero clears it.
func (m *Map) Set(key, value domain.Hash) domain.Hash {
	m.mu.Lock()
	defer m.mu.Unlock()

	if value.IsZero() {
		delete(m.leaves, key)
	} else {
		m.leaves[key] = value
	}

	current := hashLeaf(value)
	prefix := key
	m.store(0, prefix, current)
	for height := 0; height < Depth; height++ {
		bitIdx := Depth - 1 - height
		bit := prefix.Bit(bitIdx)
		sibling := m.node(height, prefix.SetBit(bitIdx, 1-bit))
		if bit == 0 {
			current = hashNode(current, sibling)
		} else {
			current = hashNode(sibling, current)
		}
		prefix = prefix.SetBit(bitIdx, 0)
		m.store(height+1, prefix, current)
	}
	return current
}

// Witness returns the authentication path for key against the current root.
func (m *Map) Witness(key domain.Hash) Witness {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path := make([]Sibling, Depth)
	prefix := key
	for height := 0; height < Depth; height++ {
		bitIdx := Depth - 1 - height
		bit := prefix.Bit(bitIdx)
		path[height] = Sibling{
			Hash:   m.node(height, prefix.SetBit(bitIdx, 1-bit)),
			IsLeft: bit == 0,
		}
		prefix = prefix.SetBit(bitIdx, 0)
	}
	return Witness{Path: path}
}

func (m *Map) node(height int, prefix domain.Hash) domain.Hash {
	if h, ok := m.nodes[nodeID{height: height, prefix: prefix}]; ok {
		return h
	}
	return emptyHashes[height]
}

func (m *Map) store(height int, prefix, h domain.Hash) {
	id := nodeID{height: height, prefix: prefix}
	if h == emptyHashes[height] {
		delete(m.nodes, id)
		return
	}
	m.nodes[id] = h
}
