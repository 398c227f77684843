// Package merkle implements the sparse Merkle map commitment shared by the
// DID registry and the issuer directory.
//
// The map has a fixed depth equal to the key width (256 bits). Unpopulated
// leaves are zero, so non-membership is proven by a witness whose leaf
// recomputes to the committed root under value zero. The core never stores
// the map; it recomputes roots from caller-supplied witnesses.
package merkle

import "didanchor/pkg/domain"

// Depth is the number of levels between a leaf and the root.
const Depth = domain.HashSize * 8

var (
	leafDomain = []byte{0x00}
	nodeDomain = []byte{0x01}
)

// emptyHashes[i] is the root of an empty subtree of height i. Level 0 is the
// empty leaf, level Depth is the root of the empty map.
var emptyHashes [Depth + 1]domain.Hash

func init() {
	emptyHashes[0] = domain.Zero
	for i := 1; i <= Depth; i++ {
		emptyHashes[i] = hashNode(emptyHashes[i-1], emptyHashes[i-1])
	}
}

// EmptyRoot is the root of a map with no populated leaves.
func EmptyRoot() domain.Hash {
	return emptyHashes[Depth]
}

// hashLeaf maps a leaf value to its node hash. The empty value stays zero so
// default leaves never need materializing.
func hashLeaf(value domain.Hash) domain.Hash {
	if value.IsZero() {
		return domain.Zero
	}
	return domain.Sum(leafDomain, value[:])
}

func hashNode(left, right domain.Hash) domain.Hash {
	return domain.Sum(nodeDomain, left[:], right[:])
}
