package merkle

import (
	"fmt"

	"didanchor/pkg/domain"
	dErrors "didanchor/pkg/domain-errors"
)

// Sibling is one step of an authentication path.
type Sibling struct {
	Hash domain.Hash `json:"sibling"`
	// IsLeft is true when the node being authenticated is the left child,
	// i.e. the key bit at this level is 0.
	IsLeft bool `json:"is_left"`
}

// Witness is an authentication path ordered from the leaf to the root.
// It is untrusted input: every use recomputes the root and compares it with
// the committed one.
type Witness struct {
	Path []Sibling `json:"path"`
}

// Validate checks the structural shape of the path.
func (w Witness) Validate() error {
	if len(w.Path) != Depth {
		return dErrors.New(dErrors.CodeInvalidWitness,
			fmt.Sprintf("witness must have %d levels, got %d", Depth, len(w.Path)))
	}
	return nil
}

// ComputeRootAndKey returns the root the map would have if the authenticated
// leaf held value, together with the key the path authenticates.
//
// Sibling hashes are fixed by the witness, so calling this twice with the
// same witness and different values yields the roots before and after a
// single-leaf write.
func ComputeRootAndKey(w Witness, value domain.Hash) (root domain.Hash, key domain.Hash, err error) {
	if err := w.Validate(); err != nil {
		return domain.Zero, domain.Zero, err
	}
	current := hashLeaf(value)
	for level, step := range w.Path {
		if step.IsLeft {
			current = hashNode(current, step.Hash)
			continue
		}
		current = hashNode(step.Hash, current)
		key = key.SetBit(Depth-1-level, 1)
	}
	return current, key, nil
}

// Matches reports whether w authenticates value at key under root.
func Matches(w Witness, value, key, root domain.Hash) (bool, error) {
	gotRoot, gotKey, err := ComputeRootAndKey(w, value)
	if err != nil {
		return false, err
	}
	return gotRoot == root && gotKey == key, nil
}
