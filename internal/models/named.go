package models

import "unicode/utf8"

// MaxNameLength is the longest entity name the format accepts, in characters.
const MaxNameLength = 71

// Named is the identity shared by every geometric entity: a bounded name and
// a material index. Both are validated when assigned.
type Named struct {
	name     string
	material int
}

// NewNamed validates name and material and returns the pair.
func NewNamed(name string, material int) (Named, error) {
	var n Named
	if err := n.SetName(name); err != nil {
		return Named{}, err
	}
	if err := n.SetMaterial(material); err != nil {
		return Named{}, err
	}
	return n, nil
}

// Name returns the entity name.
func (n *Named) Name() string {
	return n.name
}

// SetName assigns name, rejecting names longer than MaxNameLength characters.
func (n *Named) SetName(name string) error {
	if l := utf8.RuneCountInString(name); l > MaxNameLength {
		return NewFormatError(ErrNameTooLong, "max length for name is %d, got %d", MaxNameLength, l)
	}
	n.name = name
	return nil
}

// Material returns the material index.
func (n *Named) Material() int {
	return n.material
}

// SetMaterial assigns the material index, which must not be negative.
func (n *Named) SetMaterial(material int) error {
	if material < 0 {
		return NewFormatError(ErrInvalidMaterial, "material index must be >= 0, got %d", material)
	}
	n.material = material
	return nil
}
