package ir

import "fmt"

// Category is the structural role a descriptor plays in generated code.
// Every descriptor belongs to exactly one category.
type Category int

const (
	// CategoryTrait is an abstract interface type.
	CategoryTrait Category = iota + 1
	// CategoryObjectType is a concrete leaf value type.
	CategoryObjectType
	// CategoryVerb is a variant of a closed polymorphic family.
	CategoryVerb
)

// Categories returns all categories in output order.
func Categories() []Category {
	return []Category{CategoryTrait, CategoryObjectType, CategoryVerb}
}

func (c Category) String() string {
	switch c {
	case CategoryTrait:
		return "Trait"
	case CategoryObjectType:
		return "ObjectType"
	case CategoryVerb:
		return "Verb"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Subdir returns the fixed output subdirectory for the category.
func (c Category) Subdir() string {
	switch c {
	case CategoryTrait:
		return "traits"
	case CategoryObjectType:
		return "objectTypes"
	case CategoryVerb:
		return "verbs"
	default:
		return ""
	}
}

// Valid reports whether c is one of the three defined categories.
func (c Category) Valid() bool {
	return c >= CategoryTrait && c <= CategoryVerb
}

// ParseCategory converts a name or subdirectory back into a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if s == c.String() || s == c.Subdir() {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// GeneratedFile is one rendered output file.
type GeneratedFile struct {
	// RelativePath is slash-separated and relative to the target directory.
	// It is unique across the output set.
	RelativePath string

	Category Category
	Content  []byte

	// Descriptor names the type the file was rendered from.
	Descriptor QualifiedName
}
