package ir

import (
	"slices"
	"strings"
)

// DescriptorSet is an ordered collection of descriptors with name lookup
// and a reverse supertype index. It is read-only after construction.
type DescriptorSet struct {
	items    []*ClassDescriptor
	index    map[QualifiedName]*ClassDescriptor
	subtypes map[QualifiedName][]QualifiedName
}

// NewDescriptorSet builds a set sorted by qualified name.
// Duplicate names are kept so Validate can report them; lookup returns the
// first occurrence.
func NewDescriptorSet(descriptors ...*ClassDescriptor) *DescriptorSet {
	items := slices.Clone(descriptors)
	slices.SortStableFunc(items, func(a, b *ClassDescriptor) int {
		return compareNames(a.Name, b.Name)
	})

	s := &DescriptorSet{
		items:    items,
		index:    make(map[QualifiedName]*ClassDescriptor, len(items)),
		subtypes: make(map[QualifiedName][]QualifiedName),
	}
	for _, d := range items {
		if _, dup := s.index[d.Name]; dup {
			continue
		}
		s.index[d.Name] = d
		for _, sup := range d.SuperTypes {
			s.subtypes[sup] = append(s.subtypes[sup], d.Name)
		}
	}
	return s
}

// Len returns the number of descriptors.
func (s *DescriptorSet) Len() int { return len(s.items) }

// All returns the descriptors in lexicographic order.
// The returned slice is a copy; the descriptors are shared.
func (s *DescriptorSet) All() []*ClassDescriptor {
	return slices.Clone(s.items)
}

// Names returns every qualified name in order.
func (s *DescriptorSet) Names() []QualifiedName {
	names := make([]QualifiedName, len(s.items))
	for i, d := range s.items {
		names[i] = d.Name
	}
	return names
}

// Get looks up a descriptor by name.
func (s *DescriptorSet) Get(name QualifiedName) (*ClassDescriptor, bool) {
	d, ok := s.index[name]
	return d, ok
}

// Subtypes returns the descriptors that list name as a direct supertype.
func (s *DescriptorSet) Subtypes(name QualifiedName) []QualifiedName {
	return slices.Clone(s.subtypes[name])
}

// IsSupertype reports whether any other descriptor extends name.
func (s *DescriptorSet) IsSupertype(name QualifiedName) bool {
	for _, sub := range s.subtypes[name] {
		if sub != name {
			return true
		}
	}
	return false
}

// Ancestors returns every transitive supertype of name present in the set,
// sorted. Cycles are tolerated.
func (s *DescriptorSet) Ancestors(name QualifiedName) []QualifiedName {
	seen := map[QualifiedName]bool{name: true}
	var out []QualifiedName
	queue := []QualifiedName{name}
	for len(queue) > 0 {
		d, ok := s.index[queue[0]]
		queue = queue[1:]
		if !ok {
			continue
		}
		for _, sup := range d.SuperTypes {
			if seen[sup] {
				continue
			}
			seen[sup] = true
			out = append(out, sup)
			queue = append(queue, sup)
		}
	}
	SortNames(out)
	return out
}

// ValidationError represents a structural problem in a descriptor set.
type ValidationError struct {
	Code    string
	Message string
	Type    QualifiedName
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks the set for duplicate names, supertypes that are not in
// the set, and circular inheritance. It returns all problems found.
func (s *DescriptorSet) Validate() []error {
	var errs []error

	seen := make(map[QualifiedName]bool, len(s.items))
	for _, d := range s.items {
		if seen[d.Name] {
			errs = append(errs, &ValidationError{
				Code:    "duplicate_type",
				Message: "duplicate type name: " + d.Name.String(),
				Type:    d.Name,
			})
		}
		seen[d.Name] = true
	}

	for _, d := range s.items {
		for _, sup := range d.SuperTypes {
			if !seen[sup] {
				errs = append(errs, &ValidationError{
					Code:    "missing_supertype",
					Message: d.Name.String() + " extends unknown type: " + sup.String(),
					Type:    d.Name,
				})
			}
		}
	}

	errs = append(errs, s.detectCircularInheritance()...)
	return errs
}

func (s *DescriptorSet) detectCircularInheritance() []error {
	var errs []error
	visited := make(map[QualifiedName]bool)
	inStack := make(map[QualifiedName]bool)

	var visit func(name QualifiedName, path []string)
	visit = func(name QualifiedName, path []string) {
		if inStack[name] {
			errs = append(errs, &ValidationError{
				Code:    "circular_inheritance",
				Message: "circular inheritance detected: " + strings.Join(append(path, name.String()), " -> "),
				Type:    name,
			})
			return
		}
		if visited[name] {
			return
		}
		visited[name] = true
		inStack[name] = true
		if d, ok := s.index[name]; ok {
			for _, sup := range d.SuperTypes {
				visit(sup, append(slices.Clip(path), name.String()))
			}
		}
		inStack[name] = false
	}

	// items is sorted, so cycles are reported in a stable order.
	for _, d := range s.items {
		visit(d.Name, nil)
	}
	return errs
}
