// Package classify assigns every descriptor exactly one category.
//
// Rules, first match wins:
//  1. Abstract and extended by another descriptor in the set: Trait.
//  2. Sealed: Verb.
//  3. Otherwise: ObjectType.
//
// An abstract type nothing extends is a Trait only if it declares no
// fields (a marker). With fields it is ambiguous and reported as a
// classification error.
package classify

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/broady/vocabgen/ir"
)

// Classifier classifies descriptors against the set they belong to.
// It holds no mutable state.
type Classifier struct {
	set *ir.DescriptorSet
}

// New creates a classifier for set.
func New(set *ir.DescriptorSet) *Classifier {
	return &Classifier{set: set}
}

// Classify returns the category of d.
func (c *Classifier) Classify(d *ir.ClassDescriptor) (ir.Category, error) {
	if d.Abstract {
		if c.set.IsSupertype(d.Name) || len(d.Fields) == 0 {
			return ir.CategoryTrait, nil
		}
		return 0, ir.Errorf(ir.CodeClassification,
			"%s is abstract with %d fields but nothing extends it", d.Name, len(d.Fields)).
			WithDetails(map[string]any{"descriptor": d.Name.String(), "fields": len(d.Fields)})
	}
	if d.Sealed {
		return ir.CategoryVerb, nil
	}
	return ir.CategoryObjectType, nil
}

// Partition is the result of classifying a whole set.
type Partition struct {
	set        *ir.DescriptorSet
	categories map[ir.QualifiedName]ir.Category
}

// ClassifyAll classifies every descriptor in set. All ambiguous
// descriptors are reported, not just the first.
func ClassifyAll(set *ir.DescriptorSet) (*Partition, error) {
	c := New(set)
	p := &Partition{set: set, categories: make(map[ir.QualifiedName]ir.Category, set.Len())}

	var errs []error
	for _, d := range set.All() {
		cat, err := c.Classify(d)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		p.categories[d.Name] = cat
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := p.check(); err != nil {
		return nil, err
	}
	return p, nil
}

// check verifies the partition covers the set exactly once.
func (p *Partition) check() error {
	total := 0
	for _, cat := range ir.Categories() {
		total += len(p.Members(cat))
	}
	if total != p.set.Len() || len(p.categories) != p.set.Len() {
		return ir.Errorf(ir.CodeInternal, "partition covers %d of %d descriptors", total, p.set.Len())
	}
	return nil
}

// Category returns the category assigned to name.
func (p *Partition) Category(name ir.QualifiedName) (ir.Category, bool) {
	c, ok := p.categories[name]
	return c, ok
}

// Members returns the descriptors in category c, in set order.
func (p *Partition) Members(c ir.Category) []*ir.ClassDescriptor {
	var out []*ir.ClassDescriptor
	for _, d := range p.set.All() {
		if p.categories[d.Name] == c {
			out = append(out, d)
		}
	}
	return out
}

// Counts returns the number of descriptors per category.
func (p *Partition) Counts() map[ir.Category]int {
	counts := make(map[ir.Category]int, 3)
	for _, c := range p.categories {
		counts[c]++
	}
	return counts
}

// Set returns the classified descriptor set.
func (p *Partition) Set() *ir.DescriptorSet {
	return p.set
}

// Equal reports whether two partitions assign the same categories.
func (p *Partition) Equal(other *Partition) bool {
	return maps.Equal(p.categories, other.categories)
}

func (p *Partition) String() string {
	counts := p.Counts()
	parts := make([]string, 0, 3)
	for _, c := range ir.Categories() {
		parts = append(parts, fmt.Sprintf("%s=%d", c.Subdir(), counts[c]))
	}
	return fmt.Sprint(slices.Clip(parts))
}
