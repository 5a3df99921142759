package provider

import (
	"context"
	"slices"
	"sync"

	"github.com/broady/vocabgen/ir"
)

// MemoryCatalog serves descriptors registered with Add.
// It is safe for concurrent use.
type MemoryCatalog struct {
	mu    sync.RWMutex
	types map[ir.QualifiedName]*ir.ClassDescriptor
	order []ir.QualifiedName
}

// NewMemoryCatalog creates a catalog holding descriptors.
func NewMemoryCatalog(descriptors ...*ir.ClassDescriptor) *MemoryCatalog {
	c := &MemoryCatalog{types: make(map[ir.QualifiedName]*ir.ClassDescriptor)}
	c.Add(descriptors...)
	return c
}

// Add registers descriptors, replacing any with the same name.
// Registration order is kept so catalogs can report duplicates in a
// predictable way.
func (c *MemoryCatalog) Add(descriptors ...*ir.ClassDescriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range descriptors {
		if _, ok := c.types[d.Name]; !ok {
			c.order = append(c.order, d.Name)
		}
		c.types[d.Name] = d
	}
}

// Descriptors returns every registered descriptor in registration order.
func (c *MemoryCatalog) Descriptors() []*ir.ClassDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*ir.ClassDescriptor, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.types[name])
	}
	return out
}

// ListTypesInPackages implements TypeCatalog.
func (c *MemoryCatalog) ListTypesInPackages(ctx context.Context, packages []string) ([]PackageTypes, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]PackageTypes, 0, len(packages))
	for _, pkg := range packages {
		pt := PackageTypes{Package: pkg}
		for _, name := range c.order {
			if name.Package == pkg {
				pt.Types = append(pt.Types, c.types[name].Clone())
			}
		}
		out = append(out, pt)
	}
	return out, nil
}

// Lookup implements TypeCatalog.
func (c *MemoryCatalog) Lookup(ctx context.Context, name ir.QualifiedName) (*ir.ClassDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.types[name]
	if !ok {
		return nil, notFound(name)
	}
	return d.Clone(), nil
}

// Packages returns the distinct package names in registration order.
func (c *MemoryCatalog) Packages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var pkgs []string
	for _, name := range c.order {
		if !slices.Contains(pkgs, name.Package) {
			pkgs = append(pkgs, name.Package)
		}
	}
	return pkgs
}
