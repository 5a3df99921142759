// Package loader builds the transitively closed descriptor set for a run.
package loader

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/broady/vocabgen/ir"
	"github.com/broady/vocabgen/provider"
)

// DefaultIgnoreSupertypes are platform marker types that never contribute
// structure to a vocabulary.
var DefaultIgnoreSupertypes = []string{
	"java.io.Serializable",
	"java.lang.Object",
	"java.lang.Cloneable",
	"java.lang.Comparable",
}

// Options configures Load.
type Options struct {
	// Packages seed discovery. Must be non-empty.
	Packages []string

	// IgnoreSupertypes are removed from every descriptor before the
	// supertype closure is computed.
	IgnoreSupertypes []ir.QualifiedName
}

// Load discovers every type declared in opts.Packages plus every supertype
// they transitively reference, and returns them sorted by qualified name.
//
// A package with no types, a supertype the catalog cannot resolve, two
// different declarations sharing a name, and circular inheritance are
// all discovery errors. Load never writes anything.
func Load(ctx context.Context, catalog provider.TypeCatalog, opts Options) (*ir.DescriptorSet, error) {
	if len(opts.Packages) == 0 {
		return nil, ir.NewError(ir.CodeConfiguration, "no source packages configured")
	}

	pts, err := catalog.ListTypesInPackages(ctx, opts.Packages)
	if err != nil {
		return nil, discoveryError(ctx, err, "list types")
	}

	var errs []error
	for _, pt := range pts {
		if len(pt.Types) == 0 {
			errs = append(errs, ir.Errorf(ir.CodeDiscovery, "package %s resolves to no types", pt.Package).
				WithDetail("package", pt.Package))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	c := &closure{
		ignore: opts.IgnoreSupertypes,
		byName: make(map[ir.QualifiedName]*ir.ClassDescriptor),
	}
	for _, pt := range pts {
		for _, d := range pt.Types {
			errs = append(errs, c.add(d)...)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	for len(c.pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next := c.pending[0]
		c.pending = c.pending[1:]
		if _, ok := c.byName[next.super]; ok {
			continue
		}
		d, err := catalog.Lookup(ctx, next.super)
		if errors.Is(err, provider.ErrNotFound) {
			errs = append(errs, ir.Errorf(ir.CodeDiscovery, "supertype %s of %s cannot be resolved", next.super, next.sub).
				WithDetails(map[string]any{"descriptor": next.sub.String(), "supertype": next.super.String()}))
			continue
		}
		if err != nil {
			return nil, discoveryError(ctx, err, "lookup "+next.super.String())
		}
		errs = append(errs, c.add(d)...)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	set := ir.NewDescriptorSet(c.all...)
	for _, err := range set.Validate() {
		var ve *ir.ValidationError
		if errors.As(err, &ve) {
			errs = append(errs, ir.NewError(ir.CodeDiscovery, ve.Message).
				WithDetails(map[string]any{"descriptor": ve.Type.String(), "check": ve.Code}))
			continue
		}
		errs = append(errs, ir.Wrap(ir.CodeDiscovery, err, "validate"))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return set, nil
}

type edge struct {
	sub, super ir.QualifiedName
}

type closure struct {
	ignore  []ir.QualifiedName
	byName  map[ir.QualifiedName]*ir.ClassDescriptor
	all     []*ir.ClassDescriptor
	pending []edge
}

func (c *closure) add(d *ir.ClassDescriptor) []error {
	d = d.Clone()
	d.SuperTypes = slices.DeleteFunc(d.SuperTypes, func(q ir.QualifiedName) bool {
		return slices.Contains(c.ignore, q)
	})
	d.Normalize()

	if prev, ok := c.byName[d.Name]; ok {
		if prev.SameShape(d) {
			return nil
		}
		return []error{ir.Errorf(ir.CodeDiscovery, "conflicting declarations of %s", d.Name).
			WithDetails(map[string]any{
				"descriptor": d.Name.String(),
				"first":      sourceString(prev.Source),
				"second":     sourceString(d.Source),
			})}
	}
	c.byName[d.Name] = d
	c.all = append(c.all, d)
	for _, sup := range d.SuperTypes {
		c.pending = append(c.pending, edge{sub: d.Name, super: sup})
	}
	return nil
}

func sourceString(s ir.Source) string {
	if s.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s:%d", s.File, s.Line)
}

func discoveryError(ctx context.Context, err error, op string) error {
	if ctx.Err() != nil {
		return err
	}
	var coded *ir.Error
	if errors.As(err, &coded) {
		return err
	}
	return ir.Wrap(ir.CodeDiscovery, err, op)
}

// ParseNames converts qualified name strings.
func ParseNames(names []string) []ir.QualifiedName {
	out := make([]ir.QualifiedName, 0, len(names))
	for _, n := range names {
		out = append(out, ir.ParseQualifiedName(n))
	}
	return out
}
