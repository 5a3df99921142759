// Package provider implements type catalogs that discover class descriptors
// from Go source, Java source, or declarative manifests.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/broady/vocabgen/ir"
)

// ErrNotFound is returned by Lookup when the catalog has no such type.
var ErrNotFound = errors.New("type not found")

// TypeCatalog is the read-only source of descriptors consulted by the loader.
// Implementations must not mutate descriptors after returning them.
type TypeCatalog interface {
	// ListTypesInPackages returns the types declared directly in each named
	// package, in request order. A package with no types yields an entry
	// with an empty Types slice rather than an error.
	ListTypesInPackages(ctx context.Context, packages []string) ([]PackageTypes, error)

	// Lookup resolves a single type by qualified name, typically a supertype
	// declared outside the requested packages. It returns an error wrapping
	// ErrNotFound if the type is unknown.
	Lookup(ctx context.Context, name ir.QualifiedName) (*ir.ClassDescriptor, error)
}

// PackageTypes groups the descriptors declared in one package.
type PackageTypes struct {
	Package string
	Types   []*ir.ClassDescriptor
}

// WarningReporter is implemented by catalogs that skip unsupported
// declarations instead of failing.
type WarningReporter interface {
	Warnings() []ir.Warning
}

// Kind selects a catalog implementation.
type Kind string

const (
	KindSource   Kind = "source"   // Go packages via go/packages
	KindJava     Kind = "java"     // Java source trees via tree-sitter
	KindManifest Kind = "manifest" // YAML, JSON or TOML manifests
)

// Options configures Open. Only the fields relevant to the chosen kind are
// read.
type Options struct {
	// Dir is the working directory for Go package loading.
	Dir string

	// BuildFlags are passed to the go command when loading Go packages.
	BuildFlags []string

	// SourceRoots are the Java source roots, e.g. "src/main/java".
	SourceRoots []string

	// Manifests are manifest file paths or doublestar patterns.
	Manifests []string

	// GeneratorVersion is checked against manifest version constraints.
	GeneratorVersion string
}

// Open returns the catalog implementation for kind.
func Open(kind Kind, opts Options) (TypeCatalog, error) {
	switch kind {
	case KindSource, "":
		return NewSourceCatalog(opts.Dir, opts.BuildFlags...), nil
	case KindJava:
		return NewJavaCatalog(opts.SourceRoots...)
	case KindManifest:
		c, err := NewManifestCatalog(opts.Manifests...)
		if err != nil {
			return nil, err
		}
		c.Version = opts.GeneratorVersion
		return c, nil
	default:
		return nil, fmt.Errorf("unknown catalog kind %q", kind)
	}
}

func notFound(name ir.QualifiedName) error {
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}
