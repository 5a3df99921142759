package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/broady/vocabgen/ir"
	"gopkg.in/yaml.v3"
)

// Manifest is the declarative catalog format. A manifest file lists one or
// more packages and the types they declare.
type Manifest struct {
	// Requires is an optional semantic version constraint on the generator,
	// e.g. ">= 1.2, < 2".
	Requires string            `yaml:"requires,omitempty" json:"requires,omitempty" toml:"requires,omitempty"`
	Packages []ManifestPackage `yaml:"packages" json:"packages" toml:"packages"`
}

// ManifestPackage groups types declared in one package.
type ManifestPackage struct {
	Package string         `yaml:"package" json:"package" toml:"package"`
	Types   []ManifestType `yaml:"types" json:"types" toml:"types"`
}

// ManifestType declares one type. Extends entries without a dot refer to
// types in the same package.
type ManifestType struct {
	Name     string          `yaml:"name" json:"name" toml:"name"`
	Abstract bool            `yaml:"abstract,omitempty" json:"abstract,omitempty" toml:"abstract,omitempty"`
	Sealed   bool            `yaml:"sealed,omitempty" json:"sealed,omitempty" toml:"sealed,omitempty"`
	Extends  []string        `yaml:"extends,omitempty" json:"extends,omitempty" toml:"extends,omitempty"`
	Doc      string          `yaml:"doc,omitempty" json:"doc,omitempty" toml:"doc,omitempty"`
	Fields   []ManifestField `yaml:"fields,omitempty" json:"fields,omitempty" toml:"fields,omitempty"`
}

// ManifestField declares one field. Type uses the expression syntax
// understood by ParseTypeExpr.
type ManifestField struct {
	Name     string `yaml:"name" json:"name" toml:"name"`
	Type     string `yaml:"type" json:"type" toml:"type"`
	Nullable bool   `yaml:"nullable,omitempty" json:"nullable,omitempty" toml:"nullable,omitempty"`
	Doc      string `yaml:"doc,omitempty" json:"doc,omitempty" toml:"doc,omitempty"`
}

// ManifestCatalog serves descriptors declared in manifest files.
// Files are read on first use.
type ManifestCatalog struct {
	files []string

	// Version is the running generator version checked against each
	// manifest's Requires constraint. Empty or "dev" skips the check.
	Version string

	once sync.Once
	err  error
	mem  *MemoryCatalog
}

// NewManifestCatalog expands patterns (doublestar syntax, e.g.
// "schemas/**/*.yaml") into manifest files. Every pattern must match at
// least one file.
func NewManifestCatalog(patterns ...string) (*ManifestCatalog, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no manifest files specified")
	}
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid manifest pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("manifest pattern %q matched no files", pattern)
		}
		for _, m := range matches {
			if !slices.Contains(files, m) {
				files = append(files, m)
			}
		}
	}
	slices.Sort(files)
	return &ManifestCatalog{files: files}, nil
}

// Files returns the expanded manifest file list.
func (c *ManifestCatalog) Files() []string {
	return slices.Clone(c.files)
}

func (c *ManifestCatalog) catalog() (*MemoryCatalog, error) {
	c.once.Do(func() {
		mem := NewMemoryCatalog()
		for _, file := range c.files {
			m, err := ReadManifestFile(file)
			if err != nil {
				c.err = err
				return
			}
			if err := CheckRequires(m.Requires, c.Version); err != nil {
				c.err = fmt.Errorf("%s: %w", file, err)
				return
			}
			descriptors, err := m.Descriptors()
			if err != nil {
				c.err = fmt.Errorf("%s: %w", file, err)
				return
			}
			for _, d := range descriptors {
				if prev, err := mem.Lookup(context.Background(), d.Name); err == nil && !prev.SameShape(d) {
					c.err = fmt.Errorf("%s: conflicting declarations of %s", file, d.Name)
					return
				}
			}
			mem.Add(descriptors...)
		}
		c.mem = mem
	})
	return c.mem, c.err
}

// ListTypesInPackages implements TypeCatalog.
func (c *ManifestCatalog) ListTypesInPackages(ctx context.Context, packages []string) ([]PackageTypes, error) {
	mem, err := c.catalog()
	if err != nil {
		return nil, err
	}
	return mem.ListTypesInPackages(ctx, packages)
}

// Lookup implements TypeCatalog.
func (c *ManifestCatalog) Lookup(ctx context.Context, name ir.QualifiedName) (*ir.ClassDescriptor, error) {
	mem, err := c.catalog()
	if err != nil {
		return nil, err
	}
	return mem.Lookup(ctx, name)
}

// CheckRequires reports whether version satisfies constraint. An empty
// constraint, or a development build, always passes.
func CheckRequires(constraint, version string) error {
	if constraint == "" || version == "" || version == "dev" {
		return nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid generator version %s: %w", version, err)
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid version constraint %s: %w", constraint, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("manifest requires vocabgen %s, but running %s", constraint, version)
	}
	return nil
}

// ReadManifestFile decodes a manifest, choosing the format by extension:
// .yaml/.yml, .json or .toml.
func ReadManifestFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := DecodeManifest(data, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func formatOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// DecodeManifest decodes data in the named format.
func DecodeManifest(data []byte, format string) (*Manifest, error) {
	var m Manifest
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", format)
	}
	return &m, nil
}

// Descriptors converts the manifest into descriptors.
func (m *Manifest) Descriptors() ([]*ir.ClassDescriptor, error) {
	var out []*ir.ClassDescriptor
	for _, pkg := range m.Packages {
		if pkg.Package == "" {
			return nil, fmt.Errorf("manifest package without a name")
		}
		for _, t := range pkg.Types {
			if t.Name == "" {
				return nil, fmt.Errorf("type without a name in package %s", pkg.Package)
			}
			d := &ir.ClassDescriptor{
				Name:     ir.QualifiedName{Package: pkg.Package, Name: t.Name},
				Abstract: t.Abstract,
				Sealed:   t.Sealed,
				Doc:      parseDocText(t.Doc),
			}
			for _, ext := range t.Extends {
				d.SuperTypes = append(d.SuperTypes, resolveName(ext, pkg.Package))
			}
			for _, f := range t.Fields {
				typ, err := ParseTypeExpr(f.Type, pkg.Package)
				if err != nil {
					return nil, fmt.Errorf("%s.%s: %w", d.Name, f.Name, err)
				}
				d.Fields = append(d.Fields, ir.FieldDescriptor{
					Name:     f.Name,
					Type:     typ,
					Nullable: f.Nullable,
					Doc:      parseDocText(f.Doc),
				})
			}
			d.Normalize()
			out = append(out, d)
		}
	}
	return out, nil
}

func resolveName(s, pkg string) ir.QualifiedName {
	q := ir.ParseQualifiedName(s)
	if q.Package == "" {
		q.Package = pkg
	}
	return q
}

var primitiveNames = map[string]func() *ir.Primitive{
	"bool":     ir.Bool,
	"string":   ir.String,
	"int":      func() *ir.Primitive { return ir.Int(0) },
	"int8":     func() *ir.Primitive { return ir.Int(8) },
	"int16":    func() *ir.Primitive { return ir.Int(16) },
	"int32":    func() *ir.Primitive { return ir.Int(32) },
	"int64":    func() *ir.Primitive { return ir.Int(64) },
	"uint":     func() *ir.Primitive { return ir.Uint(0) },
	"uint8":    func() *ir.Primitive { return ir.Uint(8) },
	"uint16":   func() *ir.Primitive { return ir.Uint(16) },
	"uint32":   func() *ir.Primitive { return ir.Uint(32) },
	"uint64":   func() *ir.Primitive { return ir.Uint(64) },
	"float32":  func() *ir.Primitive { return ir.Float(32) },
	"float64":  func() *ir.Primitive { return ir.Float(64) },
	"bytes":    ir.Bytes,
	"time":     ir.Time,
	"duration": ir.Duration,
	"any":      ir.Any,
}

// ParseTypeExpr parses a manifest type expression:
//
//	string | int64 | float64 | bool | bytes | time | duration | any | ...
//	[]T
//	map[K]V
//	unsupported(raw)
//	Name or pkg.Name
//
// Unqualified names resolve against pkg.
func ParseTypeExpr(s, pkg string) (ir.TypeExpr, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, fmt.Errorf("empty type expression")
	case strings.HasPrefix(s, "[]"):
		elem, err := ParseTypeExpr(s[2:], pkg)
		if err != nil {
			return nil, err
		}
		return ir.ArrayOf(elem), nil
	case strings.HasPrefix(s, "map["):
		end := matchingBracket(s, len("map"))
		if end < 0 {
			return nil, fmt.Errorf("unbalanced brackets in %q", s)
		}
		key, err := ParseTypeExpr(s[len("map["):end], pkg)
		if err != nil {
			return nil, err
		}
		value, err := ParseTypeExpr(s[end+1:], pkg)
		if err != nil {
			return nil, err
		}
		return ir.MapOf(key, value), nil
	case strings.HasPrefix(s, "unsupported(") && strings.HasSuffix(s, ")"):
		return &ir.Unsupported{Raw: s[len("unsupported(") : len(s)-1]}, nil
	}
	if p, ok := primitiveNames[s]; ok {
		return p(), nil
	}
	if strings.ContainsAny(s, "[]() ") {
		return nil, fmt.Errorf("invalid type expression %q", s)
	}
	return &ir.Reference{Target: resolveName(s, pkg)}, nil
}

func matchingBracket(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// FormatTypeExpr is the inverse of ParseTypeExpr. References into pkg are
// written unqualified.
func FormatTypeExpr(e ir.TypeExpr, pkg string) string {
	switch x := e.(type) {
	case *ir.Primitive:
		name := strings.ToLower(x.PrimitiveKind.String())
		switch x.PrimitiveKind {
		case ir.PrimitiveInt, ir.PrimitiveUint, ir.PrimitiveFloat:
			if x.BitSize > 0 {
				name += strconv.Itoa(x.BitSize)
			}
		}
		return name
	case *ir.Array:
		return "[]" + FormatTypeExpr(x.Element, pkg)
	case *ir.Map:
		return "map[" + FormatTypeExpr(x.Key, pkg) + "]" + FormatTypeExpr(x.Value, pkg)
	case *ir.Reference:
		if x.Target.Package == pkg {
			return x.Target.Name
		}
		return x.Target.String()
	case *ir.Unsupported:
		return "unsupported(" + x.Raw + ")"
	}
	return "any"
}

// NewManifest builds a manifest from descriptors, grouped by package in
// lexicographic order.
func NewManifest(descriptors []*ir.ClassDescriptor) *Manifest {
	byPkg := make(map[string][]*ir.ClassDescriptor)
	var pkgs []string
	for _, d := range descriptors {
		if _, ok := byPkg[d.Name.Package]; !ok {
			pkgs = append(pkgs, d.Name.Package)
		}
		byPkg[d.Name.Package] = append(byPkg[d.Name.Package], d)
	}
	slices.Sort(pkgs)

	m := &Manifest{}
	for _, pkg := range pkgs {
		mp := ManifestPackage{Package: pkg}
		items := byPkg[pkg]
		slices.SortFunc(items, func(a, b *ir.ClassDescriptor) int {
			return strings.Compare(a.Name.Name, b.Name.Name)
		})
		for _, d := range items {
			mt := ManifestType{
				Name:     d.Name.Name,
				Abstract: d.Abstract,
				Sealed:   d.Sealed,
				Doc:      d.Doc.Body,
			}
			for _, sup := range d.SuperTypes {
				if sup.Package == pkg {
					mt.Extends = append(mt.Extends, sup.Name)
				} else {
					mt.Extends = append(mt.Extends, sup.String())
				}
			}
			for _, f := range d.Fields {
				mt.Fields = append(mt.Fields, ManifestField{
					Name:     f.Name,
					Type:     FormatTypeExpr(f.Type, pkg),
					Nullable: f.Nullable,
					Doc:      f.Doc.Body,
				})
			}
			mp.Types = append(mp.Types, mt)
		}
		m.Packages = append(m.Packages, mp)
	}
	return m
}

// WriteManifest encodes descriptors as a manifest in the named format.
func WriteManifest(w io.Writer, format string, descriptors []*ir.ClassDescriptor) error {
	m := NewManifest(descriptors)
	switch format {
	case "yaml", "yml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err := w.Write(buf.Bytes())
		return err
	case "toml":
		if err := toml.NewEncoder(w).Encode(m); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported manifest format %q", format)
	}
}
