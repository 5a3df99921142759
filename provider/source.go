package provider

import (
	"context"
	"fmt"
	"go/ast"
	"go/types"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/broady/vocabgen/ir"
	"golang.org/x/tools/go/packages"
)

// SourceCatalog discovers descriptors by analyzing Go packages.
//
// Mapping rules:
//   - A named struct is concrete. Embedded named types without a json tag
//     are supertypes, and so is every named non-empty interface from the
//     loaded packages that the struct implements.
//   - A named interface is abstract. Accessor methods (no parameters, one
//     result) become fields; embedded interfaces are supertypes.
//   - An interface with an unexported method is sealed: only its own
//     package can implement it. Structs implementing a sealed interface are
//     sealed variants.
//   - Generic types and other named types are skipped with a warning.
//   - A //vocabgen:abstract directive makes a struct abstract and
//     //vocabgen:ignore skips a type.
type SourceCatalog struct {
	dir        string
	buildFlags []string

	mu       sync.Mutex
	pkgs     []*packages.Package
	objects  map[ir.QualifiedName]*types.TypeName
	built    map[ir.QualifiedName]*ir.ClassDescriptor
	ifaces   []*types.Named
	warnings []ir.Warning
}

// NewSourceCatalog creates a catalog that loads packages relative to dir.
func NewSourceCatalog(dir string, buildFlags ...string) *SourceCatalog {
	return &SourceCatalog{
		dir:        dir,
		buildFlags: buildFlags,
		objects:    make(map[ir.QualifiedName]*types.TypeName),
		built:      make(map[ir.QualifiedName]*ir.ClassDescriptor),
	}
}

// Warnings implements WarningReporter.
func (c *SourceCatalog) Warnings() []ir.Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.warnings)
}

func (c *SourceCatalog) load(ctx context.Context, patterns ...string) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Context:    ctx,
		Dir:        c.dir,
		BuildFlags: c.buildFlags,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedImports |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s has errors: %v", pkg.PkgPath, pkg.Errors)
		}
	}
	c.pkgs = append(c.pkgs, pkgs...)
	return pkgs, nil
}

// ListTypesInPackages implements TypeCatalog. Packages are Go import paths
// or patterns relative to the catalog directory.
func (c *SourceCatalog) ListTypesInPackages(ctx context.Context, names []string) ([]PackageTypes, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pkgs, err := c.load(ctx, names...)
	if err != nil {
		return nil, err
	}

	// Interfaces are collected first so struct supertypes can be resolved
	// regardless of declaration order.
	for _, pkg := range pkgs {
		c.collectInterfaces(pkg.Types)
	}

	out := make([]PackageTypes, 0, len(names))
	for _, name := range names {
		pt := PackageTypes{Package: name}
		pkg := c.matchPackage(name, pkgs)
		if pkg == nil {
			out = append(out, pt)
			continue
		}
		scope := pkg.Types.Scope()
		for _, n := range scope.Names() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			tn, ok := scope.Lookup(n).(*types.TypeName)
			if !ok || !tn.Exported() {
				continue
			}
			if d := c.describe(tn); d != nil {
				pt.Types = append(pt.Types, d.Clone())
			}
		}
		out = append(out, pt)
	}
	return out, nil
}

// Lookup implements TypeCatalog.
func (c *SourceCatalog) Lookup(ctx context.Context, name ir.QualifiedName) (*ir.ClassDescriptor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d, ok := c.built[name]; ok {
		return d.Clone(), nil
	}
	tn, ok := c.objects[name]
	if !ok {
		pkgs, err := c.load(ctx, name.Package)
		if err != nil {
			return nil, err
		}
		for _, pkg := range pkgs {
			if pkg.Types == nil || pkg.PkgPath != name.Package {
				continue
			}
			c.collectInterfaces(pkg.Types)
			tn, _ = pkg.Types.Scope().Lookup(name.Name).(*types.TypeName)
		}
	}
	if tn == nil {
		return nil, notFound(name)
	}
	d := c.describe(tn)
	if d == nil {
		return nil, fmt.Errorf("%s is not a struct or interface: %w", name, ErrNotFound)
	}
	return d.Clone(), nil
}

func (c *SourceCatalog) matchPackage(name string, pkgs []*packages.Package) *packages.Package {
	for _, pkg := range pkgs {
		if pkg.PkgPath == name {
			return pkg
		}
	}
	if !strings.HasPrefix(name, ".") {
		return nil
	}
	dir, err := filepath.Abs(filepath.Join(c.dir, name))
	if err != nil {
		return nil
	}
	for _, pkg := range pkgs {
		if len(pkg.GoFiles) > 0 && filepath.Dir(pkg.GoFiles[0]) == dir {
			return pkg
		}
	}
	return nil
}

func (c *SourceCatalog) collectInterfaces(pkg *types.Package) {
	if pkg == nil {
		return
	}
	scope := pkg.Scope()
	for _, n := range scope.Names() {
		tn, ok := scope.Lookup(n).(*types.TypeName)
		if !ok || tn.IsAlias() {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok || named.TypeParams().Len() > 0 {
			continue
		}
		iface, ok := named.Underlying().(*types.Interface)
		if !ok || iface.Empty() || slices.Contains(c.ifaces, named) {
			continue
		}
		c.ifaces = append(c.ifaces, named)
	}
}

func (c *SourceCatalog) qualifiedName(obj types.Object) ir.QualifiedName {
	q := ir.QualifiedName{Name: obj.Name()}
	if obj.Pkg() != nil {
		q.Package = obj.Pkg().Path()
	}
	return q
}

func (c *SourceCatalog) warn(code, typeName, format string, args ...any) {
	c.warnings = append(c.warnings, ir.Warning{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		TypeName: typeName,
	})
}

// describe converts a named type. It returns nil for declarations that have
// no descriptor form.
func (c *SourceCatalog) describe(tn *types.TypeName) *ir.ClassDescriptor {
	name := c.qualifiedName(tn)
	if d, ok := c.built[name]; ok {
		return d
	}
	c.objects[name] = tn

	if tn.IsAlias() {
		c.warn("ALIAS_SKIPPED", name.String(), "type alias %s skipped", name)
		return nil
	}
	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil
	}
	if named.TypeParams().Len() > 0 {
		c.warn("GENERIC_TYPE", name.String(), "generic type %s skipped", name)
		return nil
	}

	spec, doc := c.findTypeSpec(tn)
	found, unknown := directives(doc)
	for _, u := range unknown {
		c.warn("UNKNOWN_DIRECTIVE", name.String(), "unknown directive %s%s on %s", directivePrefix, u, name)
	}
	if found[directiveIgnore] {
		return nil
	}
	d := &ir.ClassDescriptor{
		Name:   name,
		Doc:    parseDocumentation(doc),
		Source: c.extractSource(tn),
	}

	switch u := named.Underlying().(type) {
	case *types.Struct:
		c.buildStruct(d, named, u)
	case *types.Interface:
		c.buildInterface(d, u, spec)
	default:
		c.warn("NON_CLASS_TYPE", name.String(), "%s is a %s, not a struct or interface", name, u)
		return nil
	}

	if found[directiveAbstract] {
		d.Abstract = true
	}
	d.Normalize()
	c.built[name] = d
	return d
}

func (c *SourceCatalog) buildInterface(d *ir.ClassDescriptor, iface *types.Interface, spec *ast.TypeSpec) {
	d.Abstract = true

	for i := 0; i < iface.NumEmbeddeds(); i++ {
		named, ok := types.Unalias(iface.EmbeddedType(i)).(*types.Named)
		if !ok {
			continue
		}
		if _, ok := named.Underlying().(*types.Interface); ok {
			d.SuperTypes = append(d.SuperTypes, c.qualifiedName(named.Obj()))
			c.objects[c.qualifiedName(named.Obj())] = named.Obj()
		}
	}

	methods := make([]*types.Func, 0, iface.NumExplicitMethods())
	for i := 0; i < iface.NumExplicitMethods(); i++ {
		methods = append(methods, iface.ExplicitMethod(i))
	}
	// ExplicitMethod orders by Id; fields follow declaration order.
	order := declaredMethodOrder(spec)
	slices.SortStableFunc(methods, func(a, b *types.Func) int {
		return slices.Index(order, a.Name()) - slices.Index(order, b.Name())
	})

	for _, m := range methods {
		if !m.Exported() {
			d.Sealed = true
			continue
		}
		sig := m.Type().(*types.Signature)
		if sig.Params().Len() != 0 || sig.Results().Len() != 1 {
			c.warn("METHOD_SKIPPED", d.Name.String(), "method %s.%s is not an accessor", d.Name.Name, m.Name())
			continue
		}
		typ, nullable := c.convertType(sig.Results().At(0).Type())
		d.Fields = append(d.Fields, ir.FieldDescriptor{
			Name:     lowerCamel(m.Name()),
			Type:     typ,
			Nullable: nullable,
		})
	}
}

func (c *SourceCatalog) buildStruct(d *ir.ClassDescriptor, named *types.Named, st *types.Struct) {
	var embedded []*types.Named
	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		jsonName, jsonOpts := parseJSONTag(st.Tag(i))
		if jsonName == "-" {
			continue
		}

		if field.Embedded() && jsonName == "" {
			ft := types.Unalias(field.Type())
			if ptr, ok := ft.(*types.Pointer); ok {
				ft = types.Unalias(ptr.Elem())
			}
			if en, ok := ft.(*types.Named); ok {
				d.SuperTypes = append(d.SuperTypes, c.qualifiedName(en.Obj()))
				c.objects[c.qualifiedName(en.Obj())] = en.Obj()
				embedded = append(embedded, en)
			}
			continue
		}
		if !field.Exported() {
			continue
		}

		typ, nullable := c.convertType(field.Type())
		if slices.Contains(jsonOpts, "omitempty") || slices.Contains(jsonOpts, "omitzero") {
			nullable = true
		}
		name := jsonName
		if name == "" {
			name = lowerCamel(field.Name())
		}
		d.Fields = append(d.Fields, ir.FieldDescriptor{
			Name:     name,
			Type:     typ,
			Nullable: nullable,
		})
	}

	var implemented []*types.Named
	ptr := types.NewPointer(named)
	for _, in := range c.ifaces {
		iface := in.Underlying().(*types.Interface)
		if types.Implements(named, iface) || types.Implements(ptr, iface) {
			implemented = append(implemented, in)
			if isSealedInterface(iface) {
				d.Sealed = true
			}
		}
	}

	// Only the most specific interfaces are direct supertypes.
	for _, in := range implemented {
		iface := in.Underlying().(*types.Interface)
		redundant := false
		for _, other := range implemented {
			if other != in && types.Implements(other.Underlying(), iface) {
				redundant = true
				break
			}
		}
		for _, e := range embedded {
			if types.Implements(e, iface) || types.Implements(types.NewPointer(e), iface) {
				redundant = true
				break
			}
		}
		if !redundant {
			d.SuperTypes = append(d.SuperTypes, c.qualifiedName(in.Obj()))
			c.objects[c.qualifiedName(in.Obj())] = in.Obj()
		}
	}
}

func isSealedInterface(iface *types.Interface) bool {
	for i := 0; i < iface.NumMethods(); i++ {
		if !iface.Method(i).Exported() {
			return true
		}
	}
	return false
}

// convertType maps a Go type to a type expression. The boolean reports
// whether the value may be absent.
func (c *SourceCatalog) convertType(t types.Type) (ir.TypeExpr, bool) {
	switch typ := t.(type) {
	case *types.Alias:
		return c.convertType(types.Unalias(typ))

	case *types.Pointer:
		elem, _ := c.convertType(typ.Elem())
		return elem, true

	case *types.Basic:
		return convertBasicType(typ), false

	case *types.Slice:
		if basic, ok := typ.Elem().(*types.Basic); ok && basic.Kind() == types.Byte {
			return ir.Bytes(), false
		}
		elem, _ := c.convertType(typ.Elem())
		return ir.ArrayOf(elem), false

	case *types.Array:
		elem, _ := c.convertType(typ.Elem())
		return ir.ArrayOf(elem), false

	case *types.Map:
		key, _ := c.convertType(typ.Key())
		value, _ := c.convertType(typ.Elem())
		return ir.MapOf(key, value), false

	case *types.Named:
		obj := typ.Obj()
		if obj.Pkg() != nil && obj.Pkg().Path() == "time" {
			switch obj.Name() {
			case "Time":
				return ir.Time(), false
			case "Duration":
				return ir.Duration(), false
			}
		}
		switch u := typ.Underlying().(type) {
		case *types.Struct:
			c.objects[c.qualifiedName(obj)] = obj
			return &ir.Reference{Target: c.qualifiedName(obj)}, false
		case *types.Interface:
			if u.Empty() {
				return ir.Any(), true
			}
			c.objects[c.qualifiedName(obj)] = obj
			return &ir.Reference{Target: c.qualifiedName(obj)}, true
		default:
			// Defined types over basic, slice or map types carry no extra
			// structure.
			return c.convertType(u)
		}

	case *types.Interface:
		if !typ.Empty() {
			c.warn("INTERFACE_TYPE", "", "anonymous interface %s mapped to any", typ)
		}
		return ir.Any(), true

	default:
		// Channels, functions, anonymous structs and type parameters.
		return &ir.Unsupported{Raw: t.String()}, false
	}
}

func convertBasicType(basic *types.Basic) ir.TypeExpr {
	switch basic.Kind() {
	case types.Bool:
		return ir.Bool()
	case types.String:
		return ir.String()
	case types.Int:
		return ir.Int(0)
	case types.Int8:
		return ir.Int(8)
	case types.Int16:
		return ir.Int(16)
	case types.Int32:
		return ir.Int(32)
	case types.Int64:
		return ir.Int(64)
	case types.Uint, types.Uintptr:
		return ir.Uint(0)
	case types.Uint8:
		return ir.Uint(8)
	case types.Uint16:
		return ir.Uint(16)
	case types.Uint32:
		return ir.Uint(32)
	case types.Uint64:
		return ir.Uint(64)
	case types.Float32:
		return ir.Float(32)
	case types.Float64:
		return ir.Float(64)
	default:
		return &ir.Unsupported{Raw: basic.String()}
	}
}

// findTypeSpec locates the declaration of obj in the loaded syntax trees.
// Types from packages loaded without syntax return nil.
func (c *SourceCatalog) findTypeSpec(obj types.Object) (*ast.TypeSpec, *ast.CommentGroup) {
	pos := obj.Pos()
	for _, pkg := range c.pkgs {
		if pkg.Types != obj.Pkg() {
			continue
		}
		for _, file := range pkg.Syntax {
			if file.Pos() > pos || file.End() < pos {
				continue
			}
			var spec *ast.TypeSpec
			var doc *ast.CommentGroup
			ast.Inspect(file, func(n ast.Node) bool {
				decl, ok := n.(*ast.GenDecl)
				if !ok {
					return spec == nil
				}
				for _, s := range decl.Specs {
					if ts, ok := s.(*ast.TypeSpec); ok && ts.Name.Pos() == pos {
						spec, doc = ts, ts.Doc
						if doc == nil {
							doc = decl.Doc
						}
						return false
					}
				}
				return true
			})
			if spec != nil {
				return spec, doc
			}
		}
	}
	return nil, nil
}

func declaredMethodOrder(spec *ast.TypeSpec) []string {
	if spec == nil {
		return nil
	}
	it, ok := spec.Type.(*ast.InterfaceType)
	if !ok || it.Methods == nil {
		return nil
	}
	var order []string
	for _, f := range it.Methods.List {
		for _, n := range f.Names {
			order = append(order, n.Name)
		}
	}
	return order
}

func (c *SourceCatalog) extractSource(obj types.Object) ir.Source {
	pos := obj.Pos()
	if !pos.IsValid() {
		return ir.Source{}
	}
	for _, pkg := range c.pkgs {
		if pkg.Fset != nil && pkg.Types == obj.Pkg() {
			position := pkg.Fset.Position(pos)
			return ir.Source{
				File:   position.Filename,
				Line:   position.Line,
				Column: position.Column,
			}
		}
	}
	return ir.Source{}
}

// parseDocumentation parses a comment group into Documentation.
func parseDocumentation(cg *ast.CommentGroup) ir.Documentation {
	if cg == nil {
		return ir.Documentation{}
	}
	return parseDocText(cg.Text())
}

func parseDocText(text string) ir.Documentation {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return ir.Documentation{}
	}

	var deprecated *string
	for i, line := range lines {
		if msg, ok := strings.CutPrefix(line, "Deprecated:"); ok {
			msg = strings.TrimSpace(msg)
			deprecated = &msg
			lines = append(lines[:i], lines[i+1:]...)
			break
		}
	}

	var summary string
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			summary = trimmed
			break
		}
	}

	return ir.Documentation{
		Summary:    summary,
		Body:       strings.TrimSpace(strings.Join(lines, "\n")),
		Deprecated: deprecated,
	}
}

// parseJSONTag parses the json struct tag.
func parseJSONTag(tag string) (name string, opts []string) {
	jsonTag := parseStructTag(tag)["json"]
	if jsonTag == "" {
		return "", nil
	}
	parts := strings.Split(jsonTag, ",")
	return parts[0], parts[1:]
}

// parseStructTag parses a struct tag string into a map.
func parseStructTag(tag string) map[string]string {
	result := make(map[string]string)
	for tag != "" {
		i := 0
		for i < len(tag) && tag[i] == ' ' {
			i++
		}
		tag = tag[i:]
		if tag == "" {
			break
		}

		i = 0
		for i < len(tag) && tag[i] != ':' && tag[i] != ' ' {
			i++
		}
		if i == 0 || i+1 >= len(tag) || tag[i] != ':' {
			break
		}
		key := tag[:i]
		tag = tag[i+1:]

		if tag[0] != '"' {
			break
		}
		i = 1
		for i < len(tag) && tag[i] != '"' {
			if tag[i] == '\\' {
				i++
			}
			i++
		}
		if i >= len(tag) {
			break
		}
		result[key] = tag[1:i]
		tag = tag[i+1:]
	}
	return result
}
