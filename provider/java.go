package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/broady/vocabgen/ir"
)

// JavaCatalog discovers descriptors by parsing Java source trees.
//
// A package name maps to a directory under each source root
// ("org.example.vocab" -> "<root>/org/example/vocab"). Only top-level
// classes, interfaces and records are described.
//
//   - Interfaces and abstract classes are abstract. Interface accessors
//     (getX/isX without parameters) become fields.
//   - A type declared sealed or with a permits clause is sealed, and so is
//     any class that directly extends or implements one.
//   - Fields are nullable unless primitive or annotated @Nonnull,
//     @NotNull or @NonNull. @JsonProperty renames a field; static fields
//     and @JsonIgnore fields are skipped.
type JavaCatalog struct {
	roots []string

	mu       sync.Mutex
	parser   *sitter.Parser
	units    *lru.Cache[string, *javaUnit]
	warnings []ir.Warning
}

// NewJavaCatalog creates a catalog over the given source roots.
func NewJavaCatalog(roots ...string) (*JavaCatalog, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("no java source roots specified")
	}
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("java source root: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("java source root %s is not a directory", root)
		}
	}
	units, err := lru.New[string, *javaUnit](1024)
	if err != nil {
		return nil, err
	}
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())
	return &JavaCatalog{roots: roots, parser: p, units: units}, nil
}

// Warnings implements WarningReporter.
func (c *JavaCatalog) Warnings() []ir.Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.warnings)
}

// javaUnit is one parsed compilation unit with unresolved type names.
type javaUnit struct {
	path      string
	pkg       string
	imports   []string // single-type imports
	wildcards []string // packages imported on demand
	types     []*javaType
}

type javaType struct {
	name     string
	abstract bool
	sealed   bool // declared sealed, non-sealed or with permits
	supers   []string
	fields   []javaField
	doc      ir.Documentation
	line     int
}

type javaField struct {
	name     string
	typ      *javaTypeRef
	nullable bool
}

// javaTypeRef is a parsed type before name resolution.
type javaTypeRef struct {
	name      string // simple or scoped name, or primitive keyword
	primitive bool
	array     bool
	args      []*javaTypeRef
}

var (
	sealedPattern   = regexp.MustCompile(`(^|\s)(non-)?sealed\s`)
	permitsPattern  = regexp.MustCompile(`\bpermits\b`)
	jsonPropPattern = regexp.MustCompile(`^@(?:com\.fasterxml\.jackson\.annotation\.)?JsonProperty\(\s*(?:value\s*=\s*)?"([^"]+)"`)
)

// ListTypesInPackages implements TypeCatalog.
func (c *JavaCatalog) ListTypesInPackages(ctx context.Context, packages []string) ([]PackageTypes, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]PackageTypes, 0, len(packages))
	for _, pkg := range packages {
		pt := PackageTypes{Package: pkg}
		units, err := c.packageUnits(ctx, pkg)
		if err != nil {
			return nil, err
		}
		for _, u := range units {
			for _, t := range u.types {
				d, err := c.describe(ctx, u, t)
				if err != nil {
					return nil, err
				}
				pt.Types = append(pt.Types, d)
			}
		}
		out = append(out, pt)
	}
	return out, nil
}

// Lookup implements TypeCatalog.
func (c *JavaCatalog) Lookup(ctx context.Context, name ir.QualifiedName) (*ir.ClassDescriptor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, t, err := c.find(ctx, name)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, notFound(name)
	}
	return c.describe(ctx, u, t)
}

func packageDir(pkg string) string {
	return filepath.FromSlash(strings.ReplaceAll(pkg, ".", "/"))
}

func (c *JavaCatalog) packageFiles(pkg string) ([]string, error) {
	var files []string
	for _, root := range c.roots {
		dir := filepath.Join(root, packageDir(pkg))
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read package %s: %w", pkg, err)
		}
		for _, e := range entries {
			n := e.Name()
			if e.IsDir() || !strings.HasSuffix(n, ".java") || n == "package-info.java" || n == "module-info.java" {
				continue
			}
			files = append(files, filepath.Join(dir, n))
		}
	}
	return files, nil
}

func (c *JavaCatalog) packageUnits(ctx context.Context, pkg string) ([]*javaUnit, error) {
	files, err := c.packageFiles(pkg)
	if err != nil {
		return nil, err
	}
	var units []*javaUnit
	for _, f := range files {
		u, err := c.parse(ctx, f)
		if err != nil {
			return nil, err
		}
		if u.pkg == pkg {
			units = append(units, u)
		}
	}
	return units, nil
}

// find locates a top-level type, trying <Name>.java before scanning the
// whole package directory.
func (c *JavaCatalog) find(ctx context.Context, name ir.QualifiedName) (*javaUnit, *javaType, error) {
	for _, root := range c.roots {
		path := filepath.Join(root, packageDir(name.Package), name.Name+".java")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		u, err := c.parse(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		if t := u.lookup(name); t != nil {
			return u, t, nil
		}
	}
	units, err := c.packageUnits(ctx, name.Package)
	if err != nil {
		return nil, nil, err
	}
	for _, u := range units {
		if t := u.lookup(name); t != nil {
			return u, t, nil
		}
	}
	return nil, nil, nil
}

func (u *javaUnit) lookup(name ir.QualifiedName) *javaType {
	if u.pkg != name.Package {
		return nil
	}
	for _, t := range u.types {
		if t.name == name.Name {
			return t
		}
	}
	return nil
}

func (c *JavaCatalog) exists(name ir.QualifiedName) bool {
	for _, root := range c.roots {
		if _, err := os.Stat(filepath.Join(root, packageDir(name.Package), name.Name+".java")); err == nil {
			return true
		}
	}
	return false
}

var javaLang = map[string]bool{
	"Object": true, "String": true, "Integer": true, "Long": true, "Short": true,
	"Byte": true, "Double": true, "Float": true, "Boolean": true, "Character": true,
	"Number": true, "Comparable": true, "Cloneable": true, "Iterable": true,
}

// resolve turns a simple or scoped type name into a qualified name using
// the unit's imports.
func (c *JavaCatalog) resolve(u *javaUnit, name string) ir.QualifiedName {
	if strings.Contains(name, ".") {
		return ir.ParseQualifiedName(name)
	}
	for _, imp := range u.imports {
		if strings.HasSuffix(imp, "."+name) {
			return ir.ParseQualifiedName(imp)
		}
	}
	local := ir.QualifiedName{Package: u.pkg, Name: name}
	for _, t := range u.types {
		if t.name == name {
			return local
		}
	}
	if c.exists(local) {
		return local
	}
	for _, w := range u.wildcards {
		q := ir.QualifiedName{Package: w, Name: name}
		if c.exists(q) || isKnownJDKType(q.String()) {
			return q
		}
	}
	if javaLang[name] {
		return ir.QualifiedName{Package: "java.lang", Name: name}
	}
	return local
}

func (c *JavaCatalog) describe(ctx context.Context, u *javaUnit, t *javaType) (*ir.ClassDescriptor, error) {
	d := &ir.ClassDescriptor{
		Name:     ir.QualifiedName{Package: u.pkg, Name: t.name},
		Abstract: t.abstract,
		Sealed:   t.sealed,
		Doc:      t.doc,
		Source:   ir.Source{File: u.path, Line: t.line},
	}
	for _, s := range t.supers {
		sup := c.resolve(u, s)
		d.SuperTypes = append(d.SuperTypes, sup)
		if d.Sealed {
			continue
		}
		// Permitted subclasses join the closed family of their base.
		_, st, err := c.find(ctx, sup)
		if err != nil {
			return nil, err
		}
		if st != nil && st.sealed {
			d.Sealed = true
		}
	}
	for _, f := range t.fields {
		d.Fields = append(d.Fields, ir.FieldDescriptor{
			Name:     f.name,
			Type:     c.convertType(u, f.typ),
			Nullable: f.nullable,
		})
	}
	d.Normalize()
	return d, nil
}

var (
	javaTimeTypes = map[string]bool{
		"java.util.Date": true, "java.util.Calendar": true,
		"java.time.Instant": true, "java.time.OffsetDateTime": true,
		"java.time.ZonedDateTime": true, "java.time.LocalDateTime": true,
		"org.joda.time.DateTime": true,
	}
	javaDurationTypes = map[string]bool{
		"java.time.Duration": true, "org.joda.time.Duration": true,
	}
	javaCollections = map[string]bool{
		"java.util.List": true, "java.util.Set": true, "java.util.Collection": true,
		"java.util.ArrayList": true, "java.util.LinkedList": true,
		"java.util.HashSet": true, "java.util.LinkedHashSet": true,
		"java.util.SortedSet": true, "java.util.TreeSet": true,
		"java.lang.Iterable": true,
	}
	javaMaps = map[string]bool{
		"java.util.Map": true, "java.util.HashMap": true,
		"java.util.LinkedHashMap": true, "java.util.TreeMap": true,
		"java.util.SortedMap": true,
	}
)

func isKnownJDKType(qs string) bool {
	return javaTimeTypes[qs] || javaDurationTypes[qs] || javaCollections[qs] || javaMaps[qs]
}

func (c *JavaCatalog) convertType(u *javaUnit, ref *javaTypeRef) ir.TypeExpr {
	if ref.array {
		elem := *ref
		elem.array = false
		if elem.primitive && elem.name == "byte" {
			return ir.Bytes()
		}
		return ir.ArrayOf(c.convertType(u, &elem))
	}
	if ref.primitive {
		switch ref.name {
		case "boolean":
			return ir.Bool()
		case "byte":
			return ir.Int(8)
		case "short":
			return ir.Int(16)
		case "int":
			return ir.Int(32)
		case "long":
			return ir.Int(64)
		case "float":
			return ir.Float(32)
		case "double":
			return ir.Float(64)
		case "char":
			return ir.String()
		}
		return &ir.Unsupported{Raw: ref.name}
	}

	q := c.resolve(u, ref.name)
	qs := q.String()
	switch {
	case q.Package == "java.lang":
		switch q.Name {
		case "String", "Character":
			return ir.String()
		case "Boolean":
			return ir.Bool()
		case "Byte":
			return ir.Int(8)
		case "Short":
			return ir.Int(16)
		case "Integer":
			return ir.Int(32)
		case "Long":
			return ir.Int(64)
		case "Float":
			return ir.Float(32)
		case "Double", "Number":
			return ir.Float(64)
		case "Object":
			return ir.Any()
		case "Iterable":
			return ir.ArrayOf(c.typeArg(u, ref, 0))
		}
	case javaTimeTypes[qs]:
		return ir.Time()
	case javaDurationTypes[qs]:
		return ir.Duration()
	case javaCollections[qs]:
		return ir.ArrayOf(c.typeArg(u, ref, 0))
	case javaMaps[qs]:
		return ir.MapOf(c.typeArg(u, ref, 0), c.typeArg(u, ref, 1))
	case qs == "java.math.BigDecimal" || qs == "java.math.BigInteger":
		return &ir.Reference{Target: q}
	case qs == "java.net.URI" || qs == "java.net.URL" || qs == "java.util.UUID":
		return ir.String()
	}
	return &ir.Reference{Target: q}
}

func (c *JavaCatalog) typeArg(u *javaUnit, ref *javaTypeRef, i int) ir.TypeExpr {
	if i >= len(ref.args) {
		return ir.Any()
	}
	return c.convertType(u, ref.args[i])
}

// parse reads and parses a file, serving repeated requests from the cache.
func (c *JavaCatalog) parse(ctx context.Context, path string) (*javaUnit, error) {
	if u, ok := c.units.Get(path); ok {
		return u, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	tree, err := c.parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	u := &javaUnit{path: path}
	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			u.pkg = packageName(child, content)
		case "import_declaration":
			u.addImport(child, content)
		case "class_declaration", "interface_declaration", "record_declaration":
			u.types = append(u.types, c.parseType(child, content, path))
		case "enum_declaration", "annotation_type_declaration":
			if name := child.ChildByFieldName("name"); name != nil {
				c.warnings = append(c.warnings, ir.Warning{
					Code:     "NON_CLASS_TYPE",
					Message:  fmt.Sprintf("%s %s skipped", strings.TrimSuffix(child.Type(), "_declaration"), name.Content(content)),
					Source:   &ir.Source{File: path, Line: int(child.StartPoint().Row) + 1},
					TypeName: name.Content(content),
				})
			}
		}
	}
	c.units.Add(path, u)
	return u, nil
}

func packageName(node *sitter.Node, content []byte) string {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		n := node.NamedChild(i)
		if n.Type() == "scoped_identifier" || n.Type() == "identifier" {
			return n.Content(content)
		}
	}
	return ""
}

func (u *javaUnit) addImport(node *sitter.Node, content []byte) {
	text := strings.TrimSpace(node.Content(content))
	text = strings.TrimSuffix(strings.TrimPrefix(text, "import"), ";")
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "static ") {
		return
	}
	text = strings.ReplaceAll(text, " ", "")
	if pkg, ok := strings.CutSuffix(text, ".*"); ok {
		u.wildcards = append(u.wildcards, pkg)
		return
	}
	u.imports = append(u.imports, text)
}

func (c *JavaCatalog) parseType(node *sitter.Node, content []byte, path string) *javaType {
	t := &javaType{line: int(node.StartPoint().Row) + 1}
	if name := node.ChildByFieldName("name"); name != nil {
		t.name = name.Content(content)
	}
	body := node.ChildByFieldName("body")

	header := declarationHeader(node, body, content)
	mods, _ := modifiers(node, content)
	t.abstract = node.Type() == "interface_declaration" || slices.Contains(mods, "abstract")
	t.sealed = slices.Contains(mods, "sealed") || slices.Contains(mods, "non-sealed") ||
		sealedPattern.Match(header) || permitsPattern.Match(header)
	t.doc = javadoc(node, content)

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "superclass", "super_interfaces", "extends_interfaces":
			for _, ref := range typeNodes(child) {
				t.supers = append(t.supers, baseTypeName(ref, content))
			}
		}
	}

	switch node.Type() {
	case "record_declaration":
		if params := node.ChildByFieldName("parameters"); params != nil {
			for i := 0; i < int(params.NamedChildCount()); i++ {
				p := params.NamedChild(i)
				if p.Type() != "formal_parameter" {
					continue
				}
				_, annotations := modifiers(p, content)
				t.addField(p.ChildByFieldName("name"), p.ChildByFieldName("type"), annotations, content)
			}
		}
	}

	if body == nil {
		return t
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		mods, annotations := modifiers(member, content)
		if slices.Contains(mods, "static") {
			continue
		}
		switch member.Type() {
		case "field_declaration":
			if node.Type() == "interface_declaration" {
				// Interface fields are constants.
				continue
			}
			typ := member.ChildByFieldName("type")
			for j := 0; j < int(member.NamedChildCount()); j++ {
				decl := member.NamedChild(j)
				if decl.Type() == "variable_declarator" {
					t.addField(decl.ChildByFieldName("name"), typ, annotations, content)
				}
			}
		case "method_declaration":
			if node.Type() != "interface_declaration" || slices.Contains(mods, "default") {
				continue
			}
			if member.ChildByFieldName("body") != nil {
				continue
			}
			params := member.ChildByFieldName("parameters")
			if params != nil && params.NamedChildCount() > 0 {
				continue
			}
			name := member.ChildByFieldName("name")
			typ := member.ChildByFieldName("type")
			if name == nil || typ == nil || typ.Type() == "void_type" {
				continue
			}
			prop, ok := propertyName(name.Content(content))
			if !ok {
				continue
			}
			t.addFieldNamed(prop, typ, annotations, content)
		}
	}
	return t
}

func (t *javaType) addField(name, typ *sitter.Node, annotations []string, content []byte) {
	if name == nil || typ == nil {
		return
	}
	t.addFieldNamed(name.Content(content), typ, annotations, content)
}

func (t *javaType) addFieldNamed(name string, typ *sitter.Node, annotations []string, content []byte) {
	nullable := true
	for _, a := range annotations {
		switch annotationName(a) {
		case "JsonIgnore":
			return
		case "Nonnull", "NotNull", "NonNull":
			nullable = false
		}
		if m := jsonPropPattern.FindStringSubmatch(a); m != nil {
			name = m[1]
		}
	}
	ref := parseTypeRef(typ, content)
	if ref.primitive && !ref.array {
		nullable = false
	}
	t.fields = append(t.fields, javaField{name: name, typ: ref, nullable: nullable})
}

func annotationName(a string) string {
	a = strings.TrimPrefix(a, "@")
	if i := strings.IndexByte(a, '('); i >= 0 {
		a = a[:i]
	}
	if i := strings.LastIndexByte(a, '.'); i >= 0 {
		a = a[i+1:]
	}
	return strings.TrimSpace(a)
}

// declarationHeader returns the source of a type declaration up to its
// body with annotations and comments blanked out. Older grammars do not
// know the sealed keywords, so they are matched on this text.
func declarationHeader(node, body *sitter.Node, content []byte) []byte {
	start, end := node.StartByte(), node.EndByte()
	if body != nil {
		end = body.StartByte()
	}
	header := slices.Clone(content[start:end])
	var blank func(n *sitter.Node)
	blank = func(n *sitter.Node) {
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			if child.StartByte() >= end {
				return
			}
			switch child.Type() {
			case "marker_annotation", "annotation", "line_comment", "block_comment":
				for b := child.StartByte(); b < child.EndByte() && b < end; b++ {
					header[b-start] = ' '
				}
			case "modifiers":
				blank(child)
			}
		}
	}
	blank(node)
	return header
}

// modifiers returns the keyword modifiers and the annotations of a
// declaration.
func modifiers(node *sitter.Node, content []byte) (keywords, annotations []string) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "modifiers" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			mod := child.Child(j)
			text := strings.TrimSpace(mod.Content(content))
			switch mod.Type() {
			case "marker_annotation", "annotation":
				annotations = append(annotations, text)
			default:
				if text != "" {
					keywords = append(keywords, text)
				}
			}
		}
	}
	return keywords, annotations
}

// typeNodes collects type nodes below superclass, super_interfaces and
// extends_interfaces clauses.
func typeNodes(node *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "type_list":
			out = append(out, typeNodes(child)...)
		case "type_identifier", "scoped_type_identifier", "generic_type":
			out = append(out, child)
		}
	}
	return out
}

func baseTypeName(node *sitter.Node, content []byte) string {
	if node.Type() == "generic_type" && node.NamedChildCount() > 0 {
		return node.NamedChild(0).Content(content)
	}
	return node.Content(content)
}

func parseTypeRef(node *sitter.Node, content []byte) *javaTypeRef {
	switch node.Type() {
	case "integral_type", "floating_point_type", "boolean_type":
		return &javaTypeRef{name: node.Content(content), primitive: true}
	case "array_type":
		elem := node.ChildByFieldName("element")
		if elem == nil {
			return &javaTypeRef{name: node.Content(content)}
		}
		ref := parseTypeRef(elem, content)
		if ref.array {
			// Nested arrays become arrays of arrays.
			return &javaTypeRef{name: "java.util.List", args: []*javaTypeRef{ref}}
		}
		ref.array = true
		return ref
	case "generic_type":
		ref := &javaTypeRef{}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			switch child.Type() {
			case "type_arguments":
				for j := 0; j < int(child.NamedChildCount()); j++ {
					arg := child.NamedChild(j)
					if arg.Type() == "wildcard" {
						ref.args = append(ref.args, &javaTypeRef{name: "Object"})
						continue
					}
					ref.args = append(ref.args, parseTypeRef(arg, content))
				}
			default:
				if ref.name == "" {
					ref.name = child.Content(content)
				}
			}
		}
		return ref
	case "annotated_type":
		for i := int(node.NamedChildCount()) - 1; i >= 0; i-- {
			child := node.NamedChild(i)
			if child.Type() != "marker_annotation" && child.Type() != "annotation" {
				return parseTypeRef(child, content)
			}
		}
	}
	return &javaTypeRef{name: node.Content(content)}
}

// javadoc returns the documentation comment directly preceding node.
func javadoc(node *sitter.Node, content []byte) ir.Documentation {
	prev := node.PrevSibling()
	if prev == nil || (prev.Type() != "block_comment" && prev.Type() != "comment") {
		return ir.Documentation{}
	}
	text := prev.Content(content)
	if !strings.HasPrefix(text, "/**") {
		return ir.Documentation{}
	}
	text = strings.TrimSuffix(strings.TrimPrefix(text, "/**"), "*/")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		lines[i] = strings.TrimSpace(line)
	}
	doc := parseDocText(strings.Join(lines, "\n"))
	for i, line := range lines {
		if msg, ok := strings.CutPrefix(line, "@deprecated"); ok {
			msg = strings.TrimSpace(msg)
			doc.Deprecated = &msg
			lines = append(lines[:i], lines[i+1:]...)
			doc.Body = strings.TrimSpace(strings.Join(lines, "\n"))
			break
		}
	}
	return doc
}
