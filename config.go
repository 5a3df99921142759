package vocabgen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/broady/vocabgen/ir"
	"github.com/broady/vocabgen/loader"
	"github.com/broady/vocabgen/provider"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"gopkg.in/yaml.v3"
)

var (
	validate      = newValidator()
	schemaDecoder = schema.NewDecoder()
)

func init() {
	schemaDecoder.IgnoreUnknownKeys(false)
}

var (
	// Source packages are dotted Java-style names or Go import paths.
	sourcePackageRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*([./][A-Za-z0-9_~-][A-Za-z0-9_.~-]*)*$`)
	// Target packages are dotted identifiers.
	targetPackageRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(v.RegisterValidation("srcpkg", func(fl validator.FieldLevel) bool {
		return sourcePackageRE.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("pkgname", func(fl validator.FieldLevel) bool {
		return targetPackageRE.MatchString(fl.Field().String())
	}))
	return v
}

// Options is the serializable, mutable form of a generation config. Load
// it from a file, adjust it, then freeze it with NewConfig.
type Options struct {
	// SourcePackages seed discovery, in order.
	SourcePackages []string `yaml:"sourcePackages" json:"sourcePackages" toml:"sourcePackages" schema:"sourcePackages" validate:"required,min=1,unique,dive,required,srcpkg"`

	// TargetPackage is the root package of generated files.
	TargetPackage string `yaml:"targetPackage" json:"targetPackage" toml:"targetPackage" schema:"targetPackage" validate:"required,pkgname"`

	// TargetDirectory is the root directory the tree is written under.
	TargetDirectory string `yaml:"targetDirectory" json:"targetDirectory" toml:"targetDirectory" schema:"targetDirectory" validate:"required"`

	// Language selects the renderer: "scala" (default) or "typescript".
	Language string `yaml:"language,omitempty" json:"language,omitempty" toml:"language,omitempty" schema:"language" validate:"omitempty,oneof=scala typescript"`

	// Catalog selects discovery: "source" (default), "java" or "manifest".
	Catalog string `yaml:"catalog,omitempty" json:"catalog,omitempty" toml:"catalog,omitempty" schema:"catalog" validate:"omitempty,oneof=source java manifest"`

	// Dir is the working directory for Go package loading.
	Dir string `yaml:"dir,omitempty" json:"dir,omitempty" toml:"dir,omitempty" schema:"dir"`

	// BuildFlags are passed to the go command.
	BuildFlags []string `yaml:"buildFlags,omitempty" json:"buildFlags,omitempty" toml:"buildFlags,omitempty" schema:"buildFlags"`

	// SourceRoots are Java source roots.
	SourceRoots []string `yaml:"sourceRoots,omitempty" json:"sourceRoots,omitempty" toml:"sourceRoots,omitempty" schema:"sourceRoots" validate:"required_if=Catalog java"`

	// Manifests are manifest files or doublestar patterns.
	Manifests []string `yaml:"manifests,omitempty" json:"manifests,omitempty" toml:"manifests,omitempty" schema:"manifests" validate:"required_if=Catalog manifest"`

	// TypeMappings maps qualified source type names to literal target types.
	TypeMappings map[string]string `yaml:"typeMappings,omitempty" json:"typeMappings,omitempty" toml:"typeMappings,omitempty" schema:"-" validate:"dive,keys,required,endkeys,required"`

	// IgnoreSupertypes are stripped from every descriptor before closure.
	// Nil means loader.DefaultIgnoreSupertypes.
	IgnoreSupertypes []string `yaml:"ignoreSupertypes,omitempty" json:"ignoreSupertypes,omitempty" toml:"ignoreSupertypes,omitempty" schema:"ignoreSupertypes" validate:"dive,required"`

	// Prune deletes stale generated files.
	Prune bool `yaml:"prune,omitempty" json:"prune,omitempty" toml:"prune,omitempty" schema:"prune"`

	// Parallelism bounds concurrent rendering. Zero means 1.
	Parallelism int `yaml:"parallelism,omitempty" json:"parallelism,omitempty" toml:"parallelism,omitempty" schema:"parallelism" validate:"gte=0,lte=256"`

	// NoComments drops documentation from generated files.
	NoComments bool `yaml:"noComments,omitempty" json:"noComments,omitempty" toml:"noComments,omitempty" schema:"noComments"`

	// ReadonlyArrays emits 'readonly T[]' in TypeScript.
	ReadonlyArrays bool `yaml:"readonlyArrays,omitempty" json:"readonlyArrays,omitempty" toml:"readonlyArrays,omitempty" schema:"readonlyArrays"`

	// UnknownType is the TypeScript spelling of untyped values.
	UnknownType string `yaml:"unknownType,omitempty" json:"unknownType,omitempty" toml:"unknownType,omitempty" schema:"unknownType" validate:"omitempty,oneof=unknown any"`
}

// applyDefaults returns a copy of opts with defaults filled in.
func applyDefaults(opts Options) Options {
	// Copy slices and maps so the result shares nothing with the caller.
	result := opts
	result.SourcePackages = slices.Clone(opts.SourcePackages)
	result.BuildFlags = slices.Clone(opts.BuildFlags)
	result.SourceRoots = slices.Clone(opts.SourceRoots)
	result.Manifests = slices.Clone(opts.Manifests)
	result.TypeMappings = maps.Clone(opts.TypeMappings)
	result.IgnoreSupertypes = slices.Clone(opts.IgnoreSupertypes)

	if result.Language == "" {
		result.Language = "scala"
	}
	if result.Catalog == "" {
		result.Catalog = string(provider.KindSource)
	}
	if result.Parallelism == 0 {
		result.Parallelism = 1
	}
	if result.IgnoreSupertypes == nil {
		result.IgnoreSupertypes = slices.Clone(loader.DefaultIgnoreSupertypes)
	}
	if result.UnknownType == "" {
		result.UnknownType = "unknown"
	}
	return result
}

// Config is a validated, immutable generation config.
// The zero Config is invalid; create one with NewConfig.
type Config struct {
	opts  Options
	valid bool
}

// NewConfig validates opts and freezes a copy of it. Invalid options are
// reported as a single configuration error naming every offending field.
func NewConfig(opts Options) (Config, error) {
	o := applyDefaults(opts)
	if err := validate.Struct(o); err != nil {
		return Config{}, configurationError(err)
	}
	return Config{opts: o, valid: true}, nil
}

// Options returns a copy of the defaulted options.
func (c Config) Options() Options { return applyDefaults(c.opts) }

func (c Config) SourcePackages() []string { return slices.Clone(c.opts.SourcePackages) }
func (c Config) TargetPackage() string    { return c.opts.TargetPackage }
func (c Config) TargetDirectory() string  { return c.opts.TargetDirectory }
func (c Config) Language() string         { return c.opts.Language }
func (c Config) Prune() bool              { return c.opts.Prune }
func (c Config) Parallelism() int         { return c.opts.Parallelism }
func (c Config) Comments() bool           { return !c.opts.NoComments }

// TypeMappings returns a copy of the type mapping table.
func (c Config) TypeMappings() map[string]string { return maps.Clone(c.opts.TypeMappings) }

// IgnoreSupertypes returns the parsed names of ignored supertypes.
func (c Config) IgnoreSupertypes() []ir.QualifiedName {
	return loader.ParseNames(c.opts.IgnoreSupertypes)
}

// CatalogKind returns the configured discovery kind.
func (c Config) CatalogKind() provider.Kind { return provider.Kind(c.opts.Catalog) }

// CatalogOptions returns the options for provider.Open.
func (c Config) CatalogOptions() provider.Options {
	return provider.Options{
		Dir:         c.opts.Dir,
		BuildFlags:  slices.Clone(c.opts.BuildFlags),
		SourceRoots: slices.Clone(c.opts.SourceRoots),
		Manifests:   slices.Clone(c.opts.Manifests),
	}
}

// OutputBase returns the slash-separated directory of the target package.
func (c Config) OutputBase() string {
	return strings.ReplaceAll(c.opts.TargetPackage, ".", "/")
}

// checkTarget verifies that TargetDirectory can be created and written
// without creating anything: it probes the nearest existing ancestor.
func (c Config) checkTarget() error {
	dir := c.opts.TargetDirectory
	abs, err := filepath.Abs(dir)
	if err != nil {
		return ir.Wrap(ir.CodeConfiguration, err, "target directory").WithDetail("field", "targetDirectory")
	}
	for p := abs; ; p = filepath.Dir(p) {
		info, err := os.Stat(p)
		if errors.Is(err, fs.ErrNotExist) {
			if parent := filepath.Dir(p); parent != p {
				continue
			}
		}
		if err != nil {
			return ir.Wrap(ir.CodeConfiguration, err, "target directory "+dir).WithDetail("field", "targetDirectory")
		}
		if !info.IsDir() {
			return ir.Errorf(ir.CodeConfiguration, "target directory %s: %s is not a directory", dir, p).
				WithDetail("field", "targetDirectory")
		}
		if !writable(p) {
			return ir.Errorf(ir.CodeConfiguration, "target directory %s: %s is not writable", dir, p).
				WithDetail("field", "targetDirectory")
		}
		return nil
	}
}

// writable probes dir with a temporary file.
func writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".vocabgen-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}

// LoadOptionsFile reads options from a .yaml/.yml, .json or .toml file.
// Relative paths inside the file are left as written.
func LoadOptionsFile(path string) (Options, error) {
	var opts Options
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, ir.Wrap(ir.CodeConfiguration, err, "read config")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&opts)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&opts)
	case ".toml":
		var md toml.MetaData
		md, err = toml.Decode(string(data), &opts)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				err = fmt.Errorf("unknown keys: %v", undecoded)
			}
		}
	default:
		return opts, ir.Errorf(ir.CodeConfiguration, "config %s: unsupported format", path)
	}
	if err != nil {
		return opts, ir.Wrap(ir.CodeConfiguration, err, "config "+path)
	}
	return opts, nil
}

// DecodeOverrides applies key=value overrides onto opts. Keys are the
// schema tag names, e.g. "targetPackage" or "sourcePackages"; repeated keys
// build lists. Type mappings use the "typeMappings.<qualified name>" form.
func DecodeOverrides(opts *Options, values url.Values) error {
	plain := url.Values{}
	for key, vals := range values {
		if name, ok := strings.CutPrefix(key, "typeMappings."); ok {
			if opts.TypeMappings == nil {
				opts.TypeMappings = make(map[string]string)
			}
			opts.TypeMappings[name] = vals[len(vals)-1]
			continue
		}
		plain[key] = vals
	}
	if err := schemaDecoder.Decode(opts, plain); err != nil {
		return ir.Wrap(ir.CodeConfiguration, err, "overrides")
	}
	return nil
}

// ParseOverrides splits "key=value" strings into url.Values.
func ParseOverrides(pairs []string) (url.Values, error) {
	values := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, ir.Errorf(ir.CodeConfiguration, "override %q is not key=value", pair)
		}
		values.Add(key, value)
	}
	return values, nil
}
