// Package flags holds the configuration flags shared by vocabgen commands.
package flags

import (
	"errors"
	"io/fs"
	"os"

	"github.com/broady/vocabgen"
)

// DefaultConfigFiles are tried in order when --config is not given.
var DefaultConfigFiles = []string{"vocabgen.yaml", "vocabgen.yml", "vocabgen.json", "vocabgen.toml"}

// Config selects and overrides generation options. Flags take precedence
// over the config file, and --set pairs take precedence over flags.
type Config struct {
	File        string   `help:"Config file (.yaml, .json or .toml). Defaults to vocabgen.yaml in the working directory." short:"c" name:"config" env:"VOCABGEN_CONFIG" type:"path"`
	Set         []string `help:"Override an option, e.g. --set targetPackage=org.example.vocab." short:"s" sep:"none" placeholder:"KEY=VALUE"`
	Source      []string `help:"Source packages to generate from." name:"source" env:"VOCABGEN_SOURCE_PACKAGES"`
	Package     string   `help:"Target package of generated files." name:"package" short:"p" env:"VOCABGEN_TARGET_PACKAGE"`
	Out         string   `help:"Directory the generated tree is written under." short:"o" env:"VOCABGEN_TARGET_DIRECTORY" type:"path"`
	Language    string   `help:"Output language: scala or typescript." short:"l" env:"VOCABGEN_LANGUAGE"`
	Catalog     string   `help:"Type catalog: source, java or manifest." env:"VOCABGEN_CATALOG"`
	Parallelism int      `help:"Number of concurrent renderers." short:"j" env:"VOCABGEN_PARALLELISM"`
	Prune       bool     `help:"Delete stale generated files." env:"VOCABGEN_PRUNE"`
}

// Options reads the config file, if any, and applies the flags.
func (c *Config) Options() (vocabgen.Options, error) {
	var opts vocabgen.Options
	file, err := c.configFile()
	if err != nil {
		return opts, err
	}
	if file != "" {
		if opts, err = vocabgen.LoadOptionsFile(file); err != nil {
			return opts, err
		}
	}

	if len(c.Source) > 0 {
		opts.SourcePackages = c.Source
	}
	if c.Package != "" {
		opts.TargetPackage = c.Package
	}
	if c.Out != "" {
		opts.TargetDirectory = c.Out
	}
	if c.Language != "" {
		opts.Language = c.Language
	}
	if c.Catalog != "" {
		opts.Catalog = c.Catalog
	}
	if c.Parallelism != 0 {
		opts.Parallelism = c.Parallelism
	}
	if c.Prune {
		opts.Prune = true
	}

	values, err := vocabgen.ParseOverrides(c.Set)
	if err != nil {
		return opts, err
	}
	if err := vocabgen.DecodeOverrides(&opts, values); err != nil {
		return opts, err
	}
	return opts, nil
}

// Load returns the validated configuration.
func (c *Config) Load() (vocabgen.Config, error) {
	opts, err := c.Options()
	if err != nil {
		return vocabgen.Config{}, err
	}
	return vocabgen.NewConfig(opts)
}

// ConfigFile returns the config file in use, or "" when there is none.
func (c *Config) ConfigFile() string {
	file, _ := c.configFile()
	return file
}

func (c *Config) configFile() (string, error) {
	if c.File != "" {
		return c.File, nil
	}
	for _, name := range DefaultConfigFiles {
		_, err := os.Stat(name)
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", nil
}
