package vocabgen

import (
	"errors"
	"strings"
	"testing"

	"github.com/broady/vocabgen/ir"
)

func TestConfigurationError_Required(t *testing.T) {
	err := configurationError(validate.Struct(Options{}))

	var e *ir.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *ir.Error, got %T", err)
	}
	if e.Code != ir.CodeConfiguration {
		t.Errorf("expected code %s, got %s", ir.CodeConfiguration, e.Code)
	}
	for _, field := range []string{"sourcePackages", "targetPackage", "targetDirectory"} {
		if e.Details[field] != "required" {
			t.Errorf("expected %s to be required, got %v", field, e.Details[field])
		}
	}
	if !strings.Contains(e.Message, "targetPackage: required") {
		t.Errorf("expected field in message, got %q", e.Message)
	}
}

func TestConfigurationError_Messages(t *testing.T) {
	opts := Options{
		SourcePackages:  []string{"org.example", "a b"},
		TargetPackage:   "1bad",
		TargetDirectory: "out",
		Catalog:         "java",
		Language:        "kotlin",
		Parallelism:     999,
	}
	err := configurationError(validate.Struct(opts))

	var e *ir.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *ir.Error, got %T", err)
	}

	tests := []struct {
		field string
		want  string
	}{
		{"sourcePackages[1]", `"a b" is not a package name or import path`},
		{"targetPackage", `"1bad" is not a dotted package name`},
		{"sourceRoots", "required when Catalog is java"},
		{"language", "must be one of: scala typescript"},
		{"parallelism", "must be at most 256"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if got := e.Details[tt.field]; got != tt.want {
				t.Errorf("expected %q, got %v", tt.want, got)
			}
		})
	}
	if _, ok := e.Details["sourcePackages[0]"]; ok {
		t.Error("valid package reported")
	}
}

func TestConfigurationError_Other(t *testing.T) {
	err := configurationError(errors.New("boom"))
	if ir.CodeOf(err) != ir.CodeConfiguration {
		t.Errorf("expected configuration code, got %s", ir.CodeOf(err))
	}
	if err.Error() != "configuration: invalid configuration: boom" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
