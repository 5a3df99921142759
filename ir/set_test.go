package ir

import (
	"slices"
	"strings"
	"testing"
)

func desc(pkg, name string, supers ...string) *ClassDescriptor {
	d := &ClassDescriptor{Name: QualifiedName{Package: pkg, Name: name}}
	for _, s := range supers {
		d.SuperTypes = append(d.SuperTypes, ParseQualifiedName(s))
	}
	d.Normalize()
	return d
}

func TestDescriptorSet_Sorted(t *testing.T) {
	s := NewDescriptorSet(
		desc("vocab", "Like"),
		desc("vocab", "Activity"),
		desc("base", "Object"),
	)

	got := s.Names()
	want := []QualifiedName{
		{Package: "base", Name: "Object"},
		{Package: "vocab", Name: "Activity"},
		{Package: "vocab", Name: "Like"},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestDescriptorSet_Subtypes(t *testing.T) {
	s := NewDescriptorSet(
		desc("vocab", "Activity"),
		desc("vocab", "Like", "vocab.Activity"),
		desc("vocab", "Follow", "vocab.Activity"),
		desc("vocab", "Self", "vocab.Self"),
	)

	subs := s.Subtypes(QualifiedName{Package: "vocab", Name: "Activity"})
	if len(subs) != 2 || subs[0].Name != "Follow" || subs[1].Name != "Like" {
		t.Errorf("Subtypes(Activity) = %v", subs)
	}
	if !s.IsSupertype(QualifiedName{Package: "vocab", Name: "Activity"}) {
		t.Error("Activity should be a supertype")
	}
	if s.IsSupertype(QualifiedName{Package: "vocab", Name: "Like"}) {
		t.Error("Like should not be a supertype")
	}
	// Self-reference does not count.
	if s.IsSupertype(QualifiedName{Package: "vocab", Name: "Self"}) {
		t.Error("self-referencing type should not count as a supertype")
	}
}

func TestDescriptorSet_Ancestors(t *testing.T) {
	s := NewDescriptorSet(
		desc("v", "Object"),
		desc("v", "Activity", "v.Object"),
		desc("v", "Like", "v.Activity"),
	)
	got := s.Ancestors(QualifiedName{Package: "v", Name: "Like"})
	if len(got) != 2 || got[0].Name != "Activity" || got[1].Name != "Object" {
		t.Errorf("Ancestors(Like) = %v", got)
	}
}

func TestDescriptorSet_Validate(t *testing.T) {
	tests := []struct {
		name     string
		items    []*ClassDescriptor
		wantCode string
	}{
		{
			name:  "valid",
			items: []*ClassDescriptor{desc("v", "A"), desc("v", "B", "v.A")},
		},
		{
			name:     "duplicate",
			items:    []*ClassDescriptor{desc("v", "A"), desc("v", "A")},
			wantCode: "duplicate_type",
		},
		{
			name:     "missing supertype",
			items:    []*ClassDescriptor{desc("v", "B", "v.A")},
			wantCode: "missing_supertype",
		},
		{
			name:     "cycle",
			items:    []*ClassDescriptor{desc("v", "A", "v.B"), desc("v", "B", "v.A")},
			wantCode: "circular_inheritance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := NewDescriptorSet(tt.items...).Validate()
			if tt.wantCode == "" {
				if len(errs) != 0 {
					t.Fatalf("Validate() = %v, want no errors", errs)
				}
				return
			}
			if len(errs) == 0 {
				t.Fatalf("Validate() returned no errors, want %s", tt.wantCode)
			}
			ve, ok := errs[0].(*ValidationError)
			if !ok {
				t.Fatalf("error type = %T, want *ValidationError", errs[0])
			}
			if ve.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", ve.Code, tt.wantCode)
			}
		})
	}
}

func TestDescriptorSet_CycleMessage(t *testing.T) {
	errs := NewDescriptorSet(desc("v", "A", "v.B"), desc("v", "B", "v.A")).Validate()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "v.A -> v.B -> v.A") {
		t.Errorf("message = %q", errs[0].Error())
	}
}
