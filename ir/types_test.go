package ir

import "testing"

func TestParseQualifiedName(t *testing.T) {
	tests := []struct {
		in   string
		want QualifiedName
	}{
		{"org.example.Follow", QualifiedName{Package: "org.example", Name: "Follow"}},
		{"Follow", QualifiedName{Name: "Follow"}},
		{"github.com/acme/vocab.Follow", QualifiedName{Package: "github.com/acme/vocab", Name: "Follow"}},
		{"github.com/acme", QualifiedName{Name: "github.com/acme"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseQualifiedName(tt.in)
			if got != tt.want {
				t.Errorf("ParseQualifiedName(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if tt.want.Package != "" && got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestClassDescriptor_Normalize(t *testing.T) {
	d := &ClassDescriptor{SuperTypes: []QualifiedName{
		{Package: "b", Name: "Y"},
		{Package: "a", Name: "X"},
		{Package: "b", Name: "Y"},
	}}
	d.Normalize()
	if len(d.SuperTypes) != 2 || d.SuperTypes[0].Package != "a" {
		t.Errorf("SuperTypes = %v", d.SuperTypes)
	}
}

func TestClassDescriptor_SameShape(t *testing.T) {
	a := &ClassDescriptor{
		Name:   QualifiedName{Package: "v", Name: "Note"},
		Fields: []FieldDescriptor{{Name: "content", Type: String(), Nullable: true}},
		Doc:    Documentation{Summary: "one"},
	}
	b := a.Clone()
	b.Doc = Documentation{Summary: "two"}
	if !a.SameShape(b) {
		t.Error("descriptors differing only in docs should have the same shape")
	}

	b.Fields[0].Type = ArrayOf(String())
	if a.SameShape(b) {
		t.Error("descriptors with different field types should differ")
	}
	if a.Fields[0].Type.Kind() != KindPrimitive {
		t.Error("Clone must not share the Fields slice")
	}
}

func TestEqualExpr(t *testing.T) {
	tests := []struct {
		a, b TypeExpr
		want bool
	}{
		{Int(32), Int(32), true},
		{Int(32), Int(64), false},
		{ArrayOf(Ref("v", "A")), ArrayOf(Ref("v", "A")), true},
		{MapOf(String(), Any()), MapOf(String(), Bool()), false},
		{&Unsupported{Raw: "chan int"}, &Unsupported{Raw: "chan int"}, true},
		{nil, nil, true},
		{nil, String(), false},
	}
	for _, tt := range tests {
		if got := EqualExpr(tt.a, tt.b); got != tt.want {
			t.Errorf("EqualExpr(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestReferences(t *testing.T) {
	e := MapOf(String(), ArrayOf(Ref("v", "Link")))
	refs := References(e)
	if len(refs) != 1 || refs[0].Name != "Link" {
		t.Errorf("References() = %v", refs)
	}
}

func TestCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(c.Subdir())
		if err != nil || got != c {
			t.Errorf("ParseCategory(%q) = %v, %v", c.Subdir(), got, err)
		}
	}
	if CategoryObjectType.Subdir() != "objectTypes" {
		t.Errorf("ObjectType subdir = %q", CategoryObjectType.Subdir())
	}
	if Category(0).Valid() {
		t.Error("zero category should be invalid")
	}
}
