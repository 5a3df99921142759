// Package testfixtures provides an Activity Streams style vocabulary used by
// the generator tests.
package testfixtures

import (
	"strings"
	"unicode"

	"github.com/broady/vocabgen/ir"
	"github.com/broady/vocabgen/provider"
)

// Package is the source package of the vocabulary.
const Package = "org.apache.streams.pojo.json"

// TargetPackage is the package generated code is written to in tests.
const TargetPackage = "org.apache.streams.scala"

// Expected category sizes of Vocabulary.
const (
	TraitCount      = 4
	ObjectTypeCount = 43
	VerbCount       = 89
)

// Verbs are the activity verbs, one sealed variant each.
var Verbs = strings.Fields(`accept access acknowledge add agree append approve
archive assign at attach attend author authorize borrow build cancel checkin
close complete confirm consume create delete deliver deny disagree dislike
experience favorite find flag-as-inappropriate follow give host ignore insert
install interact invite join leave like listen lose make-friend open play post
present purchase qualify read receive reject remove remove-friend replace
request request-friend resolve retract return rsvp-maybe rsvp-no rsvp-yes
satisfy save schedule search sell send share sponsor start stop-following
submit tag terminate tie unfavorite unlike unsatisfy unsave unshare update use
watch win`)

// ObjectTypes are the concrete value types.
var ObjectTypes = strings.Fields(`Alert Application Article Audio Badge Binary
Bookmark Collection Comment Device Event File Game Group Image Issue Job Note
Offer Organization Page Person Place Process Product Question Review Service
Task Video Address Contributor Generator Provider Location MediaLink Position
Hashtag Links Extensions Icon Permission Role`)

// Name returns the qualified name of a vocabulary type.
func Name(simple string) ir.QualifiedName {
	return ir.QualifiedName{Package: Package, Name: simple}
}

func ref(simple string) *ir.Reference {
	return &ir.Reference{Target: Name(simple)}
}

func field(name string, typ ir.TypeExpr, nullable bool) ir.FieldDescriptor {
	return ir.FieldDescriptor{Name: name, Type: typ, Nullable: nullable}
}

// VerbTypeName converts "flag-as-inappropriate" to "FlagAsInappropriate".
func VerbTypeName(verb string) string {
	var b strings.Builder
	for _, part := range strings.Split(verb, "-") {
		r := []rune(part)
		if len(r) == 0 {
			continue
		}
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}

// Traits returns the four abstract types.
func Traits() []*ir.ClassDescriptor {
	return []*ir.ClassDescriptor{
		{
			Name:     Name("Extensible"),
			Abstract: true,
			Doc:      ir.Documentation{Summary: "Extensible marks types that accept extension properties."},
		},
		{
			Name:       Name("ActivityObject"),
			Abstract:   true,
			SuperTypes: []ir.QualifiedName{Name("Extensible"), {Package: "java.io", Name: "Serializable"}},
			Fields: []ir.FieldDescriptor{
				field("id", ir.String(), true),
				field("objectType", ir.String(), true),
				field("displayName", ir.String(), true),
				field("content", ir.String(), true),
				field("summary", ir.String(), true),
				field("url", ir.String(), true),
				field("published", ir.Time(), true),
				field("updated", ir.Time(), true),
				field("image", ref("MediaLink"), true),
				field("author", ref("ActivityObject"), true),
				field("attachments", ir.ArrayOf(ref("ActivityObject")), true),
				field("tags", ir.ArrayOf(ir.String()), true),
				field("extensions", ref("Extensions"), true),
			},
			Doc: ir.Documentation{Summary: "ActivityObject is the base of every vocabulary object."},
		},
		{
			Name:       Name("Activity"),
			Abstract:   true,
			Sealed:     true,
			SuperTypes: []ir.QualifiedName{Name("ActivityObject")},
			Fields: []ir.FieldDescriptor{
				field("verb", ir.String(), false),
				field("actor", ref("ActivityObject"), true),
				field("object", ref("ActivityObject"), true),
				field("target", ref("ActivityObject"), true),
				field("generator", ref("Generator"), true),
				field("provider", ref("Provider"), true),
				field("title", ir.String(), true),
				field("to", ir.ArrayOf(ref("ActivityObject")), true),
			},
			Doc: ir.Documentation{Summary: "Activity describes an action taken by an actor."},
		},
		{
			Name:       Name("Media"),
			Abstract:   true,
			SuperTypes: []ir.QualifiedName{Name("ActivityObject")},
			Fields: []ir.FieldDescriptor{
				field("duration", ir.Duration(), true),
				field("height", ir.Int(32), true),
				field("width", ir.Int(32), true),
				field("stream", ref("MediaLink"), true),
			},
		},
	}
}

var objectFields = map[string][]ir.FieldDescriptor{
	"Collection": {
		field("totalItems", ir.Int(64), true),
		field("items", ir.ArrayOf(ref("ActivityObject")), true),
	},
	"Address": {
		field("streetAddress", ir.String(), true),
		field("locality", ir.String(), true),
		field("postalCode", ir.String(), true),
		field("country", ir.String(), true),
	},
	"Location": {
		field("position", ref("Position"), true),
		field("address", ref("Address"), true),
	},
	"Position": {
		field("latitude", ir.Float(64), false),
		field("longitude", ir.Float(64), false),
		field("altitude", ir.Float(64), true),
	},
	"MediaLink": {
		field("url", ir.String(), false),
		field("width", ir.Int(32), true),
		field("height", ir.Int(32), true),
		field("duration", ir.Duration(), true),
	},
	"Hashtag": {
		field("type", ir.String(), false),
		field("text", ir.String(), false),
	},
	"Links": {
		field("self", ir.String(), true),
		field("alternate", ir.ArrayOf(ir.String()), true),
	},
	"Extensions": {
		field("properties", ir.MapOf(ir.String(), ir.Any()), true),
	},
	"Binary": {
		field("data", ir.Bytes(), true),
		field("mimeType", ir.String(), true),
		field("length", ir.Int(64), true),
	},
	"Person": {
		field("emails", ir.ArrayOf(ir.String()), true),
		field("location", ref("Location"), true),
	},
	"Event": {
		field("startTime", ir.Time(), true),
		field("endTime", ir.Time(), true),
		field("attending", ref("Collection"), true),
	},
	"Product": {
		field("price", ir.Float(64), true),
		field("available", ir.Bool(), false),
	},
	"Permission": {
		field("scope", ir.String(), false),
		field("granted", ir.Bool(), false),
	},
}

// standalone object types do not extend ActivityObject.
var standalone = map[string]bool{
	"Address": true, "Location": true, "MediaLink": true, "Position": true,
	"Hashtag": true, "Links": true, "Extensions": true, "Icon": true,
	"Permission": true, "Role": true,
}

var media = map[string]bool{"Audio": true, "Image": true, "Video": true}

// Objects returns the concrete object types.
func Objects() []*ir.ClassDescriptor {
	out := make([]*ir.ClassDescriptor, 0, len(ObjectTypes))
	for _, name := range ObjectTypes {
		d := &ir.ClassDescriptor{
			Name:   Name(name),
			Fields: append([]ir.FieldDescriptor(nil), objectFields[name]...),
		}
		switch {
		case media[name]:
			d.SuperTypes = []ir.QualifiedName{Name("Media")}
		case !standalone[name]:
			d.SuperTypes = []ir.QualifiedName{Name("ActivityObject")}
		}
		out = append(out, d)
	}
	return out
}

var verbFields = map[string][]ir.FieldDescriptor{
	"purchase": {field("price", ir.Float(64), true), field("currency", ir.String(), true)},
	"share":    {field("audience", ir.ArrayOf(ref("ActivityObject")), true)},
	"schedule": {field("startTime", ir.Time(), false)},
	"tag":      {field("hashtags", ir.ArrayOf(ref("Hashtag")), true)},
	"return":   {field("reason", ir.String(), true)},
}

// VerbDescriptors returns the sealed activity variants.
func VerbDescriptors() []*ir.ClassDescriptor {
	out := make([]*ir.ClassDescriptor, 0, len(Verbs))
	for _, verb := range Verbs {
		out = append(out, &ir.ClassDescriptor{
			Name:       Name(VerbTypeName(verb)),
			Sealed:     true,
			SuperTypes: []ir.QualifiedName{Name("Activity")},
			Fields:     append([]ir.FieldDescriptor(nil), verbFields[verb]...),
		})
	}
	return out
}

// Vocabulary returns every descriptor of the vocabulary, plus the
// out-of-package java.io.Serializable marker that ActivityObject extends.
func Vocabulary() []*ir.ClassDescriptor {
	var out []*ir.ClassDescriptor
	out = append(out, Traits()...)
	out = append(out, Objects()...)
	out = append(out, VerbDescriptors()...)
	return out
}

// Serializable is the out-of-package supertype referenced by ActivityObject.
func Serializable() *ir.ClassDescriptor {
	return &ir.ClassDescriptor{
		Name:     ir.QualifiedName{Package: "java.io", Name: "Serializable"},
		Abstract: true,
	}
}

// Catalog returns a catalog serving the vocabulary and Serializable.
func Catalog() *provider.MemoryCatalog {
	return provider.NewMemoryCatalog(append(Vocabulary(), Serializable())...)
}
