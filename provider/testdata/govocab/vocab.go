// Package govocab is a small vocabulary used by the source catalog tests.
package govocab

import "time"

// Object is the root of the vocabulary.
type Object interface {
	ID() string
	DisplayName() *string
}

// Activity is the closed family of actions.
type Activity interface {
	Object
	Actor() Object
	activity()
}

// Marker has no members.
//
//vocabgen:final
type Marker interface {
	Marker()
}

// Base carries the fields every concrete object shares.
//
//vocabgen:abstract
type Base struct {
	Identifier string  `json:"id"`
	Name       *string `json:"displayName"`
}

func (b Base) ID() string           { return b.Identifier }
func (b Base) DisplayName() *string { return b.Name }

// Note is a short text.
type Note struct {
	Base
	Content   string         `json:"content"`
	Tags      []string       `json:"tags,omitempty"`
	Published time.Time      `json:"published"`
	Extra     map[string]any `json:"extra"`
	Internal  string         `json:"-"`
	hidden    int
}

// Like is an Activity.
type Like struct {
	Base
	By     Object `json:"actor"`
	Weight float64
}

func (l Like) Actor() Object { return l.By }
func (Like) activity()       {}

// Follow is an Activity.
//
// Deprecated: use Like.
type Follow struct {
	Base
	By Object `json:"actor"`
}

func (f Follow) Actor() Object { return f.By }
func (Follow) activity()       {}

// Kind is not a class.
type Kind string

// Scratch is scaffolding that is not part of the vocabulary.
//
//vocabgen:ignore
type Scratch struct {
	Note string
}

// Box is generic and skipped.
type Box[T any] struct {
	Value T
}
