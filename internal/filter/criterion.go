// Package filter decides whether an invocation may run based on a tree of
// criteria: permission, role, channel and ownership predicates combined with
// And, Or and Not. Each criterion carries the explanation shown to users when
// it is not met.
package filter

import (
	"strings"

	"command-plugins/internal/command"
)

// Test is a predicate over an invocation.
type Test func(ev command.Context) bool

// Criterion is an immutable predicate node. Composite nodes keep their
// children for inspection; the explanation is fixed when the node is built.
type Criterion struct {
	name     string
	test     Test
	children []Criterion
	message  string
}

func newCriterion(name string, test Test, message string, children ...Criterion) Criterion {
	return Criterion{name: name, test: test, message: message, children: children}
}

func (c Criterion) Name() string    { return c.name }
func (c Criterion) Message() string { return c.message }

// Children returns a copy of the child criteria.
func (c Criterion) Children() []Criterion {
	return append([]Criterion(nil), c.children...)
}

// Test evaluates the criterion. The zero Criterion always passes.
func (c Criterion) Test(ev command.Context) bool {
	if c.test == nil {
		return true
	}
	return c.test(ev)
}

// WithMessage returns a copy of c carrying a different explanation.
func (c Criterion) WithMessage(message string) Criterion {
	c.message = message
	return c
}

// WithCustomMessage returns c relabelled with message.
func WithCustomMessage(c Criterion, message string) Criterion {
	return c.WithMessage(message)
}

// Silent returns c without an explanation, so it never shows up in rejections.
func Silent(c Criterion) Criterion {
	return c.WithMessage("")
}

func joinMessages(op string, cs []Criterion) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.message
	}
	return op + "(" + strings.Join(parts, ", ") + ")"
}

// And passes when every criterion passes, checked left to right and stopping
// at the first failure. And() passes.
func And(cs ...Criterion) Criterion {
	cs = append([]Criterion(nil), cs...)
	return newCriterion("and", func(ev command.Context) bool {
		for _, c := range cs {
			if !c.Test(ev) {
				return false
			}
		}
		return true
	}, joinMessages("and", cs), cs...)
}

// Or passes when any criterion passes, checked left to right and stopping at
// the first success. Or() fails.
func Or(cs ...Criterion) Criterion {
	cs = append([]Criterion(nil), cs...)
	return newCriterion("or", func(ev command.Context) bool {
		for _, c := range cs {
			if c.Test(ev) {
				return true
			}
		}
		return false
	}, joinMessages("or", cs), cs...)
}

// Not passes when c fails.
func Not(c Criterion) Criterion {
	return newCriterion("not", func(ev command.Context) bool {
		return !c.Test(ev)
	}, "not("+c.message+")", c)
}

// Custom wraps an arbitrary predicate.
func Custom(test Test, message string) Criterion {
	return newCriterion("custom", test, message)
}
