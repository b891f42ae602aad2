package ical

import (
	"strings"
	"time"
)

// State threaded through one populate pass. Extractors that run early (the
// VTIMEZONE one) fill the timezone table; extractors for nested components
// read it. Nothing here is global: each parse owns its context.
type parseContext struct {
	timezones map[string]*time.Location
	resolver  TimezoneResolver
}

func newParseContext(resolver TimezoneResolver) *parseContext {
	if resolver == nil {
		resolver = IANATimezoneResolver{}
	}
	return &parseContext{
		timezones: make(map[string]*time.Location),
		resolver:  resolver,
	}
}

// One extractor binding of a component schema: which property it claims,
// whether the property must be present, whether it may repeat, and the
// handler that moves the matched children onto the target. Rules consume
// content lines unless container is set; a child whose name matches but
// whose node type doesn't stays unclaimed and lands in unused.
type extractorRule[T any] struct {
	name      string
	required  bool
	multiple  bool
	container bool
	extract   func(target T, ctx *parseContext, nodes []Node) error
}

// The declarative schema of a component type: an ordered extractor table
// consulted by populate and an ordered emitter list run by serialize. Built
// once per type as a package-level table; extraction order and emission
// order are independent and stable across calls.
type schema[T any] struct {
	typeName   string
	extractors []extractorRule[T]
	emitters   []func(target T, out *Container)
}

// Dispatch the container's immediate children to the schema's extractors in
// declaration order. Children no extractor claims are retained verbatim in
// unused, so unrecognized input survives a round trip.
func (s *schema[T]) populate(target T, src *Container, ctx *parseContext, unused *Container) error {
	claimed := make([]bool, len(src.Items))

	for _, rule := range s.extractors {
		var matched []Node
		for i, item := range src.Items {
			if claimed[i] {
				continue
			}
			if !strings.EqualFold(nodeName(item), rule.name) {
				continue
			}
			if _, isContainer := item.(*Container); isContainer != rule.container {
				continue
			}
			claimed[i] = true
			matched = append(matched, item)
		}
		if rule.required && len(matched) == 0 {
			return NewSchemaError("required property is missing", map[string]any{
				"component": s.typeName,
				"property":  rule.name,
			})
		}
		if !rule.multiple && len(matched) > 1 {
			matched = matched[:1]
		}
		if err := rule.extract(target, ctx, matched); err != nil {
			return err
		}
	}

	for i, item := range src.Items {
		if !claimed[i] {
			unused.Items = append(unused.Items, item.cloneNode())
		}
	}
	return nil
}

// Run every emitter in declaration order into a fresh container, then append
// the retained unused children unchanged.
func (s *schema[T]) serialize(target T, unused *Container) *Container {
	out := NewContainer(s.typeName)
	for _, emit := range s.emitters {
		emit(target, out)
	}
	if unused != nil {
		for _, item := range unused.Items {
			out.Items = append(out.Items, item.cloneNode())
		}
	}
	return out
}

// Lift an extractor that wants at most one content line. The handler still
// runs when the property is absent, with a nil line, so it can apply
// defaults.
func singleLine[T any](fn func(target T, ctx *parseContext, line *ContentLine) error) func(T, *parseContext, []Node) error {
	return func(target T, ctx *parseContext, nodes []Node) error {
		var line *ContentLine
		for _, node := range nodes {
			if l, ok := node.(*ContentLine); ok {
				line = l
				break
			}
		}
		return fn(target, ctx, line)
	}
}
