package ical

import "strings"

// A child of a Container: either a *ContentLine or a nested *Container.
type Node interface {
	cloneNode() Node
	equalNode(other Node) bool
}

// An ordered group of content lines and nested containers, corresponding to
// a BEGIN/END block in the text format.
type Container struct {
	Name  string
	Items []Node
}

// Create an empty container.
func NewContainer(name string) *Container {
	return &Container{Name: strings.ToUpper(name)}
}

// Append a child node.
func (c *Container) Append(node Node) *Container {
	c.Items = append(c.Items, node)
	return c
}

// Append a bare NAME:VALUE content line.
func (c *Container) AppendLine(name string, value string) *Container {
	return c.Append(NewContentLine(name, value))
}

func (c *Container) Len() int {
	return len(c.Items)
}

// Get the immediate child content lines with the given name,
// matched case-insensitively.
func (c *Container) Lines(name string) []*ContentLine {
	var lines []*ContentLine
	for _, item := range c.Items {
		if line, ok := item.(*ContentLine); ok && strings.EqualFold(line.Name, name) {
			lines = append(lines, line)
		}
	}
	return lines
}

// Get the first immediate child content line with the given name, or nil.
func (c *Container) Line(name string) *ContentLine {
	lines := c.Lines(name)
	if len(lines) == 0 {
		return nil
	}
	return lines[0]
}

// Get the immediate child containers with the given name,
// matched case-insensitively.
func (c *Container) Containers(name string) []*Container {
	var containers []*Container
	for _, item := range c.Items {
		if sub, ok := item.(*Container); ok && strings.EqualFold(sub.Name, name) {
			containers = append(containers, sub)
		}
	}
	return containers
}

// Deep copy, including all nested containers.
func (c *Container) Clone() *Container {
	clone := &Container{Name: c.Name}
	if c.Items != nil {
		clone.Items = make([]Node, len(c.Items))
		for i, item := range c.Items {
			clone.Items[i] = item.cloneNode()
		}
	}
	return clone
}

// Structural identity: same name and pairwise-equal children in
// the same order.
func (c *Container) Equal(other *Container) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.Name != other.Name || len(c.Items) != len(other.Items) {
		return false
	}
	for i, item := range c.Items {
		if !item.equalNode(other.Items[i]) {
			return false
		}
	}
	return true
}

func (c *Container) cloneNode() Node { return c.Clone() }

func (c *Container) equalNode(other Node) bool {
	otherContainer, ok := other.(*Container)
	return ok && c.Equal(otherContainer)
}

func nodeName(node Node) string {
	switch n := node.(type) {
	case *ContentLine:
		return n.Name
	case *Container:
		return n.Name
	default:
		return ""
	}
}
