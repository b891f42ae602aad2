package ical

import "strings"

// A single parameter on a content line. A parameter may carry several
// comma-separated values (`NAME;PARAM=V1,V2:value`).
type Param struct {
	Name   string
	Values []string
}

// One logical property record of the text format: a name, an ordered list of
// parameters, and a scalar value. Parameter names are matched
// case-insensitively; parameter values keep their original case.
type ContentLine struct {
	Name   string
	Params []Param
	Value  string
}

// Create a content line with no parameters.
func NewContentLine(name string, value string) *ContentLine {
	return &ContentLine{
		Name:  strings.ToUpper(name),
		Value: value,
	}
}

// Append a parameter, preserving declaration order.
func (l *ContentLine) AddParam(name string, values ...string) *ContentLine {
	l.Params = append(l.Params, Param{
		Name:   strings.ToUpper(name),
		Values: values,
	})
	return l
}

// Get the values of the named parameter. The second return reports whether
// the parameter is present at all.
func (l *ContentLine) Param(name string) ([]string, bool) {
	for _, param := range l.Params {
		if strings.EqualFold(param.Name, name) {
			return param.Values, true
		}
	}
	return nil, false
}

// Get the first value of the named parameter, or "" when absent.
func (l *ContentLine) ParamValue(name string) string {
	values, ok := l.Param(name)
	if !ok || len(values) == 0 {
		return ""
	}
	return values[0]
}

// Deep copy.
func (l *ContentLine) Clone() *ContentLine {
	clone := &ContentLine{
		Name:  l.Name,
		Value: l.Value,
	}
	if l.Params != nil {
		clone.Params = make([]Param, len(l.Params))
		for i, param := range l.Params {
			clone.Params[i] = Param{
				Name:   param.Name,
				Values: append([]string(nil), param.Values...),
			}
		}
	}
	return clone
}

// Structural identity: same name, same parameters in the same order,
// same value.
func (l *ContentLine) Equal(other *ContentLine) bool {
	if l == nil || other == nil {
		return l == other
	}
	if l.Name != other.Name || l.Value != other.Value {
		return false
	}
	if len(l.Params) != len(other.Params) {
		return false
	}
	for i, param := range l.Params {
		otherParam := other.Params[i]
		if param.Name != otherParam.Name {
			return false
		}
		if len(param.Values) != len(otherParam.Values) {
			return false
		}
		for j, value := range param.Values {
			if value != otherParam.Values[j] {
				return false
			}
		}
	}
	return true
}

func (l *ContentLine) cloneNode() Node { return l.Clone() }

func (l *ContentLine) equalNode(other Node) bool {
	otherLine, ok := other.(*ContentLine)
	return ok && l.Equal(otherLine)
}
