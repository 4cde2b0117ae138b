package htmlnode

import "strings"

// Attribute is a single key/value pair rendered as ` key="value"`.
type Attribute struct {
	Key   string
	Value string
}

// Attr is shorthand for constructing an Attribute.
func Attr(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Attributes is an insertion-ordered attribute set with unique keys.
type Attributes []Attribute

// NewAttributes builds an attribute set. A repeated key keeps its first position
// and takes the last value.
func NewAttributes(attrs ...Attribute) Attributes {
	var out Attributes
	for _, a := range attrs {
		out = out.Set(a.Key, a.Value)
	}
	return out
}

// Set returns the set with key assigned to value, replacing an existing entry in place.
func (a Attributes) Set(key, value string) Attributes {
	for i := range a {
		if a[i].Key == key {
			a[i].Value = value
			return a
		}
	}
	return append(a, Attribute{Key: key, Value: value})
}

// Get returns the value for key.
func (a Attributes) Get(key string) (string, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Len returns the number of attributes.
func (a Attributes) Len() int { return len(a) }

// writeTo appends the rendered attributes to b.
func (a Attributes) writeTo(b *strings.Builder) {
	for _, attr := range a {
		b.WriteByte(' ')
		b.WriteString(attr.Key)
		b.WriteString(`="`)
		b.WriteString(attr.Value)
		b.WriteByte('"')
	}
}

// String renders the attributes the way they appear inside an opening tag.
func (a Attributes) String() string {
	var b strings.Builder
	a.writeTo(&b)
	return b.String()
}
