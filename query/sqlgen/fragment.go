// Package sqlgen compiles filter trees into parameterized SQL.
package sqlgen

import "strings"

// segment is either literal SQL text or a reference to a bind parameter.
// param is the 1-based index into the owning clause's parameters; 0 means text.
type segment struct {
	text  string
	param int
}

// Fragment is a piece of SQL whose placeholders are kept as markers until it is
// rendered. Renumbering a fragment adds an offset to its markers and never
// touches the SQL text, so index collisions like $1 vs $12 cannot happen.
type Fragment struct {
	segs []segment
}

// Text returns a fragment holding literal SQL.
func Text(sql string) Fragment {
	if sql == "" {
		return Fragment{}
	}
	return Fragment{segs: []segment{{text: sql}}}
}

// Param returns a fragment holding the placeholder for parameter k.
func Param(k int) Fragment {
	return Fragment{segs: []segment{{param: k}}}
}

// Concat joins fragments without separators.
func Concat(frags ...Fragment) Fragment {
	var out Fragment
	for _, f := range frags {
		out.segs = append(out.segs, f.segs...)
	}
	return out
}

// JoinFragments joins non-empty fragments with sep, like strings.Join.
func JoinFragments(sep string, frags ...Fragment) Fragment {
	var out Fragment
	first := true
	for _, f := range frags {
		if f.IsEmpty() {
			continue
		}
		if !first {
			out.segs = append(out.segs, segment{text: sep})
		}
		out.segs = append(out.segs, f.segs...)
		first = false
	}
	return out
}

// IsEmpty reports whether the fragment renders to nothing.
func (f Fragment) IsEmpty() bool {
	for _, s := range f.segs {
		if s.param > 0 || s.text != "" {
			return false
		}
	}
	return true
}

// Shift returns a copy of f with every placeholder index increased by offset.
func (f Fragment) Shift(offset int) Fragment {
	out := Fragment{segs: make([]segment, len(f.segs))}
	copy(out.segs, f.segs)
	if offset == 0 {
		return out
	}
	for i := range out.segs {
		if out.segs[i].param > 0 {
			out.segs[i].param += offset
		}
	}
	return out
}

// Wrap returns f enclosed in parentheses.
func (f Fragment) Wrap() Fragment {
	return Concat(Text("("), f, Text(")"))
}

// Placeholders returns the parameter indices referenced by f, in text order.
func (f Fragment) Placeholders() []int {
	var out []int
	for _, s := range f.segs {
		if s.param > 0 {
			out = append(out, s.param)
		}
	}
	return out
}

// Render writes the fragment using the dialect's placeholder syntax.
func (f Fragment) Render(d Dialect) string {
	var sb strings.Builder
	for _, s := range f.segs {
		if s.param > 0 {
			sb.WriteString(d.Placeholder(s.param))
			continue
		}
		sb.WriteString(s.text)
	}
	return sb.String()
}

// String renders the fragment with PostgreSQL placeholders.
func (f Fragment) String() string {
	return f.Render(Postgres)
}
