package filter

// FieldFilter pairs a column with the predicate applied to it
type FieldFilter struct {
	Column    string
	Predicate Predicate
}

// Node is a filter expression over one entity. Fields are kept in the entity's
// declaration order so compiled placeholder numbering is stable.
//
// A Node owns its And/Or children; trees are built per request and are not
// mutated afterwards.
type Node struct {
	Fields []FieldFilter
	And    []*Node
	Or     []*Node
}

// Where adds a predicate for column and returns the node for chaining.
func (n *Node) Where(column string, p Predicate) *Node {
	if p != nil {
		n.Fields = append(n.Fields, FieldFilter{Column: column, Predicate: p})
	}
	return n
}

// IsEmpty reports whether the node has no fields and no composition lists.
// An empty node still may not compile to anything if all its children are empty;
// use the compiler result to decide whether a WHERE clause is needed.
func (n *Node) IsEmpty() bool {
	return n == nil || (len(n.Fields) == 0 && len(n.And) == 0 && len(n.Or) == 0)
}

// AllOf returns a node whose and list holds the given nodes
func AllOf(nodes ...*Node) *Node {
	return &Node{And: nodes}
}

// AnyOf returns a node whose or list holds the given nodes
func AnyOf(nodes ...*Node) *Node {
	return &Node{Or: nodes}
}

// On returns a node with a single field predicate.
func On(column string, p Predicate) *Node {
	return (&Node{}).Where(column, p)
}
