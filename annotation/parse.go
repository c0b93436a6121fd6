package annotation

// ObjectTag is the only tag whose siblings accumulate instead of overwriting.
const ObjectTag = "object"

// Value is a parsed element: either the text of a leaf or the record of
// its children.
type Value struct {
	// Text is set for leaf elements.
	Text string
	// Record is set for elements with at least one child element.
	Record *Record
}

// IsLeaf reports whether the value came from an element without children.
func (v Value) IsLeaf() bool {
	return v.Record == nil
}

// Record holds the parsed children of an element.
type Record struct {
	// Fields maps each non-object child tag to its value. When a tag repeats,
	// the last occurrence wins.
	Fields map[string]Value
	// Objects holds the values of the <object> children in document order.
	Objects []Value
}

// Field returns the value hoisted under tag.
func (r *Record) Field(tag string) (Value, bool) {
	v, ok := r.Fields[tag]
	return v, ok
}

// Tree is a parsed element keyed by its tag.
type Tree struct {
	Tag   string
	Value Value
}

// Parse folds an element into a Tree.
//
// A leaf becomes {tag: text}. Otherwise every child is parsed recursively
// and merged into the parent's record: <object> children are appended to
// Objects in document order, every other child is hoisted into Fields.
//
// Arguments:
//   - el: The element to parse.
//
// Returns:
//   - Tree: The parsed element keyed by el.Tag.
//
// @example
// root, _ := ReadElement(f)
// tree := Parse(root) // tree.Tag == "annotation"
func Parse(el *Element) Tree {
	if len(el.Children) == 0 {
		return Tree{Tag: el.Tag, Value: Value{Text: el.Text}}
	}

	rec := &Record{Fields: make(map[string]Value, len(el.Children))}
	for _, child := range el.Children {
		sub := Parse(child)
		if child.Tag != ObjectTag {
			rec.Fields[child.Tag] = sub.Value
			continue
		}
		rec.Objects = append(rec.Objects, sub.Value)
	}

	return Tree{Tag: el.Tag, Value: Value{Record: rec}}
}
