// Package annotation - PASCAL VOC annotation parsing.
//
// An annotation file is read into an Element tree, folded into a Tree of
// hoisted fields and repeated objects by Parse, and finally projected onto
// the fixed Annotation schema by Decode.
package annotation

import (
	"encoding/xml"
	"io"

	"github.com/pkg/errors"
)

// Element is one XML element.
type Element struct {
	// Tag is the local name of the element.
	Tag string
	// Text is the character data preceding the first child element.
	Text string
	// Children are the child elements in document order.
	Children []*Element
}

// ReadElement reads an XML document and returns its root element.
//
// Arguments:
//   - r: The XML document.
//
// Returns:
//   - *Element: The root element with its subtree.
//   - error: An error if the document is not well-formed.
func ReadElement(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)

	var (
		root  *Element
		stack []*Element
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "malformed annotation xml")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Tag: t.Name.Local}
			if n := len(stack); n > 0 {
				stack[n-1].Children = append(stack[n-1].Children, el)
			} else if root != nil {
				return nil, errors.Errorf("malformed annotation xml: second root element <%s>", el.Tag)
			} else {
				root = el
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			// Text after the first child is tail text and does not belong to the parent.
			if n := len(stack); n > 0 && len(stack[n-1].Children) == 0 {
				stack[n-1].Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, errors.New("malformed annotation xml: no root element")
	}
	return root, nil
}
