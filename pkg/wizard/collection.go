package wizard

import (
	"iter"
	"sort"
)

// Collection is an ordered, 0-based index of elements. Indices may have
// gaps after Unset or sparse Set calls; iteration visits present indices in
// ascending order. Duplicates are kept.
type Collection struct {
	items map[int]Element
	next  int
}

// NewCollection returns a collection holding elements in order.
func NewCollection(elements ...Element) *Collection {
	c := &Collection{items: make(map[int]Element, len(elements))}
	for _, element := range elements {
		c.Add(element)
	}
	return c
}

// Add appends an element.
func (c *Collection) Add(element Element) {
	c.Set(-1, element)
}

// Count returns the number of present elements.
func (c *Collection) Count() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Get returns the element at index.
func (c *Collection) Get(index int) (Element, bool) {
	if c == nil {
		return nil, false
	}
	element, ok := c.items[index]
	return element, ok
}

// Set stores element at index. A negative index appends after the highest
// index used so far.
func (c *Collection) Set(index int, element Element) {
	if c.items == nil {
		c.items = make(map[int]Element)
	}
	if index < 0 {
		index = c.next
	}
	c.items[index] = element
	if index >= c.next {
		c.next = index + 1
	}
}

// Unset removes the element at index, leaving a gap.
func (c *Collection) Unset(index int) {
	if c == nil {
		return
	}
	delete(c.items, index)
}

// Has reports whether index holds an element.
func (c *Collection) Has(index int) bool {
	_, ok := c.Get(index)
	return ok
}

// Indices returns the present indices in ascending order.
func (c *Collection) Indices() []int {
	if c == nil {
		return nil
	}
	out := make([]int, 0, len(c.items))
	for index := range c.items {
		out = append(out, index)
	}
	sort.Ints(out)
	return out
}

// All iterates index/element pairs in index order. Every call starts a new
// pass from the first element.
func (c *Collection) All() iter.Seq2[int, Element] {
	return func(yield func(int, Element) bool) {
		for _, index := range c.Indices() {
			if !yield(index, c.items[index]) {
				return
			}
		}
	}
}

// Each calls fn for every element in order and stops at the first error.
func (c *Collection) Each(fn func(index int, element Element) error) error {
	for index, element := range c.All() {
		if err := fn(index, element); err != nil {
			return err
		}
	}
	return nil
}

// Select returns a new collection holding the elements at indices, in the
// order given and re-indexed from zero. Missing indices are skipped.
func (c *Collection) Select(indices ...int) *Collection {
	out := NewCollection()
	for _, index := range indices {
		if element, ok := c.Get(index); ok {
			out.Add(element)
		}
	}
	return out
}
