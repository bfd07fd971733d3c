// Package spatial implements the bounded-box point index LoBotomy uses to
// find players within a fire blast or a scan radius. It follows the
// original akaIDIOT/LoBotomy quadtree (lobotomy/quadtree.py): split a leaf
// once it holds more than 4 points, merge four children back once their
// combined count drops to 4 or fewer.
//
// Unlike the Python original — which made a point both a Thread and a
// quadtree Point via multiple inheritance — a Handle here is a plain,
// owned value; the caller (arena.Session) holds its position, and the
// index holds a back-reference to the leaf so removing a handle (in Remove,
// and as the first half of Move) doesn't have to search the tree from the
// root.
package spatial

import "github.com/lobotomyarena/lobotomy/internal/geometry"

// maxLeafPoints is the split threshold; merge triggers when a region's
// total point count falls to this value or below.
const maxLeafPoints = 4

// Handle is an opaque handle to a point held in the index. Data is an
// owner-supplied payload (arena stores the owning *Session there) so the
// index stays ignorant of what it's indexing.
type Handle struct {
	X, Y float64
	Data any

	leaf *region
}

// Tree is a quadtree spanning a fixed rectangle.
type Tree struct {
	root *region
}

// New creates an empty tree spanning bounds.
func New(bounds geometry.Rect) *Tree {
	return &Tree{root: newRegion(bounds, nil)}
}

// Add inserts h at its current (X, Y) and records its containing leaf.
func (t *Tree) Add(h *Handle) {
	t.root.add(h)
}

// Remove takes h out of the tree. h must have been added (and not already
// removed) to this tree.
func (t *Tree) Remove(h *Handle) {
	h.leaf.remove(h)
}

// Move relocates h to (x, y): it removes h from its current leaf, then
// re-inserts it from the root.
func (t *Tree) Move(h *Handle, x, y float64) {
	h.leaf.remove(h)
	h.X, h.Y = x, y
	t.root.add(h)
}

// FindInBox returns every currently-added handle whose (X, Y) lies in the
// half-open box [x1,x2) x [y1,y2), in no particular order, with no
// duplicates.
func (t *Tree) FindInBox(box geometry.Rect) []*Handle {
	var out []*Handle
	t.root.findInBox(box, &out)
	return out
}

// region is a node in the quadtree: either a leaf holding up to
// maxLeafPoints handles, or a branch with exactly four children.
type region struct {
	bounds   geometry.Rect
	parent   *region
	children [4]*region
	points   map[*Handle]struct{}
}

func newRegion(bounds geometry.Rect, parent *region) *region {
	return &region{bounds: bounds, parent: parent, points: make(map[*Handle]struct{})}
}

func (r *region) isLeaf() bool {
	return r.children[0] == nil
}

// length returns the number of points contained in this region and all its
// descendants.
func (r *region) length() int {
	if r.isLeaf() {
		return len(r.points)
	}
	n := 0
	for _, c := range r.children {
		n += c.length()
	}
	return n
}

func (r *region) contains(h *Handle) bool {
	return r.bounds.Contains(geometry.Point{X: h.X, Y: h.Y})
}

// childFor returns the child region containing h. Only valid on a branch.
func (r *region) childFor(h *Handle) *region {
	for _, c := range r.children {
		if c.contains(h) {
			return c
		}
	}
	return nil
}

func (r *region) add(h *Handle) {
	if r.isLeaf() {
		h.leaf = r
		r.points[h] = struct{}{}
		r.splitIfNeeded()
		return
	}
	r.childFor(h).add(h)
}

func (r *region) remove(h *Handle) {
	delete(r.points, h)
	h.leaf = nil
	for p := r.parent; p != nil; p = p.parent {
		p.mergeIfNeeded()
	}
}

// splitIfNeeded breaks a leaf with more than maxLeafPoints into four equal
// quadrants and redistributes its points.
func (r *region) splitIfNeeded() {
	if len(r.points) <= maxLeafPoints {
		return
	}

	x1, y1, x2, y2 := r.bounds.X1, r.bounds.Y1, r.bounds.X2, r.bounds.Y2
	midX, midY := (x1+x2)/2, (y1+y2)/2

	r.children = [4]*region{
		newRegion(geometry.Rect{X1: x1, Y1: y1, X2: midX, Y2: midY}, r),   // top-left
		newRegion(geometry.Rect{X1: midX, Y1: y1, X2: x2, Y2: midY}, r),   // top-right
		newRegion(geometry.Rect{X1: x1, Y1: midY, X2: midX, Y2: y2}, r),   // bottom-left
		newRegion(geometry.Rect{X1: midX, Y1: midY, X2: x2, Y2: y2}, r),   // bottom-right
	}

	old := r.points
	r.points = make(map[*Handle]struct{})
	for h := range old {
		r.childFor(h).add(h)
	}
}

// mergeIfNeeded collapses a branch back into a leaf once its total point
// count drops to maxLeafPoints or fewer.
func (r *region) mergeIfNeeded() {
	if r.isLeaf() || r.length() > maxLeafPoints {
		return
	}

	merged := make(map[*Handle]struct{})
	for _, c := range r.children {
		c.mergeIfNeeded()
		for h := range c.points {
			h.leaf = r
			merged[h] = struct{}{}
		}
		c.points = nil
		c.parent = nil
	}
	r.children = [4]*region{}
	r.points = merged
}

// findInBox appends every point of this region (and descendants) whose
// coordinates fall in box, pruning subtrees that don't overlap it.
func (r *region) findInBox(box geometry.Rect, out *[]*Handle) {
	if !overlaps(r.bounds, box) {
		return
	}

	if r.isLeaf() {
		for h := range r.points {
			if box.Contains(geometry.Point{X: h.X, Y: h.Y}) {
				*out = append(*out, h)
			}
		}
		return
	}
	for _, c := range r.children {
		c.findInBox(box, out)
	}
}

func overlaps(a, b geometry.Rect) bool {
	return a.X1 < b.X2 && a.X2 > b.X1 && a.Y1 < b.Y2 && a.Y2 > b.Y1
}
