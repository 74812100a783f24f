package world

import (
	"factermio.ai/internal/sim/catalogs"
	modelpkg "factermio.ai/internal/sim/world/kernel/model"
)

// Network is the authoritative conveyor store: at most one segment per
// cell, plus the render hint derived from each segment.
type Network struct {
	bounds Bounds
	cats   *catalogs.Catalogs

	segments map[Vec2i]*Segment
	hints    map[Vec2i]Hint
}

// Cell is one renderable occupied cell.
type Cell struct {
	Pos  Vec2i
	Hint Hint
}

func NewNetwork(bounds Bounds, cats *catalogs.Catalogs) *Network {
	if cats == nil {
		cats = catalogs.Defaults()
	}
	return &Network{
		bounds:   bounds,
		cats:     cats,
		segments: map[Vec2i]*Segment{},
		hints:    map[Vec2i]Hint{},
	}
}

func (n *Network) Bounds() Bounds { return n.bounds }
func (n *Network) Len() int       { return len(n.segments) }

// Get returns a copy of the segment at p.
func (n *Network) Get(p Vec2i) (Segment, bool) {
	s := n.segments[p]
	if s == nil {
		return Segment{}, false
	}
	out := *s
	if s.Token != nil {
		tok := *s.Token
		out.Token = &tok
	}
	return out, true
}

// GetMut returns the stored segment at p, or nil for empty ground.
// Callers that change it must call Refresh(p).
func (n *Network) GetMut(p Vec2i) *Segment { return n.segments[p] }

// InsertIfAbsent stores s at p unless p is occupied or off grid.
func (n *Network) InsertIfAbsent(p Vec2i, s Segment) bool {
	if !n.bounds.Contains(p) || !s.Dir.Valid() {
		return false
	}
	if _, ok := n.segments[p]; ok {
		return false
	}
	if s.Token != nil {
		tok := *s.Token
		s.Token = &tok
	}
	n.segments[p] = &s
	n.Refresh(p)
	return true
}

// SetDirection points the segment at p toward d. No-op on empty ground.
func (n *Network) SetDirection(p Vec2i, d Direction) bool {
	s := n.segments[p]
	if s == nil || !d.Valid() {
		return false
	}
	s.Dir = d
	n.Refresh(p)
	return true
}

// SetToken loads the segment at p. Rejected when p is empty ground or
// already holds a token.
func (n *Network) SetToken(p Vec2i, tok Token) bool {
	s := n.segments[p]
	if s == nil || s.Token != nil {
		return false
	}
	s.Token = &tok
	n.Refresh(p)
	return true
}

// Refresh recomputes the render hint at p from its direction and token.
func (n *Network) Refresh(p Vec2i) {
	s := n.segments[p]
	if s == nil {
		delete(n.hints, p)
		return
	}
	n.hints[p] = n.cats.Hint(*s)
}

// Positions lists occupied cells in row-major order.
func (n *Network) Positions() []Vec2i { return modelpkg.SortedPositions(n.segments) }

func (n *Network) TokenCount() int {
	c := 0
	for _, s := range n.segments {
		if s.Loaded() {
			c++
		}
	}
	return c
}

func (n *Network) Hint(p Vec2i) (Hint, bool) {
	h, ok := n.hints[p]
	return h, ok
}

// Cells is the renderer's read model, row-major.
func (n *Network) Cells() []Cell {
	ps := n.Positions()
	out := make([]Cell, 0, len(ps))
	for _, p := range ps {
		out = append(out, Cell{Pos: p, Hint: n.hints[p]})
	}
	return out
}
