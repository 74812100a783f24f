package runtime

import (
	modelpkg "factermio.ai/internal/sim/world/kernel/model"
)

// Upstream maps a target cell to the segments feeding it, in row-major
// source order. It is rebuilt for every tick and never outlives one.
type Upstream map[modelpkg.Vec2i][]modelpkg.Vec2i

// BuildUpstream indexes every segment's downstream target. Targets outside
// bounds are dropped so the index only ever names grid cells.
func BuildUpstream(bounds modelpkg.Bounds, segments map[modelpkg.Vec2i]*modelpkg.Segment) Upstream {
	up := Upstream{}
	for _, p := range modelpkg.SortedPositions(segments) {
		s := segments[p]
		if s == nil {
			continue
		}
		to := s.Downstream(p)
		if !bounds.Contains(to) {
			continue
		}
		up[to] = append(up[to], p)
	}
	return up
}

// Sources returns the feeders of target, or nil.
func (u Upstream) Sources(target modelpkg.Vec2i) []modelpkg.Vec2i { return u[target] }

// Seeds lists occupied cells without a token, row-major.
func Seeds(segments map[modelpkg.Vec2i]*modelpkg.Segment) []modelpkg.Vec2i {
	out := make([]modelpkg.Vec2i, 0, len(segments))
	for _, p := range modelpkg.SortedPositions(segments) {
		s := segments[p]
		if s == nil || s.Token != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}
