package runtime

import (
	modelpkg "factermio.ai/internal/sim/world/kernel/model"
)

// Ops lets the owner of the segments observe applied moves without this
// package knowing about render hints or logging.
type Ops struct {
	Moved func(from, to modelpkg.Vec2i)
}

// Transfer is one token hop from a source to the slot it feeds.
type Transfer struct {
	From modelpkg.Vec2i
	To   modelpkg.Vec2i
}

type Result struct {
	Seeds     int
	Transfers []Transfer
}

// Plan decides this tick's hops from a read-only view of segments.
//
// Each empty slot pulls from the first loaded source in its upstream list.
// A segment takes part in at most one hop, and a slot vacated by a hop is
// not re-seeded until the next tick, so a token advances at most one cell
// per tick and cycles terminate after one pass over the seeds.
func Plan(bounds modelpkg.Bounds, segments map[modelpkg.Vec2i]*modelpkg.Segment) ([]Transfer, int) {
	if len(segments) == 0 {
		return nil, 0
	}
	up := BuildUpstream(bounds, segments)
	seeds := Seeds(segments)

	resolved := make(map[modelpkg.Vec2i]struct{}, len(seeds))
	var out []Transfer
	for _, e := range seeds {
		if _, done := resolved[e]; done {
			continue
		}
		for _, src := range up.Sources(e) {
			if _, done := resolved[src]; done {
				continue
			}
			s := segments[src]
			if !s.Loaded() {
				continue
			}
			out = append(out, Transfer{From: src, To: e})
			resolved[src] = struct{}{}
			resolved[e] = struct{}{}
			break
		}
	}
	return out, len(seeds)
}

// Apply swaps payloads for every planned hop. Plans from Plan never touch a
// segment twice, so order does not matter.
func Apply(segments map[modelpkg.Vec2i]*modelpkg.Segment, transfers []Transfer, ops Ops) {
	for _, t := range transfers {
		src, dst := segments[t.From], segments[t.To]
		if src == nil || dst == nil {
			continue
		}
		src.Token, dst.Token = dst.Token, src.Token
		if ops.Moved != nil {
			ops.Moved(t.From, t.To)
		}
	}
}

// Run executes one propagation tick: collect all hops, then apply them.
func Run(bounds modelpkg.Bounds, segments map[modelpkg.Vec2i]*modelpkg.Segment, ops Ops) Result {
	transfers, seeds := Plan(bounds, segments)
	Apply(segments, transfers, ops)
	return Result{Seeds: seeds, Transfers: transfers}
}
