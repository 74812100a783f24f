package runtime

import (
	"math/rand"
	"testing"

	modelpkg "factermio.ai/internal/sim/world/kernel/model"
)

var testBounds = modelpkg.Bounds{W: 80, H: 50}

type pos = modelpkg.Vec2i

func seg(dir modelpkg.Direction, loaded bool) *modelpkg.Segment {
	s := &modelpkg.Segment{Kind: modelpkg.KindConveyor, Dir: dir}
	if loaded {
		s.Token = &modelpkg.Token{Resource: modelpkg.Coal}
	}
	return s
}

func countTokens(m map[pos]*modelpkg.Segment) int {
	n := 0
	for _, s := range m {
		if s.Loaded() {
			n++
		}
	}
	return n
}

func TestBuildUpstreamFiltersOutOfBounds(t *testing.T) {
	segs := map[pos]*modelpkg.Segment{
		{X: 0, Y: 0}:  seg(modelpkg.Up, false),    // -> (0,-1), off grid
		{X: 79, Y: 3}: seg(modelpkg.Right, false), // -> (80,3), off grid
		{X: 5, Y: 5}:  seg(modelpkg.Down, false),
	}
	up := BuildUpstream(testBounds, segs)
	if len(up) != 1 {
		t.Fatalf("upstream=%v, want only (5,6)", up)
	}
	if got := up.Sources(pos{X: 5, Y: 6}); len(got) != 1 || got[0] != (pos{X: 5, Y: 5}) {
		t.Fatalf("Sources(5,6)=%v", got)
	}
	for target := range up {
		if !testBounds.Contains(target) {
			t.Fatalf("index target %v outside bounds", target)
		}
	}
}

func TestBuildUpstreamMergeOrderIsRowMajor(t *testing.T) {
	segs := map[pos]*modelpkg.Segment{
		{X: 0, Y: 0}: seg(modelpkg.Down, false),
		{X: 0, Y: 1}: seg(modelpkg.Up, true),
		{X: 1, Y: 0}: seg(modelpkg.Left, true),
	}
	got := BuildUpstream(testBounds, segs).Sources(pos{X: 0, Y: 0})
	if len(got) != 2 || got[0] != (pos{X: 1, Y: 0}) || got[1] != (pos{X: 0, Y: 1}) {
		t.Fatalf("Sources(0,0)=%v, want [(1,0) (0,1)]", got)
	}
}

func TestRunMergeFirstSourceWins(t *testing.T) {
	winner := seg(modelpkg.Left, true)
	loser := seg(modelpkg.Up, true)
	loserToken := loser.Token
	segs := map[pos]*modelpkg.Segment{
		{X: 0, Y: 0}: seg(modelpkg.Down, false),
		{X: 1, Y: 0}: winner,
		{X: 0, Y: 1}: loser,
	}
	wantToken := winner.Token

	res := Run(testBounds, segs, Ops{})
	if len(res.Transfers) != 1 || res.Transfers[0] != (Transfer{From: pos{X: 1, Y: 0}, To: pos{X: 0, Y: 0}}) {
		t.Fatalf("transfers=%v", res.Transfers)
	}
	if segs[pos{X: 0, Y: 0}].Token != wantToken {
		t.Fatalf("(0,0) should hold (1,0)'s token")
	}
	if segs[pos{X: 1, Y: 0}].Token != nil {
		t.Fatalf("(1,0) should be empty")
	}
	if segs[pos{X: 0, Y: 1}].Token != loserToken {
		t.Fatalf("(0,1) token must be untouched")
	}
}

func TestRunSingleHopPerTick(t *testing.T) {
	segs := map[pos]*modelpkg.Segment{{X: 10, Y: 19}: seg(modelpkg.Down, true)}
	for y := 20; y < 30; y++ {
		segs[pos{X: 10, Y: y}] = seg(modelpkg.Down, false)
	}
	res := Run(testBounds, segs, Ops{})
	if len(res.Transfers) != 1 {
		t.Fatalf("transfers=%v, want exactly one hop", res.Transfers)
	}
	if segs[pos{X: 10, Y: 19}].Loaded() || !segs[pos{X: 10, Y: 20}].Loaded() {
		t.Fatalf("token should sit at (10,20)")
	}
	for y := 21; y < 30; y++ {
		if segs[pos{X: 10, Y: y}].Loaded() {
			t.Fatalf("token leaked to (10,%d)", y)
		}
	}
}

func TestRunChainAdvancesOneCellPerTick(t *testing.T) {
	segs := map[pos]*modelpkg.Segment{
		{X: 10, Y: 19}: seg(modelpkg.Down, true),
		{X: 10, Y: 20}: seg(modelpkg.Down, false),
		{X: 10, Y: 21}: seg(modelpkg.Down, false),
		{X: 10, Y: 22}: seg(modelpkg.Down, false),
	}
	for tick, want := range []int{20, 21, 22, 22} {
		Run(testBounds, segs, Ops{})
		for y := 19; y <= 22; y++ {
			if got := segs[pos{X: 10, Y: y}].Loaded(); got != (y == want) {
				t.Fatalf("tick %d: (10,%d) loaded=%v, token expected at y=%d", tick+1, y, got, want)
			}
		}
	}
}

func TestRunAlternatingRunMovesInLockstep(t *testing.T) {
	segs := map[pos]*modelpkg.Segment{}
	for x := 0; x < 6; x++ {
		segs[pos{X: x, Y: 0}] = seg(modelpkg.Right, x%2 == 0)
	}
	res := Run(testBounds, segs, Ops{})
	if len(res.Transfers) != 3 {
		t.Fatalf("transfers=%d, want 3", len(res.Transfers))
	}
	for x := 0; x < 6; x++ {
		if got := segs[pos{X: x, Y: 0}].Loaded(); got != (x%2 == 1) {
			t.Fatalf("(%d,0) loaded=%v", x, got)
		}
	}
}

func TestRunFullyLoadedLoop(t *testing.T) {
	segs := map[pos]*modelpkg.Segment{
		{X: 0, Y: 0}: seg(modelpkg.Right, true),
		{X: 1, Y: 0}: seg(modelpkg.Down, true),
		{X: 1, Y: 1}: seg(modelpkg.Left, true),
		{X: 0, Y: 1}: seg(modelpkg.Up, true),
	}
	res := Run(testBounds, segs, Ops{})
	if len(res.Transfers) > len(segs) {
		t.Fatalf("transfers=%d exceed segments", len(res.Transfers))
	}
	if got := countTokens(segs); got != 4 {
		t.Fatalf("tokens=%d, want 4", got)
	}
}

func TestRunLoopWithGapRotates(t *testing.T) {
	segs := map[pos]*modelpkg.Segment{
		{X: 0, Y: 0}: seg(modelpkg.Right, true),
		{X: 1, Y: 0}: seg(modelpkg.Down, false),
		{X: 1, Y: 1}: seg(modelpkg.Left, true),
		{X: 0, Y: 1}: seg(modelpkg.Up, true),
	}
	for i := 0; i < 8; i++ {
		res := Run(testBounds, segs, Ops{})
		if len(res.Transfers) != 1 {
			t.Fatalf("tick %d: transfers=%d, want 1", i, len(res.Transfers))
		}
		if got := countTokens(segs); got != 3 {
			t.Fatalf("tick %d: tokens=%d", i, got)
		}
	}
}

func TestRunNoSourcesIsNoop(t *testing.T) {
	segs := map[pos]*modelpkg.Segment{
		{X: 3, Y: 3}: seg(modelpkg.Up, false),
		{X: 7, Y: 7}: seg(modelpkg.Right, true),
	}
	res := Run(testBounds, segs, Ops{})
	if len(res.Transfers) != 0 || res.Seeds != 1 {
		t.Fatalf("result=%+v", res)
	}
	if !segs[pos{X: 7, Y: 7}].Loaded() {
		t.Fatalf("dead-end token must stay put")
	}
}

func TestRunReportsMoves(t *testing.T) {
	segs := map[pos]*modelpkg.Segment{
		{X: 1, Y: 1}: seg(modelpkg.Right, true),
		{X: 2, Y: 1}: seg(modelpkg.Right, false),
	}
	var moved []Transfer
	Run(testBounds, segs, Ops{Moved: func(from, to pos) {
		moved = append(moved, Transfer{From: from, To: to})
	}})
	if len(moved) != 1 || moved[0] != (Transfer{From: pos{X: 1, Y: 1}, To: pos{X: 2, Y: 1}}) {
		t.Fatalf("moved=%v", moved)
	}
}

func TestRunConservesTokensOnRandomNetworks(t *testing.T) {
	bounds := modelpkg.Bounds{W: 12, H: 12}
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		segs := map[pos]*modelpkg.Segment{}
		for i := 0; i < 90; i++ {
			p := pos{X: rng.Intn(bounds.W), Y: rng.Intn(bounds.H)}
			if _, ok := segs[p]; ok {
				continue
			}
			segs[p] = seg(modelpkg.Direction(rng.Intn(4)), rng.Intn(3) == 0)
		}
		k := countTokens(segs)
		for tick := 0; tick < 40; tick++ {
			res := Run(bounds, segs, Ops{})
			if len(res.Transfers) > len(segs) {
				t.Fatalf("trial %d tick %d: %d transfers for %d segments", trial, tick, len(res.Transfers), len(segs))
			}
			touched := map[pos]bool{}
			for _, tr := range res.Transfers {
				if touched[tr.From] || touched[tr.To] {
					t.Fatalf("trial %d tick %d: segment reused in %v", trial, tick, res.Transfers)
				}
				touched[tr.From], touched[tr.To] = true, true
			}
			if got := countTokens(segs); got != k {
				t.Fatalf("trial %d tick %d: tokens=%d, want %d", trial, tick, got, k)
			}
		}
	}
}

func TestPlanDoesNotMutate(t *testing.T) {
	segs := map[pos]*modelpkg.Segment{
		{X: 1, Y: 1}: seg(modelpkg.Right, true),
		{X: 2, Y: 1}: seg(modelpkg.Right, false),
	}
	transfers, seeds := Plan(testBounds, segs)
	if len(transfers) != 1 || seeds != 1 {
		t.Fatalf("Plan=%v,%d", transfers, seeds)
	}
	if !segs[pos{X: 1, Y: 1}].Loaded() || segs[pos{X: 2, Y: 1}].Loaded() {
		t.Fatalf("Plan must not move tokens")
	}
}
