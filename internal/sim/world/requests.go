package world

import (
	modelpkg "factermio.ai/internal/sim/world/kernel/model"
)

type RequestType string

const (
	RequestMove          RequestType = "MOVE"
	RequestBuild         RequestType = "BUILD"
	RequestRotate        RequestType = "ROTATE"
	RequestPlaceResource RequestType = "PLACE_RESOURCE"
)

// Request is one agent action. Build, rotate and place all target the
// agent's current cursor cell.
type Request struct {
	Type     RequestType `json:"type" yaml:"type"`
	DX       int         `json:"dx,omitempty" yaml:"dx,omitempty"`
	DY       int         `json:"dy,omitempty" yaml:"dy,omitempty"`
	Resource string      `json:"resource,omitempty" yaml:"resource,omitempty"`
}

// RecordedRequest is a request as it was applied, for the tick log.
type RecordedRequest struct {
	Request
	At      [2]int `json:"at"`
	Applied bool   `json:"applied"`
}

// applyRequest never fails: rejected requests have no effect and are only
// recorded as not applied.
func (w *World) applyRequest(req Request) RecordedRequest {
	rec := RecordedRequest{Request: req}
	switch req.Type {
	case RequestMove:
		next := w.bounds.Clamp(w.cursor.Add(Vec2i{X: req.DX, Y: req.DY}))
		rec.Applied = next != w.cursor
		w.cursor = next
	case RequestBuild:
		rec.Applied = w.net.InsertIfAbsent(w.cursor, Segment{
			Kind: KindConveyor,
			Dir:  w.cats.InitialDir(KindConveyor),
		})
	case RequestRotate:
		if s, ok := w.net.Get(w.cursor); ok {
			rec.Applied = w.net.SetDirection(w.cursor, s.Dir.Rotate())
		}
	case RequestPlaceResource:
		res := Coal
		if req.Resource != "" {
			r, err := modelpkg.ParseResource(req.Resource)
			if err != nil {
				break
			}
			res = r
		}
		rec.Applied = w.net.SetToken(w.cursor, Token{Resource: res})
	}
	rec.At = w.cursor.ToArray()
	if w.metricsRec != nil {
		w.metricsRec.ObserveRequest(string(req.Type), rec.Applied)
	}
	return rec
}
