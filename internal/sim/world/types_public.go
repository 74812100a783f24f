package world

import (
	conveyorruntimepkg "factermio.ai/internal/sim/world/feature/conveyor/runtime"
	modelpkg "factermio.ai/internal/sim/world/kernel/model"
)

type Vec2i = modelpkg.Vec2i
type Bounds = modelpkg.Bounds
type Direction = modelpkg.Direction
type Resource = modelpkg.Resource
type BuildingKind = modelpkg.BuildingKind
type Token = modelpkg.Token
type Segment = modelpkg.Segment
type Hint = modelpkg.Hint
type Transfer = conveyorruntimepkg.Transfer

const (
	Up    = modelpkg.Up
	Down  = modelpkg.Down
	Left  = modelpkg.Left
	Right = modelpkg.Right

	Coal = modelpkg.Coal

	KindConveyor = modelpkg.KindConveyor
)
