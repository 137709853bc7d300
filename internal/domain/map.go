package domain

// The types in this file describe cosmetic scenery/map data the engine
// never reads — they exist only so the configuration codec (§6.2) can
// round-trip a complete aerodrome file, per SPEC_FULL.md's supplemented
// features section. A renderer, not this module, interprets them.

// Point is a local (map-projected) coordinate.
type Point struct{ X, Y float64 }

// GeoPoint is a WGS84-ish geographic coordinate.
type GeoPoint struct{ Lat, Lon float64 }

// Color is a straightforward RGBA value.
type Color struct{ R, G, B, A uint8 }

// StrokeStyle/FillStyle mirror the original's small closed enums for
// path rendering.
type StrokeStyle struct {
	None bool
	Dash int32
}

type FillStyle struct {
	None  bool
	Fill  bool
	Hatch int32
}

// Style bundles stroke and fill rendering parameters, referenced by
// index from a Path.
type Style struct {
	StrokeStyle StrokeStyle
	StrokeWidth uint8 // eighths of a point, per the original's u8 encoding
	StrokeCap   int32
	StrokeJoin  int32
	StrokeColor Color

	FillStyle FillStyle
	FillColor Color
}

// Path is a polyline styled by a Style index.
type Path[T any] struct {
	Points []T
	Style  Ref[Style]
}

// Target is a filled polygon set, used for router-node/block
// highlight overlays.
type Target[T any] struct {
	Polygons [][]T
}

// NodeDisplay carries the off/on/selected glyphs and a highlight
// target for one node, in one coordinate space.
type NodeDisplay[T any] struct {
	Off      []Path[T]
	On       []Path[T]
	Selected []Path[T]
	Target   Target[T]
}

// EdgeDisplay carries the off/on/pending glyphs for one edge.
type EdgeDisplay[T any] struct {
	Off     []Path[T]
	On      []Path[T]
	Pending []Path[T]
}

// BlockDisplay carries a highlight target for one block.
type BlockDisplay[T any] struct {
	Target Target[T]
}

// Box is an axis-aligned bounding box.
type Box[T any] struct {
	Min, Max T
}

// View is a named saved viewport.
type View struct {
	Name   string
	Bounds Box[Point]
}

// GeoMap is the geo-projected scenery layer.
type GeoMap struct {
	Nodes  []NodeDisplay[GeoPoint]
	Edges  []EdgeDisplay[GeoPoint]
	Blocks []BlockDisplay[GeoPoint]
}

// Map is a locally-projected scenery layer with a background, base
// geometry, per-entity glyphs, and named saved views.
type Map struct {
	Background Color
	Base       []Path[Point]

	Nodes  []NodeDisplay[Point]
	Edges  []EdgeDisplay[Point]
	Blocks []BlockDisplay[Point]

	Views []View
}
