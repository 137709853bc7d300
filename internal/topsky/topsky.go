// Package topsky parses the TopSky textual map DSL (§6.3) into a
// domain.Map (or domain.GeoMap, under a GEO section). It covers the
// group/index assignment structure and the styled-path and target-
// polygon draw commands needed to round-trip scenery through the
// configuration codec; countdown/widget glyph semantics are out of
// scope.
package topsky

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/smilemakc/bars/internal/domain"
)

// ParseError carries the 1-based source line a parse failure occurred
// on, mirroring the original's MapsLoadTopskyError.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

var defaultColor = domain.Color{R: 0, G: 0, B: 0, A: 255}

type groupKind int

const (
	groupNone groupKind = iota
	groupBase
	groupNodeOff
	groupNodeOn
	groupNodeSelected
	groupNodeTarget
	groupEdgeOff
	groupEdgeOn
	groupEdgePending
	groupBlockTarget
)

type group struct {
	kind  groupKind
	index int
}

// indexer assigns stable, order-of-first-use indices to string ids,
// the way the original's generic Indexer<T, U> does for nodes/edges/
// blocks/styles.
type indexer struct {
	byID map[string]int
	n    int
}

func newIndexer() *indexer { return &indexer{byID: make(map[string]int)} }

func (ix *indexer) index(id string) int {
	if i, ok := ix.byID[id]; ok {
		return i
	}
	i := ix.n
	ix.byID[id] = i
	ix.n++
	return i
}

// Parse parses TopSky source text into zero or more Maps. A GEO
// section (if present) is returned separately as a GeoMap.
func Parse(text string) ([]domain.Map, *domain.GeoMap, error) {
	p := &parser{
		nodes:  newIndexer(),
		edges:  newIndexer(),
		blocks: newIndexer(),
		styles: make([]domain.Style, 0),

		colors: make(map[string]domain.Color),

		strokeColor: defaultColor,
		fillColor:   defaultColor,
		strokeStyle: domain.StrokeStyle{None: true},
		strokeWidth: 8,
	}

	for lineNo, raw := range strings.Split(text, "\n") {
		line := raw
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Split(line, ":")
		command := parts[0]
		args := parts[1:]
		// A command followed by a bare colon ("MAP:") has no arguments.
		if len(args) == 1 && args[0] == "" {
			args = nil
		}

		if err := p.apply(lineNo+1, command, args); err != nil {
			return nil, nil, err
		}
	}

	return p.finish()
}

type parser struct {
	nodes, edges, blocks *indexer
	styles               []domain.Style
	colors               map[string]domain.Color

	geo *domain.GeoMap
	cur *domain.Map
	mapList []domain.Map

	coordList []domain.GeoPoint
	pointList []domain.Point

	grp group

	strokeColor domain.Color
	fillColor   domain.Color
	strokeStyle domain.StrokeStyle
	strokeWidth uint8
}

func (p *parser) errf(line int, format string, a ...any) error {
	return &ParseError{Line: line, Message: fmt.Sprintf(format, a...)}
}

func (p *parser) checkArgs(line int, command string, args []string, min, max int) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		return p.errf(line, "incorrect number of arguments to %s (got %d)", command, len(args))
	}
	return nil
}

func (p *parser) parsePoint(line int, args []string) (domain.Point, error) {
	x, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
	if err != nil {
		return domain.Point{}, p.errf(line, "%s", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
	if err != nil {
		return domain.Point{}, p.errf(line, "%s", err)
	}
	return domain.Point{X: x, Y: y}, nil
}

func (p *parser) parseCoord(line int, args []string) (domain.GeoPoint, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
	if err != nil {
		return domain.GeoPoint{}, p.errf(line, "%s", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
	if err != nil {
		return domain.GeoPoint{}, p.errf(line, "%s", err)
	}
	return domain.GeoPoint{Lat: lat, Lon: lon}, nil
}

func (p *parser) apply(line int, command string, args []string) error {
	switch command {
	case "GEO":
		if err := p.checkArgs(line, command, args, 0, 0); err != nil {
			return err
		}
		if p.geo != nil {
			return p.errf(line, "geo map already defined")
		}
		p.cur = nil
		p.geo = &domain.GeoMap{}

	case "MAP":
		if err := p.checkArgs(line, command, args, 0, 1); err != nil {
			return err
		}
		p.geo = nil
		m := domain.Map{Background: defaultColor}
		if len(args) > 0 {
			c, ok := p.colors[args[0]]
			if !ok {
				return p.errf(line, "%s undefined", args[0])
			}
			m.Background = c
		}
		p.mapList = append(p.mapList, m)
		p.cur = &p.mapList[len(p.mapList)-1]

	case "VIEW":
		if err := p.checkArgs(line, command, args, 5, 5); err != nil {
			return err
		}
		if p.cur == nil {
			return p.errf(line, "VIEW outside map context")
		}
		min, err := p.parsePoint(line, args[1:3])
		if err != nil {
			return err
		}
		max, err := p.parsePoint(line, args[3:5])
		if err != nil {
			return err
		}
		p.cur.Views = append(p.cur.Views, domain.View{Name: args[0], Bounds: domain.Box[domain.Point]{Min: min, Max: max}})

	case "COLORDEF":
		if err := p.checkArgs(line, command, args, 4, 4); err != nil {
			return err
		}
		r, err := strconv.Atoi(args[1])
		if err != nil {
			return p.errf(line, "%s", err)
		}
		g, err := strconv.Atoi(args[2])
		if err != nil {
			return p.errf(line, "%s", err)
		}
		b, err := strconv.Atoi(args[3])
		if err != nil {
			return p.errf(line, "%s", err)
		}
		p.colors[args[0]] = domain.Color{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}

	case "COLOR":
		if err := p.checkArgs(line, command, args, 1, 3); err != nil {
			return err
		}
		c, ok := p.colors[args[0]]
		if !ok {
			return p.errf(line, "%s undefined", args[0])
		}
		p.strokeColor = c
		p.fillColor = c
		if len(args) > 1 {
			c2, ok := p.colors[args[1]]
			if !ok {
				return p.errf(line, "%s undefined", args[1])
			}
			p.fillColor = c2
		}

	case "STYLE":
		if err := p.checkArgs(line, command, args, 1, 2); err != nil {
			return err
		}
		switch strings.ToUpper(args[0]) {
		case "NULL":
			p.strokeStyle = domain.StrokeStyle{None: true}
		case "SOLID":
			p.strokeStyle = domain.StrokeStyle{Dash: 0}
		case "DASH":
			p.strokeStyle = domain.StrokeStyle{Dash: 1}
		case "DOT", "ALTERNATE":
			p.strokeStyle = domain.StrokeStyle{Dash: 2}
		case "DASHDOT":
			p.strokeStyle = domain.StrokeStyle{Dash: 3}
		case "DASHDOTDOT":
			p.strokeStyle = domain.StrokeStyle{Dash: 4}
		default:
			return p.errf(line, "unknown stroke style %s", args[0])
		}
		if len(args) > 1 {
			w, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return p.errf(line, "%s", err)
			}
			p.strokeWidth = uint8(w * 8)
			if w == 0 {
				p.strokeStyle = domain.StrokeStyle{None: true}
			}
		}

	case "NODE":
		if err := p.checkArgs(line, command, args, 2, 2); err != nil {
			return err
		}
		i := p.nodes.index(args[0])
		switch args[1] {
		case "OFF":
			p.grp = group{groupNodeOff, i}
		case "ON":
			p.grp = group{groupNodeOn, i}
		case "SELECTED":
			p.grp = group{groupNodeSelected, i}
		case "TARGET":
			p.grp = group{groupNodeTarget, i}
		default:
			return p.errf(line, "unknown node group %s", args[1])
		}

	case "EDGE":
		if err := p.checkArgs(line, command, args, 2, 2); err != nil {
			return err
		}
		i := p.edges.index(args[0])
		switch args[1] {
		case "OFF":
			p.grp = group{groupEdgeOff, i}
		case "ON":
			p.grp = group{groupEdgeOn, i}
		case "PENDING":
			p.grp = group{groupEdgePending, i}
		default:
			return p.errf(line, "unknown edge group %s", args[1])
		}

	case "BLOCK":
		if err := p.checkArgs(line, command, args, 2, 2); err != nil {
			return err
		}
		i := p.blocks.index(args[0])
		if args[1] != "TARGET" {
			return p.errf(line, "unknown block group %s", args[1])
		}
		p.grp = group{groupBlockTarget, i}

	case "BASE":
		if err := p.checkArgs(line, command, args, 0, 0); err != nil {
			return err
		}
		p.grp = group{kind: groupBase}

	case "COORD", "POINT":
		if p.geo != nil {
			if err := p.checkArgs(line, command, args, 2, 2); err != nil {
				return err
			}
			c, err := p.parseCoord(line, args)
			if err != nil {
				return err
			}
			p.coordList = append(p.coordList, c)
		} else if p.cur != nil {
			if err := p.checkArgs(line, command, args, 2, 2); err != nil {
				return err
			}
			pt, err := p.parsePoint(line, args)
			if err != nil {
				return err
			}
			p.pointList = append(p.pointList, pt)
		} else {
			return p.errf(line, "%s outside map context", command)
		}

	case "COORDTARGET", "POINTTARGET":
		if err := p.checkArgs(line, command, args, 0, 0); err != nil {
			return err
		}
		if err := p.drawTarget(line, command); err != nil {
			return err
		}

	case "COORDLINE", "COORDPOLY", "POINTLINE", "POINTPOLY":
		fillStyle, err := p.parseFillStyle(line, command, args)
		if err != nil {
			return err
		}
		style := domain.Ref[domain.Style](p.indexStyle(domain.Style{
			StrokeStyle: p.strokeStyle,
			StrokeWidth: p.strokeWidth,
			StrokeColor: p.strokeColor,
			FillStyle:   fillStyle,
			FillColor:   p.fillColor,
		}))
		if err := p.draw(line, command, style); err != nil {
			return err
		}

	default:
		return p.errf(line, "unknown command %s", command)
	}

	return nil
}

func (p *parser) parseFillStyle(line int, command string, args []string) (domain.FillStyle, error) {
	isLine := command == "COORDLINE" || command == "POINTLINE"
	if isLine {
		if err := p.checkArgs(line, command, args, 0, 0); err != nil {
			return domain.FillStyle{}, err
		}
		return domain.FillStyle{None: true}, nil
	}

	if err := p.checkArgs(line, command, args, 1, 1); err != nil {
		return domain.FillStyle{}, err
	}
	fill := args[0]
	if strings.HasPrefix(fill, "E") {
		n, err := strconv.Atoi(fill[1:])
		if err != nil || n < 0 || n > 52 {
			return domain.FillStyle{}, p.errf(line, "hatch enum variant out of range [0, 52]")
		}
		return domain.FillStyle{Hatch: int32(n)}, nil
	}
	switch fill {
	case "0":
		return domain.FillStyle{None: true}, nil
	case "100":
		return domain.FillStyle{Fill: true}, nil
	case "5", "10", "20", "25", "30", "40", "50", "60", "70", "75", "80", "90":
		percentages := map[string]int32{"5": 6, "10": 7, "20": 8, "25": 9, "30": 10, "40": 11, "50": 12, "60": 13, "70": 14, "75": 15, "80": 16, "90": 17}
		return domain.FillStyle{Hatch: percentages[fill]}, nil
	default:
		return domain.FillStyle{}, p.errf(line, "invalid hatch style %s", fill)
	}
}

func (p *parser) indexStyle(s domain.Style) int {
	p.styles = append(p.styles, s)
	return len(p.styles) - 1
}

func expandNodes(list []domain.NodeDisplay[domain.Point], i int) []domain.NodeDisplay[domain.Point] {
	for len(list) <= i {
		list = append(list, domain.NodeDisplay[domain.Point]{})
	}
	return list
}

func expandGeoNodes(list []domain.NodeDisplay[domain.GeoPoint], i int) []domain.NodeDisplay[domain.GeoPoint] {
	for len(list) <= i {
		list = append(list, domain.NodeDisplay[domain.GeoPoint]{})
	}
	return list
}

func expandEdges(list []domain.EdgeDisplay[domain.Point], i int) []domain.EdgeDisplay[domain.Point] {
	for len(list) <= i {
		list = append(list, domain.EdgeDisplay[domain.Point]{})
	}
	return list
}

func expandGeoEdges(list []domain.EdgeDisplay[domain.GeoPoint], i int) []domain.EdgeDisplay[domain.GeoPoint] {
	for len(list) <= i {
		list = append(list, domain.EdgeDisplay[domain.GeoPoint]{})
	}
	return list
}

func expandBlocks(list []domain.BlockDisplay[domain.Point], i int) []domain.BlockDisplay[domain.Point] {
	for len(list) <= i {
		list = append(list, domain.BlockDisplay[domain.Point]{})
	}
	return list
}

func expandGeoBlocks(list []domain.BlockDisplay[domain.GeoPoint], i int) []domain.BlockDisplay[domain.GeoPoint] {
	for len(list) <= i {
		list = append(list, domain.BlockDisplay[domain.GeoPoint]{})
	}
	return list
}

func (p *parser) draw(line int, command string, style domain.Ref[domain.Style]) error {
	if p.geo != nil {
		path := domain.Path[domain.GeoPoint]{Points: p.coordList, Style: style}
		p.coordList = nil
		switch p.grp.kind {
		case groupNodeOff:
			p.geo.Nodes = expandGeoNodes(p.geo.Nodes, p.grp.index)
			p.geo.Nodes[p.grp.index].Off = append(p.geo.Nodes[p.grp.index].Off, path)
		case groupNodeOn:
			p.geo.Nodes = expandGeoNodes(p.geo.Nodes, p.grp.index)
			p.geo.Nodes[p.grp.index].On = append(p.geo.Nodes[p.grp.index].On, path)
		case groupNodeSelected:
			p.geo.Nodes = expandGeoNodes(p.geo.Nodes, p.grp.index)
			p.geo.Nodes[p.grp.index].Selected = append(p.geo.Nodes[p.grp.index].Selected, path)
		case groupEdgeOff:
			p.geo.Edges = expandGeoEdges(p.geo.Edges, p.grp.index)
			p.geo.Edges[p.grp.index].Off = append(p.geo.Edges[p.grp.index].Off, path)
		case groupEdgeOn:
			p.geo.Edges = expandGeoEdges(p.geo.Edges, p.grp.index)
			p.geo.Edges[p.grp.index].On = append(p.geo.Edges[p.grp.index].On, path)
		case groupEdgePending:
			p.geo.Edges = expandGeoEdges(p.geo.Edges, p.grp.index)
			p.geo.Edges[p.grp.index].Pending = append(p.geo.Edges[p.grp.index].Pending, path)
		default:
			return p.errf(line, "%s outside draw context", command)
		}
		return nil
	}

	if p.cur != nil {
		path := domain.Path[domain.Point]{Points: p.pointList, Style: style}
		p.pointList = nil
		switch p.grp.kind {
		case groupBase:
			p.cur.Base = append(p.cur.Base, path)
		case groupNodeOff:
			p.cur.Nodes = expandNodes(p.cur.Nodes, p.grp.index)
			p.cur.Nodes[p.grp.index].Off = append(p.cur.Nodes[p.grp.index].Off, path)
		case groupNodeOn:
			p.cur.Nodes = expandNodes(p.cur.Nodes, p.grp.index)
			p.cur.Nodes[p.grp.index].On = append(p.cur.Nodes[p.grp.index].On, path)
		case groupNodeSelected:
			p.cur.Nodes = expandNodes(p.cur.Nodes, p.grp.index)
			p.cur.Nodes[p.grp.index].Selected = append(p.cur.Nodes[p.grp.index].Selected, path)
		case groupEdgeOff:
			p.cur.Edges = expandEdges(p.cur.Edges, p.grp.index)
			p.cur.Edges[p.grp.index].Off = append(p.cur.Edges[p.grp.index].Off, path)
		case groupEdgeOn:
			p.cur.Edges = expandEdges(p.cur.Edges, p.grp.index)
			p.cur.Edges[p.grp.index].On = append(p.cur.Edges[p.grp.index].On, path)
		case groupEdgePending:
			p.cur.Edges = expandEdges(p.cur.Edges, p.grp.index)
			p.cur.Edges[p.grp.index].Pending = append(p.cur.Edges[p.grp.index].Pending, path)
		default:
			return p.errf(line, "%s outside draw context", command)
		}
		return nil
	}

	return p.errf(line, "%s outside map context", command)
}

// drawTarget implements COORDTARGET/POINTTARGET: unlike the styled
// draw commands, a target polygon is the raw accumulated point list
// with no style ref, and is only legal inside a NODE ... TARGET or
// BLOCK ... TARGET group.
func (p *parser) drawTarget(line int, command string) error {
	if p.geo != nil {
		polygon := p.coordList
		p.coordList = nil
		switch p.grp.kind {
		case groupNodeTarget:
			p.geo.Nodes = expandGeoNodes(p.geo.Nodes, p.grp.index)
			p.geo.Nodes[p.grp.index].Target.Polygons = append(p.geo.Nodes[p.grp.index].Target.Polygons, polygon)
		case groupBlockTarget:
			p.geo.Blocks = expandGeoBlocks(p.geo.Blocks, p.grp.index)
			p.geo.Blocks[p.grp.index].Target.Polygons = append(p.geo.Blocks[p.grp.index].Target.Polygons, polygon)
		default:
			return p.errf(line, "%s outside target context", command)
		}
		return nil
	}

	if p.cur != nil {
		polygon := p.pointList
		p.pointList = nil
		switch p.grp.kind {
		case groupNodeTarget:
			p.cur.Nodes = expandNodes(p.cur.Nodes, p.grp.index)
			p.cur.Nodes[p.grp.index].Target.Polygons = append(p.cur.Nodes[p.grp.index].Target.Polygons, polygon)
		case groupBlockTarget:
			p.cur.Blocks = expandBlocks(p.cur.Blocks, p.grp.index)
			p.cur.Blocks[p.grp.index].Target.Polygons = append(p.cur.Blocks[p.grp.index].Target.Polygons, polygon)
		default:
			return p.errf(line, "%s outside target context", command)
		}
		return nil
	}

	return p.errf(line, "%s outside map context", command)
}

func (p *parser) finish() ([]domain.Map, *domain.GeoMap, error) {
	return p.mapList, p.geo, nil
}
