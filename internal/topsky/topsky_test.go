package topsky

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSimpleMapWithNodeGlyph(t *testing.T) {
	src := `
COLORDEF:RED:255:0:0
MAP:
VIEW:overview:0:0:100:100
NODE:STOPBAR1:OFF
COLOR:RED
STYLE:SOLID:1
POINT:0:0
POINT:10:10
POINTLINE:
`
	maps, geo, err := Parse(src)
	require.NoError(t, err)
	require.Nil(t, geo)
	require.Len(t, maps, 1)
	require.Len(t, maps[0].Views, 1)
	require.Equal(t, "overview", maps[0].Views[0].Name)
	require.Len(t, maps[0].Nodes, 1)
	require.Len(t, maps[0].Nodes[0].Off, 1)
	require.Len(t, maps[0].Nodes[0].Off[0].Points, 2)
}

func TestParseGeoSection(t *testing.T) {
	src := `
GEO:
EDGE:TWY_A:ON
COORD:51.5:-0.1
COORD:51.6:-0.2
COORDLINE:
`
	maps, geo, err := Parse(src)
	require.NoError(t, err)
	require.Empty(t, maps)
	require.NotNil(t, geo)
	require.Len(t, geo.Edges, 1)
	require.Len(t, geo.Edges[0].On, 1)
}

func TestParseUnknownCommandReportsLineNumber(t *testing.T) {
	src := "MAP:\nBOGUS:1:2\n"
	_, _, err := Parse(src)
	require.Error(t, err)

	perr, ok := err.(*ParseError)
	require.True(t, ok)
	require.Equal(t, 2, perr.Line)
}

func TestParseDrawOutsideMapContextFails(t *testing.T) {
	src := "POINT:0:0\n"
	_, _, err := Parse(src)
	require.Error(t, err)
}

func TestParseNodeTargetPolygon(t *testing.T) {
	src := `
MAP:
NODE:ROUTER1:TARGET
POINT:0:0
POINT:10:0
POINT:10:10
POINTTARGET:
`
	maps, _, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, maps, 1)
	require.Len(t, maps[0].Nodes, 1)
	require.Len(t, maps[0].Nodes[0].Target.Polygons, 1)
	require.Len(t, maps[0].Nodes[0].Target.Polygons[0], 3)
}

func TestParseBlockTargetPolygonInGeoSection(t *testing.T) {
	src := `
GEO:
BLOCK:APRON1:TARGET
COORD:51.5:-0.1
COORD:51.6:-0.2
COORDTARGET:
`
	_, geo, err := Parse(src)
	require.NoError(t, err)
	require.NotNil(t, geo)
	require.Len(t, geo.Blocks, 1)
	require.Len(t, geo.Blocks[0].Target.Polygons, 1)
	require.Len(t, geo.Blocks[0].Target.Polygons[0], 2)
}

func TestParseTargetOutsideTargetGroupFails(t *testing.T) {
	src := "MAP:\nBASE:\nPOINT:0:0\nPOINTTARGET:\n"
	_, _, err := Parse(src)
	require.Error(t, err)
}

func TestParseCommentsAndBlankLinesIgnored(t *testing.T) {
	src := "// a comment\n\nMAP:\n// another\n"
	maps, _, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, maps, 1)
}
