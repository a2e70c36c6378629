package readfiles

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cc "github.com/notargets/gomorse/cellcomplex"
)

func TestReadSU2(t *testing.T) {
	m, err := ReadSU2(bytes.NewReader(su2File))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Dim)
	require.Len(t, m.Triangles, 22)
	assert.Equal(t, [3]int{5, 6, 13}, m.Triangles[0])
	assert.Equal(t, [3]int{15, 11, 17}, m.Triangles[21])
	require.Len(t, m.Points, 18)
	assert.Equal(t, [3]float64{-7.100939331382065, 2.889910324036197, 0}, m.Points[17])

	require.Len(t, m.Markers, 4)
	for label, n := range map[string]int{"periodic-left": 2, "periodic-right": 2, "top": 4, "bottom": 4} {
		assert.Len(t, m.Markers[label], n, label)
	}
	assert.Equal(t, [][2]int{{3, 11}, {11, 0}}, m.Markers["periodic-left"])

	lo, hi := m.BoundingBox()
	assert.Equal(t, [3]float64{-10, 0, 0}, lo)
	assert.Equal(t, [3]float64{10, 10, 0}, hi)

	values := make([]float64, len(m.Points))
	for i, p := range m.Points {
		values[i] = p[0] + 0.1*p[1]
	}
	cx, err := m.Complex(values)
	require.NoError(t, err)
	assert.Equal(t, 1, cx.EulerCharacteristic())
	_, err = m.Complex(values[1:])
	assert.Error(t, err)
}

func TestReadSU2NoMarkers(t *testing.T) {
	src := "NDIME= 3\nNELEM= 1\n5 0 1 2 0\nNPOIN= 3\n0 0 0 0\n1 0 0.5 1\n0 1 2 2\n"
	m, err := ReadSU2(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 3, m.Dim)
	assert.Equal(t, [3]float64{1, 0, 0.5}, m.Points[1])
	assert.Empty(t, m.Markers)
}

func TestReadSU2Errors(t *testing.T) {
	for name, src := range map[string]string{
		"empty":     "",
		"dimension": "NDIME= 4\n",
		"keyword":   "NELEM= 2\n",
		"no equals": "NDIME 2\n",
		"quad":      "NDIME= 2\nNELEM= 1\n9 0 1 2 3 0\n",
		"truncated": "NDIME= 2\nNELEM= 2\n5 0 1 2 0\n",
		"point":     "NDIME= 2\nNELEM= 1\n5 0 1 2 0\nNPOIN= 1\nabc def 0\n",
		"negative":  "NDIME= 2\nNELEM= -1\n",
		"points":    "NDIME= 2\nNELEM= 0\nNPOIN= -3\n",
		"huge":      "NDIME= 2\nNELEM= 99999999999\n",
		"markers":   "NDIME= 2\nNELEM= 0\nNPOIN= 0\nNMARK= -1\n",
	} {
		_, err := ReadSU2(strings.NewReader(src))
		assert.Error(t, err, name)
	}
	_, err := ReadSU2(strings.NewReader("NDIME= 2\nNELEM= 0\nNPOIN= 0\n"))
	assert.NoError(t, err)
	_, err = ReadSU2File(filepath.Join(t.TempDir(), "missing.su2"))
	assert.Error(t, err)
}

func TestReadGambit(t *testing.T) {
	m, err := ReadGambit(strings.NewReader(gambitFile))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Dim)
	assert.Equal(t, [][3]float64{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}, m.Points)
	assert.Equal(t, [][3]int{{0, 1, 2}, {0, 2, 3}}, m.Triangles)
	cx, err := m.Complex([]float64{0, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, [3]int{4, 5, 2}, cx.Counts())

	bad := strings.Replace(gambitFile, "2  3  3        1       3       4", "2  6  4        1       3       4", 1)
	_, err = ReadGambit(strings.NewReader(bad))
	assert.Error(t, err)
	_, err = ReadGambit(strings.NewReader(gambitFile[:strings.Index(gambitFile, "         3  1.0")]))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	for _, header := range []string{
		"        -4         2         1         0         2         2",
		"         4        -2         1         0         2         2",
		"         4 999999999         1         0         2         2",
	} {
		neg := strings.Replace(gambitFile, "         4         2         1         0         2         2", header, 1)
		assert.NotPanics(t, func() {
			_, err = ReadGambit(strings.NewReader(neg))
		}, header)
		assert.Error(t, err, header)
	}
}

func TestReadGmsh(t *testing.T) {
	m, err := ReadGmsh(strings.NewReader(gmshFile))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Dim)
	assert.Equal(t, [][3]float64{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}, m.Points)
	assert.Equal(t, [][3]int{{0, 1, 2}, {0, 2, 3}}, m.Triangles)
	assert.Equal(t, map[string][][2]int{"wall": {{0, 1}}, "7": {{2, 3}}}, m.Markers)

	for name, src := range map[string]string{
		"binary":   strings.Replace(gmshFile, "2.2 0 8", "2.2 1 8", 1),
		"version":  strings.Replace(gmshFile, "2.2 0 8", "4.1 0 8", 1),
		"quad":     strings.Replace(gmshFile, "5 2 2 1 1 11 13 14", "5 3 2 1 1 11 13 14 12", 1),
		"node":     strings.Replace(gmshFile, "5 2 2 1 1 11 13 14", "5 2 2 1 1 11 13 99", 1),
		"truncate": gmshFile[:strings.Index(gmshFile, "$EndElements")],
		"nodes":    strings.Replace(gmshFile, "$Nodes\n4\n", "$Nodes\n-4\n", 1),
		"elements": strings.Replace(gmshFile, "$Elements\n5\n", "$Elements\n-5\n", 1),
		"huge":     strings.Replace(gmshFile, "$Nodes\n4\n", "$Nodes\n1000000000\n", 1),
		"empty":    "",
	} {
		_, err = ReadGmsh(strings.NewReader(src))
		assert.Error(t, err, name)
	}
}

func TestReadField(t *testing.T) {
	values, err := ReadField(strings.NewReader("# header\n1.5\n\n% note\n-2 extra\n3e2"))
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2, 300}, values)

	for _, src := range []string{"1\nx\n", "NaN\n", "+Inf\n"} {
		_, err = ReadField(strings.NewReader(src))
		assert.Error(t, err, src)
	}

	path := filepath.Join(t.TempDir(), "field.txt")
	require.NoError(t, os.WriteFile(path, []byte("0\n1\n2\n"), 0o644))
	values, err = ReadFieldFile(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, values)
}

func TestMeshComplexRejectsBadTriangles(t *testing.T) {
	m := &Mesh{
		Dim:       2,
		Points:    make([][3]float64, 3),
		Triangles: [][3]int{{0, 1, 7}},
	}
	_, err := m.Complex([]float64{0, 1, 2})
	assert.ErrorIs(t, err, cc.ErrDanglingReference)
}

const gmshFile = `$MeshFormat
2.2 0 8
$EndMeshFormat
$PhysicalNames
1
1 3 "wall"
$EndPhysicalNames
$Nodes
4
11 0 0 0
12 1 0 0
13 1 1 0
14 0 1 0
$EndNodes
$Elements
5
1 15 2 0 1 11
2 1 2 3 1 11 12
3 1 2 7 2 13 14
4 2 2 1 1 11 12 13
5 2 2 1 1 11 13 14
$EndElements
`

const gambitFile = `        CONTROL INFO 2.4.6
** GAMBIT NEUTRAL FILE
square
PROGRAM:                Gambit     VERSION:  2.4.6
Jan 2021
     NUMNP     NELEM     NGRPS    NBSETS     NDFCD     NDFVL
         4         2         1         0         2         2
ENDOFSECTION
   NODAL COORDINATES 2.4.6
         1  0.0 0.0
         2  1.0 0.0
         3  1.0 1.0
         4  0.0 1.0
ENDOFSECTION
      ELEMENTS/CELLS 2.4.6
         1  3  3        1       2       3
         2  3  3        1       3       4
ENDOFSECTION
`

var su2File = []byte(` %This is an example input file in SU2 format, output from gmsh
% Comments can appear outside of data areas
NDIME= 2
% Comments can appear outside of data areas
NELEM= 22
5 5 6 13 0
5 9 10 12 1
5 12 5 13 2
5 9 12 13 3
5 13 6 14 4
5 12 10 15 5
5 8 9 13 6
5 4 5 12 7
5 1 7 14 8
5 6 1 14 9
5 3 11 15 10
5 10 3 15 11
5 8 13 16 12
5 4 12 17 13
5 13 14 16 14
5 12 15 17 15
5 7 2 16 16
5 11 0 17 17
5 2 8 16 18
5 0 4 17 19
5 14 7 16 20
5 15 11 17 21
% Comments can appear outside of data areas
NPOIN= 18
-10 0 0
10 0 1
10 10 2
-10 10 3
-5.000000000004944 0 4
-1.231725832440134e-11 0 5
4.99999999999384 0 6
10 4.999999999992398 7
5.000000000004944 10 8
1.231725832440134e-11 10 9
-4.99999999999384 10 10
-10 5 11
-2.500000000008632 4.330127018915808 12
2.50000000000863 5.669872981084192 13
6.712741669205853 3.668411415814691 14
-6.712741669205681 6.331588584184096 15
7.100939331384343 7.110089675963254 16
-7.100939331382065 2.889910324036197 17
NMARK= 4
% Comments can appear outside of data areas
MARKER_TAG= periodic-left
% Comments can appear outside of data areas
MARKER_ELEMS= 2
3 3 11
3 11 0
% Comments can appear outside of data areas
MARKER_TAG= periodic-right
MARKER_ELEMS= 2
3 1 7
3 7 2
% Comments can appear outside of data areas
MARKER_TAG= top
MARKER_ELEMS= 4
3 2 8
3 8 9
3 9 10
3 10 3
MARKER_TAG= bottom
% Comments can appear outside of data areas
MARKER_ELEMS= 4
3 0 4
3 4 5
3 5 6
3 6 1
% Comments can appear outside of data areas
`)
