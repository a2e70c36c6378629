package readfiles

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	ELType_LINE          SU2ElementType = 3
	ELType_Triangle      SU2ElementType = 5
	ELType_Quadrilateral SU2ElementType = 9
)

func ReadSU2File(filename string) (m *Mesh, err error) {
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return nil, errors.Wrap(err, "unable to open SU2 file")
	}
	defer file.Close()
	if m, err = ReadSU2(file); err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	return
}

// ReadSU2 reads a 2D or 3D triangle mesh. Markers are optional; a file that
// ends after the point section has none.
func ReadSU2(r io.Reader) (m *Mesh, err error) {
	var (
		lr     = newLineReader(r)
		nElems int
	)
	m = &Mesh{Markers: make(map[string][][2]int)}
	if m.Dim, err = lr.readNumber("NDIME"); err != nil {
		return nil, err
	}
	if m.Dim != 2 && m.Dim != 3 {
		return nil, lr.errorf("NDIME must be 2 or 3, have %d", m.Dim)
	}
	if nElems, err = lr.readNumber("NELEM"); err != nil {
		return nil, err
	}
	if m.Triangles, err = lr.readElements(nElems); err != nil {
		return nil, err
	}
	if m.Points, err = lr.readVertices(m.Dim); err != nil {
		return nil, err
	}
	if err = lr.readMarkers(m.Markers); err != nil {
		return nil, err
	}
	return
}

func (lr *lineReader) readElements(n int) (tris [][3]int, err error) {
	tris = make([][3]int, n)
	for k := range tris {
		var line string
		if line, err = lr.getLineNoComments("%"); err != nil {
			return nil, err
		}
		var nType int
		t := &tris[k]
		if _, err = fmt.Sscanf(line, "%d %d %d %d", &nType, &t[0], &t[1], &t[2]); err != nil {
			return nil, lr.errorf("unable to read element: %v", err)
		}
		if SU2ElementType(nType) != ELType_Triangle {
			return nil, lr.errorf("element type %d is not a triangle", nType)
		}
	}
	return
}

func (lr *lineReader) readVertices(dim int) (pts [][3]float64, err error) {
	var n int
	if n, err = lr.readNumber("NPOIN"); err != nil {
		return nil, err
	}
	pts = make([][3]float64, n)
	for i := range pts {
		var line string
		if line, err = lr.getLineNoComments("%"); err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) < dim {
			return nil, lr.errorf("point has %d coordinates, need %d", len(fields), dim)
		}
		for d := 0; d < dim; d++ {
			if pts[i][d], err = strconv.ParseFloat(fields[d], 64); err != nil {
				return nil, lr.errorf("unable to read coordinate: %v", err)
			}
		}
	}
	return
}

func (lr *lineReader) readMarkers(markers map[string][][2]int) (err error) {
	var nMarks int
	if nMarks, err = lr.readNumber("NMARK"); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		return
	}
	for n := 0; n < nMarks; n++ {
		var (
			label  string
			nEdges int
		)
		if label, err = lr.getToken("MARKER_TAG"); err != nil {
			return
		}
		if nEdges, err = lr.readNumber("MARKER_ELEMS"); err != nil {
			return
		}
		for i := 0; i < nEdges; i++ {
			var (
				line        string
				nType, a, b int
			)
			if line, err = lr.getLineNoComments("%"); err != nil {
				return
			}
			if _, err = fmt.Sscanf(line, "%d %d %d", &nType, &a, &b); err != nil {
				return lr.errorf("unable to read marker element: %v", err)
			}
			if SU2ElementType(nType) != ELType_LINE {
				return lr.errorf("marker %s: element type %d is not a line", label, nType)
			}
			markers[label] = append(markers[label], [2]int{a, b})
		}
	}
	return
}

// getToken reads the value of a "NAME= value" line.
func (lr *lineReader) getToken(name string) (token string, err error) {
	var line string
	if line, err = lr.getLineNoComments("%"); err != nil {
		return
	}
	ind := strings.Index(line, "=")
	if ind < 0 {
		return "", lr.errorf("badly formed input line [%s], should have an =", line)
	}
	if key := strings.TrimSpace(line[:ind]); key != name {
		return "", lr.errorf("expected %s, have %s", name, key)
	}
	return strings.TrimSpace(line[ind+1:]), nil
}

func (lr *lineReader) readNumber(name string) (num int, err error) {
	var token string
	if token, err = lr.getToken(name); err != nil {
		return
	}
	if num, err = strconv.Atoi(token); err != nil {
		return 0, lr.errorf("unable to read number from token: [%s]", token)
	}
	if err = lr.checkCount(name, num); err != nil {
		return 0, err
	}
	return
}
