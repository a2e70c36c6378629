package readfiles

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"

	cc "github.com/notargets/gomorse/cellcomplex"
)

// Mesh is a triangle surface as read from disk. Vertex indices are zero based.
type Mesh struct {
	Dim       int // coordinate dimension, 2 or 3
	Points    [][3]float64
	Triangles [][3]int
	Markers   map[string][][2]int // boundary edges by tag, when the format has them
}

// Complex builds the cell complex of the mesh with one value per point.
func (m *Mesh) Complex(values []float64) (*cc.Complex, error) {
	if len(values) != len(m.Points) {
		return nil, errors.Errorf("have %d values for %d points", len(values), len(m.Points))
	}
	return cc.FromTriangles(values, m.Triangles)
}

// BoundingBox returns the per-axis minimum and maximum of the points.
func (m *Mesh) BoundingBox() (lo, hi [3]float64) {
	for i, p := range m.Points {
		for d := 0; d < 3; d++ {
			if i == 0 || p[d] < lo[d] {
				lo[d] = p[d]
			}
			if i == 0 || p[d] > hi[d] {
				hi[d] = p[d]
			}
		}
	}
	return
}

// MaxCount bounds every element, point and marker count read from a header.
const MaxCount = 1 << 26

// checkCount rejects a header count that is negative or above MaxCount.
func (lr *lineReader) checkCount(name string, n int) error {
	if n < 0 || n > MaxCount {
		return lr.errorf("%s count %d out of range [0, %d]", name, n, MaxCount)
	}
	return nil
}

type lineReader struct {
	r    *bufio.Reader
	line int
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

func (lr *lineReader) getLine() (line string, err error) {
	line, err = lr.r.ReadString('\n')
	if err == io.EOF && len(line) > 0 {
		err = nil
	}
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return "", errors.Wrapf(err, "line %d", lr.line+1)
	}
	lr.line++
	return strings.TrimRight(line, "\r\n"), nil
}

func (lr *lineReader) skipLines(n int) error {
	for i := 0; i < n; i++ {
		if _, err := lr.getLine(); err != nil {
			return err
		}
	}
	return nil
}

// getLineNoComments skips blank lines and lines starting with one of the
// comment markers.
func (lr *lineReader) getLineNoComments(markers string) (line string, err error) {
	for {
		if line, err = lr.getLine(); err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line != "" && !strings.ContainsRune(markers, rune(line[0])) {
			return
		}
	}
}

func (lr *lineReader) errorf(format string, args ...interface{}) error {
	return errors.Wrapf(errors.Errorf(format, args...), "line %d", lr.line)
}
