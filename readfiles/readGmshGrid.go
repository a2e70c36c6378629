package readfiles

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Gmsh 2.2 element types
const (
	gmshLine     = 1
	gmshTriangle = 2
	gmshQuad     = 3
	gmshPoint    = 15
)

func ReadGmshFile(filename string) (m *Mesh, err error) {
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return nil, errors.Wrap(err, "unable to open Gmsh file")
	}
	defer file.Close()
	if m, err = ReadGmsh(file); err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	return
}

// ReadGmsh reads the triangles of an ASCII Gmsh 2.2 file. Node tags are mapped
// to zero based indices in file order. Line elements become markers named by
// their physical group.
func ReadGmsh(r io.Reader) (m *Mesh, err error) {
	var (
		lr     = newLineReader(r)
		names  = make(map[int]string)
		index  map[int]int
		seenEl bool
	)
	m = &Mesh{Dim: 2, Markers: make(map[string][][2]int)}
	for {
		var line string
		if line, err = lr.getLine(); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, err
		}
		switch strings.TrimSpace(line) {
		case "$MeshFormat":
			err = lr.readGmshFormat()
		case "$PhysicalNames":
			err = lr.readGmshNames(names)
		case "$Nodes":
			index, err = lr.readGmshNodes(m)
		case "$Elements":
			if index == nil {
				return nil, lr.errorf("$Elements before $Nodes")
			}
			err = lr.readGmshElements(m, index, names)
			seenEl = true
		}
		if err != nil {
			return nil, err
		}
	}
	if !seenEl {
		return nil, errors.New("no $Elements section")
	}
	return m, nil
}

func (lr *lineReader) skipTo(end string) error {
	for {
		line, err := lr.getLine()
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == end {
			return nil
		}
	}
}

func (lr *lineReader) readGmshFormat() (err error) {
	var line string
	if line, err = lr.getLine(); err != nil {
		return
	}
	parts := strings.Fields(line)
	if len(parts) < 3 {
		return lr.errorf("invalid MeshFormat line [%s]", line)
	}
	if !strings.HasPrefix(parts[0], "2.") {
		return lr.errorf("Gmsh version %s is not supported, need 2.2", parts[0])
	}
	if parts[1] != "0" {
		return lr.errorf("binary Gmsh files are not supported")
	}
	return lr.skipTo("$EndMeshFormat")
}

func (lr *lineReader) readCount() (n int, err error) {
	var line string
	if line, err = lr.getLine(); err != nil {
		return
	}
	if n, err = strconv.Atoi(strings.TrimSpace(line)); err != nil {
		return 0, lr.errorf("unable to read count from [%s]", line)
	}
	if err = lr.checkCount("section", n); err != nil {
		return 0, err
	}
	return
}

func (lr *lineReader) readGmshNames(names map[int]string) (err error) {
	var n int
	if n, err = lr.readCount(); err != nil {
		return
	}
	for i := 0; i < n; i++ {
		var line string
		if line, err = lr.getLine(); err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) < 3 {
			return lr.errorf("invalid physical name [%s]", line)
		}
		var tag int
		if tag, err = strconv.Atoi(parts[1]); err != nil {
			return lr.errorf("invalid physical tag [%s]", parts[1])
		}
		names[tag] = strings.Trim(strings.Join(parts[2:], " "), "\"")
	}
	return lr.skipTo("$EndPhysicalNames")
}

func (lr *lineReader) readGmshNodes(m *Mesh) (index map[int]int, err error) {
	var n int
	if n, err = lr.readCount(); err != nil {
		return
	}
	index = make(map[int]int, n)
	m.Points = make([][3]float64, n)
	for i := range m.Points {
		var line string
		if line, err = lr.getLine(); err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) < 4 {
			return nil, lr.errorf("invalid node line [%s]", line)
		}
		var tag int
		if tag, err = strconv.Atoi(parts[0]); err != nil {
			return nil, lr.errorf("invalid node tag [%s]", parts[0])
		}
		if _, dup := index[tag]; dup {
			return nil, lr.errorf("duplicate node tag %d", tag)
		}
		index[tag] = i
		for d := 0; d < 3; d++ {
			if m.Points[i][d], err = strconv.ParseFloat(parts[1+d], 64); err != nil {
				return nil, lr.errorf("unable to read coordinate: %v", err)
			}
		}
		if m.Points[i][2] != 0 {
			m.Dim = 3
		}
	}
	return index, lr.skipTo("$EndNodes")
}

func (lr *lineReader) readGmshElements(m *Mesh, index map[int]int, names map[int]string) (err error) {
	var n int
	if n, err = lr.readCount(); err != nil {
		return
	}
	for i := 0; i < n; i++ {
		var line string
		if line, err = lr.getLine(); err != nil {
			return
		}
		fields := strings.Fields(line)
		ints := make([]int, len(fields))
		for j, f := range fields {
			if ints[j], err = strconv.Atoi(f); err != nil {
				return lr.errorf("invalid element line [%s]", line)
			}
		}
		if len(ints) < 3 || len(ints) < 3+ints[2] {
			return lr.errorf("invalid element line [%s]", line)
		}
		var (
			elType = ints[1]
			tags   = ints[3 : 3+ints[2]]
			nodes  = ints[3+ints[2]:]
		)
		var need int
		switch elType {
		case gmshPoint:
			continue
		case gmshLine:
			need = 2
		case gmshTriangle:
			need = 3
		case gmshQuad:
			return lr.errorf("element type %d is not a triangle", elType)
		default:
			// volume and higher order elements
			continue
		}
		if len(nodes) < need {
			return lr.errorf("element has %d nodes, need %d", len(nodes), need)
		}
		var verts [3]int
		for j := 0; j < need; j++ {
			v, ok := index[nodes[j]]
			if !ok {
				return lr.errorf("unknown node tag %d", nodes[j])
			}
			verts[j] = v
		}
		if elType == gmshTriangle {
			m.Triangles = append(m.Triangles, verts)
			continue
		}
		label := "boundary"
		if len(tags) > 0 {
			if label = names[tags[0]]; label == "" {
				label = strconv.Itoa(tags[0])
			}
		}
		m.Markers[label] = append(m.Markers[label], [2]int{verts[0], verts[1]})
	}
	return lr.skipTo("$EndElements")
}
