package readfiles

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func ReadGambitFile(filename string) (m *Mesh, err error) {
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return nil, errors.Wrap(err, "unable to open Gambit neutral file")
	}
	defer file.Close()
	if m, err = ReadGambit(file); err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	return
}

// ReadGambit reads the nodal coordinates and triangular elements of a Gambit
// neutral file. Material groups and boundary sections are not read.
func ReadGambit(r io.Reader) (m *Mesh, err error) {
	lr := newLineReader(r)
	// Skip first six lines
	if err = lr.skipLines(6); err != nil {
		return
	}
	var Nv, K, Nsd int
	if Nv, K, Nsd, err = lr.readGambitHeader(); err != nil {
		return
	}
	if Nsd != 2 && Nsd != 3 {
		return nil, lr.errorf("space dimensions %d not 2 or 3", Nsd)
	}
	if err = lr.skipLines(2); err != nil {
		return
	}
	m = &Mesh{Dim: Nsd}
	if m.Points, err = lr.readGambitVertices(Nv, Nsd); err != nil {
		return nil, err
	}
	if err = lr.skipLines(2); err != nil {
		return nil, err
	}
	if m.Triangles, err = lr.readGambitTris(K, Nv); err != nil {
		return nil, err
	}
	return
}

func (lr *lineReader) readGambitHeader() (Nv, K, Nsd int, err error) {
	/*
		Nv      // num nodes in mesh
		K       // num elements
		Nmats   // num material groups
		Nbcs    // num boundary groups
		Nsd;    // num space dimensions
	*/
	var (
		line                string
		n, Nmats, Nbcs, dum int
	)
	if line, err = lr.getLine(); err != nil {
		return
	}
	if n, err = fmt.Sscanf(line, "%d %d %d %d %d %d", &Nv, &K, &Nmats, &Nbcs, &Nsd, &dum); err != nil || n < 6 {
		err = lr.errorf("read %d of 6 header counts, line: %s", n, line)
		return
	}
	if err = lr.checkCount("NUMNP", Nv); err != nil {
		return
	}
	err = lr.checkCount("NELEM", K)
	return
}

func (lr *lineReader) readGambitVertices(Nv, Nsd int) (pts [][3]float64, err error) {
	pts = make([][3]float64, Nv)
	for i := 0; i < Nv; i++ {
		var line string
		if line, err = lr.getLine(); err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) < Nsd+1 {
			return nil, lr.errorf("read fewer than required dimensions, read %d, need %d, line: %s",
				len(fields), Nsd+1, line)
		}
		var ind int
		if ind, err = strconv.Atoi(fields[0]); err != nil || ind < 1 || ind > Nv {
			return nil, lr.errorf("bad node index, line: %s", line)
		}
		for d := 0; d < Nsd; d++ {
			if pts[ind-1][d], err = strconv.ParseFloat(fields[d+1], 64); err != nil {
				return nil, lr.errorf("unable to read coordinate: %v", err)
			}
		}
	}
	return
}

func (lr *lineReader) readGambitTris(K, Nv int) (tris [][3]int, err error) {
	//-------------------------------------
	// ENDOFSECTION
	//    ELEMENTS/CELLS 1.3.0
	//      1  3  3        1       2       3
	//      2  3  3        3       2       4
	//-------------------------------------
	tris = make([][3]int, K)
	for i := 0; i < K; i++ {
		var (
			line                string
			n, ind, typ, nverts int
			n1, n2, n3          int
		)
		if line, err = lr.getLine(); err != nil {
			return nil, err
		}
		if n, err = fmt.Sscanf(line, "%d %d %d %d %d %d", &ind, &typ, &nverts, &n1, &n2, &n3); err != nil || n < 6 {
			return nil, lr.errorf("read fewer than required dimensions, read %d, need 6, line: %s", n, line)
		}
		if nverts != 3 {
			return nil, lr.errorf("element %d has %d nodes, only triangles are supported", ind, nverts)
		}
		if ind < 1 || ind > K {
			return nil, lr.errorf("bad element index %d", ind)
		}
		for _, v := range []int{n1, n2, n3} {
			if v < 1 || v > Nv {
				return nil, lr.errorf("element %d references node %d of %d", ind, v, Nv)
			}
		}
		tris[ind-1] = [3]int{n1 - 1, n2 - 1, n3 - 1}
	}
	return
}
