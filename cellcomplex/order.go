package cellcomplex

// Key orders cells as if the scalar function were injective: first by the cell
// value, then by the ranks of the cell's vertices taken in descending order.
// A shorter tuple orders first when it is a prefix of a longer one, so a face
// of a cell always orders before the cell.
type Key struct {
	Value float64
	Ranks [3]int
	Len   int
}

// Compare returns -1, 0 or +1.
func (k Key) Compare(o Key) int {
	switch {
	case k.Value < o.Value:
		return -1
	case k.Value > o.Value:
		return 1
	}
	n := k.Len
	if o.Len < n {
		n = o.Len
	}
	for i := 0; i < n; i++ {
		switch {
		case k.Ranks[i] < o.Ranks[i]:
			return -1
		case k.Ranks[i] > o.Ranks[i]:
			return 1
		}
	}
	switch {
	case k.Len < o.Len:
		return -1
	case k.Len > o.Len:
		return 1
	}
	return 0
}

func (k Key) Less(o Key) bool { return k.Compare(o) < 0 }

// KeyOf builds the key of an arbitrary vertex tuple of up to three vertices.
// Repeated vertex ids are rejected.
func KeyOf(values []float64, rank []int, verts []int) (k Key, err error) {
	if len(verts) == 0 || len(verts) > 3 {
		return k, invalid(ErrDanglingReference, Vertex, 0, "tuple of %d vertices", len(verts))
	}
	d := Dim(len(verts) - 1)
	for i, v := range verts {
		if v < 0 || v >= len(rank) || v >= len(values) {
			return k, invalid(ErrDanglingReference, d, 0, "vertex %d out of range", v)
		}
		for _, w := range verts[:i] {
			if v == w {
				return k, invalid(ErrDuplicateVertex, d, 0, "vertices %v", verts)
			}
		}
	}
	k.Len = len(verts)
	for i, v := range verts {
		k.Ranks[i] = rank[v]
	}
	// insertion sort, descending
	for i := 1; i < k.Len; i++ {
		for j := i; j > 0 && k.Ranks[j] > k.Ranks[j-1]; j-- {
			k.Ranks[j], k.Ranks[j-1] = k.Ranks[j-1], k.Ranks[j]
		}
	}
	top := verts[0]
	for _, v := range verts[1:] {
		if rank[v] > rank[top] {
			top = v
		}
	}
	k.Value = values[top]
	return
}

// Key returns the ordering key of a cell. Cells of a validated complex never
// repeat a vertex, so this cannot fail.
func (cx *Complex) Key(id CellID) (k Key) {
	verts := cx.cells[id].Verts
	k.Len = len(verts)
	for i, v := range verts {
		k.Ranks[i] = cx.rank[v]
	}
	for i := 1; i < k.Len; i++ {
		for j := i; j > 0 && k.Ranks[j] > k.Ranks[j-1]; j-- {
			k.Ranks[j], k.Ranks[j-1] = k.Ranks[j-1], k.Ranks[j]
		}
	}
	k.Value = cx.values[cx.peak[id]]
	return
}

// Compare orders two cells by their keys.
func (cx *Complex) Compare(a, b CellID) int {
	return cx.Key(a).Compare(cx.Key(b))
}

func (cx *Complex) Less(a, b CellID) bool {
	return cx.Compare(a, b) < 0
}

// Ranks exposes the vertex rank table, indexed by vertex.
func (cx *Complex) Ranks() []int {
	out := make([]int, len(cx.rank))
	copy(out, cx.rank)
	return out
}

// Values exposes a copy of the per-vertex values.
func (cx *Complex) Values() []float64 {
	out := make([]float64, len(cx.values))
	copy(out, cx.values)
	return out
}
