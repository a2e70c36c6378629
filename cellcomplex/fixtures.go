package cellcomplex

// Standard meshes shared by the tests of this and the downstream packages.

// Must panics on a construction error, for fixtures known to be valid.
func Must(cx *Complex, err error) *Complex {
	if err != nil {
		panic(err)
	}
	return cx
}

// SingleTriangle is one face with its three edges and vertices.
func SingleTriangle(values [3]float64) *Complex {
	return Must(FromTriangles(values[:], [][3]int{{0, 1, 2}}))
}

// GridTriangles triangulates an nx by ny lattice of vertices indexed j*nx+i,
// splitting each quad along the (i,j)-(i+1,j+1) diagonal.
func GridTriangles(nx, ny int) (tris [][3]int) {
	idx := func(i, j int) int { return j*nx + i }
	for j := 0; j < ny-1; j++ {
		for i := 0; i < nx-1; i++ {
			tris = append(tris,
				[3]int{idx(i, j), idx(i+1, j), idx(i+1, j+1)},
				[3]int{idx(i, j), idx(i+1, j+1), idx(i, j+1)},
			)
		}
	}
	return
}

// Grid is a triangulated disk with f(i, j) sampled at each lattice vertex.
func Grid(nx, ny int, f func(i, j int) float64) *Complex {
	values := make([]float64, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			values[j*nx+i] = f(i, j)
		}
	}
	return Must(FromTriangles(values, GridTriangles(nx, ny)))
}

// AnnulusTriangles triangulates nRings concentric rings of nAround vertices each,
// indexed r*nAround+k. The angular direction wraps around, nAround >= 3.
func AnnulusTriangles(nAround, nRings int) (tris [][3]int) {
	idx := func(k, r int) int { return r*nAround + (k+nAround)%nAround }
	for r := 0; r < nRings-1; r++ {
		for k := 0; k < nAround; k++ {
			tris = append(tris,
				[3]int{idx(k, r), idx(k+1, r), idx(k+1, r+1)},
				[3]int{idx(k, r), idx(k+1, r+1), idx(k, r+1)},
			)
		}
	}
	return
}

// Annulus is a triangulated ring with f(k, r) sampled at angular index k and ring r.
func Annulus(nAround, nRings int, f func(k, r int) float64) *Complex {
	values := make([]float64, nAround*nRings)
	for r := 0; r < nRings; r++ {
		for k := 0; k < nAround; k++ {
			values[r*nAround+k] = f(k, r)
		}
	}
	return Must(FromTriangles(values, AnnulusTriangles(nAround, nRings)))
}

// TorusTriangles triangulates an nx by ny lattice periodic in both directions,
// nx, ny >= 3.
func TorusTriangles(nx, ny int) (tris [][3]int) {
	idx := func(i, j int) int { return ((j+ny)%ny)*nx + (i+nx)%nx }
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			tris = append(tris,
				[3]int{idx(i, j), idx(i+1, j), idx(i+1, j+1)},
				[3]int{idx(i, j), idx(i+1, j+1), idx(i, j+1)},
			)
		}
	}
	return
}

// Torus samples f(i, j) on a periodic lattice.
func Torus(nx, ny int, f func(i, j int) float64) *Complex {
	values := make([]float64, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			values[j*nx+i] = f(i, j)
		}
	}
	return Must(FromTriangles(values, TorusTriangles(nx, ny)))
}

// OctahedronTriangles is the boundary of the octahedron with vertices
// +x, -x, +y, -y, +z, -z in that order.
func OctahedronTriangles() [][3]int {
	return [][3]int{
		{4, 0, 2}, {4, 2, 1}, {4, 1, 3}, {4, 3, 0},
		{5, 2, 0}, {5, 1, 2}, {5, 3, 1}, {5, 0, 3},
	}
}

// OctahedronPoints are the vertex coordinates matching OctahedronTriangles.
func OctahedronPoints() [][3]float64 {
	return [][3]float64{
		{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
	}
}

// Octahedron is a triangulated sphere.
func Octahedron(values [6]float64) *Complex {
	return Must(FromTriangles(values[:], OctahedronTriangles()))
}
