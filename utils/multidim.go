package utils

// MultiDim maps points of an n-dimensional shape onto a flat slice. The first dimension varies
// fastest, so an image shaped (width, height, channels) is stored as one plane per channel, each
// plane row by row.
type MultiDim struct {
	Dims []int

	// strides[i] is the distance in the flat slice between neighbours along dimension i
	strides []int
}

// NewMultiDim returns the MultiDim of the given shape. dims is copied.
func NewMultiDim(dims []int) *MultiDim {
	m := &MultiDim{
		Dims:    append([]int(nil), dims...),
		strides: make([]int, len(dims)+1),
	}

	m.strides[0] = 1
	for i, d := range m.Dims {
		m.strides[i+1] = m.strides[i] * d
	}

	return m
}

// Index returns the flat index of point, which must have one coordinate per dimension
func (m *MultiDim) Index(point []int) int {
	var index int
	for i, p := range point {
		index += p * m.strides[i]
	}
	return index
}

// Point is the inverse of Index. index must be in [0, Size()).
func (m *MultiDim) Point(index int) []int {
	p := make([]int, len(m.Dims))
	for i, d := range m.Dims {
		p[i] = index % d
		index /= d
	}
	return p
}

// Size returns the number of values in the shape
func (m *MultiDim) Size() int {
	return m.strides[len(m.Dims)]
}

// Dim returns the length of dimension d
func (m *MultiDim) Dim(d int) int {
	return m.Dims[d]
}
