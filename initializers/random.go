package initializers

type random struct {
	RNG
	src Source
}

// Random returns an Initializer that uses the provided RNG to generate the weights. There is no
// scaling beyond that of the RNG.
func Random(g RNG) *random {
	return &random{g, Global}
}

// Rand sets the Source of the Initializer, returning it.
func (r *random) Rand(src Source) *random {
	r.src = src
	return r
}

// Set is the implementation of panelnet.Initializer
func (r *random) Set(ws []float64, fanIn, fanOut int) {
	for i := range ws {
		ws[i] = r.Gen(r.src)
	}
}
