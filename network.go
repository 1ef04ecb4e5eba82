package panelnet

// setError records e as the construction error of the Network unless one is already recorded.
// Networks built with PanicErrors panic instead.
func (net *Network) setError(e error) {
	if net.err == nil {
		net.err = e
	}

	if net.panicErrors {
		panic(e)
	}
}

// Error returns the first error met while adding Nodes or settings to the Network. It is nil
// once Finalize has succeeded.
func (net *Network) Error() error {
	return net.err
}

// Nodes returns a copy of the Network's Nodes in the order they were added, so that Nodes()[i]
// has ID i.
func (net *Network) Nodes() []*Node {
	return append([]*Node(nil), net.nodesByID...)
}

// Iter returns the number of batches trained on over every call to Train.
func (net *Network) Iter() int {
	return net.longIter
}

// InputSize is the number of values in one input sample, or -1 before Finalize.
func (net *Network) InputSize() int {
	if net.stat < finalized {
		return -1
	}
	return net.input.Size()
}

// OutputSize is the number of values the Network outputs per sample, or -1 before Finalize.
func (net *Network) OutputSize() int {
	if net.stat < finalized {
		return -1
	}
	return net.output.Size()
}

// NumParams returns the number of trainable weights in every Node
func (net *Network) NumParams() int {
	var total int
	for _, n := range net.nodesByID {
		total += n.NumParams()
	}
	return total
}
