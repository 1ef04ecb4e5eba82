package panelnet

// BatchCost evaluates the given samples as a single training batch and returns its cost. The
// deltas of the output are set, but nothing is backpropagated.
func (net *Network) BatchCost(data []Datum) (float64, error) {
	indexes := make([]int, len(data))
	for i := range indexes {
		indexes[i] = i
	}

	ins, targets, weights, err := net.batchOf(Data(data), indexes)
	if err != nil {
		return 0, err
	}

	if err = net.evaluate(ins, true); err != nil {
		return 0, err
	}

	return net.cost(targets, weights)
}

// BatchGradients evaluates the given samples as a single training batch and returns the cost,
// along with a copy of the gradient of every Adjustable Node, by name. No weights are changed.
func (net *Network) BatchGradients(data []Datum) (float64, map[string][]float64, error) {
	cost, err := net.BatchCost(data)
	if err != nil {
		return 0, nil, err
	}

	if err = net.getDeltas(); err != nil {
		return 0, nil, err
	}

	grads := make(map[string][]float64)
	for _, n := range net.nodesByID {
		if n.adj != nil {
			grads[n.name] = append([]float64(nil), n.grad...)
		}
	}

	net.stat = finalized
	return cost, grads, nil
}
