package panelnet

// CorrectRound returns whether or not every output, rounded at 0.5, equals its target. Outputs of
// exactly 0.5 round up, matching the threshold used for classification elsewhere.
//
// assumes len(outs) == len(targets)
func CorrectRound(outs, targets []float64) bool {
	for i := range outs {
		var rounded float64
		if outs[i] >= 0.5 {
			rounded = 1
		}

		if rounded != targets[i] {
			return false
		}
	}

	return true
}
