package model

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/sharnoff/panelnet"
)

// Summary returns a table of every node in the network: its name, operator, output shape and
// number of parameters, followed by the total number of parameters.
func Summary(net *panelnet.Network) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "NODE\tOPERATOR\tOUTPUT SHAPE\tPARAMS")
	for _, n := range net.Nodes() {
		fmt.Fprintf(w, "%s\t%s\t%v\t%d\n", n.Name(), n.TypeString(), n.Dims(), n.NumParams())
	}
	w.Flush()

	fmt.Fprintf(&buf, "total params: %d\n", net.NumParams())
	return buf.String()
}
