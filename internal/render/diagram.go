package render

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/san-kum/bondsim/internal/bondgraph"
)

const (
	halfOut = "⇀"
	halfIn  = "↽"
)

// Diagram draws the graph reachable from root as a tree. Each branch
// carries a half-arrow showing the power direction as seen from its
// parent junction. A junction already drawn appears again only by label.
func Diagram(root *bondgraph.Junction) string {
	tree := treeprint.NewWithRoot(root.Label())
	d := &diagram{seen: map[*bondgraph.Junction]bool{root: true}}
	d.junction(tree, root)
	return tree.String()
}

type diagram struct {
	seen map[*bondgraph.Junction]bool
}

func (d *diagram) junction(tree treeprint.Tree, j *bondgraph.Junction) {
	for _, b := range j.Bonds() {
		arrow := halfOut
		if b.PowerDirection() < 0 {
			arrow = halfIn
		}
		switch {
		case b.Junction() != nil:
			d.follow(tree, arrow, b.Junction())
		case b.Port().Kind().IsTwoPort():
			side, _ := b.Side()
			branch := tree.AddBranch(fmt.Sprintf("%s %s.%s", arrow, b.Port().Label(), side.End()))
			if across := b.Across(); across != nil {
				// power keeps its direction through the two-port
				d.follow(branch, arrow, across.Owner())
			}
		default:
			tree.AddNode(fmt.Sprintf("%s %s (%s, %s)", arrow, b.Port().Label(), b.Effort(), b.Flow()))
		}
	}
	for _, l := range j.Links() {
		// an incoming link points at j when its owner sends power outward
		arrow := halfIn
		if l.PowerDirection() < 0 {
			arrow = halfOut
		}
		d.follow(tree, arrow, l.Owner())
	}
}

func (d *diagram) follow(tree treeprint.Tree, arrow string, j *bondgraph.Junction) {
	if d.seen[j] {
		tree.AddNode(arrow + " " + j.Label() + " (see above)")
		return
	}
	d.seen[j] = true
	d.junction(tree.AddBranch(arrow+" "+j.Label()), j)
}
