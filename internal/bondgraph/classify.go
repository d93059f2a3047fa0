package bondgraph

import (
	"github.com/san-kum/bondsim/internal/symbolic"
)

// States lists the state symbol of every storage port reachable from j in
// traversal order, first occurrence kept.
func (j *Junction) States() []symbolic.Symbol {
	_, bonds := j.graph.reach(j)
	return collectSymbols(bonds, (*Port).State)
}

// Inputs lists the symbol of every reachable source, first occurrence kept.
func (j *Junction) Inputs() []symbolic.Symbol {
	_, bonds := j.graph.reach(j)
	return collectSymbols(bonds, (*Port).Input)
}

// Parameters lists, sorted, the free symbols of reachable laws and ratios
// that are neither states, inputs nor port variables, nor derivatives of
// any of these.
func (j *Junction) Parameters() []symbolic.Symbol {
	_, bonds := j.graph.reach(j)
	return parameters(bonds)
}

func collectSymbols(bonds []*Bond, pick func(*Port) (symbolic.Symbol, bool)) []symbolic.Symbol {
	var out []symbolic.Symbol
	seen := make(map[symbolic.Symbol]bool)
	for _, b := range bonds {
		if b.port == nil {
			continue
		}
		if s, ok := pick(b.port); ok && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func parameters(bonds []*Bond) []symbolic.Symbol {
	excluded := make(map[symbolic.Symbol]bool)
	var ports []*Port
	visited := make(map[*Port]bool)
	for _, b := range bonds {
		if b.port == nil || visited[b.port] {
			continue
		}
		visited[b.port] = true
		ports = append(ports, b.port)
		for _, v := range b.port.variables() {
			excluded[v.Base()] = true
		}
	}

	seen := make(map[symbolic.Symbol]bool)
	var out []symbolic.Symbol
	for _, p := range ports {
		for _, eq := range p.laws {
			for _, s := range eq.FreeSymbols() {
				if excluded[s.Base()] || seen[s] {
					continue
				}
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	symbolic.SortSymbols(out)
	return out
}
