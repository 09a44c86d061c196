// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"fmt"

	"github.com/jllopis/gedboard/pkg/ged"
)

// FlowNode is a Sankey node.
type FlowNode struct {
	Field ged.Field `json:"-"`
	Kind  string    `json:"kind"`
	Value string    `json:"value"`
	Label string    `json:"label"`
}

// FlowLink joins two nodes by index into FlowGraph.Nodes.
type FlowLink struct {
	Source int `json:"source"`
	Target int `json:"target"`
	Value  int `json:"value"`
}

// FlowGraph is the project → issuer → type → index flow of a dataset.
type FlowGraph struct {
	Nodes []FlowNode `json:"nodes"`
	Links []FlowLink `json:"links"`
}

var flowStages = []ged.Field{ged.FieldProject, ged.FieldIssuer, ged.FieldDocumentType, ged.FieldIndex}

// Flows builds the Sankey graph of a dataset. Index nodes are labelled with
// their share of all indexed records, e.g. "A (12.34%)". A record with an
// empty key only contributes the links whose ends are both present.
func Flows(ds *ged.Dataset) FlowGraph {
	var g FlowGraph
	if ds == nil {
		return g
	}

	indexed := 0
	indexCounts := make(map[string]int)
	for _, r := range ds.Records {
		if r.Index != "" {
			indexed++
			indexCounts[r.Index]++
		}
	}

	type nodeKey struct {
		field ged.Field
		value string
	}
	nodeIDs := make(map[nodeKey]int)
	for _, f := range flowStages {
		for _, v := range ds.Values(f) {
			label := v
			if f == ged.FieldIndex {
				label = fmt.Sprintf("%s (%.2f%%)", v, Percent(indexCounts[v], indexed))
			}
			nodeIDs[nodeKey{f, v}] = len(g.Nodes)
			g.Nodes = append(g.Nodes, FlowNode{Field: f, Kind: f.String(), Value: v, Label: label})
		}
	}

	type linkKey struct{ src, dst int }
	linkIDs := make(map[linkKey]int)
	for _, r := range ds.Records {
		for i := 0; i+1 < len(flowStages); i++ {
			a, b := r.Value(flowStages[i]), r.Value(flowStages[i+1])
			if a == "" || b == "" {
				continue
			}
			k := linkKey{nodeIDs[nodeKey{flowStages[i], a}], nodeIDs[nodeKey{flowStages[i+1], b}]}
			if id, ok := linkIDs[k]; ok {
				g.Links[id].Value++
				continue
			}
			linkIDs[k] = len(g.Links)
			g.Links = append(g.Links, FlowLink{Source: k.src, Target: k.dst, Value: 1})
		}
	}
	return g
}
