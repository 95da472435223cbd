package compiler

import (
	"fmt"
	"sort"

	"github.com/roach88/livegraph/internal/graph"
	"github.com/roach88/livegraph/internal/nodes"
)

// Node returns the slot of label.
func (c *Compiled) Node(label string) (graph.NodeID, error) {
	id, ok := c.Labels[normLabel(label)]
	if !ok {
		return graph.InvalidNode, fmt.Errorf("unknown node %q", label)
	}
	return id, nil
}

// Output resolves an output reference, "label" or "label.port", against the
// compiled labels.
func (c *Compiled) Output(ref string, reg *nodes.Registry) (graph.NodeID, int, error) {
	return resolveSource(ref, c, reg)
}

// Input resolves an input port name or index of node label.
func (c *Compiled) Input(label, port string, reg *nodes.Registry) (graph.NodeID, int, error) {
	id, err := c.Node(label)
	if err != nil {
		return graph.InvalidNode, 0, err
	}
	t := c.Graph.Nodes[id].Type
	idx, ok := resolveIndex(port, reg.Meta(t).InputNames, graph.MaxInputs)
	if !ok {
		return graph.InvalidNode, 0, fmt.Errorf("%s has no input %q", reg.Name(t), port)
	}
	return id, idx, nil
}

// Param resolves a param name or index of node label.
func (c *Compiled) Param(label, param string, reg *nodes.Registry) (graph.NodeID, int, error) {
	id, err := c.Node(label)
	if err != nil {
		return graph.InvalidNode, 0, err
	}
	t := c.Graph.Nodes[id].Type
	idx, ok := resolveIndex(param, reg.Meta(t).ParamNames, graph.MaxParams)
	if !ok {
		return graph.InvalidNode, 0, fmt.Errorf("%s has no param %q", reg.Name(t), param)
	}
	return id, idx, nil
}

// LabelOf returns the label compiled into slot id, or "#<id>" when the
// slot was not named by the document.
func (c *Compiled) LabelOf(id graph.NodeID) string {
	for label, v := range c.Labels {
		if v == id {
			return label
		}
	}
	return fmt.Sprintf("#%d", id)
}

// SortedLabels returns the labels in slot order.
func (c *Compiled) SortedLabels() []string {
	labels := make([]string, 0, len(c.Labels))
	for label := range c.Labels {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		return c.Labels[labels[i]] < c.Labels[labels[j]]
	})
	return labels
}
