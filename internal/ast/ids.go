package ast

// NodeID addresses a node inside a Tree. IDs are 1-based; 0 is "no node".
type NodeID uint32

const NoNodeID NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNodeID }
