package models

// NodeSummary is a read-only view of one entity of a parsed document tree,
// used for JSON and msgpack responses.
type NodeSummary struct {
	Type     string        `json:"type" msgpack:"type"`
	Name     string        `json:"name" msgpack:"name"`
	Material *int          `json:"material,omitempty" msgpack:"material,omitempty"`
	Vertices int           `json:"vertices,omitempty" msgpack:"vertices,omitempty"`
	Bounds   *Box          `json:"bounds,omitempty" msgpack:"bounds,omitempty"`
	Children []NodeSummary `json:"children,omitempty" msgpack:"children,omitempty"`
}
