package geometry

import "github.com/rwi-modeling/backend/internal/models"

// Summary describes the document tree down to the faces.
func (o *ObjectFile) Summary() models.NodeSummary {
	n := models.NodeSummary{Type: "object", Name: o.Name()}
	if b, ok := o.Bounds(); ok {
		n.Bounds = &b
	}
	for _, g := range o.StructureGroups() {
		n.Children = append(n.Children, g.Summary())
	}
	return n
}

// Summary describes the group and its structures.
func (g *StructureGroup) Summary() models.NodeSummary {
	n := models.NodeSummary{Type: "structure_group", Name: g.Name()}
	for _, s := range g.Structures() {
		n.Children = append(n.Children, s.Summary())
	}
	return n
}

// Summary describes the structure and its sub structures.
func (s *Structure) Summary() models.NodeSummary {
	n := models.NodeSummary{Type: "structure", Name: s.Name()}
	if b, ok := s.Bounds(); ok {
		n.Bounds = &b
	}
	for _, sub := range s.SubStructures() {
		n.Children = append(n.Children, sub.Summary())
	}
	return n
}

// Summary describes the sub structure and its faces.
func (s *SubStructure) Summary() models.NodeSummary {
	n := models.NodeSummary{Type: "sub_structure", Name: s.Name()}
	for _, f := range s.Faces() {
		material := f.Material()
		n.Children = append(n.Children, models.NodeSummary{
			Type:     "face",
			Name:     f.Name(),
			Material: &material,
			Vertices: f.Len(),
		})
	}
	return n
}
