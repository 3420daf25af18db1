package geometry

import "github.com/rwi-modeling/backend/internal/models"

// BuildBox returns a rectangular prism with one corner at the origin,
// spanning length along x, width along y and height along z.
//
// The consumer of the format infers the outside of each face from its
// winding, so every face order below is part of the contract: bottom is
// built explicitly, top is bottom moved up and inverted, and front/back and
// left/right follow the same pattern.
func BuildBox(length, width, height float64, material int) (*SubStructure, error) {
	quad := func(name string, pts ...models.Vec3) (*Face, error) {
		f, err := NewFace(name, material)
		if err != nil {
			return nil, err
		}
		for _, p := range pts {
			f.Append(p)
		}
		return f, nil
	}
	opposite := func(f *Face, name string, offset models.Vec3) *Face {
		o := f.Clone()
		// the name is a literal shorter than MaxNameLength
		_ = o.SetName(name)
		o.Translate(offset)
		o.InvertDirection()
		return o
	}

	bottom, err := quad("bottom",
		models.Vec3{0, width, 0},
		models.Vec3{length, width, 0},
		models.Vec3{length, 0, 0},
		models.Vec3{0, 0, 0},
	)
	if err != nil {
		return nil, err
	}
	top := opposite(bottom, "top", models.Vec3{0, 0, height})

	front, err := quad("front",
		models.Vec3{0, width, height},
		models.Vec3{length, width, height},
		models.Vec3{length, width, 0},
		models.Vec3{0, width, 0},
	)
	if err != nil {
		return nil, err
	}
	back := opposite(front, "back", models.Vec3{0, -width, 0})

	left, err := quad("left",
		models.Vec3{0, 0, height},
		models.Vec3{0, width, height},
		models.Vec3{0, width, 0},
		models.Vec3{0, 0, 0},
	)
	if err != nil {
		return nil, err
	}
	right := opposite(left, "right", models.Vec3{length, 0, 0})

	s, err := NewSubStructure("", material)
	if err != nil {
		return nil, err
	}
	s.AddFaces(top, bottom, front, back, left, right)
	s.Dimensions = &models.Vec3{length, width, height}
	return s, nil
}
