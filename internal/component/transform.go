package component

// Transform places an entity in the world. Every live entity carries one.
type Transform struct {
	Position [3]float32 `yaml:"position"`
	Rotation [3]float32 `yaml:"rotation"` // euler angles, radians
	Scale    [3]float32 `yaml:"scale"`
}

// NewTransform returns the identity transform attached to freshly created entities.
func NewTransform() Transform {
	return Transform{Scale: [3]float32{1, 1, 1}}
}
