package component

// Rigidbody stores the dynamic state integrated by the motion system.
// Force and Torque are accumulated by gameplay code and consumed each tick.
type Rigidbody struct {
	IsStatic        bool       `yaml:"is_static"`
	Force           [3]float32 `yaml:"force"`
	Mass            float32    `yaml:"mass"`
	Restitution     float32    `yaml:"restitution"`
	Torque          [3]float32 `yaml:"torque"`
	Inertia         float32    `yaml:"inertia"`
	LinearVelocity  [3]float32 `yaml:"linear_velocity"`
	AngularVelocity [3]float32 `yaml:"angular_velocity"`
}

// NewRigidbody returns a dynamic body with unit mass and inertia.
func NewRigidbody() Rigidbody {
	return Rigidbody{Mass: 1, Inertia: 1}
}

type SphereCollidable struct {
	Center [3]float32 `yaml:"center"`
	Radius float32    `yaml:"radius"`
}

type AABBCollidable struct {
	Min [3]float32 `yaml:"min"`
	Max [3]float32 `yaml:"max"`
}

type CapsuleCollidable struct {
	Base   [3]float32 `yaml:"base"`
	Tip    [3]float32 `yaml:"tip"`
	Radius float32    `yaml:"radius"`
}
