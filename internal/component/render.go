package component

// Renderable references a mesh and material owned by the asset layer.
// The handles are opaque to the ECS core.
type Renderable struct {
	Mesh     uint32 `yaml:"mesh"`
	Material uint32 `yaml:"material"`
	Hidden   bool   `yaml:"hidden"`
}

type Camera struct {
	Forward   [3]float32 `yaml:"forward"`
	Up        [3]float32 `yaml:"up"`
	FOV       float32    `yaml:"fov"` // degrees
	NearPlane float32    `yaml:"near_plane"`
	FarPlane  float32    `yaml:"far_plane"`
}

// LightType selects how a Light is evaluated by the graphics backend.
type LightType uint8

const (
	LightDirectional LightType = iota
	LightPoint
	LightSpot
)

type Light struct {
	Type       LightType  `yaml:"type"`
	Direction  [3]float32 `yaml:"direction"`
	Color      [3]float32 `yaml:"color"`
	Intensity  float32    `yaml:"intensity"`
	InnerAngle float32    `yaml:"inner_angle"` // spot only, radians
	OuterAngle float32    `yaml:"outer_angle"` // spot only, radians
}
