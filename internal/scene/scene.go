package scene

import (
	"fmt"
	"os"

	"github.com/nutshell/engine/internal/component"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// EntityDef describes one entity of a scene file. Absent components are nil.
// A missing transform means the identity transform every entity starts with.
type EntityDef struct {
	Name          string                       `yaml:"name"`
	Transform     *component.Transform         `yaml:"transform"`
	Rigidbody     *component.Rigidbody         `yaml:"rigidbody"`
	Sphere        *component.SphereCollidable  `yaml:"sphere"`
	AABB          *component.AABBCollidable    `yaml:"aabb"`
	Capsule       *component.CapsuleCollidable `yaml:"capsule"`
	Renderable    *component.Renderable        `yaml:"renderable"`
	Camera        *component.Camera            `yaml:"camera"`
	Light         *component.Light             `yaml:"light"`
	AudioEmitter  *component.AudioEmitter      `yaml:"audio_emitter"`
	AudioListener *component.AudioListener     `yaml:"audio_listener"`
	Script        *component.Scriptable        `yaml:"script"`
}

// Scene is a parsed scene file.
type Scene struct {
	Name     string      `yaml:"name"`
	Entities []EntityDef `yaml:"entities"`

	digest [32]byte
}

// Load reads and parses a scene file.
func Load(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	s, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scene from YAML and checks that entity names are unique.
func Parse(raw []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	seen := make(map[string]int, len(s.Entities))
	for i, def := range s.Entities {
		if def.Name == "" {
			continue
		}
		key := norm.NFC.String(def.Name)
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("parse scene: entities %d and %d share name %q", prev, i, def.Name)
		}
		seen[key] = i
	}
	s.digest = blake2b.Sum256(raw)
	return &s, nil
}

// Count returns the number of entity definitions.
func (s *Scene) Count() int {
	return len(s.Entities)
}

// Digest identifies the scene file contents. Snapshots store it so a snapshot is
// only restored onto the scene it was captured from.
func (s *Scene) Digest() [32]byte {
	return s.digest
}

// DigestHex is Digest formatted for logs and database keys.
func (s *Scene) DigestHex() string {
	return fmt.Sprintf("%x", s.digest)
}
