package component

// AudioEmitter plays a sound handle owned by the audio backend.
type AudioEmitter struct {
	Sound   uint32  `yaml:"sound"`
	Gain    float32 `yaml:"gain"`
	Pitch   float32 `yaml:"pitch"`
	Looping bool    `yaml:"looping"`
}

// AudioListener marks the entity whose transform is the listening position.
// Only one listener is expected to be active.
type AudioListener struct {
	Gain float32 `yaml:"gain"`
}
