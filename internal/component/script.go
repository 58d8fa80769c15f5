package component

// Scriptable binds a Lua script to an entity. Exactly one of Path or Source is used;
// Source wins when both are set.
type Scriptable struct {
	Path   string `yaml:"path"`
	Source string `yaml:"source"`
}
