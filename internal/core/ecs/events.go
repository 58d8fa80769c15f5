package ecs

// Lifecycle events emitted on the world's event bus, when one is attached.

type EntityCreated struct {
	Entity Entity
	Name   string
}

type EntityDestroyed struct {
	Entity Entity
	Name   string
}

type ComponentAdded struct {
	Entity    Entity
	Component ComponentID
}

type ComponentRemoved struct {
	Entity    Entity
	Component ComponentID
}
