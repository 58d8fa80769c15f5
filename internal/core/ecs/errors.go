package ecs

import (
	"errors"
	"fmt"
)

// Precondition violations are fatal: the core panics with an error wrapping one of
// these sentinels, so callers that recover can still match them with errors.Is.
var (
	// ErrEntityCapacity is raised when every entity id is in use.
	ErrEntityCapacity = errors.New("ecs: entity capacity exhausted")
	// ErrEntityOutOfRange is raised for ids outside [0, capacity).
	ErrEntityOutOfRange = errors.New("ecs: entity out of range")
	// ErrEntityNotAlive is raised when operating on a destroyed or never created entity.
	ErrEntityNotAlive = errors.New("ecs: entity not alive")
	// ErrNameTaken is raised when binding a name already bound to another entity.
	ErrNameTaken = errors.New("ecs: entity name already taken")
	// ErrNameNotFound is raised when resolving an unknown name or an unnamed entity.
	ErrNameNotFound = errors.New("ecs: entity name not found")
	// ErrComponentRegistered is raised when registering the same component type twice.
	ErrComponentRegistered = errors.New("ecs: component already registered")
	// ErrComponentNotRegistered is raised on any typed operation for an unknown type.
	ErrComponentNotRegistered = errors.New("ecs: component not registered")
	// ErrComponentCapacity is raised when registering more than MaxComponents types.
	ErrComponentCapacity = errors.New("ecs: component type capacity exhausted")
	// ErrComponentExists is raised when attaching a component the entity already owns.
	ErrComponentExists = errors.New("ecs: entity already has component")
	// ErrComponentMissing is raised when reading or detaching a component the entity lacks.
	ErrComponentMissing = errors.New("ecs: entity does not have component")
	// ErrSystemRegistered is raised when registering the same system type twice.
	ErrSystemRegistered = errors.New("ecs: system already registered")
	// ErrSystemNotRegistered is raised when configuring an unknown system type.
	ErrSystemNotRegistered = errors.New("ecs: system not registered")
	// ErrMaskDelta is raised when a mask change notification does not flip exactly one bit.
	ErrMaskDelta = errors.New("ecs: mask change must flip exactly one component bit")
)

func fatalf(sentinel error, format string, args ...any) {
	panic(fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...))
}
