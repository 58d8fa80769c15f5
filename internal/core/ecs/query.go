package ecs

// Each visits every entity that has a T, in dense slot order.
func Each[T any](w *World, fn func(Entity, *T)) {
	StoreFor[T](w.components).Each(fn)
}

// Each2 iterates over entities that have both component A and B.
// It walks the smaller store and looks each entity up in the larger one.
func Each2[A, B any](w *World, fn func(Entity, *A, *B)) {
	sa, sb := StoreFor[A](w.components), StoreFor[B](w.components)
	if sa.Len() <= sb.Len() {
		for i, e := range sa.Entities() {
			if sb.Has(e) {
				fn(e, &sa.components[i], sb.Get(e))
			}
		}
		return
	}
	for i, e := range sb.Entities() {
		if sa.Has(e) {
			fn(e, sa.Get(e), &sb.components[i])
		}
	}
}

// Each3 iterates over entities that have components A, B, and C.
func Each3[A, B, C any](w *World, fn func(Entity, *A, *B, *C)) {
	sa, sb, sc := StoreFor[A](w.components), StoreFor[B](w.components), StoreFor[C](w.components)

	// Drive from the smallest store.
	var driver []Entity
	switch {
	case sa.Len() <= sb.Len() && sa.Len() <= sc.Len():
		driver = sa.Entities()
	case sb.Len() <= sc.Len():
		driver = sb.Entities()
	default:
		driver = sc.Entities()
	}
	for _, e := range driver {
		if sa.Has(e) && sb.Has(e) && sc.Has(e) {
			fn(e, sa.Get(e), sb.Get(e), sc.Get(e))
		}
	}
}
