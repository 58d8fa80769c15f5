// Profiling:
// go build ./cmd/ecsbench
// ./ecsbench -mode mem
// go tool pprof -http=":8000" -nodefraction=0.001 ./ecsbench mem.pprof

package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/nutshell/engine/internal/component"
	"github.com/nutshell/engine/internal/core/ecs"
	"github.com/nutshell/engine/internal/system"
	"github.com/pkg/profile"
)

func main() {
	mode := flag.String("mode", "mem", "profile mode: mem or cpu")
	rounds := flag.Int("rounds", 20, "worlds to build")
	iters := flag.Int("iters", 200, "fill/drain cycles per world")
	entities := flag.Int("entities", ecs.DefaultMaxEntities, "entities per cycle")
	flag.Parse()

	opts := []func(*profile.Profile){profile.ProfilePath("."), profile.NoShutdownHook}
	if *mode == "cpu" {
		opts = append(opts, profile.CPUProfile)
	} else {
		opts = append(opts, profile.MemProfileAllocs)
	}

	p := profile.Start(opts...)
	start := time.Now()
	moved := run(*rounds, *iters, *entities)
	p.Stop()

	fmt.Printf("%d rounds x %d iters x %d entities in %s (%d integrations)\n",
		*rounds, *iters, *entities, time.Since(start), moved)
}

// run fills a world to capacity, steps the motion system, strips and destroys
// every entity, and repeats.
func run(rounds, iters, numEntities int) int {
	moved := 0
	for r := 0; r < rounds; r++ {
		w := ecs.NewWorld(ecs.WithCapacity(numEntities))
		system.RegisterComponents(w)
		motion := system.NewMotionSystem(w, [3]float32{0, -9.81, 0})
		motion.Register()

		for it := 0; it < iters; it++ {
			for i := 0; i < numEntities; i++ {
				e := w.CreateEntity()
				if i%2 == 0 {
					ecs.AddComponent(w, e, component.NewRigidbody())
				}
			}
			motion.Update(16 * time.Millisecond)
			moved += motion.Entities().Len()

			ecs.Each[component.Rigidbody](w, func(_ ecs.Entity, rb *component.Rigidbody) {
				rb.Force[1] += 1
			})
			for _, e := range motion.Entities().Slice() {
				ecs.RemoveComponent[component.Rigidbody](w, e)
			}
			w.DestroyAllEntities()
		}
	}
	return moved
}
