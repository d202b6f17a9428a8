package archetype

import (
	"testing"

	"github.com/mlange-42/arche/ecs"
)

// nBenchPos and nBenchPosVel mirror the fixture sizes used to compare this
// package's row iteration against a mature archetype-ECS implementation.
const (
	nBenchPos    = 1000
	nBenchPosVel = 1000
)

type benchPosition struct {
	X, Y float64
}

type benchVelocity struct {
	X, Y float64
}

// BenchmarkIterWorld measures a straight position += velocity sweep
// over this package's cursor, covering both the "position only" and
// "position+velocity" archetypes in one world.
func BenchmarkIterWorld(b *testing.B) {
	b.StopTimer()

	w, err := New()
	if err != nil {
		b.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	pos, err := RegisterComponent[benchPosition](w, "position")
	if err != nil {
		b.Fatalf("RegisterComponent(position) error = %v", err)
	}
	vel, err := RegisterComponent[benchVelocity](w, "velocity")
	if err != nil {
		b.Fatalf("RegisterComponent(velocity) error = %v", err)
	}

	if _, err := w.Spawn(nBenchPosVel, "position,velocity"); err != nil {
		b.Fatalf("Spawn(position,velocity) error = %v", err)
	}
	if _, err := w.Spawn(nBenchPos, "position"); err != nil {
		b.Fatalf("Spawn(position) error = %v", err)
	}

	q := w.NewQuery().And(pos.ID(), vel.ID())

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		cursor := w.NewCursor(q)
		for cursor.Next() {
			p := (*benchPosition)(cursor.Component("position"))
			v := (*benchVelocity)(cursor.Component("velocity"))
			p.X += v.X
			p.Y += v.Y
		}
	}
}

// BenchmarkIterArche runs the same sweep against mlange-42/arche, the
// archetype-ECS implementation this package's storage engine additionally
// draws its chunked-byte-copy idiom from (see DESIGN.md). Kept alongside
// BenchmarkIterWorld so the two can be compared with the same -bench flag.
func BenchmarkIterArche(b *testing.B) {
	b.StopTimer()
	world := ecs.NewWorld(ecs.NewConfig().WithCapacityIncrement(1024))

	posID := ecs.ComponentID[benchPosition](&world)
	velID := ecs.ComponentID[benchVelocity](&world)

	ecs.NewBuilder(&world, posID).NewBatch(nBenchPos)
	ecs.NewBuilder(&world, posID, velID).NewBatch(nBenchPosVel)

	var filter ecs.Filter = ecs.All(posID, velID)
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		query := world.Query(filter)
		for query.Next() {
			pos := (*benchPosition)(query.Get(posID))
			vel := (*benchVelocity)(query.Get(velID))
			pos.X += vel.X
			pos.Y += vel.Y
		}
	}
}
