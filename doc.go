/*
Package archetype provides an archetype-based Entity-Component-System (ECS)
core.

Entities are grouped by the exact set of component types they carry (their
"archetype"); each archetype owns a packed byte layout and a list of fixed
aligned chunks, so iterating over every entity matching a system's
requirements walks contiguous memory rather than following pointers.

Core Concepts:

  - Entity: an opaque handle into the world's entity table.
  - Component: a plain Go type registered by identifier, size and alignment.
  - Archetype: the storage for every entity sharing one exact component mask.
  - System: a callback matched against archetypes by a requirement string.

Basic Usage:

	w, _ := archetype.New()
	defer w.Close()

	posID, _ := archetype.RegisterComponent[Position](w, "position")
	velID, _ := archetype.RegisterComponent[Velocity](w, "velocity")

	w.RegisterSystem("move", "position,velocity", func(ctx *archetype.Context, dt float64) {
		pos := (*Position)(ctx.Component(0))
		vel := (*Velocity)(ctx.Component(1))
		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
	}, nil)

	entities, _ := w.Spawn(100, "position,velocity")
	_ = entities

	_ = w.Step(1.0 / 60.0)
	_ = posID
	_ = velID

The package is single-threaded and cooperative: no internal locking, no
goroutines, and no iteration cancellation. See DESIGN.md for the grounding
of each component and the handling of the source's documented edge cases.
*/
package archetype
