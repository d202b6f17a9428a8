package archetype

import "testing"

// TestRegisterSystemLinksExistingArchetypes covers the S3 scenario: a
// system registered after archetypes already exist must pick up every
// archetype it matches immediately, and a later archetype must be linked
// to every existing matching system.
func TestRegisterSystemLinksExistingArchetypes(t *testing.T) {
	w, pos, vel, _ := newTestWorld(t)
	defer w.Close()

	if _, err := w.Spawn(1, "position"); err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if _, err := w.Spawn(1, "position,velocity"); err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	var ran int
	if err := w.RegisterSystem("count", "position", func(ctx *Context, dt float64) {
		ran++
	}, nil); err != nil {
		t.Fatalf("RegisterSystem() error = %v", err)
	}

	if err := w.Step(0); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if ran != 2 {
		t.Errorf("system ran %d times, want 2 (one per matching archetype row)", ran)
	}

	// a newly created archetype must link to the already-registered system.
	if _, err := w.Spawn(1, "position,health"); err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	ran = 0
	if err := w.Step(0); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if ran != 3 {
		t.Errorf("system ran %d times after a new matching archetype appeared, want 3", ran)
	}

	_ = pos
	_ = vel
}

// TestOnNewSystemRollsBackOnFailure exercises the match-index rollback
// path: if linking fails partway through the scan of existing archetypes,
// every link made during that same call must be undone.
func TestOnNewSystemRollsBackOnFailure(t *testing.T) {
	w, _, _, _ := newTestWorld(t)
	defer w.Close()

	if _, err := w.Spawn(1, "position"); err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if _, err := w.Spawn(1, "position,velocity"); err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if _, err := w.Spawn(1, "position,health"); err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	testHookMatchFailAfter = 1
	defer func() { testHookMatchFailAfter = -1 }()

	err := w.RegisterSystem("fails", "position", func(ctx *Context, dt float64) {}, nil)
	if err == nil {
		t.Fatalf("RegisterSystem() expected a simulated failure, got nil error")
	}

	for _, arch := range w.archetypes {
		for _, sys := range arch.systems {
			if sys.identifier == "fails" {
				t.Errorf("archetype mask %v still links the system that failed to register", arch.mask)
			}
		}
	}
	if _, exists := w.systemIndex["fails"]; exists {
		t.Errorf("failed RegisterSystem() should not register the system identifier")
	}
}

// TestOnNewArchetypeRollsBackOnFailure mirrors the above for the symmetric
// path: a newly spawned archetype failing to link against existing systems
// must not leave any partial links behind, and Spawn itself must fail.
func TestOnNewArchetypeRollsBackOnFailure(t *testing.T) {
	w, _, _, _ := newTestWorld(t)
	defer w.Close()

	if err := w.RegisterSystem("a", "position", func(ctx *Context, dt float64) {}, nil); err != nil {
		t.Fatalf("RegisterSystem() error = %v", err)
	}
	if err := w.RegisterSystem("b", "position", func(ctx *Context, dt float64) {}, nil); err != nil {
		t.Fatalf("RegisterSystem() error = %v", err)
	}

	testHookMatchFailAfter = 1
	defer func() { testHookMatchFailAfter = -1 }()

	if _, err := w.Spawn(1, "position"); err == nil {
		t.Fatalf("Spawn() expected a simulated matching-index failure, got nil error")
	}

	if len(w.archetypes) != 0 {
		t.Errorf("a failed archetype creation should not be left in the archetype list")
	}
	for _, sys := range w.systems {
		if len(sys.matches) != 0 {
			t.Errorf("system %q retained matches after a rolled-back archetype creation", sys.identifier)
		}
	}
}
