package archetype

import "testing"

func TestQueryAndOrNot(t *testing.T) {
	w, pos, vel, health := newTestWorld(t)
	defer w.Close()

	if _, err := w.Spawn(3, "position"); err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if _, err := w.Spawn(2, "position,velocity"); err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if _, err := w.Spawn(1, "position,velocity,health"); err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	q := w.NewQuery()
	hasVel := q.And(vel.ID())
	if hasVel.Evaluate(Mask{}) {
		t.Errorf("empty mask should never satisfy And(velocity)")
	}

	var onlyPos Mask
	onlyPos.Insert(pos.ID())
	if hasVel.Evaluate(onlyPos) {
		t.Errorf("position-only mask should not satisfy And(velocity)")
	}

	var posVel Mask
	posVel.Insert(pos.ID())
	posVel.Insert(vel.ID())
	if !hasVel.Evaluate(posVel) {
		t.Errorf("position+velocity mask should satisfy And(velocity)")
	}

	noHealth := q.Not(health.ID())
	if !noHealth.Evaluate(posVel) {
		t.Errorf("position+velocity mask should satisfy Not(health)")
	}
	var posVelHealth Mask
	posVelHealth.Insert(pos.ID())
	posVelHealth.Insert(vel.ID())
	posVelHealth.Insert(health.ID())
	if noHealth.Evaluate(posVelHealth) {
		t.Errorf("position+velocity+health mask should not satisfy Not(health)")
	}

	cursor := w.NewCursor(hasVel)
	count := 0
	for cursor.Next() {
		count++
	}
	if count != 3 {
		t.Errorf("cursor over And(velocity) visited %d rows, want 3", count)
	}
}
