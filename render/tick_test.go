// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package render

import "testing"

// TestTickSamplesUntilBudget is scenario S6 of spec.md §8: with no
// user input, exactly `max` tracer passes execute (pingpong reaches
// max+1), then upload fires.
func TestTickSamplesUntilBudget(t *testing.T) {
	s := tickState{max: 5, active: true, frame: 0}
	for i := 0; i < 5; i++ {
		r := tick(s)
		if !r.sample {
			t.Fatalf("iteration %d: expected a sample", i)
		}
		if r.terminate {
			t.Fatalf("iteration %d: terminated early, present=%d", i, r.present)
		}
		s.pingpong = r.next
	}
	r := tick(s)
	if !r.terminate {
		t.Fatalf("expected termination at pingpong=%d, max=%d", s.pingpong, s.max)
	}
	if s.pingpong != 5 {
		t.Fatalf("pingpong before final tick\nhave %d\nwant 5", s.pingpong)
	}
}

func TestTickInteractiveNeverTerminates(t *testing.T) {
	s := tickState{max: 2, active: true, frame: -1}
	for i := 0; i < 10; i++ {
		r := tick(s)
		if r.terminate {
			t.Fatalf("iteration %d: interactive mode (frame=-1) must never terminate", i)
		}
		s.pingpong = r.next
	}
}

// TestTickDirtyRotationRestarts mirrors spec.md §8 S6's second half:
// after a dirty signal (e.g. camera rotation) between samples, the
// accumulator clears and sampling restarts from ordinal 0, reaching
// ordinal 1 on the very next tick.
func TestTickDirtyRotationRestarts(t *testing.T) {
	s := tickState{max: 5, active: true, frame: 0}
	for i := 0; i < 2; i++ {
		r := tick(s)
		s.pingpong = r.next
	}
	if s.pingpong != 2 {
		t.Fatalf("pingpong before rotation\nhave %d\nwant 2", s.pingpong)
	}

	s.dirty = true
	r := tick(s)
	if !r.clearAccum {
		t.Fatal("expected the accumulator to clear on a dirty, non-moving tick")
	}
	if r.next != 0 {
		t.Fatalf("pingpong after dirty tick\nhave %d\nwant 0 (the in-flight sample is discarded)", r.next)
	}

	s.pingpong, s.dirty = r.next, false
	r = tick(s)
	if r.next != 1 {
		t.Fatalf("pingpong on first post-restart tick\nhave %d\nwant 1", r.next)
	}
}

func TestTickMovingSkipsClear(t *testing.T) {
	s := tickState{max: 5, active: true, frame: -1, dirty: true, moving: true}
	r := tick(s)
	if r.clearAccum {
		t.Fatal("expected clear to be skipped while moving")
	}
	if r.next != 0 {
		t.Fatalf("pingpong after moving dirty tick\nhave %d\nwant 0", r.next)
	}
}

func TestTickInactiveDoesNotSample(t *testing.T) {
	s := tickState{max: 5, active: false}
	r := tick(s)
	if r.sample {
		t.Fatal("expected no sample while inactive")
	}
	if r.present != 0 {
		t.Fatalf("present\nhave %d\nwant 0", r.present)
	}
}
