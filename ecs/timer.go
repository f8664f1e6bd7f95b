package ecs

// TimerID identifies a scheduled timer within its Timers.
type TimerID uint64

// TimerFunc receives the arguments passed to the frame-driver call that fired
// it.
type TimerFunc func(args ...any)

type timer struct {
	id        TimerID
	interval  int
	remaining int
	times     int
	fn        TimerFunc
	dead      bool
}

// Timers is a frame-counted timer registry. It advances one frame each time
// its owning phase runs.
type Timers struct {
	next    TimerID
	pending []*timer
}

// Once schedules fn to fire on the frames-th drain from now. Delays below one
// frame are treated as one.
func (t *Timers) Once(frames int, fn TimerFunc) TimerID {
	return t.Repeat(frames, 1, fn)
}

// Repeat schedules fn every frames drains, times times in total. A times value
// of zero or less repeats until cancelled.
func (t *Timers) Repeat(frames, times int, fn TimerFunc) TimerID {
	if frames < 1 {
		frames = 1
	}
	if times < 0 {
		times = 0
	}
	t.next++
	t.pending = append(t.pending, &timer{
		id:        t.next,
		interval:  frames,
		remaining: frames,
		times:     times,
		fn:        fn,
	})
	return t.next
}

// Cancel stops the timer. It reports whether the timer was still pending.
func (t *Timers) Cancel(id TimerID) bool {
	for _, tm := range t.pending {
		if tm.id == id && !tm.dead {
			tm.dead = true
			return true
		}
	}
	return false
}

// Len returns the number of pending timers.
func (t *Timers) Len() int {
	n := 0
	for _, tm := range t.pending {
		if !tm.dead {
			n++
		}
	}
	return n
}

// Clear cancels every pending timer.
func (t *Timers) Clear() {
	for _, tm := range t.pending {
		tm.dead = true
	}
	t.pending = nil
}

// drain advances every timer that existed before the call by one frame and
// fires the ones that come due. Timers scheduled by a callback start counting
// on the next drain.
func (t *Timers) drain(args []any) {
	due := t.pending[:len(t.pending):len(t.pending)]
	for _, tm := range due {
		if tm.dead {
			continue
		}
		tm.remaining--
		if tm.remaining > 0 {
			continue
		}
		if tm.times > 0 {
			tm.times--
			if tm.times == 0 {
				tm.dead = true
			}
		}
		tm.remaining = tm.interval
		tm.fn(args...)
	}

	live := t.pending[:0]
	for _, tm := range t.pending {
		if !tm.dead {
			live = append(live, tm)
		}
	}
	clear(t.pending[len(live):])
	t.pending = live
}
