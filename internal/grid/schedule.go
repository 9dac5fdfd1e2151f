package grid

// Schedule partitions a spring list into levels. Springs within a level
// share no endpoint, and two springs that share an endpoint keep their
// relative order across levels, so projecting level after level gives the
// same result as one in-order sweep while each level may run in parallel.
type Schedule struct {
	Springs []Spring // level-major
	Offsets []int    // level k is Springs[Offsets[k]:Offsets[k+1]]
}

// NewSchedule assigns each spring the level one past the deepest earlier
// spring touching either endpoint.
func NewSchedule(springs []Spring, particles int) *Schedule {
	last := make([]int, particles)
	for i := range last {
		last[i] = -1
	}

	levels := make([]int, len(springs))
	depth := 0
	for k, s := range springs {
		lvl := max(last[s.A], last[s.B]) + 1
		levels[k] = lvl
		last[s.A] = lvl
		last[s.B] = lvl
		depth = max(depth, lvl+1)
	}

	counts := make([]int, depth+1)
	for _, lvl := range levels {
		counts[lvl+1]++
	}
	for k := 1; k <= depth; k++ {
		counts[k] += counts[k-1]
	}

	sched := &Schedule{
		Springs: make([]Spring, len(springs)),
		Offsets: append([]int(nil), counts...),
	}
	fill := counts[:depth]
	for k, s := range springs {
		lvl := levels[k]
		sched.Springs[fill[lvl]] = s
		fill[lvl]++
	}
	return sched
}

// Levels returns the number of levels.
func (s *Schedule) Levels() int {
	return len(s.Offsets) - 1
}

// Level returns the springs of level k.
func (s *Schedule) Level(k int) []Spring {
	return s.Springs[s.Offsets[k]:s.Offsets[k+1]]
}
