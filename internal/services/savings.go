package services

import (
	"sort"
)

type savingsPair struct {
	i, j     int
	score    int64
	minStart int64
	sumStart int64
}

// rankSavings scores every unordered pair for an open route with no depot:
//
//	s(i, j) = R(i) + R(j) - (N-1) * c(i, j)
//
// where R(i) is the summed travel from i to every other stop. This is N-1
// times the mean linkage cost of i and j minus their direct cost, so cheaper
// direct links between otherwise remote stops rank higher. Only positive
// scores are returned, best first. Equal scores prefer the pair whose combined
// scheduled start is earliest, then the one holding the earliest single start,
// then the lower index pair.
func (p *routePlanner) rankSavings() []savingsPair {
	n := len(p.stops)
	rowSum := make([]int64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				rowSum[i] += p.matrix.seconds(i, j)
			}
		}
	}

	pairs := make([]savingsPair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			score := rowSum[i] + rowSum[j] - int64(n-1)*p.matrix.seconds(i, j)
			if score <= 0 {
				continue
			}

			si, sj := p.stops[i].ScheduledStart.Unix(), p.stops[j].ScheduledStart.Unix()
			pairs = append(pairs, savingsPair{
				i:        i,
				j:        j,
				score:    score,
				minStart: min(si, sj),
				sumStart: si + sj,
			})
		}
	}

	sort.Slice(pairs, func(a, b int) bool {
		x, y := pairs[a], pairs[b]
		switch {
		case x.score != y.score:
			return x.score > y.score
		case x.sumStart != y.sumStart:
			return x.sumStart < y.sumStart
		case x.minStart != y.minStart:
			return x.minStart < y.minStart
		case x.i != y.i:
			return x.i < y.i
		default:
			return x.j < y.j
		}
	})
	return pairs
}

// mergeFragments runs the savings pass. Each stop starts as its own fragment;
// a pair joins two fragments only when both stops are fragment endpoints, the
// fragments differ, and some orientation of the joined sequence is
// time-feasible. Infeasible pairs are skipped for good.
func (p *routePlanner) mergeFragments(pairs []savingsPair) [][]int {
	n := len(p.stops)
	frags := make([][]int, n)
	fragOf := make([]int, n)
	for i := range frags {
		frags[i] = []int{i}
		fragOf[i] = i
	}

	merged := 0
	for _, pr := range pairs {
		if merged == n-1 {
			break
		}

		fa, fb := fragOf[pr.i], fragOf[pr.j]
		if fa == fb || !isEndpoint(frags[fa], pr.i) || !isEndpoint(frags[fb], pr.j) {
			continue
		}

		// Among feasible joinings keep the one opening with the earliest
		// appointment.
		var best []int
		for _, seq := range joinings(frags[fa], frags[fb], pr.i, pr.j) {
			if (best == nil || seq[0] < best[0]) && p.feasible(seq) {
				best = seq
			}
		}
		if best == nil {
			continue
		}

		frags[fa], frags[fb] = best, nil
		for _, s := range best {
			fragOf[s] = fa
		}
		merged++
	}

	out := make([][]int, 0, n-merged)
	for _, f := range frags {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

func isEndpoint(seq []int, s int) bool {
	return seq[0] == s || seq[len(seq)-1] == s
}

// joinings lists the sequences that make i and j adjacent by joining a and b
// end to end.
func joinings(a, b []int, i, j int) [][]int {
	var out [][]int
	for _, x := range variants(a) {
		if x[len(x)-1] != i {
			continue
		}
		for _, y := range variants(b) {
			if y[0] == j {
				out = append(out, concat(x, y))
			}
		}
	}
	for _, y := range variants(b) {
		if y[len(y)-1] != j {
			continue
		}
		for _, x := range variants(a) {
			if x[0] == i {
				out = append(out, concat(y, x))
			}
		}
	}
	return out
}

func variants(seq []int) [][]int {
	if len(seq) < 2 {
		return [][]int{seq}
	}
	rev := make([]int, len(seq))
	for k, s := range seq {
		rev[len(seq)-1-k] = s
	}
	return [][]int{seq, rev}
}

func concat(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}

// insertLeftovers folds every stop outside the primary fragment into it, one at
// a time in chronological order, at the feasible position adding the least
// travel. A stop with no feasible position keeps its chronological place.
func (p *routePlanner) insertLeftovers(frags [][]int) []int {
	primary := 0
	for k := 1; k < len(frags); k++ {
		if len(frags[k]) > len(frags[primary]) ||
			(len(frags[k]) == len(frags[primary]) && frags[k][0] < frags[primary][0]) {
			primary = k
		}
	}
	route := append([]int(nil), frags[primary]...)

	var rest []int
	for k, f := range frags {
		if k != primary {
			rest = append(rest, f...)
		}
	}
	sort.Ints(rest)

	for _, s := range rest {
		best, bestAdded := -1, int64(0)
		for pos := 0; pos <= len(route); pos++ {
			candidate := insertAt(route, pos, s)
			if !p.feasible(candidate) {
				continue
			}
			if added := p.addedTravel(route, pos, s); best < 0 || added < bestAdded {
				best, bestAdded = pos, added
			}
		}
		if best < 0 {
			best = len(route)
			for pos, r := range route {
				if r > s {
					best = pos
					break
				}
			}
		}
		route = insertAt(route, best, s)
	}
	return route
}

func (p *routePlanner) addedTravel(route []int, pos, s int) int64 {
	switch {
	case len(route) == 0:
		return 0
	case pos == 0:
		return p.matrix.seconds(s, route[0])
	case pos == len(route):
		return p.matrix.seconds(route[len(route)-1], s)
	default:
		prev, next := route[pos-1], route[pos]
		return p.matrix.seconds(prev, s) + p.matrix.seconds(s, next) - p.matrix.seconds(prev, next)
	}
}

func insertAt(route []int, pos, s int) []int {
	out := make([]int, 0, len(route)+1)
	out = append(out, route[:pos]...)
	out = append(out, s)
	return append(out, route[pos:]...)
}
