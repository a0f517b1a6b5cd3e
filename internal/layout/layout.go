// Package layout places a day's tasks into side-by-side columns.
//
// Tasks are first partitioned into clusters: maximal chains of overlapping
// intervals. Within a cluster every task gets the first column whose previous
// occupant has already ended, opening a new column only when none is free.
// Processing tasks in (start, end) order makes this first-fit assignment
// optimal, so a cluster's column count equals the largest number of its
// intervals open at the same instant.
//
// Everything here is a pure function of its input; nothing is cached.
package layout

import (
	"cmp"
	"slices"

	"github.com/javiermolinar/agenda/internal/task"
)

// Placement is the computed geometry of one task.
type Placement struct {
	Column      int // 0-based lane within the cluster
	ColumnCount int // lanes used by the whole cluster
	StartMinute int
	EndMinute   int
	Cluster     int // 0-based cluster index in start order
}

// Interval returns the placement's minute interval.
func (p Placement) Interval() task.Interval {
	return task.Interval{Start: p.StartMinute, End: p.EndMinute}
}

// Result is the full output of a layout pass.
type Result struct {
	Placements map[int64]Placement
	Clusters   [][]*task.Task // tasks per cluster, in placement order
	Excluded   []*task.Task   // malformed tasks left out of the layout
}

// Columns returns the column count of the given cluster.
func (r Result) Columns(cluster int) int {
	if cluster < 0 || cluster >= len(r.Clusters) || len(r.Clusters[cluster]) == 0 {
		return 0
	}
	return r.Placements[r.Clusters[cluster][0].ID].ColumnCount
}

// Day lays out the tasks of one day and returns a placement per task ID.
// Malformed tasks are omitted. An empty input yields an empty map.
func Day(tasks []*task.Task) map[int64]Placement {
	return Compute(tasks).Placements
}

// Clusters returns the overlap clusters of the given tasks in start order.
func Clusters(tasks []*task.Task) [][]*task.Task {
	return Compute(tasks).Clusters
}

type entry struct {
	t  *task.Task
	iv task.Interval
}

// Compute runs the layout and returns placements, clusters and the tasks
// excluded because their start or duration is not finite.
func Compute(tasks []*task.Task) Result {
	res := Result{Placements: make(map[int64]Placement, len(tasks))}

	entries := make([]entry, 0, len(tasks))
	for _, t := range tasks {
		if t == nil {
			continue
		}
		iv, ok := t.Interval()
		if !ok {
			res.Excluded = append(res.Excluded, t)
			continue
		}
		entries = append(entries, entry{t: t, iv: iv})
	}
	if len(entries) == 0 {
		return res
	}

	// Start ascending, then end ascending. The ID tie-break keeps the output
	// independent of input order when two tasks share both endpoints.
	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(a.iv.Start, b.iv.Start); c != 0 {
			return c
		}
		if c := cmp.Compare(a.iv.End, b.iv.End); c != 0 {
			return c
		}
		return cmp.Compare(a.t.ID, b.t.ID)
	})

	clusterStart := 0
	boundary := entries[0].iv.End
	for i := 1; i < len(entries); i++ {
		if entries[i].iv.Start < boundary {
			boundary = max(boundary, entries[i].iv.End)
			continue
		}
		res.assign(entries[clusterStart:i])
		clusterStart = i
		boundary = entries[i].iv.End
	}
	res.assign(entries[clusterStart:])

	return res
}

// assign gives each entry of one cluster a column and records the result.
func (r *Result) assign(cluster []entry) {
	index := len(r.Clusters)
	columns := make([]int, len(cluster))
	var ends []int // end minute of the last task in each column

	for i, e := range cluster {
		col := -1
		for c, end := range ends {
			if end <= e.iv.Start {
				col = c
				break
			}
		}
		if col < 0 {
			col = len(ends)
			ends = append(ends, e.iv.End)
		} else {
			ends[col] = e.iv.End
		}
		columns[i] = col
	}

	members := make([]*task.Task, len(cluster))
	for i, e := range cluster {
		members[i] = e.t
		r.Placements[e.t.ID] = Placement{
			Column:      columns[i],
			ColumnCount: len(ends),
			StartMinute: e.iv.Start,
			EndMinute:   e.iv.End,
			Cluster:     index,
		}
	}
	r.Clusters = append(r.Clusters, members)
}

// PeakConcurrency returns the size of the largest set of mutually
// overlapping intervals. For non-empty intervals this is the peak number open
// at any minute; an empty interval counts only where it lies strictly inside
// another, matching task.Interval.Overlaps.
func PeakConcurrency(ivs []task.Interval) int {
	sorted := slices.Clone(ivs)
	slices.SortFunc(sorted, func(a, b task.Interval) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})

	// Every earlier interval overlapping sorted[i] contains its start point,
	// so they all overlap each other as well.
	peak := 0
	for i, iv := range sorted {
		open := 1
		for _, prev := range sorted[:i] {
			if prev.Overlaps(iv) {
				open++
			}
		}
		peak = max(peak, open)
	}
	return peak
}
