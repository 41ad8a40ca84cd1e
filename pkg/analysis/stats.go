package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of a numeric column.
type Summary struct {
	Count float64
	Mean  float64
	Std   float64
	Min   float64
	Q25   float64
	Q50   float64
	Q75   float64
	Max   float64
}

// Describe summarises the numeric cells of column. Std is the sample
// standard deviation (NaN below two values); quartiles interpolate
// linearly between closest ranks.
func Describe(f *Frame, column string) (Summary, error) {
	values, err := f.Floats(column)
	if err != nil {
		return Summary{}, err
	}
	if len(values) == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, Std: nan, Min: nan, Q25: nan, Q50: nan, Q75: nan, Max: nan}, nil
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s := Summary{
		Count: float64(len(sorted)),
		Mean:  stat.Mean(sorted, nil),
		Std:   math.NaN(),
		Min:   floats.Min(sorted),
		Q25:   quantile(sorted, 0.25),
		Q50:   quantile(sorted, 0.50),
		Q75:   quantile(sorted, 0.75),
		Max:   floats.Max(sorted),
	}
	if len(sorted) > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	return s, nil
}

// quantile uses linear interpolation between closest ranks on sorted
// values.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Count is the number of rows holding Value.
type Count struct {
	Value string
	N     int
}

// ValueCounts counts the distinct values of column, most frequent first,
// ties broken by value.
func ValueCounts(f *Frame, column string) ([]Count, error) {
	cells, err := f.Column(column)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, c := range cells {
		counts[c]++
	}

	out := make([]Count, 0, len(counts))
	for v, n := range counts {
		out = append(out, Count{Value: v, N: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}

// GroupValue is an aggregate of one group.
type GroupValue struct {
	Group string
	Value float64
}

// group collects the numeric values of value per group, in first-seen
// group order. Non-numeric cells are skipped.
func group(f *Frame, groupCol, valueCol string) ([]string, map[string][]float64, error) {
	groups, err := f.Column(groupCol)
	if err != nil {
		return nil, nil, err
	}
	values, ok, err := f.Numeric(valueCol)
	if err != nil {
		return nil, nil, err
	}

	var order []string
	byGroup := make(map[string][]float64)
	for i, g := range groups {
		if !ok[i] {
			continue
		}
		if _, seen := byGroup[g]; !seen {
			order = append(order, g)
		}
		byGroup[g] = append(byGroup[g], values[i])
	}
	return order, byGroup, nil
}

// MeanByGroup averages value per group, lowest mean first.
func MeanByGroup(f *Frame, groupCol, valueCol string) ([]GroupValue, error) {
	order, byGroup, err := group(f, groupCol, valueCol)
	if err != nil {
		return nil, err
	}

	out := make([]GroupValue, 0, len(order))
	for _, g := range order {
		out = append(out, GroupValue{Group: g, Value: stat.Mean(byGroup[g], nil)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out, nil
}

// SumByGroup totals value per group, highest total first.
func SumByGroup(f *Frame, groupCol, valueCol string) ([]GroupValue, error) {
	order, byGroup, err := group(f, groupCol, valueCol)
	if err != nil {
		return nil, err
	}

	out := make([]GroupValue, 0, len(order))
	for _, g := range order {
		out = append(out, GroupValue{Group: g, Value: floats.Sum(byGroup[g])})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out, nil
}

// TopN returns the n rows with the highest numeric sortColumn, restricted
// to the requested columns that exist (all columns when none are given).
// Rows whose sort cell is not numeric come last.
func TopN(f *Frame, sortColumn string, n int, columns ...string) (*Frame, error) {
	values, ok, err := f.Numeric(sortColumn)
	if err != nil {
		return nil, err
	}

	idx := make([]int, f.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if ok[ia] != ok[ib] {
			return ok[ia]
		}
		return values[ia] > values[ib]
	})
	if n >= 0 && n < len(idx) {
		idx = idx[:n]
	}

	var keep []string
	for _, c := range columns {
		if f.HasColumn(c) {
			keep = append(keep, c)
		}
	}
	if len(keep) == 0 {
		keep = f.columns
	}

	rows := make([][]string, len(idx))
	for i, src := range idx {
		row := make([]string, len(keep))
		for j, c := range keep {
			row[j] = f.rows[src][f.index[c]]
		}
		rows[i] = row
	}
	return NewFrame(keep, rows), nil
}

// ScorerStats aggregates goals and assists over players.
type ScorerStats struct {
	Players      int
	TotalGoals   float64
	MeanGoals    float64
	MaxGoals     float64
	TotalAssists float64
	MeanAssists  float64
	MaxAssists   float64
	BestScorer   string
}

// ScorerSummary summarises the goals and assists columns. The player name is
// read from name or player_name; the first player with the most goals is
// the best scorer.
func ScorerSummary(f *Frame) (ScorerStats, error) {
	nameCol := "name"
	if !f.HasColumn(nameCol) {
		nameCol = "player_name"
	}
	names, err := f.Column(nameCol)
	if err != nil {
		return ScorerStats{}, fmt.Errorf("%w: name", ErrMissingColumn)
	}
	goals, goalsOK, err := f.Numeric("goals")
	if err != nil {
		return ScorerStats{}, err
	}
	assists, assistsOK, err := f.Numeric("assists")
	if err != nil {
		return ScorerStats{}, err
	}

	for i := range goals {
		if !goalsOK[i] {
			goals[i] = 0
		}
		if !assistsOK[i] {
			assists[i] = 0
		}
	}

	s := ScorerStats{Players: f.Len()}
	if s.Players == 0 {
		return s, nil
	}

	s.TotalGoals = floats.Sum(goals)
	s.MeanGoals = stat.Mean(goals, nil)
	s.MaxGoals = floats.Max(goals)
	s.TotalAssists = floats.Sum(assists)
	s.MeanAssists = stat.Mean(assists, nil)
	s.MaxAssists = floats.Max(assists)
	s.BestScorer = names[floats.MaxIdx(goals)]
	return s, nil
}
