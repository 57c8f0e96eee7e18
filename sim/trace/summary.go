package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalMigrations    int
	MeanDistance       float64
	MaxDistance        int
	UniqueTargets      int
	TargetDistribution map[int]int // node → migrations into it
	Promotions         int         // cold → active
	Pins               int         // active → pinned
	Drops              int         // pinned → cold
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		TargetDistribution: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalMigrations = len(st.Migrations)
	if len(st.Migrations) > 0 {
		total := 0
		for _, m := range st.Migrations {
			summary.TargetDistribution[m.To]++
			total += m.Distance
			if m.Distance > summary.MaxDistance {
				summary.MaxDistance = m.Distance
			}
		}
		summary.MeanDistance = float64(total) / float64(len(st.Migrations))
	}
	summary.UniqueTargets = len(summary.TargetDistribution)

	for _, tr := range st.Transitions {
		switch {
		case tr.From == "cold" && tr.To == "active":
			summary.Promotions++
		case tr.From == "active" && tr.To == "pinned":
			summary.Pins++
		case tr.From == "pinned" && tr.To == "cold":
			summary.Drops++
		}
	}

	return summary
}
