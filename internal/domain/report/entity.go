package report

// MonthlyCounts aggregates one user's records whose date starts with a "YYYY-MM" prefix.
type MonthlyCounts struct {
	Present int64
	Late    int64
	Absent  int64
	HalfDay int64
	Hours   float64
}
