package database

// Run is one recorded analysis run.
type Run struct {
	ID             int64
	SourceFile     string
	RowCount       int
	ColumnCount    int
	PlanSource     string
	QualityScore   float64
	QualityGrade   string
	MinScore       float64
	MaxCharts      int
	GeneratedCount int
	SkippedCount   int
	Manifest       string // full manifest JSON
	CreatedAt      string
}
