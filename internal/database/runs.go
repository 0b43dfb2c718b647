package database

import "database/sql"

// InsertRun records a completed analysis run and returns its id.
func (db *DB) InsertRun(r *Run) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO runs
		(source_file, row_count, column_count, plan_source, quality_score, quality_grade,
		 min_score, max_charts, generated_count, skipped_count, manifest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SourceFile, r.RowCount, r.ColumnCount, r.PlanSource, r.QualityScore, r.QualityGrade,
		r.MinScore, r.MaxCharts, r.GeneratedCount, r.SkippedCount, r.Manifest,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const runColumns = `id, source_file, row_count, column_count, plan_source, quality_score,
	quality_grade, min_score, max_charts, generated_count, skipped_count, manifest, created_at`

// GetRun returns one run by id, or nil when it does not exist.
func (db *DB) GetRun(id int64) (*Run, error) {
	row := db.conn.QueryRow("SELECT "+runColumns+" FROM runs WHERE id = ?", id)

	var r Run
	if err := scanRun(row.Scan, &r); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// GetRecentRuns returns the latest runs, newest first.
func (db *DB) GetRecentRuns(limit int) ([]Run, error) {
	rows, err := db.conn.Query(
		"SELECT "+runColumns+" FROM runs ORDER BY id DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := scanRun(rows.Scan, &r); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// CountRuns returns the total number of recorded runs.
func (db *DB) CountRuns() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}

func scanRun(scan func(dest ...any) error, r *Run) error {
	return scan(&r.ID, &r.SourceFile, &r.RowCount, &r.ColumnCount, &r.PlanSource,
		&r.QualityScore, &r.QualityGrade, &r.MinScore, &r.MaxCharts,
		&r.GeneratedCount, &r.SkippedCount, &r.Manifest, &r.CreatedAt)
}
