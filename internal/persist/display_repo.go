package persist

import "context"

// DisplayRow represents a row from the league_displays table: one
// ranking display entry the host renders at some location.
type DisplayRow struct {
	Position int
	Label    string
	Location string
}

// DisplayRepo handles the ranking display registry table.
type DisplayRepo struct {
	db *DB
}

func NewDisplayRepo(db *DB) *DisplayRepo {
	return &DisplayRepo{db: db}
}

func (r *DisplayRepo) LoadAll(ctx context.Context) ([]DisplayRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT position, label, location FROM league_displays ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DisplayRow
	for rows.Next() {
		var d DisplayRow
		if err := rows.Scan(&d.Position, &d.Label, &d.Location); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DisplayRepo) Upsert(ctx context.Context, row DisplayRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO league_displays (position, label, location)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (position) DO UPDATE
		 SET label = EXCLUDED.label, location = EXCLUDED.location`,
		row.Position, row.Label, row.Location)
	return err
}

func (r *DisplayRepo) Delete(ctx context.Context, position int) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM league_displays WHERE position = $1`, position)
	return err
}
