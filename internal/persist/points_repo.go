package persist

import (
	"context"
)

// PointsRow represents a row from the league_points table.
type PointsRow struct {
	Tag        string
	Name       string
	Points     int64
	LeaderName string
}

// PointsRepo handles the clan point ledger table.
type PointsRepo struct {
	db *DB
}

func NewPointsRepo(db *DB) *PointsRepo {
	return &PointsRepo{db: db}
}

// LoadAll loads the full ledger. Called at startup.
func (r *PointsRepo) LoadAll(ctx context.Context) ([]PointsRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT clan_tag, clan_name, points, leader_name
		 FROM league_points ORDER BY clan_tag`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PointsRow
	for rows.Next() {
		var p PointsRow
		if err := rows.Scan(&p.Tag, &p.Name, &p.Points, &p.LeaderName); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Upsert writes one ledger row, inserting or updating by tag.
func (r *PointsRepo) Upsert(ctx context.Context, row PointsRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO league_points (clan_tag, clan_name, points, leader_name, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (clan_tag) DO UPDATE
		 SET clan_name = EXCLUDED.clan_name,
		     points = EXCLUDED.points,
		     leader_name = EXCLUDED.leader_name,
		     updated_at = now()`,
		row.Tag, row.Name, row.Points, row.LeaderName)
	return err
}

// Delete removes one ledger row. Used when a clan is dissolved externally.
func (r *PointsRepo) Delete(ctx context.Context, tag string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM league_points WHERE clan_tag = $1`, tag)
	return err
}
