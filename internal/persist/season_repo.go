package persist

import (
	"context"
	"time"
)

// SeasonRow represents a row from the league_seasons table. TopClans is
// the leaderboard snapshot taken at close time, stored as JSON.
type SeasonRow struct {
	ID           int32
	Name         string
	StartAt      time.Time
	EndAt        time.Time
	Active       bool
	WinnerTag    string
	WinnerPoints int64
	TopClans     []byte
}

// SeasonRepo handles the season history table.
type SeasonRepo struct {
	db *DB
}

func NewSeasonRepo(db *DB) *SeasonRepo {
	return &SeasonRepo{db: db}
}

// LoadAll loads all seasons in creation order. Called at startup.
func (r *SeasonRepo) LoadAll(ctx context.Context) ([]SeasonRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT season_id, name, start_at, end_at, active,
		        winner_tag, winner_points, top_clans
		 FROM league_seasons ORDER BY season_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SeasonRow
	for rows.Next() {
		var s SeasonRow
		if err := rows.Scan(&s.ID, &s.Name, &s.StartAt, &s.EndAt, &s.Active,
			&s.WinnerTag, &s.WinnerPoints, &s.TopClans); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Insert creates a new active season and returns its id.
// DB first, memory second.
func (r *SeasonRepo) Insert(ctx context.Context, name string, startAt, endAt time.Time) (int32, error) {
	var id int32
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO league_seasons (name, start_at, end_at, active)
		 VALUES ($1, $2, $3, TRUE) RETURNING season_id`,
		name, startAt, endAt,
	).Scan(&id)
	return id, err
}

// Close finalizes a season: winner, top snapshot, active=false. The
// snapshot columns are written exactly once; the row is never touched
// again afterwards.
func (r *SeasonRepo) Close(ctx context.Context, id int32, winnerTag string, winnerPoints int64, topClans []byte, endAt time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE league_seasons
		 SET active = FALSE, winner_tag = $2, winner_points = $3,
		     top_clans = $4, end_at = $5
		 WHERE season_id = $1 AND active`,
		id, winnerTag, winnerPoints, topClans, endAt)
	return err
}
