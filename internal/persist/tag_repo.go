package persist

import (
	"context"
	"time"
)

// PlayerTagRow represents a row from the league_player_tags table.
type PlayerTagRow struct {
	PlayerID     string
	TagType      string
	Position     int
	SeasonNumber int32
	ObtainedAt   time.Time
	Active       bool
	Text         string
	Name         string
}

// TagRepo handles the cosmetic player-tag table.
type TagRepo struct {
	db *DB
}

func NewTagRepo(db *DB) *TagRepo {
	return &TagRepo{db: db}
}

// LoadAll loads every player tag. Called at startup.
func (r *TagRepo) LoadAll(ctx context.Context) ([]PlayerTagRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT player_id, tag_type, position, season_number,
		        obtained_at, active, text, name
		 FROM league_player_tags ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerTagRow
	for rows.Next() {
		var t PlayerTagRow
		if err := rows.Scan(&t.PlayerID, &t.TagType, &t.Position, &t.SeasonNumber,
			&t.ObtainedAt, &t.Active, &t.Text, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Insert writes one tag grant. The uniqueness key is enforced by the
// table constraint; a duplicate grant is the caller's bug.
func (r *TagRepo) Insert(ctx context.Context, t PlayerTagRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO league_player_tags
		   (player_id, tag_type, position, season_number, obtained_at, active, text, name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.PlayerID, t.TagType, t.Position, t.SeasonNumber,
		t.ObtainedAt, t.Active, t.Text, t.Name)
	return err
}

// SetActive flips a tag's active flag.
func (r *TagRepo) SetActive(ctx context.Context, playerID, tagType string, seasonNumber int32, position int, active bool) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE league_player_tags SET active = $5
		 WHERE player_id = $1 AND tag_type = $2 AND season_number = $3 AND position = $4`,
		playerID, tagType, seasonNumber, position, active)
	return err
}

// Delete removes one tag grant.
func (r *TagRepo) Delete(ctx context.Context, playerID, tagType string, seasonNumber int32, position int) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM league_player_tags
		 WHERE player_id = $1 AND tag_type = $2 AND season_number = $3 AND position = $4`,
		playerID, tagType, seasonNumber, position)
	return err
}
