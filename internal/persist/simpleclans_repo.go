package persist

import (
	"context"

	"github.com/hliga/server/internal/provider"
)

// SimpleClansRepo reads the tables owned by a SimpleClans installation.
// Strictly read-only: the league never writes to another plugin's data.
// Implements provider.SimpleClansSource.
type SimpleClansRepo struct {
	db *DB
}

func NewSimpleClansRepo(db *DB) *SimpleClansRepo {
	return &SimpleClansRepo{db: db}
}

// Available reports whether the SimpleClans tables exist in this database.
// Used as the startup probe for the SimpleClans provider.
func (r *SimpleClansRepo) Available(ctx context.Context) bool {
	var ok bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM information_schema.tables
		   WHERE table_name = 'sc_clans'
		 )`).Scan(&ok)
	return err == nil && ok
}

// LoadAll loads all clans and memberships from the SimpleClans tables.
func (r *SimpleClansRepo) LoadAll(ctx context.Context) ([]provider.SCClanRow, []provider.SCMemberRow, error) {
	clanRows, err := r.db.Pool.Query(ctx,
		`SELECT tag, color_tag, name FROM sc_clans ORDER BY tag`)
	if err != nil {
		return nil, nil, err
	}
	defer clanRows.Close()

	var clans []provider.SCClanRow
	for clanRows.Next() {
		var c provider.SCClanRow
		if err := clanRows.Scan(&c.Tag, &c.ColorTag, &c.Name); err != nil {
			return nil, nil, err
		}
		clans = append(clans, c)
	}
	if err := clanRows.Err(); err != nil {
		return nil, nil, err
	}

	memberRows, err := r.db.Pool.Query(ctx,
		`SELECT tag, uuid, name, leader FROM sc_players WHERE tag <> '' ORDER BY tag, uuid`)
	if err != nil {
		return nil, nil, err
	}
	defer memberRows.Close()

	var members []provider.SCMemberRow
	for memberRows.Next() {
		var m provider.SCMemberRow
		if err := memberRows.Scan(&m.ClanTag, &m.PlayerID, &m.PlayerName, &m.Leader); err != nil {
			return nil, nil, err
		}
		members = append(members, m)
	}
	if err := memberRows.Err(); err != nil {
		return nil, nil, err
	}

	return clans, members, nil
}
