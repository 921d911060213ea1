package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/freeeve/autochess-gym/internal/repository"
)

// RosterRepo reads stored opponent rosters.
type RosterRepo struct {
	db *sql.DB
}

// NewRosterRepo creates a RosterRepo.
func NewRosterRepo(db *sql.DB) *RosterRepo {
	return &RosterRepo{db: db}
}

// ListByStage returns all stored rosters for a stage, seat order.
func (r *RosterRepo) ListByStage(ctx context.Context, stage int) ([]repository.RosterRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT stage, seat, level, board
		 FROM opponent_rosters WHERE stage = $1 ORDER BY seat, id`, stage)
	if err != nil {
		return nil, fmt.Errorf("list rosters: %w", err)
	}
	defer rows.Close()

	var out []repository.RosterRow
	for rows.Next() {
		var row repository.RosterRow
		var board []byte
		if err := rows.Scan(&row.Stage, &row.Seat, &row.Level, &board); err != nil {
			return nil, fmt.Errorf("scan roster: %w", err)
		}
		if err := json.Unmarshal(board, &row.Board); err != nil {
			return nil, fmt.Errorf("decode roster board: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
