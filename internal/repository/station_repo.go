package repository

import (
	"context"

	"velociti_backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StationRepository struct {
	db *pgxpool.Pool
}

func NewStationRepository(db *pgxpool.Pool) *StationRepository {
	return &StationRepository{db: db}
}

func (r *StationRepository) List(ctx context.Context) ([]*domain.Station, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, code FROM railway_stations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []*domain.Station
	for rows.Next() {
		var s domain.Station
		if err := rows.Scan(&s.ID, &s.Name, &s.Code); err != nil {
			return nil, err
		}
		stations = append(stations, &s)
	}
	return stations, rows.Err()
}
