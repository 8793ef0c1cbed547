/*
 * Copyright (c) 2024. Anton Starikov -- All Rights Reserved
 *
 * This file is part of OPTFEED project.
 *
 * OPTFEED is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as the Free Software Foundation,
 * either version 3 of the License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

// Package pricestore caches fetched day-ahead prices in sqlite. Prices are
// fixed once published, so cached hours stay valid for the whole day and a
// transient market-API outage does not blank the horizon. Controller state
// is never stored here.
package pricestore

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/antst/optfeed/internal/forecast"
)

const schema = `
CREATE TABLE IF NOT EXISTS prices (
	area TEXT NOT NULL,
	hour INTEGER NOT NULL,
	price REAL NOT NULL,
	PRIMARY KEY (area, hour)
);
`

type Store struct {
	db *sqlx.DB
}

func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "pricestore: open %s", path)
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrapf(err, "pricestore: ping %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "pricestore: create schema")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert stores the given price points for the area, overwriting hours that
// are already present.
func (s *Store) Upsert(ctx context.Context, area string, points []forecast.PricePoint) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "pricestore: begin tx")
	}
	defer tx.Rollback()

	for _, p := range points {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO prices (area, hour, price) VALUES (?, ?, ?)
			 ON CONFLICT (area, hour) DO UPDATE SET price = excluded.price`,
			area, p.Time.Unix(), p.Price,
		)
		if err != nil {
			return errors.Wrapf(err, "pricestore: upsert hour %v", p.Time)
		}
	}

	return errors.Wrap(tx.Commit(), "pricestore: commit")
}

type priceRow struct {
	Hour  int64   `db:"hour"`
	Price float64 `db:"price"`
}

// Get returns the cached points for the area within [from, to], ordered by
// time.
func (s *Store) Get(ctx context.Context, area string, from, to time.Time) ([]forecast.PricePoint, error) {
	var rows []priceRow
	err := s.db.SelectContext(
		ctx, &rows,
		`SELECT hour, price FROM prices
		 WHERE area = ? AND hour >= ? AND hour <= ? ORDER BY hour`,
		area, from.Unix(), to.Unix(),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "pricestore: select area %s", area)
	}

	points := make([]forecast.PricePoint, len(rows))
	for i, r := range rows {
		points[i] = forecast.PricePoint{Time: time.Unix(r.Hour, 0), Price: r.Price}
	}
	return points, nil
}
