// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/models"
)

const browseLimit = 60

const libraryColumns = `id, image_url, thumbnail_base64, style_universe, palette, pattern,
	time_of_day, vibe, prompt_hash, tags, created_at`

// LibraryStore is the append-only curated catalog.
type LibraryStore struct {
	db    *sql.DB
	types *pgtype.Map
}

// NewLibraryStore creates a new LibraryStore.
func NewLibraryStore(db *sql.DB) *LibraryStore {
	return &LibraryStore{db: db, types: pgtype.NewMap()}
}

// Add appends an entry to the catalog.
func (s *LibraryStore) Add(ctx context.Context, e *models.LibraryEntry) error {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO library (id, image_url, thumbnail_base64, style_universe, palette, pattern,
			time_of_day, vibe, prompt_hash, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, e.ID, e.ImageURL, e.ThumbnailBase64, e.StyleUniverse, e.Palette, e.Pattern,
		e.TimeOfDay, e.Vibe, e.PromptHash, tags)
	if err != nil {
		return fmt.Errorf("add library entry: %w", err)
	}
	return nil
}

// Browse lists entries matching every non-empty filter field, newest first.
func (s *LibraryStore) Browse(ctx context.Context, f models.LibraryFilter) ([]models.LibraryEntry, error) {
	where, args := filterClause(f)
	args = append(args, browseLimit)
	query := "SELECT " + libraryColumns + " FROM library" + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("browse library: %w", err)
	}
	defer rows.Close()

	entries := []models.LibraryEntry{}
	for rows.Next() {
		e, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Random returns one random entry matching the style and vibe filters, or
// nil when nothing matches.
func (s *LibraryStore) Random(ctx context.Context, f models.LibraryFilter) (*models.LibraryEntry, error) {
	where, args := filterClause(models.LibraryFilter{Style: f.Style, Vibe: f.Vibe})
	row := s.db.QueryRowContext(ctx, "SELECT "+libraryColumns+" FROM library"+where+" ORDER BY random() LIMIT 1", args...)

	e, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

// Stats counts entries overall and per style universe.
func (s *LibraryStore) Stats(ctx context.Context) (*models.LibraryStats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT style_universe, COUNT(*) FROM library GROUP BY style_universe`)
	if err != nil {
		return nil, fmt.Errorf("library stats: %w", err)
	}
	defer rows.Close()

	st := &models.LibraryStats{ByStyle: map[string]int{}}
	for rows.Next() {
		var (
			style string
			n     int
		)
		if err := rows.Scan(&style, &n); err != nil {
			return nil, fmt.Errorf("scan library stats: %w", err)
		}
		st.ByStyle[style] = n
		st.Total += n
	}
	return st, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *LibraryStore) scan(row scanner) (*models.LibraryEntry, error) {
	var e models.LibraryEntry
	err := row.Scan(&e.ID, &e.ImageURL, &e.ThumbnailBase64, &e.StyleUniverse, &e.Palette, &e.Pattern,
		&e.TimeOfDay, &e.Vibe, &e.PromptHash, s.types.SQLScanner(&e.Tags), &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan library entry: %w", err)
	}
	return &e, nil
}

func filterClause(f models.LibraryFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("style_universe", f.Style)
	add("vibe", f.Vibe)
	add("time_of_day", f.TimeOfDay)

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
