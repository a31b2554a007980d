// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/models"
)

// addLibraryEntries inserts entries under a unique style so tests do not
// see each other's rows.
func addLibraryEntries(t *testing.T, s *LibraryStore, style string, vibes ...string) {
	t.Helper()
	ctx := context.Background()
	for _, v := range vibes {
		e := &models.LibraryEntry{
			ID:            uuid.New(),
			ImageURL:      "https://img.example/" + v + ".png",
			StyleUniverse: style,
			Palette:       "bone",
			Pattern:       "grid",
			TimeOfDay:     "dawn",
			Vibe:          v,
			PromptHash:    "hash-" + v,
			Tags:          []string{style, v},
		}
		if err := s.Add(ctx, e); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	t.Cleanup(func() { s.db.Exec("DELETE FROM library WHERE style_universe = $1", style) })
}

func TestLibraryBrowse(t *testing.T) {
	s := NewLibraryStore(testDB(t))
	style := "test-" + uuid.NewString()[:8]
	addLibraryEntries(t, s, style, "serene", "serene", "bold")

	all, err := s.Browse(context.Background(), models.LibraryFilter{Style: style})
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Browse by style: got %d, want 3", len(all))
	}

	serene, err := s.Browse(context.Background(), models.LibraryFilter{Style: style, Vibe: "serene", TimeOfDay: "dawn"})
	if err != nil {
		t.Fatalf("Browse filtered: %v", err)
	}
	if len(serene) != 2 {
		t.Errorf("Browse by style+vibe+time: got %d, want 2", len(serene))
	}
	if len(serene) > 0 && len(serene[0].Tags) != 2 {
		t.Errorf("tags: got %v", serene[0].Tags)
	}
}

func TestLibraryRandom(t *testing.T) {
	s := NewLibraryStore(testDB(t))
	style := "test-" + uuid.NewString()[:8]
	addLibraryEntries(t, s, style, "bold")

	e, err := s.Random(context.Background(), models.LibraryFilter{Style: style, Vibe: "bold"})
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	if e == nil || e.Vibe != "bold" {
		t.Errorf("Random: got %+v", e)
	}

	e, err = s.Random(context.Background(), models.LibraryFilter{Style: style, Vibe: "serene"})
	if err != nil || e != nil {
		t.Errorf("Random without match: got (%v, %v), want (nil, nil)", e, err)
	}
}

func TestLibraryStats(t *testing.T) {
	s := NewLibraryStore(testDB(t))
	style := "test-" + uuid.NewString()[:8]
	addLibraryEntries(t, s, style, "serene", "bold")

	st, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.ByStyle[style] != 2 {
		t.Errorf("ByStyle[%s]: got %d, want 2", style, st.ByStyle[style])
	}
	if st.Total < 2 {
		t.Errorf("Total: got %d, want at least 2", st.Total)
	}
}

func TestFilterClause(t *testing.T) {
	where, args := filterClause(models.LibraryFilter{Style: "nature", TimeOfDay: "dusk"})
	if where != " WHERE style_universe = $1 AND time_of_day = $2" {
		t.Errorf("where: got %q", where)
	}
	if len(args) != 2 || args[0] != "nature" || args[1] != "dusk" {
		t.Errorf("args: got %v", args)
	}

	if where, args := filterClause(models.LibraryFilter{}); where != "" || args != nil {
		t.Errorf("empty filter: got (%q, %v)", where, args)
	}
}
