// Package main provides a tool to fill the board database with demo
// followers.
//
// It opens the sqlite board store, starts from the stored board (or a fresh
// seed with -reset) and adds followers spread over the pipeline columns with
// random tags, notes, proposal amounts and follow-up dates.
//
// Usage:
//
//	DB_PATH=~/.crm-seguidores/board.db go run ./cmd/seed
//	DB_PATH=~/.crm-seguidores/board.db go run ./cmd/seed -count 200 -reset
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/ArturoRiosMock/CRMAIRE/internal/board"
	"github.com/ArturoRiosMock/CRMAIRE/internal/store/sqlite"
)

var (
	count = flag.Int("count", 40, "Number of followers to add")
	reset = flag.Bool("reset", false, "Start from a fresh board instead of the stored one")
)

var firstNames = []string{"Ana", "Bruno", "Carla", "Diego", "Elena", "Fede", "Gabi", "Hugo", "Inés", "Julián", "Lucía", "Mateo"}
var lastNames = []string{"López", "García", "Martínez", "Rodríguez", "Pérez", "Sánchez", "Romero", "Díaz"}
var noteTexts = []string{
	"Respondió la historia",
	"Pidió precios por DM",
	"Enviar catálogo",
	"Agendar llamada",
	"Interesada en el plan anual",
	"No contesta, volver a escribir",
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/.crm-seguidores/board.db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := sqlite.Open(dbPath, slog.New(slog.DiscardHandler))
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	b, err := s.GetOrInit(ctx, board.Seed)
	if err != nil {
		log.Fatalf("Failed to load board: %v", err)
	}
	if *reset {
		b = board.Seed()
		fmt.Println("Starting from a fresh board")
	}

	now := time.Now()
	// Spread creation times over the past 30 days so the board looks lived in.
	start := now.AddDate(0, 0, -30)
	rng := rand.New(rand.NewPCG(uint64(now.UnixNano()), 0))

	cols := board.SortedColumns(b)
	added := 0
	for i := range *count {
		at := start.Add(time.Duration(rng.Int64N(int64(now.Sub(start)))))
		m := board.New(func() time.Time { return at })

		first := firstNames[rng.IntN(len(firstNames))]
		last := lastNames[rng.IntN(len(lastNames))]
		fields := board.FollowerFields{
			Name:     first + " " + last,
			Username: fmt.Sprintf("%s_%s_%d", first, last, i),
		}
		for _, t := range b.Tags {
			if rng.IntN(4) == 0 {
				fields.Tags = append(fields.Tags, t.ID)
			}
		}
		if rng.IntN(3) == 0 {
			amount := float64(100 * (1 + rng.IntN(50)))
			fields.ProposalAmountUSD = &amount
		}
		if rng.IntN(3) == 0 {
			followUp := now.AddDate(0, 0, rng.IntN(21)-7).Format(time.DateOnly)
			fields.FollowUpAt = &followUp
		}

		col := cols[rng.IntN(len(cols))]
		next, fid, err := m.AddFollower(b, col.ID, fields)
		if err != nil {
			log.Printf("Failed to add %s: %v", fields.Username, err)
			continue
		}
		for range rng.IntN(3) {
			next, err = m.AddNote(next, fid, noteTexts[rng.IntN(len(noteTexts))])
			if err != nil {
				log.Printf("Failed to add note: %v", err)
			}
		}
		b = next
		added++
	}

	if err := b.Check(); err != nil {
		log.Fatalf("Seeded board is inconsistent: %v", err)
	}
	if err := s.Upsert(ctx, b); err != nil {
		log.Fatalf("Failed to save board: %v", err)
	}

	fmt.Printf("Added %d followers\n", added)
	for _, c := range board.SortedColumns(b) {
		fmt.Printf("  %-12s %d\n", c.Title, len(c.FollowerIDs))
	}
	fmt.Println("\nSeeding complete!")
}
