//go:build ignore

// One-off maintenance: removes events whose date has passed, with their
// links and listings. Run with: go run scripts/purge_past_events.go
package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	fmt.Println("Connected to database")

	// Children first in case the cascade constraint is missing on an old
	// schema.
	result, err := db.Exec(`
		DELETE FROM ticket_listings
		WHERE event_id IN (SELECT id FROM events WHERE date < NOW())
	`)
	if err != nil {
		log.Printf("Warning deleting ticket_listings: %v", err)
	} else {
		rows, _ := result.RowsAffected()
		fmt.Printf("Deleted %d ticket listings\n", rows)
	}

	result, err = db.Exec(`
		DELETE FROM event_links
		WHERE event_id IN (SELECT id FROM events WHERE date < NOW())
	`)
	if err != nil {
		log.Printf("Warning deleting event_links: %v", err)
	} else {
		rows, _ := result.RowsAffected()
		fmt.Printf("Deleted %d event links\n", rows)
	}

	result, err = db.Exec(`DELETE FROM events WHERE date < NOW()`)
	if err != nil {
		log.Fatal("Failed to delete events:", err)
	}
	rows, _ := result.RowsAffected()
	fmt.Printf("Deleted %d past events\n", rows)
}
