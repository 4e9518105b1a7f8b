// cleanup-demo-data removes old demo-store rows from the database.
//
// The embeddable widget and sandbox dashboard write all their traffic against
// the shared "demo-store" record, so its conversations accumulate without an
// owning merchant. This script prunes demo conversations older than the given
// retention window.
//
// Usage: go run ./scripts/cleanup-demo-data [-dry-run=false] [-days=30]
//
// Database connection: uses standard PG* environment variables.
//
// Flags:
//
//	-dry-run  Show what would be deleted without actually deleting (default: true)
//	-days     Retention window in days (default: 30)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
)

// Keep in sync with DemoStoreID in pkg/models/store.go
const demoStoreID = "demo-store"

func main() {
	dryRun := flag.Bool("dry-run", true, "Show what would be deleted without actually deleting")
	days := flag.Int("days", 30, "Retention window in days")
	flag.Parse()

	if *days <= 0 {
		fmt.Fprintf(os.Stderr, "Retention window must be positive, got %d\n", *days)
		os.Exit(1)
	}

	ctx := context.Background()

	conn, err := pgx.Connect(ctx, buildConnString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	cutoff := time.Now().AddDate(0, 0, -*days)

	if *dryRun {
		fmt.Println("DRY RUN - no changes will be made")
		fmt.Println("Run with -dry-run=false to actually delete conversations")
		fmt.Println()
	}

	deleted, err := cleanupDemoConversations(ctx, conn, cutoff, *dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cleanup failed: %v\n", err)
		os.Exit(1)
	}

	if *dryRun {
		fmt.Printf("\nTotal conversations that would be deleted: %d\n", deleted)
	} else {
		fmt.Printf("\nTotal conversations deleted: %d\n", deleted)
	}
}

// cleanupDemoConversations deletes demo-store conversations created before
// the cutoff. If dryRun is true, it only shows what would be deleted.
func cleanupDemoConversations(ctx context.Context, conn *pgx.Conn, cutoff time.Time, dryRun bool) (int, error) {
	if dryRun {
		rows, err := conn.Query(ctx, `
			SELECT session_id, created_at
			FROM conversations
			WHERE store_id = $1
			  AND created_at < $2
			ORDER BY created_at
		`, demoStoreID, cutoff)
		if err != nil {
			return 0, fmt.Errorf("query failed: %w", err)
		}
		defer rows.Close()

		var count int
		for rows.Next() {
			var sessionID string
			var createdAt time.Time
			if err := rows.Scan(&sessionID, &createdAt); err != nil {
				return 0, fmt.Errorf("scan failed: %w", err)
			}
			count++
			fmt.Printf("  %s (created %s)\n", sessionID, createdAt.Format(time.RFC3339))
		}
		return count, rows.Err()
	}

	tag, err := conn.Exec(ctx, `
		DELETE FROM conversations
		WHERE store_id = $1
		  AND created_at < $2
	`, demoStoreID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func buildConnString() string {
	host := getEnvOrDefault("PGHOST", "localhost")
	port := getEnvOrDefault("PGPORT", "5432")
	user := getEnvOrDefault("PGUSER", "nudge")
	password := os.Getenv("PGPASSWORD")
	dbname := getEnvOrDefault("PGDATABASE", "nudge_engine")

	connStr := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable", host, port, user, dbname)
	if password != "" {
		connStr += " password=" + password
	}
	return connStr
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
