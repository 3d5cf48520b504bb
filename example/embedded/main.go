// Example: Running the SQL playground in-process
//
// This example wires the playground API over an in-memory DuckDB, serves it
// with httptest and drives it with the REPL client, without a terminal.
// It is useful for tests that need a throwaway playground.
//
// Run this example:
//
//	go run ./example/embedded
package main

import (
	"context"
	"fmt"
	"log"
	"net/http/httptest"
	"os"

	"github.com/nnnkkk7/sql-playground/pkg/config"
	"github.com/nnnkkk7/sql-playground/pkg/connection"
	"github.com/nnnkkk7/sql-playground/pkg/health"
	"github.com/nnnkkk7/sql-playground/pkg/logging"
	"github.com/nnnkkk7/sql-playground/pkg/query"
	"github.com/nnnkkk7/sql-playground/pkg/repl"
	"github.com/nnnkkk7/sql-playground/server/handlers"
)

func main() {
	fmt.Println("=== SQL Playground Embedded Example ===")
	fmt.Println()

	logger, err := logging.NewWithOutput(os.Stderr, "warn", false)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	connMgr, err := connection.Open(config.DBConfig{Driver: config.DriverDuckDB, MaxConnections: 4})
	if err != nil {
		log.Fatalf("Failed to open DuckDB: %v", err)
	}
	defer connMgr.Close()

	executor := query.NewExecutor(connMgr, query.NewTracker(), logger)
	router := handlers.NewRouter(handlers.RouterConfig{
		Query:          handlers.NewQueryHandler(executor, logger, true),
		Health:         handlers.NewHealthHandler(health.NewProber(connMgr, logger)),
		Logger:         logger,
		IncludeDetails: true,
		CORSOrigins:    []string{"*"},
	})

	server := httptest.NewServer(router)
	defer server.Close()

	fmt.Printf("Embedded playground running at: %s\n\n", server.URL)

	client := repl.NewClient(server.URL, nil)
	session := repl.NewSession(client)
	ctx := context.Background()

	if err := session.CheckHealth(ctx); err != nil {
		log.Fatalf("Health check failed: %v", err)
	}
	fmt.Printf("Database: %s\n\n", session.View().Status)

	statements := []string{
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name VARCHAR, email VARCHAR)",
		"INSERT INTO users VALUES (1, 'Alice', 'alice@example.com'), (2, 'Bob', NULL)",
		"SELECT id, name, email FROM users ORDER BY id",
		"UPDATE users SET email = 'bob@example.com' WHERE id = 2",
		"SELECT * FROM missing_table",
	}
	for _, stmt := range statements {
		session.Type(stmt)
		session.Submit(ctx, true)
		session.Wait()
	}

	for _, e := range session.View().Entries {
		fmt.Println(repl.RenderEntry(e))
	}

	stats := connMgr.Stats()
	fmt.Printf("\nConnections acquired: %d, released: %d, in use: %d\n", stats.Acquired, stats.Released, stats.InUse)
	fmt.Println("\n=== Example completed successfully ===")
}
