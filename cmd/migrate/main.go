// cmd/migrate/main.go
//
// Applies migrations/schema.sql. Idempotent: the schema uses IF NOT EXISTS
// throughout so re-running is safe.
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/mailpilot/mailpilot-backend/internal/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	conn, err := db.Connect()
	if err != nil {
		log.Fatal("failed to connect to DB:", err)
	}
	defer conn.Close()

	schema, err := os.ReadFile("migrations/schema.sql")
	if err != nil {
		log.Fatal("failed to read schema:", err)
	}

	if _, err := conn.Exec(string(schema)); err != nil {
		log.Fatal("failed to apply schema:", err)
	}

	log.Println("✅ Schema applied")
}
