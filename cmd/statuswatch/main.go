package main

import (
	"log"

	"github.com/miragerp/statuswatch/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ statuswatch failed to start: %v", err)
	}
}
