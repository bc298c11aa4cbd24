package main

import (
	"log"

	"github.com/creations-works/badgeapi/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ badgeapi failed to start: %v", err)
	}
}
