package main

import (
	"log"

	"github.com/chefbazaar/backend/internal/server"
)

func main() {
	if err := server.Start(); err != nil {
		log.Fatal(err)
	}
}
