package main

import (
	"github.com/joho/godotenv"

	"payledger/internal/app/server"
)

func main() {
	_ = godotenv.Load()
	server.Run()
}
