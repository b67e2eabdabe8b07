package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	c := &cli{}
	if err := execute(context.Background(), newRootCmd(c), c); err != nil {
		os.Exit(1)
	}
}
