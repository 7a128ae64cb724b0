package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// A missing .env is fine; flags and TABLERO_* variables still apply.
	_ = godotenv.Load()
	cobra.CheckErr(newRootCmd().Execute())
}
