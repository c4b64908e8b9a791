package main

import (
	"os"

	"github.com/franklininnocent/EkklesiaSoftApi/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
