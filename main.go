package main

import (
	"os"

	"github.com/abhisek/studywise/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
