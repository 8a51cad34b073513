package main

import (
	"os"

	"github.com/campusdesk/campusdesk/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
