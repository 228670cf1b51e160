package main

import (
	"github.com/taskhive/go-tasks/app"
	_ "github.com/taskhive/go-tasks/docs"
)

func main() {
	// setup and run app
	err := app.SetupAndRunApp()
	if err != nil {
		panic(err)
	}
}
