// Package main provides the nocache-server command: a development file server
// for the current directory that disables browser caching.
package main

import (
	"log"
	"os"

	"github.com/nocache-dev/nocache-server/internal/cli"
)

func main() {
	app := cli.NewApp()

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
