// cmd/luxtronik/main.go
package main

import (
	"os"

	"github.com/tamzrod/luxtronik-replicator/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
