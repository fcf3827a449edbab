package main

import (
	"os"

	"github.com/greatbody/encoding-util/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
