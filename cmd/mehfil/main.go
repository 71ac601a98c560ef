package main

import (
	"github.com/atopofconscience/mehfil/internal/cli"
)

func main() {
	cli.Execute()
}
