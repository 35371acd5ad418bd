package main

import (
	"os"

	"github.com/Vayras/admin-frontend-sub001/cli"
)

func main() {
	os.Exit(cli.Execute())
}
