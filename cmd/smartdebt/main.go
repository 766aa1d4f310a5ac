package main

import (
	"os"
	_ "time/tzdata"

	_ "github.com/joho/godotenv/autoload"

	"github.com/sjperalta/smartdebt-api/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
