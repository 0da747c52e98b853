// Command ldpipe extracts Schema.org JSON-LD objects from web pages.
package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/gaurav-prasanna/ldpipe/cmd"
)

func main() {
	cmd.Execute()
}
