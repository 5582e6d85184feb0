// Command sheetsdb reads and writes spreadsheet rows as records.
package main

import "github.com/mesh-intelligence/sheetsdb/internal/cli"

func main() {
	cli.Execute()
}
