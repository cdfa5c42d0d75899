// Command meltos is the CLI entrypoint for the Meltos version control engine.
package main

import "github.com/meltosvc/tvc/cmd"

func main() {
	cmd.Execute()
}
