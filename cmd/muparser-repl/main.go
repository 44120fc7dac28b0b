// Command muparser-repl is a demonstration CLI over the muparser façade:
// a one-shot "eval" subcommand, a "vars" inspector, and an interactive
// "repl" session with line editing and history — outside the core
// library per its CLI boundary, the way a thin main package normally
// sits beside a library repo rather than inside it.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&evalCmd{}, "")
	subcommands.Register(&varsCmd{}, "")
	subcommands.Register(&replCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
