package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/subcommands"

	"muparser/muparser"
	"muparser/stdfuncs"
	"muparser/token"
)

type varsCmd struct {
	integer bool
}

func (*varsCmd) Name() string     { return "vars" }
func (*varsCmd) Synopsis() string { return "List the variables an expression references" }
func (*varsCmd) Usage() string {
	return `vars [-int] <expression>:
  Parse expression without requiring any variable to be bound and print
  every identifier it resolved as a variable reference.
`
}

func (c *varsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.integer, "int", false, "parse in integer mode")
}

func (c *varsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	expr := strings.Join(f.Args(), " ")
	if expr == "" {
		fmt.Fprintln(os.Stderr, "vars: no expression given")
		return subcommands.ExitUsageError
	}
	if c.integer {
		return runVars[int64](expr)
	}
	return runVars[float64](expr)
}

func runVars[T token.Number](expr string) subcommands.ExitStatus {
	p := muparser.New[T](isIntegerType[T]())
	if err := stdfuncs.RegisterAll[T](p); err != nil {
		fmt.Fprintf(os.Stderr, "vars: failed to register standard functions: %v\n", err)
		return subcommands.ExitFailure
	}
	p.SetExpression(expr)
	used, err := p.GetUsedVariables()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vars: %v\n", err)
		return subcommands.ExitFailure
	}
	names := make([]string, 0, len(used))
	for name := range used {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Println(name)
	}
	return subcommands.ExitSuccess
}
