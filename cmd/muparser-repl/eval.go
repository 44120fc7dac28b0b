package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"muparser/muparser"
	"muparser/stdfuncs"
	"muparser/token"
)

type evalCmd struct {
	integer bool
}

func (*evalCmd) Name() string     { return "eval" }
func (*evalCmd) Synopsis() string { return "Evaluate a single expression and print its result" }
func (*evalCmd) Usage() string {
	return `eval [-int] <expression>:
  Evaluate expression once against the conventional function/constant set
  (sin, cos, tan, exp, log, sqrt, abs, sign, min, max, sum, avg, pi, e) and
  print the last comma-separated result.
`
}

func (c *evalCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.integer, "int", false, "evaluate in integer mode (int64), enabling #binary and 0x hex literals")
}

func (c *evalCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	expr := strings.Join(f.Args(), " ")
	if expr == "" {
		fmt.Fprintln(os.Stderr, "eval: no expression given")
		return subcommands.ExitUsageError
	}

	if c.integer {
		return runEval[int64](expr)
	}
	return runEval[float64](expr)
}

func runEval[T token.Number](expr string) subcommands.ExitStatus {
	p := muparser.New[T](isIntegerType[T]())
	if err := stdfuncs.RegisterAll[T](p); err != nil {
		fmt.Fprintf(os.Stderr, "eval: failed to register standard functions: %v\n", err)
		return subcommands.ExitFailure
	}
	p.SetExpression(expr)
	got, err := p.Evaluate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "eval: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(got)
	return subcommands.ExitSuccess
}
