package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"muparser/muparser"
	"muparser/stdfuncs"
	"muparser/token"
)

type replCmd struct {
	integer bool
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive evaluation session" }
func (*replCmd) Usage() string {
	return `repl [-int]:
  Start a line-editing REPL. Each line is evaluated against a Parser whose
  variable bindings persist across lines: "x = 2+2" both assigns x and
  prints 4; a later "x*3" reads the same binding. Ctrl-D exits.
`
}

func (c *replCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.integer, "int", false, "evaluate in integer mode (int64), enabling #binary and 0x hex literals")
}

func (c *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.integer {
		return runRepl[int64]()
	}
	return runRepl[float64]()
}

// runRepl drives one interactive session. Every previously-unseen bare
// identifier the Parser encounters is lazily bound to a fresh address via
// SetVariableFactory, backed by vars, so "x = 5" followed later by "x+1"
// both work without a prior explicit DefineVariable call — the REPL's
// whole reason for existing over plain "eval".
func runRepl[T token.Number]() subcommands.ExitStatus {
	p := muparser.New[T](isIntegerType[T]())
	if err := stdfuncs.RegisterAll[T](p); err != nil {
		fmt.Fprintf(os.Stderr, "repl: failed to register standard functions: %v\n", err)
		return subcommands.ExitFailure
	}

	vars := make(map[string]*T)
	p.SetVariableFactory(func(name string) *T {
		v := new(T)
		vars[name] = v
		return v
	})

	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = home + "/.muparser_history"
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "repl: failed to start line editor: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	fmt.Println("muparser REPL — Ctrl-D to exit")
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "repl: %v\n", err)
			return subcommands.ExitFailure
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return subcommands.ExitSuccess
		}

		p.SetExpression(line)
		got, err := p.Evaluate()
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Println(got)
	}
}
