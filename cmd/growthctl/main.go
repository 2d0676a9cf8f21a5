package main

import (
	"context"
	"fmt"
	"os"

	"growth/internal/cli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the command line and returns the process exit code, so
// deferred cleanup runs before main exits.
func run(args []string) int {
	cli.LoadEnvFile()

	ctx, stop := cli.ShutdownContext(context.Background(), cli.SetupLogger(os.Stderr, "warn").Logger)
	defer stop()

	root := cli.NewRootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return cli.ExitCode(err)
}
