package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _           _
  | | _____  _(_) ___ ___  _ __
  | |/ _ \ \/ / |/ __/ _ \| '_ \
  | |  __/>  <| | (_| (_) | | | |
  |_|\___/_/\_\_|\___\___/|_| |_|

  The Life Lexicon: parser, index and browser

  Usage: lexicon <command> [options]
         lexicon --help

  MCP server mode requires piped input.`)
}

func main() {
	args := os.Args
	if len(args) < 2 {
		// No args + interactive terminal → banner; piped → MCP server
		if isTerminal() {
			printBanner()
			return
		}
		args = append(args, "mcp")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := newCLIApp(os.Stdout, os.Stderr)
	if err := app.RunContext(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
