package main

import (
	"context"
	"fmt"
	"os"

	"BookShelf/internal/cli"
)

func main() {
	app := cli.New(os.Stdin, os.Stdout, os.Stderr)

	err := app.Command().ExecuteContext(context.Background())
	_ = app.Close()

	if err != nil {
		fmt.Fprintln(os.Stderr, "bookshelf:", err)
		os.Exit(1)
	}
}
