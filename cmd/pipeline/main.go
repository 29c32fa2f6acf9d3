package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	app := &commandContext{}
	err := newRootCommand(app).Execute()
	app.close()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
