package main

import (
	"context"
	"fmt"
	"os"

	"github.com/abedul59/shjhs-class-system/pkg/cli"
)

func main() {
	root := cli.NewRootCommand(os.Stdout)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
