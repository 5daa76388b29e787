package main

import (
	"fmt"
	"os"

	"github.com/karthik-ravi-1537/mcp-demo/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
