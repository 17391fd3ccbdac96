package main

import (
	"context"
	"os"

	"github.com/bobmcallan/managed-db-mcp/internal/common"
)

func main() {
	common.LoadVersionFromFile()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
