package main

import (
	"context"
)

func main() {
	ctx := shutdownContext(context.Background())

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		exitOnError(err)
	}
}
