package main

import (
	"fmt"
	"os"

	"books-storefront/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, service.Message(err))
		os.Exit(1)
	}
}
