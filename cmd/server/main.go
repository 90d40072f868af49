package main

import (
	"fmt"
	"os"

	"whisperbox/internal/app"
)

// @title                       Whisperbox API
// @version                     1.0
// @description                 Anonymous messaging: accounts, email verification, password reset and inboxes.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "whisperbox: %v\n", err)
		os.Exit(1)
	}
}
