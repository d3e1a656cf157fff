// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os/user"

	"ysr/internal/config"
	"ysr/repl"
)

func main() {
	currentUser, err := user.Current()
	if err != nil {
		fmt.Printf("Error getting current user: %v\n", err)
		return
	}

	cfg := config.Default()
	fmt.Printf("Welcome to the ysr REPL, %s! Type :help for commands.\n", currentUser.Username)
	repl.Start(cfg.Project(), cfg.Options()...)
}
