// Command kbchat is a CLI for chatting with a local knowledge base.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/kbchat-cli/internal/adapters/driving/cli"
)

func main() {
	// A local .env may carry Yandex credentials; missing is fine.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
