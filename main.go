package main

import (
	"fmt"
	"os"

	"github.com/fzft/go-redis-commands/cmd"
	"github.com/fzft/go-redis-commands/log"
)

func main() {
	cli := cmd.NewRedisCli(buildInfo())
	if err := cli.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "(error) %v\n", err)
		log.Logger.Sync()
		os.Exit(1)
	}
	log.Logger.Sync()
}
