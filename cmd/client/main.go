package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/pakegate/internal/client/cli"
	"github.com/dmitrijs2005/pakegate/internal/client/config"
)

func main() {

	args := os.Args[1:]
	cfg := config.LoadConfig(args)

	app, err := cli.NewApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := app.Run(context.Background(), args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

}
