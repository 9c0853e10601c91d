package main

import (
	"context"
	"flag"
	"log"

	"github.com/dmitrijs2005/gradekeeper/internal/cli"
)

func main() {

	endpoint := flag.String("s", "http://127.0.0.1:8080", "server endpoint")
	flag.Parse()

	ctx := context.Background()
	app := cli.NewApp(*endpoint)

	if err := app.Run(ctx, flag.Args()); err != nil {
		log.Fatalf("%v", err)
	}

}
