package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/frusdelion/crocodoc/config"
	"github.com/frusdelion/crocodoc/pkg/otel"
	"github.com/frusdelion/crocodoc/server"
	"github.com/frusdelion/crocodoc/server/document"
)

func main() {
	configFlag := flag.String("config", "", "config file")
	addressFlag := flag.String("address", "", "listen address")
	tokenFlag := flag.String("token", os.Getenv("CROCODOC_TOKEN"), "required api token")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	shutdown, err := otel.Setup(ctx, "crocodoc-server")

	if err != nil {
		panic(err)
	}

	defer shutdown(context.Background())

	address := ":8080"

	if *configFlag != "" {
		cfg, err := config.Parse(*configFlag)

		if err != nil {
			panic(err)
		}

		address = cfg.Address
	}

	if *addressFlag != "" {
		address = *addressFlag
	}

	s := server.New(address, document.New(document.WithToken(*tokenFlag)))

	if err := s.ListenAndServe(ctx); err != nil {
		panic(err)
	}
}
