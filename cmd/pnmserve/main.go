package main

import (
	"flag"
	"os"

	"github.com/labstack/gommon/log"
	"github.com/tmpim/netpbm/server"
)

var (
	addr  = flag.String("addr", "", "listen address (default :$PORT, or :9999)")
	debug = flag.Bool("debug", false, "log websocket clients")
)

func main() {
	flag.Parse()

	if *addr == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "9999"
		}
		*addr = ":" + port
	}

	level := log.INFO
	if *debug {
		level = log.DEBUG
	}

	log.Fatal(server.New(level).Start(*addr))
}
