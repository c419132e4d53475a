package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"traderterm/internal/simsvc"
	"traderterm/internal/util"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	logger := util.NewLogger(os.Stderr, "info", "text")
	srv := simsvc.NewServer(simsvc.NewManager(), logger)

	logger.Info("ordersim listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, srv.Handler()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
