package main

import (
	"fmt"
	"net"
	"os"

	"bank-ledger/config"
	"bank-ledger/internal/cli"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Welcome to the Banking System Client!")

	conn, err := net.Dial("tcp", cfg.Server.Addr())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to the server: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()
	fmt.Println("Connected to the server!")

	client := cli.NewClient(conn, os.Stdin, os.Stdout)
	if err := client.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "client error: %v\n", err)
		os.Exit(1)
	}
}
