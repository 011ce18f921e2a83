package main

import (
	"flag"
	"fmt"
	"os"
	"slices"

	"restaurant-waste/internal/bootstrap"
)

func main() {
	service := flag.String("service", "", "Service to run: auth|driver|pickup|rewards|admin|all")
	configPath := flag.String("config", "", "Path to config file (default $CONFIG_PATH or config.yaml)")
	flag.Parse()

	// Allow service and config to be specified via environment variables
	if *service == "" {
		*service = os.Getenv("SERVICE")
	}
	if *configPath == "" {
		*configPath = bootstrap.ConfigPath()
	}

	if !slices.Contains(bootstrap.Services, *service) {
		fmt.Println("Usage: restaurant-waste -service=[auth|driver|pickup|rewards|admin|all] [-config=config.yaml]")
		fmt.Println("   or: SERVICE=pickup restaurant-waste")
		os.Exit(1)
	}
	bootstrap.Run(*service, *configPath)
}
