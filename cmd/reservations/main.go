package main

import (
	_ "time/tzdata"

	"tablebook/pkg/config"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Reservations service", "store", cfg.StoreBackend, "lock", cfg.LockBackend)

	cfg.Connect()

	serverApp, err := build(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize service", "error", err)
	}
	serverApp.Run()
}
