package main

import "restaurant-waste/internal/bootstrap"

func main() {
	bootstrap.Run("admin", bootstrap.ConfigPath())
}
