package main

import "github.com/tea-corner/go-backend/internal/app"

func main() {
	app.Run()
}
