package main

import (
	"os"

	"schedule-compiler/core/logger"
	"schedule-compiler/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", "error", err)
		os.Exit(1)
	}
}
