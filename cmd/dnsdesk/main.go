package main

import (
	"github.com/joho/godotenv"

	"github.com/lite-lake/infra-dnsdesk/internal/infrastructure/logger"
	"github.com/lite-lake/infra-dnsdesk/internal/interfaces/cli"
)

func main() {
	// A missing .env is fine; variables may come from the real environment.
	_ = godotenv.Load()

	logger.Init(logger.ConfigFromEnv())

	cli.Execute()
}
