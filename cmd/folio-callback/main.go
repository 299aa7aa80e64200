package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/finastack/folio/config"
	"github.com/finastack/folio/expression"
	"github.com/finastack/folio/gateway"
	"github.com/finastack/folio/lookups"
	"github.com/finastack/folio/mq_client"
	"github.com/finastack/folio/procedures"
	"github.com/finastack/folio/schedules"
	"github.com/finastack/folio/server"
)

func main() {
	godotenv.Load()

	if err := config.InitializeConfig(); err != nil {
		fmt.Println(err.Error())
		return
	}
	if err := mq_client.Connect(); err != nil {
		fmt.Println(err.Error())
		return
	}

	engine := procedures.NewEngine(
		config.DataBase,
		expression.NewEvaluator(lookups.New(0, 0)),
		gateway.NewDataFileService(),
		gateway.NewProviderGateway(),
		schedules.AMQPSubmitter{},
	)

	app := server.SetupRouter(engine)

	port := os.Getenv("CALLBACK_PORT")
	if port == "" {
		port = "3001"
	}
	if err := app.Listen(":" + port); err != nil {
		config.Logger.Fatalf("callback server: %v", err)
	}
}
