package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/finastack/folio/config"
	"github.com/finastack/folio/expression"
	"github.com/finastack/folio/gateway"
	"github.com/finastack/folio/lookups"
	"github.com/finastack/folio/mq_client"
	"github.com/finastack/folio/procedures"
	"github.com/finastack/folio/schedules"
	"github.com/finastack/folio/workers/daemons"
	"github.com/finastack/folio/workers/engines"
)

func newProcedureEngine() *procedures.Engine {
	evaluator := expression.NewEvaluator(lookups.New(0, 0))
	return procedures.NewEngine(
		config.DataBase,
		evaluator,
		gateway.NewDataFileService(),
		gateway.NewProviderGateway(),
		schedules.AMQPSubmitter{},
	)
}

func createQueueWorker(id string) engines.Worker {
	engine := newProcedureEngine()
	switch id {
	case "pricing_procedure":
		return &engines.PricingProcedureWorker{Engine: engine}
	case "data_procedure":
		return &engines.DataProcedureWorker{Engine: engine}
	case "expression_procedure":
		return &engines.ExpressionProcedureWorker{Engine: engine}
	case "transaction_import", "simple_import":
		return engines.NewImportWorker(config.DataBase, expression.NewEvaluator(lookups.New(0, 0)))
	default:
		return nil
	}
}

func consume(id string, worker engines.Worker) {
	channel := mq_client.GetChannel()

	prefetch := mq_client.GetPrefetchCount(id)
	if prefetch > 0 {
		channel.Qos(prefetch, 0, false)
	}

	binding_queue := mq_client.GetBindingQueue(id)
	binding_exchange_id := mq_client.GetBindingExchangeId(id)
	exchange_name, exchange_kind := mq_client.GetExchange(binding_exchange_id)
	routing_key := mq_client.GetRoutingKey(id)

	if err := channel.ExchangeDeclare(exchange_name, exchange_kind, binding_queue.Durable, false, false, false, nil); err != nil {
		config.Logger.Errorf("Exchange Declare: %v", err)
		return
	}
	if _, err := channel.QueueDeclare(binding_queue.Name, binding_queue.Durable, false, false, false, nil); err != nil {
		config.Logger.Errorf("Queue Declare: %v", err)
		return
	}
	channel.QueueBind(binding_queue.Name, routing_key, exchange_name, false, nil)

	deliveries, err := channel.Consume(binding_queue.Name, id, false, false, false, false, nil)
	if err != nil {
		config.Logger.Errorf("Consume: %v", err)
		return
	}

	for delivery := range deliveries {
		if err := worker.Process(delivery.Body); err == nil {
			delivery.Ack(false)
		} else {
			config.Logger.Errorf("Worker error: %v", err.Error())
			delivery.Nack(false, true)
			time.Sleep(1 * time.Second)
		}
	}
}

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

	ARVG := os.Args[1:]

	for _, id := range ARVG {
		fmt.Println("Start folio-daemon: " + id)

		if id == "cron_job" {
			worker := daemons.NewCronJob(schedules.NewEngine(config.DataBase, schedules.AMQPSubmitter{}))
			go worker.Start()
			continue
		}

		worker := createQueueWorker(id)
		if worker == nil {
			config.Logger.Errorf("Unknown worker: %s", id)
			continue
		}
		go consume(id, worker)
	}

	select {}
}
