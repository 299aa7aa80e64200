package mq_client

type Exchange struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type Queue struct {
	Name    string `yaml:"name"`
	Durable bool   `yaml:"durable"`
}

type Binding struct {
	Queue      string `yaml:"queue"`
	CleanStart bool   `yaml:"clean_start"`
	Exchange   string `yaml:"exchange"`
}

type Channel struct {
	Prefetch int `yaml:"prefetch"`
}

type MQClientConfig struct {
	Exchange struct {
		Procedures Exchange `yaml:"procedures"`
		Imports    Exchange `yaml:"imports"`
		Events     Exchange `yaml:"events"`
	}
	Queue struct {
		PricingProcedure    Queue `yaml:"pricing_procedure"`
		DataProcedure       Queue `yaml:"data_procedure"`
		ExpressionProcedure Queue `yaml:"expression_procedure"`
		ScheduleNext        Queue `yaml:"schedule_next"`
		TransactionImport   Queue `yaml:"transaction_import"`
		SimpleImport        Queue `yaml:"simple_import"`
	}
	Binding struct {
		PricingProcedure    Binding `yaml:"pricing_procedure"`
		DataProcedure       Binding `yaml:"data_procedure"`
		ExpressionProcedure Binding `yaml:"expression_procedure"`
		ScheduleNext        Binding `yaml:"schedule_next"`
		TransactionImport   Binding `yaml:"transaction_import"`
		SimpleImport        Binding `yaml:"simple_import"`
	}
	Channel struct {
		PricingProcedure    Channel `yaml:"pricing_procedure"`
		DataProcedure       Channel `yaml:"data_procedure"`
		ExpressionProcedure Channel `yaml:"expression_procedure"`
		ScheduleNext        Channel `yaml:"schedule_next"`
		TransactionImport   Channel `yaml:"transaction_import"`
		SimpleImport        Channel `yaml:"simple_import"`
	}
}
