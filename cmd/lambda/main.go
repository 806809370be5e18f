package main

import (
	"context"
	"log"
	"time"

	"invitelinks-backend/infrastructure/config"
	"invitelinks-backend/infrastructure/di"
	lambdahandler "invitelinks-backend/interfaces/lambda"

	"github.com/aws/aws-lambda-go/lambda"
)

// Lambda lifecycle state, initialized once per cold start
var (
	handler       *lambdahandler.Handler
	coldStartTime time.Time
)

// init runs during cold start
func init() {
	coldStartTime = time.Now()
	log.Println("Lambda cold start initiated")

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	handler = lambdahandler.New(
		container.Factory,
		cfg.APIKey,
		container.Router,
		container.Logger,
	)

	log.Printf("Lambda cold start completed in %v", time.Since(coldStartTime))
}

func main() {
	lambda.Start(handler.Handle)
}
