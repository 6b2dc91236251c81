package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/gostones/s3relay/internal/config"
	"github.com/gostones/s3relay/internal/handler"
)

func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := cfg.Logger()

	h := handler.New(*cfg, log)
	log.Info().Str("bucket", cfg.Storage.BucketName).Str("region", cfg.Storage.Region).Msg("starting upload relay")
	lambda.Start(h.Handle)
}
