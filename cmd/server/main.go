package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gostones/s3relay/internal/config"
	"github.com/gostones/s3relay/internal/handler"
	"github.com/gostones/s3relay/internal/server"
)

func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := cfg.Logger()

	r := server.NewRouter(handler.New(*cfg, log), log)

	hostport := fmt.Sprintf(":%v", cfg.Port)
	log.Info().Str("addr", hostport).Str("bucket", cfg.Storage.BucketName).Msg("listening")
	if err := http.ListenAndServe(hostport, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
