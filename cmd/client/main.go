package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gostones/s3relay/internal/client"
)

func main() {
	var (
		endpoint    string
		key         string
		contentType string
	)

	cmd := &cobra.Command{
		Use:   "s3relay-client FILE",
		Short: "Upload a file through the s3relay endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := client.NewUploader(endpoint).Upload(cmd.Context(), args[0], key, contentType)
			if res != nil {
				fmt.Printf("key: %s content-type: %s md5: %s status: %v\n", res.Key, res.ContentType, res.MD5, res.StatusCode)
			}
			return err
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "http://localhost:4000", "relay base URL")
	cmd.Flags().StringVar(&key, "key", "", "object key (defaults to the file name)")
	cmd.Flags().StringVar(&contentType, "content-type", "", "content type (sniffed when empty)")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
