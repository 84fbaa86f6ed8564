package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/filevault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC health bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-l string   log level
//	-b string   filesystem blob store directory
//
// os.Args is filtered with flagx.FilterArgs first, so flags owned by other
// components do not cause parse errors here.
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-s", "-l", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Server.HTTPAddr, "a", config.Server.HTTPAddr, "address and port to serve HTTP on")
	fs.StringVar(&config.Server.GRPCAddr, "g", config.Server.GRPCAddr, "address and port to serve gRPC health on")
	fs.StringVar(&config.Database.DSN, "d", config.Database.DSN, "database DSN")
	fs.StringVar(&config.Auth.SecretKey, "s", config.Auth.SecretKey, "secret key")
	fs.StringVar(&config.Logging.Level, "l", config.Logging.Level, "log level")

	blobPath, _ := config.Blob.Filesystem["path"].(string)
	fs.StringVar(&blobPath, "b", blobPath, "blob directory for the filesystem store")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if blobPath != "" {
		if config.Blob.Filesystem == nil {
			config.Blob.Filesystem = map[string]any{}
		}
		config.Blob.Filesystem["path"] = blobPath
	}
	return nil
}
