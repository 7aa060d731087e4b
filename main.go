package main

import (
	"fmt"
	"os"

	"github.com/tientran/mangamirror/internal/config"
	"github.com/tientran/mangamirror/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	switch os.Args[1] {
	case "sync":
		cfg := config.NewConfig()
		if err := entrypoint.RunSync(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Catalog refreshed")

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command>\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve   Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  sync    Force a one-shot catalog refresh (honors the refresh gate)\n")
	fmt.Fprintf(os.Stderr, "\nConfiguration is read from environment variables (PORT, DATABASE_PATH,\n")
	fmt.Fprintf(os.Stderr, "REMOTE_BASE_URL, CLIENT_REFRESH_CYCLE_SECONDS, ...).\n")
}
