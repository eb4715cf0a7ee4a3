package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Default server base URL; can override with CLIENTDIR_SERVER env var or --server flag.
const defaultServer = "http://localhost:8080"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var serverFlag string
	app := &app{}

	root := &cobra.Command{
		Use:           "clientdir",
		Short:         "Terminal client for the client directory API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			server := defaultServer
			if env := os.Getenv("CLIENTDIR_SERVER"); env != "" {
				server = env
			}
			if serverFlag != "" {
				server = serverFlag
			}
			dir, err := stateDir()
			if err != nil {
				return err
			}
			app.api = newAPIClient(strings.TrimRight(server, "/"))
			app.state = dir
			app.out = cmd.OutOrStdout()
			return nil
		},
	}
	root.PersistentFlags().StringVar(&serverFlag, "server", "", "Override server base URL (e.g. https://api.example.com)")

	root.AddCommand(
		app.loginCmd(),
		app.logoutCmd(),
		app.registerCmd(),
		app.clientsCmd(),
		app.regionCmd(),
		app.cepCmd(),
	)
	return root
}
