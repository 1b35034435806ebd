package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chefbazaar",
	Short: "LocalChefBazaar backend CLI",
	Long:  "LocalChefBazaar connects home cooks with local buyers. This CLI runs the API server and manages the database.",
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(indexesCmd)
	rootCmd.AddCommand(seedCmd)
}
