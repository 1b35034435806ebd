package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chefbazaar/backend/app/repositories"
	"github.com/chefbazaar/backend/app/routes"
	"github.com/chefbazaar/backend/internal/payments/stripe"
	"github.com/chefbazaar/backend/internal/server"
	"github.com/chefbazaar/backend/pkg/router"
)

// chefbazaar serve — start the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// chefbazaar route:list — print all registered named routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		// An in-memory store is enough to register routes; no handler runs.
		r := router.New()
		routes.RegisterAPI(r, routes.Deps{
			Store:    repositories.NewMemoryStore(),
			Checkout: stripe.New("", ""),
		})

		table := r.Routes()
		names := make([]string, 0, len(table))
		for name := range table {
			names = append(names, name)
		}
		sort.Strings(names)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPATH")
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%s\n", name, table[name])
		}
		return w.Flush()
	},
}
