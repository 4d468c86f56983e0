package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/creditbook/internal/infrastructure/idgen"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree writing to out.
func newRootCmd(out io.Writer) *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)

	api := &apiClient{newKey: idgen.NewULIDGenerator().Generate}

	rootCmd := &cobra.Command{
		Use:           "creditbook-cli",
		Short:         "CreditBook CLI tool",
		Long:          `A command line interface for recording credit sales and payments through the CreditBook API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			api.baseURL = baseURL
			api.http = &http.Client{Timeout: timeout}
		},
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", envOr("CREDITBOOK_URL", "http://localhost:8080"), "Base URL of the CreditBook API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		newClientsCmd(api),
		newSaleCmd(api),
		newPaymentCmd(api),
		newStatementCmd(api),
		newPricesCmd(api),
		newDashboardCmd(api),
		newOutstandingCmd(api),
		newReconcileCmd(api),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
