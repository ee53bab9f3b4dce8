package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hadirot/functions/internal/logger"
	"github.com/hadirot/functions/internal/payment"
)

func main() {
	log := logger.New("info", "text")
	if err := newRootCmd(payment.NewService(log)).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(svc *payment.Service) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "paymentctl",
		Short:         "Featured listing payment operations for HaDirot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var p payment.FeaturedListingPayment
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a payment for a featured listing",
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, err := svc.CreatePayment(cmd.Context(), p)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), intent)
		},
	}
	createCmd.Flags().StringVar(&p.ListingID, "listing", "", "listing ID")
	createCmd.Flags().IntVar(&p.DurationDays, "days", 7, "number of days to feature the listing")
	createCmd.Flags().Int64Var(&p.AmountCents, "amount", 0, "amount in cents")
	createCmd.MarkFlagRequired("listing")

	confirmCmd := &cobra.Command{
		Use:   "confirm [payment-intent-id]",
		Short: "Confirm a payment intent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, err := svc.ConfirmPayment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), intent)
		},
	}

	var req payment.CheckoutSessionRequest
	checkoutCmd := &cobra.Command{
		Use:   "checkout",
		Short: "Create a hosted checkout session",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := svc.CreateCheckoutSession(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), session)
		},
	}
	checkoutCmd.Flags().StringVar(&req.ListingID, "listing", "", "listing ID")
	checkoutCmd.Flags().IntVar(&req.DurationDays, "days", 7, "number of days to feature the listing")
	checkoutCmd.Flags().StringVar(&req.SuccessURL, "success-url", "", "redirect after a completed checkout")
	checkoutCmd.Flags().StringVar(&req.CancelURL, "cancel-url", "", "redirect after an abandoned checkout")
	checkoutCmd.MarkFlagRequired("listing")

	rootCmd.AddCommand(createCmd, confirmCmd, checkoutCmd)
	rootCmd.SetContext(context.Background())
	return rootCmd
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
