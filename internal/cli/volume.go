package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/FranksOps/rankrocket/internal/keywords"
	"github.com/spf13/cobra"
)

func (a *app) volumeCommand() *cobra.Command {
	var (
		customerID string
		pageURL    string
		seeds      []string
		language   string
		geos       []string
		adsConfig  string
	)
	cmd := &cobra.Command{
		Use:   "volume",
		Short: "Fetch keyword ideas and monthly search volume from Google Ads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadClient()
			if err != nil {
				return err
			}
			if customerID == "" {
				customerID = c.CustomerID
			}
			if pageURL == "" {
				pageURL = c.PageURL
				if pageURL == "" {
					pageURL = c.URL
				}
			}
			if len(seeds) == 0 {
				seeds = c.SeedKeywords
			}
			if adsConfig == "" {
				adsConfig = a.creds.GoogleAdsConfig
			}

			creds, err := keywords.LoadCredentials(adsConfig)
			if err != nil {
				return err
			}
			planner, err := keywords.NewPlanner(cmd.Context(), keywords.Config{
				Credentials: *creds,
				Metrics:     a.metrics,
			}, a.logger)
			if err != nil {
				return err
			}

			ideas, err := planner.GenerateKeywordIdeas(cmd.Context(), keywords.IdeasRequest{
				CustomerID: customerID,
				PageURL:    pageURL,
				Keywords:   seeds,
				Language:   language,
				GeoTargets: geos,
			})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEYWORD\tSEARCHES/MONTH\tCOMPETITION")
			for _, idea := range ideas {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", idea.Text, idea.AvgMonthlySearches, idea.Competition)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&customerID, "customer-id", "", "Google Ads customer id (overrides customer_id)")
	cmd.Flags().StringVar(&pageURL, "page-url", "", "page to seed ideas from (overrides page_url)")
	cmd.Flags().StringSliceVar(&seeds, "seed", nil, "seed keywords (overrides seed_keywords)")
	cmd.Flags().StringVar(&language, "language", keywords.DefaultLanguage, "language constant id")
	cmd.Flags().StringSliceVar(&geos, "geo-target", []string{keywords.DefaultGeoTarget}, "geo target constant ids")
	cmd.Flags().StringVar(&adsConfig, "ads-config", "", "google-ads.yaml path (default $GOOGLE_ADS_CONFIG)")
	return cmd
}

func (a *app) adsTokenCommand() *cobra.Command {
	var (
		clientID     string
		clientSecret string
		addr         string
	)
	cmd := &cobra.Command{
		Use:   "ads-token",
		Short: "Authorize Google Ads access and print a refresh token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientID == "" || clientSecret == "" {
				creds, err := keywords.LoadCredentials(a.creds.GoogleAdsConfig)
				if err == nil {
					clientID, clientSecret = creds.ClientID, creds.ClientSecret
				}
			}
			if clientID == "" || clientSecret == "" {
				return fmt.Errorf("ads-token needs --client-id and --client-secret or a readable %s", a.creds.GoogleAdsConfig)
			}

			flow := &keywords.AuthFlow{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				Addr:         addr,
				Out:          a.out,
				Logger:       a.logger,
			}
			tok, err := flow.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "\nSUCCESS! Paste the following into your google-ads.yaml:\n\nrefresh_token: %s\n", tok.RefreshToken)
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client id")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth client secret")
	cmd.Flags().StringVar(&addr, "addr", keywords.DefaultCallbackAddr, "local callback address")
	return cmd
}
