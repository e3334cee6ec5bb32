package cli

import (
	"context"
	"fmt"

	"github.com/FranksOps/rankrocket/internal/background"
	"github.com/FranksOps/rankrocket/internal/config"
	"github.com/FranksOps/rankrocket/internal/fingerprint"
	"github.com/FranksOps/rankrocket/internal/scraper"
	"github.com/spf13/cobra"
)

type backgroundFlags struct {
	scrape        bool
	fingerprint   string
	respectRobots bool
	proxy         string
	estimate      bool
}

func (a *app) backgroundCommand() *cobra.Command {
	var f backgroundFlags
	cmd := &cobra.Command{
		Use:   "background",
		Short: "Write a business background summary document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadClient("name", "output_root")
			if err != nil {
				return err
			}
			return a.runBackground(cmd.Context(), c, f)
		},
	}
	addBackgroundFlags(cmd, &f)
	return cmd
}

func addBackgroundFlags(cmd *cobra.Command, f *backgroundFlags) {
	cmd.Flags().BoolVar(&f.scrape, "scrape", true, "include text scraped from the client website")
	cmd.Flags().StringVar(&f.fingerprint, "fingerprint", "chrome", "TLS fingerprint: chrome, firefox, safari, random, go")
	cmd.Flags().BoolVar(&f.respectRobots, "respect-robots", true, "skip the scrape when robots.txt disallows it")
	cmd.Flags().StringVar(&f.proxy, "proxy", "", "proxy URL for the website scrape (http, https or socks5)")
	cmd.Flags().BoolVar(&f.estimate, "estimate-tokens", false, "log prompt token estimates")
}

func (a *app) runBackground(ctx context.Context, c *config.Client, f backgroundFlags) error {
	if _, err := background.TargetInfo(c.URL, c.GBPURL); err != nil {
		return err
	}
	completer, err := a.newCompleter(f.estimate)
	if err != nil {
		return err
	}

	var ts background.TextScraper
	if f.scrape {
		profile, err := fingerprint.ParseProfile(f.fingerprint)
		if err != nil {
			return err
		}
		fetcher, err := scraper.NewFetcher(scraper.FetchConfig{
			Fingerprint:   profile,
			RespectRobots: f.respectRobots,
			UseCookieJar:  true,
			Proxy:         f.proxy,
		}, a.logger)
		if err != nil {
			return err
		}
		ts = fetcher
	}

	gen := background.NewGenerator(completer, ts, a.logger)
	path, err := gen.Run(ctx, background.Target{
		Name:       c.Name,
		URL:        c.URL,
		GBPURL:     c.GBPURL,
		OutputRoot: c.OutputRoot,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved background information to %s\n", path)
	return nil
}
