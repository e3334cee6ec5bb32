package cli

import (
	"context"
	"fmt"

	"github.com/FranksOps/rankrocket/internal/answer"
	"github.com/FranksOps/rankrocket/internal/config"
	"github.com/FranksOps/rankrocket/internal/llm"
	"github.com/FranksOps/rankrocket/internal/paa"
	"github.com/FranksOps/rankrocket/internal/pipeline"
	"github.com/FranksOps/rankrocket/internal/serp"
	"github.com/spf13/cobra"
)

type faqFlags struct {
	max         int
	concurrency int
	geo         string
	noGeo       bool
	estimate    bool
}

func (a *app) faqCommand() *cobra.Command {
	var f faqFlags
	cmd := &cobra.Command{
		Use:   "faq",
		Short: "Build a People Also Ask FAQ page for the client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadClient(config.RequiredFields...)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max") {
				c.MaxQuestions = f.max
			}
			return a.runFAQ(cmd.Context(), c, f)
		},
	}
	cmd.Flags().IntVar(&f.max, "max", config.DefaultMaxQuestions, "maximum questions (overrides max_questions)")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 1, "parallel search requests per wave")
	cmd.Flags().StringVar(&f.geo, "geo", "", "geo target, default \"{city}, {state}\"")
	cmd.Flags().BoolVar(&f.noGeo, "no-geo", false, "skip location resolution")
	cmd.Flags().BoolVar(&f.estimate, "estimate-tokens", false, "log prompt token estimates")
	return cmd
}

func (a *app) newCompleter(estimate bool) (*llm.OpenAI, error) {
	if err := a.creds.Need("OPENAI_API_KEY"); err != nil {
		return nil, err
	}
	return llm.NewOpenAI(llm.Config{
		APIKey:         a.creds.OpenAIKey,
		BaseURL:        a.creds.OpenAIBaseURL,
		Model:          a.creds.OpenAIModel,
		EstimateTokens: estimate,
		Metrics:        a.metrics,
	}, a.logger)
}

func (a *app) runFAQ(ctx context.Context, c *config.Client, f faqFlags) error {
	if err := a.creds.Need("SERPAPI_KEY"); err != nil {
		return err
	}
	search, err := serp.NewSerpAPI(serp.Config{
		APIKey:  a.creds.SerpAPIKey,
		BaseURL: a.opts.SerpAPIBaseURL,
		Metrics: a.metrics,
	}, a.logger)
	if err != nil {
		return err
	}
	completer, err := a.newCompleter(f.estimate)
	if err != nil {
		return err
	}

	aggCfg := paa.Config{Concurrency: f.concurrency, Metrics: a.metrics}
	if !f.noGeo {
		aggCfg.Resolver = search
	}

	ledger, err := a.openLedger()
	if err != nil {
		return err
	}
	if ledger != nil {
		defer ledger.Close()
	}

	p := &pipeline.Pipeline{
		Harvester: paa.NewAggregator(aggCfg, search, a.logger),
		Drafter:   answer.NewDrafter(completer, a.logger),
		Ledger:    ledger,
		Logger:    a.logger,
	}
	res, err := p.RunFAQ(ctx, pipeline.FAQRequest{
		Business: answer.Business{
			Name:  c.Name,
			Niche: c.Niche,
			City:  c.City,
			State: c.State,
		},
		SeedKeyword:  c.SeedKeyword,
		GeoTarget:    f.geo,
		MaxQuestions: c.MaxQuestions,
		OutputRoot:   c.OutputRoot,
	})
	if err != nil {
		return err
	}

	if res.OutputPath == "" {
		fmt.Fprintf(a.out, "No questions found for %q after %d searches.\n", c.SeedKeyword, res.Requests)
		return nil
	}
	fmt.Fprintf(a.out, "Saved %d FAQs to %s\n", len(res.Entries), res.OutputPath)
	return nil
}
