package cli

import (
	"fmt"

	"github.com/FranksOps/rankrocket/internal/config"
	"github.com/FranksOps/rankrocket/internal/gmb"
	"github.com/spf13/cobra"
)

func (a *app) gmbCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gmb",
		Short: "Generate Google Business Profile keywords from the service list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadClient("name", "city", "state")
			if err != nil {
				return err
			}
			return a.runGMB(c)
		},
	}
}

func (a *app) runGMB(c *config.Client) error {
	kws, err := gmb.Keywords(gmb.Business{Name: c.Name, City: c.City, State: c.State}, c.Services)
	if err != nil {
		return err
	}
	path, err := gmb.Write(c.OutputRoot, kws)
	if err != nil {
		return err
	}
	a.logger.Info("gmb keywords written", "path", path, "keywords", len(kws))
	fmt.Fprintf(a.out, "Generated %d keywords in %s\n", len(kws), path)
	return nil
}
