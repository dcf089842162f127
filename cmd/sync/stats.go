package main

import (
	"fmt"

	"ai-recommendation-be/internal/service"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print catalog collection statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup()
		if err != nil {
			return err
		}

		catalogService := service.NewCatalogService(d.uowFactory, nil, nil, nil, d.logger, 0)
		stats, err := catalogService.Stats(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("total products:        %d\n", stats.TotalProducts)
		fmt.Printf("updated last 30 days:  %d\n", stats.UpdatedLast30Days)
		fmt.Printf("published:             %d\n", stats.Published)
		return nil
	},
}
