package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type section func(ctx context.Context, uc *usecase.AnalyticsUseCase) (any, error)

var reportSections = map[string]section{
	"dashboard": func(ctx context.Context, uc *usecase.AnalyticsUseCase) (any, error) { return uc.Dashboard(ctx) },
	"funnel":    func(ctx context.Context, uc *usecase.AnalyticsUseCase) (any, error) { return uc.LeadFunnel(ctx) },
	"sources":   func(ctx context.Context, uc *usecase.AnalyticsUseCase) (any, error) { return uc.SourcePerformance(ctx) },
	"conversion-time": func(ctx context.Context, uc *usecase.AnalyticsUseCase) (any, error) {
		return uc.TimeToConversion(ctx)
	},
	"leads":     func(ctx context.Context, uc *usecase.AnalyticsUseCase) (any, error) { return uc.LeadSummary(ctx) },
	"sales":     func(ctx context.Context, uc *usecase.AnalyticsUseCase) (any, error) { return uc.SalesAnalytics(ctx) },
	"customers": func(ctx context.Context, uc *usecase.AnalyticsUseCase) (any, error) { return uc.CustomerAnalytics(ctx) },
	"tasks":     func(ctx context.Context, uc *usecase.AnalyticsUseCase) (any, error) { return uc.TaskAnalytics(ctx) },
}

func sectionNames() []string {
	names := make([]string, 0, len(reportSections))
	for n := range reportSections {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (c *cli) newReportCmd() *cobra.Command {
	var (
		name    string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Imprime as análises em JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, ok := reportSections[name]
			if !ok {
				return fmt.Errorf("unknown section %q, valid: %s", name, strings.Join(sectionNames(), ", "))
			}

			ctx := cmd.Context()
			if refresh {
				if err := c.app.AnalyticsUC.Invalidate(ctx); err != nil {
					return fmt.Errorf("invalidate cache: %w", err)
				}
			}

			out, err := fn(ctx, c.app.AnalyticsUC)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&name, "section", "dashboard", "seção: "+strings.Join(sectionNames(), ", "))
	cmd.Flags().BoolVar(&refresh, "refresh", false, "descarta o cache antes de calcular")
	return cmd
}
