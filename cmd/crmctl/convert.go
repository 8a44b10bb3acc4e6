package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

func (c *cli) newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <lead-id>",
		Short: "Converte um lead em venda pendente",
		Long: `Marca o lead como "converted". Na primeira conversão o workflow cria
(ou reaproveita) o cliente pelo e-mail e uma venda pendente com o valor do lead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := entity.LeadStatusConverted
			out, err := c.app.ConvertUC.Execute(cmd.Context(), args[0], entity.LeadPatch{Status: &status})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
