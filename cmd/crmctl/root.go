package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xavierca1/ligue-crm/internal/app"
	"github.com/xavierca1/ligue-crm/internal/config"
	"github.com/xavierca1/ligue-crm/internal/logger"
)

const version = "1.0.0"

// cli guarda o estado compartilhado entre os subcomandos.
type cli struct {
	envFile  string
	logLevel string

	app *app.App
}

// execute roda a CLI e sempre fecha o App, mesmo quando o comando falha.
func execute(args []string, stdout, stderr io.Writer) error {
	root, c := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if cerr := c.close(); err == nil {
		err = cerr
	}
	return err
}

func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}

	root := &cobra.Command{
		Use:   "crmctl",
		Short: "crmctl administra a base do CRM",
		Long: `crmctl roda migrações, popula dados de exemplo, imprime relatórios
de analytics e converte leads direto na base configurada.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.open,
	}

	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "arquivo .env lido antes das variáveis de ambiente")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "nível de log (debug, info, warn, error)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(c.newMigrateCmd())
	root.AddCommand(c.newSeedCmd())
	root.AddCommand(c.newReportCmd())
	root.AddCommand(c.newConvertCmd())
	return root, c
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Imprime a versão",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "crmctl v"+version)
		},
	}
}

// open carrega a config e monta o App. app.New já aplica as migrações.
func (c *cli) open(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := config.Load(c.envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.NewWithWriter(cmd.ErrOrStderr(), c.logLevel, "text")
	a, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("open app: %w", err)
	}
	c.app = a
	return nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

func printf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
