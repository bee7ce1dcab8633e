package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/david/opportunity-finder/internal/ai"
	"github.com/david/opportunity-finder/internal/config"
	"github.com/david/opportunity-finder/internal/outreach"
	"github.com/david/opportunity-finder/internal/session"
)

var (
	industry   string
	country    string
	jsonOutput bool
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:          "generate",
	Short:        "Generate business opportunities for an industry and country",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}

		logger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx := context.Background()
		model, err := ai.NewGeminiClient(ctx, cfg.Credential(), cfg.GeminiBaseURL, cfg.Profile.Model)
		if err != nil {
			return err
		}
		gen, err := ai.NewGenerator(model, cfg.Profile, cfg.GenerationTimeout, logger)
		if err != nil {
			return err
		}

		sess := session.New(gen, logger, session.WithDateLayout(cfg.Profile.DateLayout))
		if err := sess.Submit(ctx, industry, country); err != nil {
			if st := sess.Snapshot(); st.ErrorMessage != nil {
				return fmt.Errorf("%s", *st.ErrorMessage)
			}
			return err
		}
		st := sess.Snapshot()

		if jsonOutput {
			data, err := json.MarshalIndent(st, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal state: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		renderTable(st)
		return nil
	},
}

func renderTable(st session.State) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("%s · %s", st.Query.Industry, st.Query.Country))
	t.AppendHeader(table.Row{"#", "Sector", "Business", "Email", "Solution", "Acceptance", "Ease", "Gain"})

	for i, opp := range st.Opportunities {
		t.AppendRow(table.Row{
			i + 1,
			opp.Sector,
			opp.BusinessType,
			opp.ManagerEmail,
			opp.AISolutionName,
			fmt.Sprintf("%s (%.0f/10)", opp.AcceptanceProbability.Rating, opp.AcceptanceProbability.Score),
			fmt.Sprintf("%.0f/10", opp.EaseOfCreation),
			fmt.Sprintf("%.0f/10", opp.OpportunityForGain),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "Total", len(st.Opportunities)})
	t.Render()

	for i, opp := range st.Opportunities {
		fmt.Printf("\n[%d] %s\n", i+1, outreach.MailtoURL(opp.OpportunityRecord))
	}
}

func main() {
	rootCmd.Flags().StringVar(&industry, "industry", "", "industry or trade, e.g. Cafeterías")
	rootCmd.Flags().StringVar(&country, "country", "", "country, e.g. España")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "output the session state as JSON")
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before the environment")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
