package predictctl

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"predictd/pkg/types"
)

// BuildRootCmd constructs the Cobra command tree wired to a Client.
func BuildRootCmd() *cobra.Command {
	serverURL := "http://localhost:8080"
	if v := os.Getenv("PREDICTD_URL"); v != "" {
		serverURL = v
	}

	root := &cobra.Command{
		Use:           "predictctl",
		Short:         "Operator CLI for a running predictd instance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", serverURL, "Base URL of the predictd instance (defaults PREDICTD_URL or http://localhost:8080)")
	client := func() *Client { return NewClient(serverURL) }

	predictCmd := &cobra.Command{
		Use:     "predict <housing|iris> <input.json|->",
		Short:   "Submit one prediction request",
		Example: "  predictctl predict housing request.json\n  echo '{\"sepal_length\":5.1,...}' | predictctl predict iris -",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := readFields(args[1])
			if err != nil {
				return err
			}
			raw, err := client().Predict(args[0], fields)
			if err != nil {
				return err
			}
			var pretty any
			if err := json.Unmarshal(raw, &pretty); err != nil {
				return err
			}
			return printJSON(pretty)
		},
	}
	root.AddCommand(predictCmd)

	var (
		retrainModel      string
		retrainForce      bool
		retrainBackground bool
		retrainDataPath   string
	)
	retrainCmd := &cobra.Command{
		Use:     "retrain",
		Short:   "Trigger model retraining",
		Example: "  predictctl retrain --model housing --force\n  predictctl retrain --background",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().Retrain(types.RetrainRequest{
				ModelType:   retrainModel,
				Force:       retrainForce,
				Background:  retrainBackground,
				NewDataPath: retrainDataPath,
			})
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	retrainCmd.Flags().StringVar(&retrainModel, "model", "", "Model type to retrain: housing|iris (empty for both)")
	retrainCmd.Flags().BoolVar(&retrainForce, "force", false, "Retrain even when current performance is acceptable")
	retrainCmd.Flags().BoolVar(&retrainBackground, "background", false, "Run the job in the background and return a task id")
	retrainCmd.Flags().StringVar(&retrainDataPath, "data", "", "Alternate training dataset path (CSV)")
	root.AddCommand(retrainCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the retrain orchestrator's state",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().RetrainStatus()
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	root.AddCommand(statusCmd)

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Show service health",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().Health()
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	root.AddCommand(healthCmd)

	infoCmd := &cobra.Command{
		Use:   "model-info <housing|iris>",
		Short: "Describe the active model for a model type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().ModelInfo(args[0])
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	root.AddCommand(infoCmd)

	metricsCmd := &cobra.Command{
		Use:   "app-metrics",
		Short: "Show prediction volume counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().AppMetrics()
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	root.AddCommand(metricsCmd)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(os.Stdout, true) }})
	root.AddCommand(completionCmd)

	return root
}
