package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrisonrobin/morrow/pkg/auth"
	"github.com/harrisonrobin/morrow/pkg/config"
	"github.com/harrisonrobin/morrow/pkg/google"
	"github.com/harrisonrobin/morrow/pkg/llm"
	"github.com/harrisonrobin/morrow/pkg/planner"
)

var version = "dev"

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	breakColor   = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
)

var rootCmd = &cobra.Command{
	Use:     "morrow",
	Version: version,
	Short:   "Plan tomorrow's schedule from your Google Tasks",
	Long: `morrow reads the pending tasks of a Google Tasks list, asks an LLM to
arrange them into a Pomodoro-style schedule for tomorrow, and writes the
schedule back to a second list so it shows up on your phone.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize access to Google Tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.CredentialsPath()
		if err != nil {
			return err
		}
		store, err := auth.NewStore(path)
		if err != nil {
			return err
		}
		if _, err := store.Authenticate(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("Authorization successful. Credentials saved to %s\n", path)
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate and publish tomorrow's schedule",
	Args:  cobra.NoArgs,
	RunE:  runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	credPath, err := config.CredentialsPath()
	if err != nil {
		return err
	}
	store, err := auth.NewStore(credPath)
	if err != nil {
		return err
	}
	client, err := llm.New(cfg.LLM)
	if err != nil {
		return err
	}

	newAPI := func(ctx context.Context, accessToken string) (planner.TaskAPI, error) {
		return google.NewClient(ctx, google.WithAccessToken(accessToken))
	}

	fmt.Printf("Planning with %s (%s)...\n", client.Name(), cfg.LLM.Model)
	result, err := planner.NewOrchestrator(cfg, store, newAPI, client).Run(cmd.Context())
	if result != nil {
		printResult(result, cfg)
	}
	return err
}

func printResult(result *planner.Result, cfg *config.Config) {
	if len(result.Blocks) == 0 {
		fmt.Printf("Nothing to plan: %q has no pending tasks.\n", cfg.Google.SourceList)
		return
	}

	headerColor.Printf("\nSchedule for %s\n\n", result.Date)
	for _, b := range result.Blocks {
		line := fmt.Sprintf("  %s - %s  %s", b.StartClock(), b.EndClock(), b.Label)
		if b.Kind == planner.KindBreak {
			breakColor.Println(line)
		} else {
			fmt.Println(line)
		}
	}
	fmt.Printf("\n%d of %d blocks written to %q.\n",
		result.WrittenCount, len(result.Blocks), cfg.Google.OutputList)

	for _, w := range result.Warnings {
		warningColor.Printf("warning: %s\n", w)
	}
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or initialize the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Printf("timezone:     %s\n", cfg.Timezone)
		fmt.Printf("source list:  %s\n", cfg.Google.SourceList)
		fmt.Printf("output list:  %s\n", cfg.Google.OutputList)
		fmt.Printf("llm:          %s %s (%s)\n", cfg.LLM.APIFormat, cfg.LLM.Model, cfg.LLM.BaseURL)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}
		if err := config.Save(config.Default(), path); err != nil {
			return err
		}
		fmt.Printf("Default configuration written to %s\n", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func loadConfig() (*config.Config, error) {
	path, err := config.Path()
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
