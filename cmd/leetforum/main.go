package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "leetforum",
		Short: "Discord bot that hosts per-problem LeetCode discussion threads",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(serveCmd())
	root.AddCommand(refreshCmd())
	root.AddCommand(problemCmd())
	root.AddCommand(dailyCmd())
	root.AddCommand(registerCmd())
	root.AddCommand(healthCmd())

	return root
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the bot: interactions server plus scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the full problem catalog into the local database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh()
		},
	}
}

func problemCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "problem <id|slug>",
		Short: "Look up one problem, fetching it if not cached",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProblem(args[0])
		},
	}
}

func dailyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daily",
		Short: "Show today's featured problem",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaily()
		},
	}
}

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register the bot's slash commands with Discord",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister()
		},
	}
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check LeetCode API status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealth()
		},
	}
}
