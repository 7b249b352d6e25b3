package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	_ "time/tzdata"
)

var (
	rootCmd = &cobra.Command{
		Use:   "myshop-manager",
		Short: "Service to handle myshop orders, POS receipts and statistics",
		RunE:  run,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the myshop-manager service version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	hashCmd = &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for auth.masterPasswordHash",
		Args:  cobra.ExactArgs(1),
		RunE:  hashPassword,
	}

	cfgFile string
	envFile string
	version string
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to configuration file (optional)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.AddCommand(versionCmd, hashCmd)
	if err := rootCmd.Execute(); err != nil {
		slog.Default().Error("can't start the service", slog.String("err", err.Error()))
		os.Exit(-1)
	}
}
