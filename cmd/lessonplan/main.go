package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	cfgpkg "github.com/local/lessonplanner/internal/config"
	logpkg "github.com/local/lessonplanner/internal/logger"
)

var (
	verbose bool
	timeout time.Duration
	cfg     cfgpkg.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lessonplan",
	Short: "Fill a DOCX lesson plan template from a PDF, pasted text or a web search",
	Long: `lessonplan runs the same pipeline as the bot without Telegram.

Configuration is read from the environment (and .env), as for the server.
Logs go to stderr.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = cfgpkg.FromEnv()
		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		return logpkg.Init(logpkg.Options{
			Service: "lessonplan-cli",
			Level:   level,
			Pretty:  true,
			Stdout:  os.Stderr,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logpkg.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	addInputFlags(generateCmd)
	generateCmd.Flags().StringVar(&templateRef, "template", "", "Template reference: path, file://, http(s):// or s3:// (default: DEFAULT_TEMPLATE_PATH)")
	generateCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default: generated name in the current directory)")

	addInputFlags(fieldsCmd)

	encryptCmd.Flags().StringVar(&password, "password", "", "Envelope password (default: TEMPLATE_S3_PASSWORD)")
	encryptCmd.Flags().BoolVar(&decrypt, "decrypt", false, "Decrypt instead of encrypt")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(encryptCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
