package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gitlab.com/dirk.krummacker/nonprofit-contacts/internal/logging"
	"go.uber.org/zap"
)

var (
	// Global flags
	logLevel string

	// Logger
	logger = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vcf",
	Short: "Convert contact cards to and from vCard 3.0 files",
	Long: `vcf converts contact cards between the JSON representation of the contacts
service and vCard 3.0 text, without talking to the service or its database.

Examples:
  vcf encode jane.json -o jane.vcf
  vcf decode contacts.vcf --format yaml
  vcf split contacts.vcf --dir cards`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(logLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "the minimum level of log messages written to stderr")

	encodeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the vCard text to this file instead of stdout")
	decodeCmd.Flags().StringVar(&outputFormat, "format", formatJSON, "the output format, json or yaml")
	splitCmd.Flags().StringVar(&splitDir, "dir", ".", "the directory that receives one file per card")

	rootCmd.AddCommand(encodeCmd, decodeCmd, splitCmd)
}

// Usage example on the command line:
// > go run . decode testdata/contacts.vcf --format yaml
func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// readInput returns the content of the file named by the first argument, or of stdin if there is
// no argument or the argument is "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0]) // nosemgrep
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", args[0], err)
	}
	return data, nil
}
