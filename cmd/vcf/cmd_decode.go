package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/dirk.krummacker/nonprofit-contacts/pkg/vcard"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var outputFormat string

// decodeCmd converts vCard text into contact cards
var decodeCmd = &cobra.Command{
	Use:   "decode [file.vcf]",
	Short: "Convert vCard text into contact cards",
	Long: `Reads a file holding any number of vCards and prints the decoded contact cards
as a JSON array or as a YAML list. Blocks that cannot be decoded are skipped.
Without a file argument the text is read from stdin.

Example:
  vcf decode contacts.vcf
  vcf decode contacts.vcf --format yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

func runDecode(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	cards := vcard.SplitRecords(string(data))
	logger.Debug("vCards decoded", zap.Int("cards", len(cards)))

	out := cmd.OutOrStdout()
	switch outputFormat {
	case formatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "    ")
		return encoder.Encode(cards)
	case formatYAML:
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(cards); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unknown format %q, expected %s or %s", outputFormat, formatJSON, formatYAML)
	}
}
