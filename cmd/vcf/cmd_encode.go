package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/dirk.krummacker/nonprofit-contacts/pkg/model"
	"gitlab.com/dirk.krummacker/nonprofit-contacts/pkg/vcard"
	"go.uber.org/zap"
)

var outputFile string

// encodeCmd converts JSON contact cards into vCard text
var encodeCmd = &cobra.Command{
	Use:   "encode [file.json]",
	Short: "Convert a JSON contact card or an array of cards into vCard text",
	Long: `Reads a single contact card or an array of contact cards in the JSON format of
the contacts service and writes them as vCard 3.0 text. Without a file argument
the cards are read from stdin.

Example:
  vcf encode jane.json -o jane.vcf
  curl http://localhost:8080/contacts | vcf encode > contacts.vcf`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEncode,
}

func runEncode(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	cards, err := parseCards(data)
	if err != nil {
		return err
	}
	text := vcard.EncodeMultiple(cards) + "\r\n"

	if outputFile == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), text)
		return err
	}
	if err := os.WriteFile(outputFile, []byte(text), 0o644); err != nil { // nosemgrep
		return fmt.Errorf("could not write %s: %w", outputFile, err)
	}
	logger.Info("vCards written", zap.String("file", outputFile), zap.Int("cards", len(cards)))
	return nil
}

// parseCards accepts either a single JSON object or a JSON array of objects.
func parseCards(data []byte) ([]model.ContactCard, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("no contact cards in input")
	}
	if trimmed[0] == '[' {
		var cards []model.ContactCard
		if err := json.Unmarshal(trimmed, &cards); err != nil {
			return nil, fmt.Errorf("could not parse contact cards: %w", err)
		}
		return cards, nil
	}
	var card model.ContactCard
	if err := json.Unmarshal(trimmed, &card); err != nil {
		return nil, fmt.Errorf("could not parse contact card: %w", err)
	}
	return []model.ContactCard{card}, nil
}
