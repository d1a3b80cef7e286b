package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/dirk.krummacker/nonprofit-contacts/pkg/vcard"
	"go.uber.org/zap"
)

var splitDir string

// splitCmd writes every vCard of a file into a file of its own
var splitCmd = &cobra.Command{
	Use:   "split file.vcf",
	Short: "Write every vCard of a file into a file of its own",
	Long: `Copies every vCard of the given file unchanged into a separate file in the
target directory. The files are named after the cards. Cards with the same
name get a numeric suffix. Blocks that cannot be decoded are skipped.

Example:
  vcf split contacts.vcf --dir cards`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

func runSplit(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(splitDir, 0o755); err != nil {
		return fmt.Errorf("could not create %s: %w", splitDir, err)
	}

	used := map[string]bool{}
	count := 0
	for block := range vcard.Blocks(string(data)) {
		card := vcard.Decode(block)
		if card == nil {
			continue
		}
		name := uniqueFilename(vcard.Filename(*card), used)
		path := filepath.Join(splitDir, name)
		content := strings.TrimRight(block, "\r\n\t ") + "\r\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil { // nosemgrep
			return fmt.Errorf("could not write %s: %w", path, err)
		}
		logger.Debug("vCard written", zap.String("file", path), zap.String("id", card.ID))
		fmt.Fprintln(cmd.OutOrStdout(), path)
		count++
	}
	logger.Info("vCards split", zap.String("dir", splitDir), zap.Int("cards", count))
	return nil
}

// uniqueFilename appends -2, -3, ... to the base name until the name has not been used yet.
func uniqueFilename(name string, used map[string]bool) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	candidate := name
	for i := 2; used[candidate]; i++ {
		candidate = base + "-" + strconv.Itoa(i) + ext
	}
	used[candidate] = true
	return candidate
}
