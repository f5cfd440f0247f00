// Command lendis walks a flat binary file and prints the length the
// decoder assigns to each instruction it finds, the way dis68 walked
// M68K object code one word at a time.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nullterm/bridgebuilder/decoder"
)

var stopOnUnrelocatable bool

var rootCmd = &cobra.Command{
	Use:   "lendis <file>",
	Short: "Print per-instruction lengths for a flat x86 code dump",
	Args:  cobra.ExactArgs(1),
	RunE:  runLendis,
}

func init() {
	rootCmd.Flags().BoolVar(&stopOnUnrelocatable, "stop-on-unrelocatable", false,
		"report PC-relative opcodes as unrelocatable instead of reporting their length")
}

func runLendis(cmd *cobra.Command, args []string) error {
	code, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	offset := 0
	for offset < len(code) {
		cursor := decoder.NewCursor(code[offset:])
		result := decoder.Decode(cursor, stopOnUnrelocatable)

		switch {
		case result.IsUndecodable():
			fmt.Printf("%06X: %02X            undecodable\n", offset, code[offset])
			offset++
		case result.IsUnrelocatable():
			fmt.Printf("%06X: %02X            unrelocatable\n", offset, code[offset])
			offset++
		default:
			n, _ := result.Length()
			fmt.Printf("%06X: % -12X %d\n", offset, code[offset:offset+n], n)
			offset += n
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
