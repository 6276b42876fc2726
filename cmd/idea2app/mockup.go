package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"idea2app/internal/mockup"
)

var mockupCmd = &cobra.Command{
	Use:   "mockup",
	Short: "Mockup reconstruction tools",
}

var mockupParseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Reconstruct pages from stored mockup content",
	Long: `Reads markdown with embedded JSON blocks, a patch stream, or legacy
content and prints the reconstructed pages as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runMockupParse,
}

var mockupValidate bool

func init() {
	rootCmd.AddCommand(mockupCmd)
	mockupCmd.AddCommand(mockupParseCmd)

	mockupParseCmd.Flags().BoolVar(&mockupValidate, "validate", false, "Report catalog violations on stderr")
}

func runMockupParse(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	catalog := mockup.DefaultCatalog()
	res := mockup.Parse(string(raw), catalog)

	if mockupValidate {
		for _, page := range res.Pages {
			for _, issue := range page.Spec.Validate(catalog) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", page.Title, issue)
			}
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
