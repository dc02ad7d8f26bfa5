package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/pageza/hansik/backend/internal/scraper"
)

const defaultRecipeURL = "https://chef-choice.tistory.com/760"

var appendPath string

var rootCmd = &cobra.Command{
	Use:   "scrape [url]",
	Short: "Extract a recipe from a web page's JSON-LD data",
	Long: "Fetches one page, reads its application/ld+json structured data and prints the " +
		"Recipe entry as indented JSON. With --append the recipe is also added to a recipes CSV.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := defaultRecipeURL
		if len(args) == 1 {
			url = args[0]
		}

		recipe := scraper.Scrape(cmd.Context(), url)
		if recipe == nil {
			return nil
		}

		out, err := json.MarshalIndent(recipe, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		if appendPath != "" {
			if err := scraper.AppendCSV(appendPath, recipe); err != nil {
				return err
			}
			log.Printf("Appended %q to %s", recipe.Name, appendPath)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&appendPath, "append", "", "also append the recipe to this CSV file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
