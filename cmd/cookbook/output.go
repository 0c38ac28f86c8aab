package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/pageza/healthy-cookbook/backend/internal/models"
)

// render prints v in the selected format. text is used for the text format.
func (a *app) render(cmd *cobra.Command, v interface{}, text func(w io.Writer)) error {
	out := cmd.OutOrStdout()
	switch a.format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// go through JSON so field names match the API
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic interface{}
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(generic)
	case "text", "":
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		text(tw)
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", a.format)
	}
}

func recipeTable(w io.Writer, recipes []models.RecipeView) {
	if len(recipes) == 0 {
		fmt.Fprintln(w, "No recipes found.")
		return
	}
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tTIME\tRATING\tHEALTH")
	for _, r := range recipes {
		category := ""
		if r.Category != nil {
			category = r.Category.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%dm\t%.1f (%d)\t%d\n",
			r.ID, r.Title, category, r.TotalTime, r.AverageRating, r.TotalRatings, r.HealthScore)
	}
}

func recipeDetail(w io.Writer, r *models.RecipeView) {
	fmt.Fprintf(w, "%s\n%s\n\n", r.Title, r.Description)
	if r.Author != nil {
		fmt.Fprintf(w, "By\t%s\n", r.Author.Username)
	}
	if r.Category != nil {
		fmt.Fprintf(w, "Category\t%s %s\n", r.Category.Icon, r.Category.Name)
	}
	fmt.Fprintf(w, "Time\t%d min prep, %d min cook\n", r.PrepTime, r.CookTime)
	fmt.Fprintf(w, "Servings\t%d\n", r.Servings)
	fmt.Fprintf(w, "Difficulty\t%s\n", cases.Title(language.English).String(r.Difficulty))
	fmt.Fprintf(w, "Rating\t%.1f from %d ratings\n", r.AverageRating, r.TotalRatings)
	fmt.Fprintf(w, "Health score\t%d\n", r.HealthScore)
	if len(r.DietaryTags) > 0 {
		fmt.Fprintf(w, "Tags\t%s\n", strings.Join(r.DietaryTags, ", "))
	}
	if r.Nutrition != nil {
		fmt.Fprintf(w, "Calories\t%.0f\n", r.Nutrition.Calories)
	}
	if r.IsFavorite != nil && *r.IsFavorite {
		fmt.Fprintln(w, "Favorite\tyes")
	}

	fmt.Fprintln(w, "\nIngredients:")
	for _, in := range r.Ingredients {
		line := fmt.Sprintf("  - %g %s %s", in.Amount, in.Unit, in.Name)
		if in.Notes != "" {
			line += " (" + in.Notes + ")"
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, "\nInstructions:")
	for _, step := range r.Instructions {
		fmt.Fprintf(w, "  %d. %s\n", step.StepNumber, step.Instruction)
	}
}
