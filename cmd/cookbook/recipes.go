package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pageza/healthy-cookbook/backend/internal/client"
	"github.com/pageza/healthy-cookbook/backend/internal/models"
	"github.com/pageza/healthy-cookbook/backend/internal/service"
)

func newRecipesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recipes",
		Aliases: []string{"recipe", "r"},
		Short:   "Browse and manage recipes",
	}
	cmd.AddCommand(
		newRecipeListCmd(a),
		newRecipeListingCmd(a, "featured", "Show featured recipes", false, (*client.Client).FeaturedRecipes),
		newRecipeListingCmd(a, "popular", "Show highly rated recipes", false, (*client.Client).PopularRecipes),
		newRecipeListingCmd(a, "mine", "Show your recipes, drafts included", true, (*client.Client).MyRecipes),
		newRecipeListingCmd(a, "favorites", "Show your favorite recipes", true, (*client.Client).FavoriteRecipes),
		newRecipeShowCmd(a),
		newRecipeCreateCmd(a),
		newRecipeUpdateCmd(a),
		newRecipeDeleteCmd(a),
		newRecipeRateCmd(a),
	)
	return cmd
}

// showList prints a listing. A failed listing still prints the empty table
// and the server's message before returning the error.
func (a *app) showList(cmd *cobra.Command, list *client.RecipeList, err error) error {
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), list.Message)
		return err
	}
	return a.render(cmd, list, func(w io.Writer) {
		recipeTable(w, list.Recipes)
		if p := list.Pagination; p != nil && p.Pages > 1 {
			fmt.Fprintf(w, "\nPage %d of %d (%d recipes)\n", p.Page, p.Pages, p.Total)
		}
	})
}

func newRecipeListCmd(a *app) *cobra.Command {
	var q service.RecipeQuery
	var tags string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Search published recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, t := range strings.Split(tags, ",") {
				if t = strings.TrimSpace(t); t != "" {
					q.DietaryTags = append(q.DietaryTags, t)
				}
			}
			list, err := a.api.ListRecipes(cmd.Context(), q)
			return a.showList(cmd, list, err)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&q.Search, "search", "s", "", "text search")
	f.StringVar(&q.Category, "category", "", "category id")
	f.StringVar(&q.Difficulty, "difficulty", "", "easy, medium or hard")
	f.IntVar(&q.MaxTime, "max-time", 0, "maximum total time in minutes")
	f.Float64Var(&q.MinRating, "min-rating", 0, "minimum average rating")
	f.StringVar(&tags, "tags", "", "comma separated dietary tags")
	f.StringVar(&q.SortBy, "sort", "", "sort field")
	f.StringVar(&q.SortOrder, "order", "", "asc or desc")
	f.IntVar(&q.Page, "page", 0, "page number")
	f.IntVar(&q.Limit, "limit", 0, "page size")
	return cmd
}

type listFunc func(*client.Client, context.Context) (*client.RecipeList, error)

func newRecipeListingCmd(a *app, use, short string, auth bool, list listFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if auth && !a.state.SignedIn() {
				return errNotSignedIn
			}
			res, err := list(a.api, cmd.Context())
			return a.showList(cmd, res, err)
		},
	}
}

func newRecipeShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.api.GetRecipe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(cmd, r, func(w io.Writer) { recipeDetail(w, r) })
		},
	}
}

// readRecipeInput loads a recipe from a JSON or YAML file. YAML keys use the
// same camelCase names as the API.
func readRecipeInput(path string) (service.RecipeInput, error) {
	var in service.RecipeInput
	raw, err := os.ReadFile(path)
	if err != nil {
		return in, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return in, json.Unmarshal(raw, &in)
	}
	var generic interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return in, fmt.Errorf("parse %s: %w", path, err)
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return in, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := json.Unmarshal(asJSON, &in); err != nil {
		return in, fmt.Errorf("parse %s: %w", path, err)
	}
	return in, nil
}

func newRecipeCreateCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a recipe from a JSON or YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.state.SignedIn() {
				return errNotSignedIn
			}
			in, err := readRecipeInput(file)
			if err != nil {
				return err
			}
			r, err := a.api.CreateRecipe(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.render(cmd, r, func(w io.Writer) {
				fmt.Fprintf(w, "Recipe created successfully: %s (%s)\n", r.Title, r.ID)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "recipe file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newRecipeUpdateCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a recipe with the fields present in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.state.SignedIn() {
				return errNotSignedIn
			}
			in, err := readRecipeInput(file)
			if err != nil {
				return err
			}
			r, err := a.api.UpdateRecipe(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			return a.render(cmd, r, func(w io.Writer) {
				fmt.Fprintf(w, "Recipe updated successfully: %s\n", r.Title)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "recipe file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newRecipeDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your recipes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.state.SignedIn() {
				return errNotSignedIn
			}
			if err := a.api.DeleteRecipe(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.state.SetFavorite(args[0], false)
			if err := a.save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Recipe deleted successfully")
			return nil
		},
	}
}

func newRecipeRateCmd(a *app) *cobra.Command {
	var comment string
	cmd := &cobra.Command{
		Use:   "rate <id> <1-5>",
		Short: "Rate a recipe",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.state.SignedIn() {
				return errNotSignedIn
			}
			value, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("rating must be a number between 1 and 5")
			}
			res, err := a.api.RateRecipe(cmd.Context(), args[0], value, comment)
			if err != nil {
				return err
			}
			return a.render(cmd, res, func(w io.Writer) {
				fmt.Fprintf(w, "Average rating is now %.1f from %d ratings\n", res.AverageRating, res.TotalRatings)
			})
		},
	}
	cmd.Flags().StringVarP(&comment, "comment", "c", "", "optional comment")
	return cmd
}

func newFavoriteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorite",
		Aliases: []string{"fav"},
		Short:   "Manage favorite recipes",
	}
	toggle := func(use, short string, call func(*client.Client, context.Context, string) (bool, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if !a.state.SignedIn() {
					return errNotSignedIn
				}
				fav, err := call(a.api, cmd.Context(), args[0])
				if err != nil {
					return err
				}
				a.state.SetFavorite(args[0], fav)
				if err := a.save(); err != nil {
					return err
				}
				state := "not a favorite"
				if fav {
					state = "a favorite"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recipe %s is %s.\n", args[0], state)
				return nil
			},
		}
	}
	cmd.AddCommand(
		toggle("add", "Add a recipe to favorites", (*client.Client).AddFavorite),
		toggle("remove", "Remove a recipe from favorites", (*client.Client).RemoveFavorite),
		toggle("check", "Check whether a recipe is a favorite", (*client.Client).IsFavorite),
	)
	return cmd
}

func newCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cats"},
		Short:   "List recipe categories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, msg, err := a.api.Categories(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), msg)
				return err
			}
			return a.render(cmd, cats, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tRECIPES\tDESCRIPTION")
				for _, c := range cats {
					fmt.Fprintf(w, "%s\t%s %s\t%d\t%s\n", c.ID, c.Icon, c.Name, c.RecipeCount, c.Description)
				}
			})
		},
	}
}

func newUserCmd(a *app) *cobra.Command {
	var showRecipes, showFavorites bool
	cmd := &cobra.Command{
		Use:   "user <username>",
		Short: "Show a user's public profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.api.PublicProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			switch {
			case showRecipes:
				list, err := a.api.UserRecipes(cmd.Context(), args[0], service.PageRequest{})
				return a.showList(cmd, list, err)
			case showFavorites:
				list, err := a.api.UserFavorites(cmd.Context(), args[0])
				return a.showList(cmd, list, err)
			}
			return a.render(cmd, p, func(w io.Writer) { profileText(w, p) })
		},
	}
	cmd.Flags().BoolVar(&showRecipes, "recipes", false, "list the user's published recipes")
	cmd.Flags().BoolVar(&showFavorites, "favorites", false, "list the user's favorite recipes")
	return cmd
}

func profileText(w io.Writer, p *models.PublicProfile) {
	fmt.Fprintf(w, "Username\t%s\n", p.Username)
	fmt.Fprintf(w, "Name\t%s\n", p.FullName)
	if p.Bio != "" {
		fmt.Fprintf(w, "Bio\t%s\n", p.Bio)
	}
	if len(p.DietaryPreferences) > 0 {
		fmt.Fprintf(w, "Diet\t%s\n", strings.Join(p.DietaryPreferences, ", "))
	}
	fmt.Fprintf(w, "Recipes\t%d\n", p.RecipeCount)
	fmt.Fprintf(w, "Member since\t%s\n", p.CreatedAt.Format("Jan 2006"))
}
