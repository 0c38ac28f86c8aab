package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pageza/healthy-cookbook/backend/internal/planner"
)

func newPlanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan meals for the week",
	}
	cmd.AddCommand(newPlanShowCmd(a), newPlanAddCmd(a), newPlanRemoveCmd(a), newPlanClearCmd(a))
	return cmd
}

type planView struct {
	Week         string             `json:"week"`
	Dates        []string           `json:"dates"`
	Meals        planner.Plan       `json:"meals"`
	Daily        map[string]float64 `json:"dailyCalories"`
	WeeklyTotal  float64            `json:"weeklyCalories"`
	DailyAverage float64            `json:"dailyAverage"`
}

func newPlanShowCmd(a *app) *cobra.Command {
	var offset int
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the meal plan and calorie totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan := a.state.MealPlan
			week := planner.ShiftWeek(time.Now(), offset)
			dates := planner.WeekDates(week)

			view := planView{
				Week:        planner.WeekLabel(week),
				Meals:       plan,
				Daily:       map[string]float64{},
				WeeklyTotal: plan.WeeklyCalories(),
			}
			for i, d := range planner.Days {
				view.Dates = append(view.Dates, dates[i].Format("2006-01-02"))
				view.Daily[d] = plan.DayCalories(d)
			}
			view.DailyAverage = view.WeeklyTotal / float64(len(planner.Days))

			return a.render(cmd, view, func(w io.Writer) {
				fmt.Fprintln(w, view.Week)
				fmt.Fprintln(w)
				title := cases.Title(language.English)
				header := []string{"Day"}
				for _, m := range planner.MealTypes {
					header = append(header, title.String(m))
				}
				fmt.Fprintln(w, strings.Join(append(header, "Calories"), "\t"))
				for i, d := range planner.Days {
					row := []string{fmt.Sprintf("%s %s", d[:3], dates[i].Format("Jan 2"))}
					for _, m := range planner.MealTypes {
						cell := "-"
						if e, ok := plan.Get(d, m); ok {
							cell = e.Title
						}
						row = append(row, cell)
					}
					row = append(row, fmt.Sprintf("%.0f", view.Daily[d]))
					fmt.Fprintln(w, strings.Join(row, "\t"))
				}
				fmt.Fprintf(w, "\nWeekly total\t%.0f calories\n", view.WeeklyTotal)
				fmt.Fprintf(w, "Daily average\t%.0f calories\n", view.DailyAverage)
			})
		},
	}
	cmd.Flags().IntVar(&offset, "week", 0, "weeks from the current one, e.g. -1 or 1")
	return cmd
}

func newPlanAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <day> <meal> <recipe-id>",
		Short: "Put a recipe in a meal slot",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := planner.Key(args[0], args[1])
			if err != nil {
				return err
			}
			r, err := a.api.GetRecipe(cmd.Context(), args[2])
			if err != nil {
				return err
			}
			if err := a.state.MealPlan.Add(args[0], args[1], planner.EntryFromRecipe(r.Recipe)); err != nil {
				return err
			}
			if err := a.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Planned %s for %s.\n", r.Title, key)
			return nil
		},
	}
}

func newPlanRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <day> <meal>",
		Short: "Clear a meal slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := a.state.MealPlan.Remove(args[0], args[1])
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing planned there.")
				return nil
			}
			if err := a.save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed.")
			return nil
		},
	}
}

func newPlanClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the whole meal plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.state.MealPlan = planner.Plan{}
			if err := a.save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Meal plan cleared.")
			return nil
		},
	}
}
