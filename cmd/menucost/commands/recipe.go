package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/menucost/engine/internal/costing"
	"github.com/menucost/engine/internal/store"
)

var recipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Cost and margin-check recipes",
}

var recipeCalculateCmd = &cobra.Command{
	Use:   "calculate <slug...>",
	Short: "Cost and margin-check one or more recipes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecipeCalculate(cmd, args)
	},
}

var recipeReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a cost breakdown report across every recipe",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecipeReport(cmd)
	},
}

func init() {
	recipeCmd.AddCommand(recipeCalculateCmd, recipeReportCmd)
	rootCmd.AddCommand(recipeCmd)
}

func runRecipeCalculate(cmd *cobra.Command, slugs []string) error {
	a := current
	failed := 0

	for _, slug := range slugs {
		result, err := a.engine.Cost(cmd.Context(), slug)
		if err != nil {
			fmt.Printf("%s: %v\n", slug, err)
			failed++
			continue
		}
		margin := a.engine.Margin(result)
		printCostBreakdown(slug, result, margin)
	}

	if failed > 0 {
		return withCode(ExitInputInvalid, fmt.Errorf("%d recipe(s) failed to cost", failed))
	}
	return nil
}

func runRecipeReport(cmd *cobra.Command) error {
	a := current
	st := store.New(a.pool)

	recipes, err := st.ListRecipes(cmd.Context(), store.RecipeListFilter{})
	if err != nil {
		return withCode(ExitRuntimeFailure, err)
	}

	fmt.Printf("%-24s %10s %10s %8s %10s %s\n", "SLUG", "COST", "PRICE", "MARGIN", "TARGET", "STATUS")
	for _, r := range recipes {
		result, err := a.engine.Cost(cmd.Context(), r.Slug)
		if err != nil {
			fmt.Printf("%-24s error: %v\n", r.Slug, err)
			continue
		}
		margin := a.engine.Margin(result)
		status := "OK"
		if !margin.MeetsTarget {
			status = "BELOW TARGET"
		}
		fmt.Printf("%-24s %10d %10d %7s%% %9s%% %s\n",
			r.Slug, margin.Cost, margin.CustomerPrice, margin.ActualMargin.StringFixed(2), margin.TargetMargin.StringFixed(2), status)
	}

	return nil
}

func printCostBreakdown(slug string, result costing.CostResult, margin costing.MarginResult) {
	fmt.Printf("%s (%s)\n", result.Recipe.Name, slug)
	printCostTree(result.Tree, 1)
	fmt.Printf("  total cost:      %d\n", result.TotalCost)
	fmt.Printf("  sell price:      %d (%s VAT)\n", margin.CustomerPrice, vatLabel(margin.VatApplicable))
	fmt.Printf("  profit:          %d\n", margin.Profit)
	fmt.Printf("  actual margin:   %s%%\n", margin.ActualMargin.StringFixed(2))
	fmt.Printf("  target margin:   %s%%\n", margin.TargetMargin.StringFixed(2))
	if margin.MeetsTarget {
		fmt.Println("  status:          meets target")
	} else {
		fmt.Printf("  status:          below target by %s%%\n", margin.MarginDelta.Abs().StringFixed(2))
	}
	fmt.Println()
}

func printCostTree(nodes []costing.CostTreeNode, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	for _, n := range nodes {
		fmt.Printf("%s%s: %s %s -> %d\n", indent, n.Kind, n.Amount.String(), n.Unit, n.Cost)
		if len(n.Children) > 0 {
			printCostTree(n.Children, depth+1)
		}
	}
}

func vatLabel(applicable bool) string {
	if applicable {
		return "incl."
	}
	return "excl."
}
