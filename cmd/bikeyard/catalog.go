package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/bikeyard/internal/app"
	"github.com/MrSnakeDoc/bikeyard/internal/catalog"
	"github.com/MrSnakeDoc/bikeyard/internal/config"
	"github.com/MrSnakeDoc/bikeyard/internal/domain"
	"github.com/MrSnakeDoc/bikeyard/internal/logger"
)

var (
	catalogQuery    string
	catalogCategory string
	catalogSort     string
	catalogJSON     bool
	catalogTimeout  time.Duration
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	saleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	newStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	noteStyle  = lipgloss.NewStyle().Faint(true)
)

// catalogCmd fetches the catalog once and prints the derived list
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Fetch the catalog once and print the filtered, sorted list",
	Long: `Fetch the catalog from the configured source (Shopify or BIKEYARD_CATALOG_FILE),
apply the search, category and sort controls, and print the result.

Examples:
  bikeyard catalog --q helmet
  bikeyard catalog --category "Mountain Bikes" --sort price-low
  bikeyard catalog --sort rating --json`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().StringVar(&catalogQuery, "q", "", "search term (title, category, tags)")
	catalogCmd.Flags().StringVar(&catalogCategory, "category", domain.CategoryAll, "exact category, or All")
	catalogCmd.Flags().StringVar(&catalogSort, "sort", string(domain.SortFeatured), "featured, price-low, price-high, rating or newest")
	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "print the view as JSON")
	catalogCmd.Flags().DurationVar(&catalogTimeout, "timeout", 30*time.Second, "fetch timeout")
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	sortKey, err := domain.ParseSortKey(catalogSort)
	if err != nil {
		return err
	}

	cfg := config.Load()
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = loggerClient.Sync() }()

	src, _ := app.NewSource(cfg, loggerClient)

	ctx, cancel := context.WithTimeout(commandContext(cmd), catalogTimeout)
	defer cancel()

	m := catalog.New(src)
	defer m.Close()

	if err := m.Load(ctx); err != nil {
		var fe *domain.FetchError
		if errors.As(err, &fe) && fe.Guidance != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "💡 "+fe.Guidance)
		}
		return err
	}
	if err := m.Apply(domain.Query{SearchTerm: catalogQuery, Category: catalogCategory, SortKey: sortKey}); err != nil {
		return err
	}

	v := m.Snapshot()
	if catalogJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return printView(cmd.OutOrStdout(), v)
}

func printView(out io.Writer, v catalog.View) error {
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Showing %d of %d products", v.ResultCount, v.TotalCount)))
	if v.SortFallback != "" {
		fmt.Fprintln(out, noteStyle.Render(v.SortFallback))
	}
	if v.Empty {
		fmt.Fprintln(out, "No products found")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tPRICE\tRATING\t")
	for _, it := range v.Items {
		rating := "-"
		if it.Rating != nil {
			rating = fmt.Sprintf("%.1f (%d)", *it.Rating, it.Reviews)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t$%s\t%s\t%s\n",
			it.ID, it.Title, it.Category, it.Price.StringFixed(2), rating, badges(it))
	}
	return tw.Flush()
}

func badges(it *domain.CatalogItem) string {
	var parts []string
	if it.OnSale() {
		parts = append(parts, saleStyle.Render("SALE was $"+it.ComparePrice.StringFixed(2)))
	}
	if it.IsNew() {
		parts = append(parts, newStyle.Render("NEW"))
	}
	if !it.Available {
		parts = append(parts, noteStyle.Render("out of stock"))
	}
	return strings.Join(parts, " ")
}
