package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/bikeyard/internal/domain"
)

// runCLI runs the root command against the example catalog file.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("BIKEYARD_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("BIKEYARD_CATALOG_FILE", filepath.Join("..", "..", "configs", "catalog.example.yaml"))
	t.Setenv("BIKEYARD_LOG_LEVEL", "error")
	t.Setenv("BIKEYARD_PRETTY_LOG", "false")

	// Flag variables outlive a run.
	catalogQuery, catalogCategory, catalogSort, catalogJSON = "", domain.CategoryAll, string(domain.SortFeatured), false
	catalogTimeout = 30 * time.Second

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCatalogCommandJSON(t *testing.T) {
	out, err := runCLI(t, "catalog", "--q", "HELMET", "--json")
	if err != nil {
		t.Fatalf("catalog command failed: %v", err)
	}

	var view struct {
		State string `json:"state"`
		Items []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"items"`
		TotalCount int `json:"totalCount"`
	}
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if view.State != "ready" {
		t.Errorf("state = %q, want ready", view.State)
	}
	if view.TotalCount != 8 {
		t.Errorf("totalCount = %d, want 8", view.TotalCount)
	}
	if len(view.Items) != 1 || view.Items[0].Title != "Premium Bike Helmet" {
		t.Errorf("items = %+v, want only the helmet", view.Items)
	}
}

func TestCatalogCommandTable(t *testing.T) {
	out, err := runCLI(t, "catalog", "--category", "Clothing", "--sort", "price-low")
	if err != nil {
		t.Fatalf("catalog command failed: %v", err)
	}

	if !strings.Contains(out, "Showing 2 of 8 products") {
		t.Errorf("missing count line:\n%s", out)
	}
	shorts := strings.Index(out, "Cycling Shorts")
	jersey := strings.Index(out, "Cycling Jersey Pro")
	if shorts < 0 || jersey < 0 || shorts > jersey {
		t.Errorf("want shorts ($59.99) before jersey ($79.99):\n%s", out)
	}
	if !strings.Contains(out, "$59.99") {
		t.Errorf("missing fixed-point price:\n%s", out)
	}
}

func TestCatalogCommandNoMatch(t *testing.T) {
	out, err := runCLI(t, "catalog", "--q", "unicycle")
	if err != nil {
		t.Fatalf("catalog command failed: %v", err)
	}
	if !strings.Contains(out, "No products found") {
		t.Errorf("missing empty state:\n%s", out)
	}
}

func TestCatalogCommandUnknownSort(t *testing.T) {
	_, err := runCLI(t, "catalog", "--sort", "cheapest")
	if !errors.Is(err, domain.ErrUnknownSortKey) {
		t.Errorf("err = %v, want ErrUnknownSortKey", err)
	}
}

func TestCatalogCommandMissingFile(t *testing.T) {
	_, err := runCLI(t, "catalog")
	if err != nil {
		t.Fatalf("sanity run failed: %v", err)
	}

	t.Setenv("BIKEYARD_CATALOG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"catalog"})
	err = rootCmd.ExecuteContext(context.Background())

	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *domain.FetchError", err)
	}
	if !errors.Is(err, domain.ErrStoreNotFound) {
		t.Errorf("err = %v, want ErrStoreNotFound", err)
	}
}
