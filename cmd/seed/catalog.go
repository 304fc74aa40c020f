package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"storefront/internal/model"
	"storefront/internal/service"
)

var (
	// Catalog flags
	catalogFile string
)

// catalogCmd imports a catalog file
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Import categories and products from a YAML file",
	Long: `Import categories and products from a YAML file. Categories are matched by
name and products by (category, name); matches are updated, the rest created.

Example file:
  categories:
    - name: Drinks
      products:
        - name: Green Tea
          price: "4.50"
          quantity: 40
          man_date: 2024-03-01
          description: Loose leaf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(catalogFile)
		if err != nil {
			return fmt.Errorf("read catalog file %s: %w", catalogFile, err)
		}
		seeds, err := parseCatalog(data)
		if err != nil {
			return err
		}

		e, err := connect(!noMigrate)
		if err != nil {
			return err
		}
		defer e.close()

		stats, err := e.catalogService().ImportCatalog(cmd.Context(), seeds)
		if err != nil {
			return fmt.Errorf("import catalog: %w", err)
		}
		log.Info().
			Int("categories_created", stats.CategoriesCreated).
			Int("products_created", stats.ProductsCreated).
			Int("products_updated", stats.ProductsUpdated).
			Msg("catalog imported")
		return nil
	},
}

func init() {
	catalogCmd.Flags().StringVarP(&catalogFile, "file", "f", "catalog.yaml", "Catalog file to import")
	rootCmd.AddCommand(catalogCmd)
}

// catalogFileSpec is the layout of a catalog file.
type catalogFileSpec struct {
	Categories []struct {
		Name     string `yaml:"name"`
		Products []struct {
			Name        string `yaml:"name"`
			Price       string `yaml:"price"`
			Description string `yaml:"description"`
			Quantity    int    `yaml:"quantity"`
			ManDate     string `yaml:"man_date"`
		} `yaml:"products"`
	} `yaml:"categories"`
}

// parseCatalog decodes a catalog file into import seeds.
func parseCatalog(data []byte) ([]service.CategorySeed, error) {
	var spec catalogFileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}

	seeds := make([]service.CategorySeed, 0, len(spec.Categories))
	for i, c := range spec.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("category #%d: name is required", i+1)
		}
		seed := service.CategorySeed{Name: name, Products: make([]service.ProductInput, 0, len(c.Products))}
		for _, p := range c.Products {
			price, err := decimal.NewFromString(strings.TrimSpace(p.Price))
			if err != nil {
				return nil, fmt.Errorf("%s/%s: price %q is not a number", name, p.Name, p.Price)
			}
			made, err := time.Parse(model.DateLayout, strings.TrimSpace(p.ManDate))
			if err != nil {
				return nil, fmt.Errorf("%s/%s: man_date %q is not a YYYY-MM-DD date", name, p.Name, p.ManDate)
			}
			seed.Products = append(seed.Products, service.ProductInput{
				Name:           p.Name,
				Price:          price,
				Description:    p.Description,
				Quantity:       p.Quantity,
				ManufacturedOn: made,
			})
		}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}
