// Smart Retail CLI - fashion price prediction from the shell.
//
// Usage:
//
//	retail predict --name "Slim Fit Jeans" --brand levis --category jeans
//	retail predict --input product.json --explain
//	retail classify --input product.json
//	retail trends --season winter
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"smart-retail/internal/classify"
	"smart-retail/internal/features"
	"smart-retail/internal/registry"
	"smart-retail/internal/service"
	"smart-retail/internal/trends"
	"smart-retail/pkg/api"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	app := &cli.App{
		Name:    "retail",
		Usage:   "Fashion price prediction and explanation",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "artifacts",
				Value:   "artifacts",
				Usage:   "Model artifacts directory",
				EnvVars: []string{"SMART_RETAIL_ARTIFACTS_DIR"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"SMART_RETAIL_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
			return nil
		},
		Commands: []*cli.Command{
			predictCommand(),
			classifyCommand(),
			trendsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func productFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "input", Usage: "Product description JSON file (overrides field flags)"},
		&cli.StringFlag{Name: "name", Usage: "Product name"},
		&cli.StringFlag{Name: "brand", Usage: "Brand"},
		&cli.StringFlag{Name: "gender", Usage: "Target gender"},
		&cli.StringFlag{Name: "category", Usage: "Product category"},
		&cli.StringFlag{Name: "fabric", Usage: "Fabric type"},
		&cli.StringFlag{Name: "pattern", Usage: "Pattern type"},
		&cli.StringFlag{Name: "color", Usage: "Color"},
		&cli.IntFlag{Name: "rating-count", Usage: "Number of ratings"},
		&cli.Float64Flag{Name: "discount", Usage: "Discount percentage"},
	}
}

func readProduct(c *cli.Context) (api.ProductDescription, error) {
	if path := c.String("input"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return api.ProductDescription{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
		var desc api.ProductDescription
		if err := json.Unmarshal(data, &desc); err != nil {
			return api.ProductDescription{}, fmt.Errorf("invalid product JSON: %w", err)
		}
		return desc, nil
	}
	return api.ProductDescription{
		ProductName:     c.String("name"),
		Brand:           c.String("brand"),
		Gender:          c.String("gender"),
		Category:        c.String("category"),
		Fabric:          c.String("fabric"),
		Pattern:         c.String("pattern"),
		Color:           c.String("color"),
		RatingCount:     c.Int("rating-count"),
		DiscountPercent: c.Float64("discount"),
	}, nil
}

func predictCommand() *cli.Command {
	return &cli.Command{
		Name:  "predict",
		Usage: "Predict the retail price of a described product",
		Flags: append(productFlags(),
			&cli.BoolFlag{Name: "explain", Usage: "Include the rule-based explanation"},
		),
		Action: func(c *cli.Context) error {
			desc, err := readProduct(c)
			if err != nil {
				return err
			}

			handle := registry.NewHandle(registry.Load(c.String("artifacts")))
			svc := service.New(handle)

			if c.Bool("explain") {
				result, explanation, err := svc.PredictWithExplanation(desc)
				if err != nil {
					return err
				}
				return printJSON(map[string]any{
					"prediction":  result,
					"explanation": explanation,
				})
			}

			result, err := svc.Predict(desc)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
}

func classifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "classify",
		Usage: "Show the product-type bucket and detected signals",
		Flags: productFlags(),
		Action: func(c *cli.Context) error {
			desc, err := readProduct(c)
			if err != nil {
				return err
			}

			rec := features.NewExtractor(nil).Extract(desc)
			bucket := classify.New().Classify(rec)

			return printJSON(map[string]any{
				"product_type":   bucket,
				"jewelry_signal": rec.JewelrySignal,
				"watch_signal":   rec.WatchSignal,
				"luxury_signal":  rec.LuxurySignal,
				"material_tier":  rec.MaterialTier,
				"prestige_tier":  rec.PrestigeTier,
				"brand_prestige": rec.BrandPrestige,
			})
		},
	}
}

func trendsCommand() *cli.Command {
	return &cli.Command{
		Name:  "trends",
		Usage: "Print the current fashion trend report",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "season", Usage: "Season to report (spring, summer, fall, winter)"},
			&cli.StringFlag{Name: "category", Value: "all", Usage: "Style category filter"},
		},
		Action: func(c *cli.Context) error {
			analyzer := trends.New()
			return printJSON(map[string]any{
				"trending_colors": analyzer.TrendingColors(),
				"trending_styles": analyzer.TrendingStyles(c.String("category")),
				"seasonal_trends": analyzer.Seasonal(c.String("season")),
			})
		},
	}
}

func printJSON(data any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
