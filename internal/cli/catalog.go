package cli

import (
	"fmt"
	"strconv"

	"github.com/MarkoPoloResearchLab/storefront/pkg/storefront"
	"github.com/spf13/cobra"
)

func newCategoriesCommand(app *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := app.client.Categories.List(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(categories))
			for _, category := range categories {
				rows = append(rows, []string{category.ID, category.Emoji, category.Name})
			}
			return app.printer.emit(categories, []string{"ID", "", "NAME"}, rows)
		},
	}
}

func newProductsCommand(app *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalog",
	}

	var (
		params  storefront.ProductParams
		sortKey string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := storefront.ParseSortKey(sortKey)
			if err != nil {
				return err
			}
			params.Sort = parsed
			page, err := app.client.Products.List(cmd.Context(), params)
			if err != nil {
				return err
			}
			if err := app.printProducts(page.Products, page); err != nil {
				return err
			}
			if app.cfg.Output == outputTable {
				fmt.Fprintf(cmd.OutOrStdout(), "page %d, %d of %d products\n", page.Page, len(page.Products), page.Total)
			}
			return nil
		},
	}
	list.Flags().StringVar(&params.Category, "category", "", "category id")
	list.Flags().StringVar(&params.Search, "search", "", "search text")
	list.Flags().StringVar(&sortKey, "sort", "", "sort: default, price_asc, price_desc, rating, discount, newest")
	list.Flags().IntVar(&params.Page, "page", 0, "page number")
	list.Flags().IntVar(&params.PerPage, "per-page", 0, "page size")

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show a product with its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := storefront.NewProductID(args[0])
			if err != nil {
				return err
			}
			product, err := app.client.Products.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return app.printProduct(product)
		},
	}

	featured := &cobra.Command{
		Use:   "featured",
		Short: "List featured deals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := app.client.Products.Featured(cmd.Context())
			if err != nil {
				return err
			}
			return app.printProducts(products, products)
		},
	}

	trending := &cobra.Command{
		Use:   "trending",
		Short: "List trending products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := app.client.Products.Trending(cmd.Context())
			if err != nil {
				return err
			}
			return app.printProducts(products, products)
		},
	}

	var (
		rating  int
		comment string
	)
	review := &cobra.Command{
		Use:   "review ID",
		Short: "Review a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			id, err := storefront.NewProductID(args[0])
			if err != nil {
				return err
			}
			score, err := storefront.NewRating(rating)
			if err != nil {
				return err
			}
			created, err := app.client.Products.AddReview(cmd.Context(), id, score, comment)
			if err != nil {
				return err
			}
			return app.printer.emit(created, nil, [][]string{{"Review added:", strconv.Itoa(created.Rating) + "/5", created.Comment}})
		},
	}
	review.Flags().IntVar(&rating, "rating", 0, "score from 1 to 5 (required)")
	review.Flags().StringVar(&comment, "comment", "", "review text")
	_ = review.MarkFlagRequired("rating")

	cmd.AddCommand(list, show, featured, trending, review)
	return cmd
}

func (app *runtime) printProducts(products []storefront.Product, value any) error {
	rows := make([][]string, 0, len(products))
	for _, product := range products {
		rows = append(rows, []string{
			product.ID,
			product.Emoji + " " + product.Name,
			product.Weight,
			money(product.Price),
			money(product.MRP),
			itoa(product.Discount) + "%",
			fmt.Sprintf("%.1f (%d)", product.Rating, product.ReviewCount),
			itoa(product.Stock),
		})
	}
	return app.printer.emit(value, []string{"ID", "PRODUCT", "WEIGHT", "PRICE", "MRP", "OFF", "RATING", "STOCK"}, rows)
}

func (app *runtime) printProduct(product storefront.Product) error {
	if app.cfg.Output == outputJSON {
		return app.printer.emit(product, nil, nil)
	}
	category := product.CategoryID
	if product.Category != nil {
		category = product.Category.Name
	}
	if err := app.printer.fields(product,
		[2]string{"ID", product.ID},
		[2]string{"Name", product.Emoji + " " + product.Name},
		[2]string{"Brand", product.Brand},
		[2]string{"Category", category},
		[2]string{"Weight", product.Weight},
		[2]string{"Price", money(product.Price) + " (MRP " + money(product.MRP) + ", " + itoa(product.Discount) + "% off)"},
		[2]string{"Stock", itoa(product.Stock)},
		[2]string{"Rating", fmt.Sprintf("%.1f from %d reviews", product.Rating, product.ReviewCount)},
		[2]string{"About", product.Description},
	); err != nil {
		return err
	}
	if len(product.Reviews) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(product.Reviews))
	for _, review := range product.Reviews {
		rows = append(rows, []string{review.UserName, strconv.Itoa(review.Rating) + "/5", review.Comment})
	}
	return app.printer.emit(product.Reviews, []string{"REVIEWER", "RATING", "COMMENT"}, rows)
}
