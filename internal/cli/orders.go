package cli

import (
	"fmt"
	"strings"

	"github.com/MarkoPoloResearchLab/storefront/pkg/storefront"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newOrdersCommand(app *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "View your orders",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List your orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			orders, err := app.client.Orders.List(cmd.Context())
			if err != nil {
				return err
			}
			return app.printOrders(orders)
		},
	}
	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			order, err := app.client.Orders.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return app.printOrder(order)
		},
	}
	cmd.AddCommand(list, show)
	return cmd
}

func newAdminCommand(app *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Store administration",
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			figures, err := app.client.Admin.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if app.cfg.Output == outputJSON {
				return app.printer.emit(figures, nil, nil)
			}
			pairs := [][2]string{
				{"Users", itoa(figures.Users)},
				{"Orders", itoa(figures.Orders)},
				{"Revenue", money(figures.Revenue)},
				{"Products", itoa(figures.Products)},
			}
			for _, count := range figures.OrdersByStatus {
				pairs = append(pairs, [2]string{"  " + count.Status.String(), itoa(count.Count)})
			}
			for _, top := range figures.TopProducts {
				pairs = append(pairs, [2]string{"Top seller", fmt.Sprintf("%s %s (%d sold)", top.Emoji, top.Name, top.Sold)})
			}
			return app.printer.fields(figures, pairs...)
		},
	}

	var search string
	users := &cobra.Command{
		Use:   "users",
		Short: "List customers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			all, err := app.client.Admin.Users(cmd.Context())
			if err != nil {
				return err
			}
			matched := filterUsers(all, search)
			rows := make([][]string, 0, len(matched))
			for _, user := range matched {
				rows = append(rows, []string{user.ID, user.Name, user.Email, user.Phone, string(user.Role), user.CreatedAt})
			}
			return app.printer.emit(matched, []string{"ID", "NAME", "EMAIL", "PHONE", "ROLE", "JOINED"}, rows)
		},
	}
	users.Flags().StringVar(&search, "search", "", "filter by name or email")

	cmd.AddCommand(stats, users, newAdminProductsCommand(app), newAdminOrdersCommand(app))
	return cmd
}

// filterUsers keeps users whose name or email contains query, ignoring case.
func filterUsers(users []storefront.User, query string) []storefront.User {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return users
	}
	matched := make([]storefront.User, 0, len(users))
	for _, user := range users {
		if strings.Contains(strings.ToLower(user.Name), needle) || strings.Contains(strings.ToLower(user.Email), needle) {
			matched = append(matched, user)
		}
	}
	return matched
}

func newAdminProductsCommand(app *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every product, including inactive ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			products, err := app.client.Admin.Products.List(cmd.Context())
			if err != nil {
				return err
			}
			return app.printProducts(products, products)
		},
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			input, err := productInputFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			product, err := app.client.Admin.Products.Add(cmd.Context(), input)
			if err != nil {
				return err
			}
			return app.printProduct(product)
		},
	}
	registerProductFlags(add.Flags())

	update := &cobra.Command{
		Use:   "update ID",
		Short: "Change a product; only the given flags are sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			id, err := storefront.NewProductID(args[0])
			if err != nil {
				return err
			}
			input, err := productInputFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			product, err := app.client.Admin.Products.Update(cmd.Context(), id, input)
			if err != nil {
				return err
			}
			return app.printProduct(product)
		},
	}
	registerProductFlags(update.Flags())

	remove := &cobra.Command{
		Use:   "delete ID",
		Short: "Deactivate a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			id, err := storefront.NewProductID(args[0])
			if err != nil {
				return err
			}
			if err := app.client.Admin.Products.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return app.printer.message("Product deactivated")
		},
	}

	cmd.AddCommand(list, add, update, remove)
	return cmd
}

func registerProductFlags(flags *pflag.FlagSet) {
	flags.String("name", "", "product name")
	flags.String("description", "", "description")
	flags.String("category", "", "category id")
	flags.String("emoji", "", "display emoji")
	flags.String("brand", "", "brand")
	flags.String("weight", "", "pack size, e.g. 500g")
	flags.String("price", "", "selling price")
	flags.String("mrp", "", "maximum retail price")
	flags.Int("discount", 0, "discount percent")
	flags.Int("stock", 0, "units in stock")
	flags.Bool("active", true, "list the product in the catalog")
}

// productInputFromFlags sends only the flags the user set.
func productInputFromFlags(flags *pflag.FlagSet) (storefront.ProductInput, error) {
	var input storefront.ProductInput
	text := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		value, _ := flags.GetString(name)
		return &value
	}
	input.Name = text("name")
	input.Description = text("description")
	input.CategoryID = text("category")
	input.Emoji = text("emoji")
	input.Brand = text("brand")
	input.Weight = text("weight")

	for name, target := range map[string]**decimal.Decimal{"price": &input.Price, "mrp": &input.MRP} {
		raw := text(name)
		if raw == nil {
			continue
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(*raw))
		if err != nil {
			return storefront.ProductInput{}, fmt.Errorf("%s: %w", name, err)
		}
		*target = &amount
	}
	for name, target := range map[string]**int{"discount": &input.Discount, "stock": &input.Stock} {
		if !flags.Changed(name) {
			continue
		}
		value, _ := flags.GetInt(name)
		*target = &value
	}
	if flags.Changed("active") {
		active, _ := flags.GetBool("active")
		input.IsActive = &active
	}
	return input, nil
}

func newAdminOrdersCommand(app *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Manage orders",
	}

	var statusFilter string
	list := &cobra.Command{
		Use:   "list",
		Short: "List all orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			var status storefront.OrderStatus
			if strings.TrimSpace(statusFilter) != "" {
				parsed, err := storefront.ParseOrderStatus(statusFilter)
				if err != nil {
					return err
				}
				status = parsed
			}
			orders, err := app.client.Admin.Orders.List(cmd.Context(), status)
			if err != nil {
				return err
			}
			return app.printOrders(orders)
		},
	}
	list.Flags().StringVar(&statusFilter, "status", "", "only orders in this status")

	status := &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Move an order to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			parsed, err := storefront.ParseOrderStatus(args[1])
			if err != nil {
				return err
			}
			if err := app.client.Admin.Orders.UpdateStatus(cmd.Context(), args[0], parsed); err != nil {
				return err
			}
			return app.printer.message("Order " + args[0] + " is now " + parsed.String())
		},
	}

	cmd.AddCommand(list, status)
	return cmd
}

func (app *runtime) printOrders(orders []storefront.Order) error {
	rows := make([][]string, 0, len(orders))
	for _, order := range orders {
		rows = append(rows, []string{order.ID, order.CreatedAt, order.Status.String(), itoa(len(order.Items)), money(order.Total), order.PaymentMethod, order.UserEmail})
	}
	return app.printer.emit(orders, []string{"ID", "PLACED", "STATUS", "ITEMS", "TOTAL", "PAYMENT", "CUSTOMER"}, rows)
}

func (app *runtime) printOrder(order storefront.Order) error {
	if app.cfg.Output == outputJSON {
		return app.printer.emit(order, nil, nil)
	}
	if err := app.printer.fields(order,
		[2]string{"Order", order.ID},
		[2]string{"Status", order.Status.String()},
		[2]string{"Placed", order.CreatedAt},
		[2]string{"Deliver to", strings.Join([]string{order.AddressLine, order.City, order.Pincode}, ", ")},
		[2]string{"Payment", order.PaymentMethod + " (" + order.PaymentStatus + ")"},
		[2]string{"Subtotal", money(order.Subtotal)},
		[2]string{"Delivery", money(order.DeliveryFee)},
		[2]string{"Discount", "-" + money(order.Discount)},
		[2]string{"Total", money(order.Total)},
	); err != nil {
		return err
	}
	rows := make([][]string, 0, len(order.Items))
	for _, item := range order.Items {
		rows = append(rows, []string{item.Emoji + " " + item.Name, item.Weight, itoa(item.Qty), money(item.Price)})
	}
	return app.printer.emit(order.Items, []string{"PRODUCT", "WEIGHT", "QTY", "PRICE"}, rows)
}
