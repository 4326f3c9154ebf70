package cli

import (
	"fmt"
	"strings"

	"github.com/MarkoPoloResearchLab/storefront/pkg/storefront"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var paymentMethods = []string{"cod", "card", "upi"}

func newCartCommand(app *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "View and change your cart",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the cart and its totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			snapshot, err := app.store.FetchCart(cmd.Context())
			if err != nil {
				return err
			}
			return app.printCart(snapshot)
		},
	}

	var quantity int
	add := &cobra.Command{
		Use:   "add PRODUCT_ID",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.store.AddToCart(cmd.Context(), args[0], quantity); err != nil {
				return err
			}
			return app.printCurrentCart()
		},
	}
	add.Flags().IntVar(&quantity, "qty", 1, "quantity to add")

	var updateQuantity int
	update := &cobra.Command{
		Use:   "update ITEM_ID",
		Short: "Set the quantity of a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.store.UpdateCartItem(cmd.Context(), args[0], updateQuantity); err != nil {
				return err
			}
			return app.printCurrentCart()
		},
	}
	update.Flags().IntVar(&updateQuantity, "qty", 0, "new quantity (required)")
	_ = update.MarkFlagRequired("qty")

	remove := &cobra.Command{
		Use:   "remove ITEM_ID",
		Short: "Remove a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.store.RemoveFromCart(cmd.Context(), args[0]); err != nil {
				return err
			}
			return app.printCurrentCart()
		},
	}

	clearCart := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.store.ClearCart(cmd.Context()); err != nil {
				return err
			}
			return app.printer.message("Cart cleared")
		},
	}

	cmd.AddCommand(show, add, update, remove, clearCart)
	return cmd
}

func newWishlistCommand(app *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "View and change your wishlist",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "List wishlisted products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			items, err := app.client.Wishlist.Get(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{item.ID, item.Emoji + " " + item.Name, item.Weight, money(item.Price), itoa(item.Stock)})
			}
			return app.printer.emit(items, []string{"ID", "PRODUCT", "WEIGHT", "PRICE", "STOCK"}, rows)
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle PRODUCT_ID",
		Short: "Add or remove a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			id, err := storefront.NewProductID(args[0])
			if err != nil {
				return err
			}
			wishlisted, err := app.client.Wishlist.Toggle(cmd.Context(), id)
			if err != nil {
				return err
			}
			if wishlisted {
				return app.printer.message("Added to wishlist")
			}
			return app.printer.message("Removed from wishlist")
		},
	}

	cmd.AddCommand(show, toggle)
	return cmd
}

func newCouponCommand(app *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coupon",
		Short: "Work with coupons",
	}
	apply := &cobra.Command{
		Use:   "apply CODE",
		Short: "Quote a coupon against the current cart subtotal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			code, err := storefront.NewCouponCode(args[0])
			if err != nil {
				return err
			}
			snapshot, err := app.store.FetchCart(cmd.Context())
			if err != nil {
				return err
			}
			quote, err := app.client.Coupons.Apply(cmd.Context(), code, snapshot.Subtotal)
			if err != nil {
				return err
			}
			return app.printer.fields(quote,
				[2]string{"Coupon", quote.Coupon.Code},
				[2]string{"Discount", money(quote.Discount)},
				[2]string{"Message", quote.Message},
			)
		},
	}
	cmd.AddCommand(apply)
	return cmd
}

func newCheckoutCommand(app *runtime) *cobra.Command {
	var (
		input  storefront.OrderInput
		coupon string
	)
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the current cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			input.PaymentMethod = strings.ToLower(strings.TrimSpace(input.PaymentMethod))
			if !validPayment(input.PaymentMethod) {
				return fmt.Errorf("payment must be one of %s", strings.Join(paymentMethods, ", "))
			}
			if strings.TrimSpace(coupon) != "" {
				code, err := storefront.NewCouponCode(coupon)
				if err != nil {
					return err
				}
				input.CouponCode = code.String()
			}
			order, err := app.client.Orders.Place(cmd.Context(), input)
			if err != nil {
				return err
			}
			if _, err := app.store.FetchCart(cmd.Context()); err != nil {
				app.logger.Warn("cart refresh after checkout failed", zap.String("order_id", order.ID), zap.Error(err))
			}
			return app.printOrder(order)
		},
	}
	cmd.Flags().StringVar(&input.Address.Line1, "line1", "", "street address (required)")
	cmd.Flags().StringVar(&input.Address.City, "city", "", "city (required)")
	cmd.Flags().StringVar(&input.Address.Pincode, "pincode", "", "postal code (required)")
	cmd.Flags().StringVar(&input.Address.Phone, "phone", "", "contact phone (required)")
	cmd.Flags().StringVar(&input.PaymentMethod, "payment", "cod", "payment method: cod, card, upi")
	cmd.Flags().StringVar(&coupon, "coupon", "", "coupon code")
	cmd.Flags().StringVar(&input.Notes, "notes", "", "delivery notes")
	for _, name := range []string{"line1", "city", "pincode", "phone"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func validPayment(method string) bool {
	for _, candidate := range paymentMethods {
		if candidate == method {
			return true
		}
	}
	return false
}

func (app *runtime) printCurrentCart() error {
	state := app.store.Snapshot()
	if state.Cart == nil {
		return app.printCart(storefront.CartSnapshot{})
	}
	return app.printCart(*state.Cart)
}

func (app *runtime) printCart(snapshot storefront.CartSnapshot) error {
	if app.cfg.Output == outputJSON {
		return app.printer.emit(snapshot, nil, nil)
	}
	rows := make([][]string, 0, len(snapshot.Items)+5)
	for _, item := range snapshot.Items {
		line := item.Price.Mul(decimalFromInt(item.Qty))
		rows = append(rows, []string{item.ID, item.Emoji + " " + item.Name, item.Weight, itoa(item.Qty), money(item.Price), money(line)})
	}
	rows = append(rows,
		[]string{"", "", "", "", "Subtotal", money(snapshot.Subtotal)},
		[]string{"", "", "", "", "Delivery", money(snapshot.DeliveryFee)},
		[]string{"", "", "", "", "Loyalty", "-" + money(snapshot.LoyaltyDiscount)},
		[]string{"", "", "", "", "Total", money(snapshot.Total)},
		[]string{"", "", "", "", "Items", itoa(snapshot.Count)},
	)
	return app.printer.emit(snapshot, []string{"ITEM", "PRODUCT", "WEIGHT", "QTY", "PRICE", "AMOUNT"}, rows)
}
