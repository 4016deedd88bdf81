package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/core/domain"
)

var (
	configPath string
	grpcTarget string

	sortBy  string
	orderBy string
	limit   int
	page    int

	itemPicture string

	rootCmd = &cobra.Command{
		Use:          "storefront",
		Short:        "Local storefront agent for the shop backend",
		SilenceUsage: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the storefront views over HTTP and the cart over gRPC",
		RunE:  runServe,
	}

	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Forget the persisted session",
		RunE:  runLogout,
	}

	themeCmd = &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or change the theme preference",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "toggle"},
		RunE:      runTheme,
	}

	productsCmd = &cobra.Command{
		Use:   "products",
		Short: "List products from the backend",
		RunE:  runProducts,
	}

	cartCmd = &cobra.Command{
		Use:   "cart",
		Short: "Work with the cart of a running storefront",
	}

	cartListCmd = &cobra.Command{
		Use:   "list",
		Short: "Show cart contents",
		Args:  cobra.NoArgs,
		RunE:  runCartList,
	}

	cartAddCmd = &cobra.Command{
		Use:   "add <name> <price> [quantity]",
		Short: "Add an item to the cart",
		Args:  cobra.RangeArgs(2, 3),
		RunE:  runCartAdd,
	}

	cartCheckoutCmd = &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Args:  cobra.NoArgs,
		RunE:  runCartCheckout,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(themeCmd)

	rootCmd.AddCommand(productsCmd)
	productsCmd.Flags().StringVar(&sortBy, "sort", "", "sort by price, name or createdAt")
	productsCmd.Flags().StringVar(&orderBy, "order", "", "asc or desc")
	productsCmd.Flags().IntVar(&limit, "limit", 10, "products per page")
	productsCmd.Flags().IntVar(&page, "page", 1, "page number")

	rootCmd.AddCommand(cartCmd)
	cartCmd.PersistentFlags().StringVar(&grpcTarget, "addr", "localhost:50051", "gRPC address of a running storefront")
	cartCmd.AddCommand(cartListCmd)
	cartCmd.AddCommand(cartAddCmd)
	cartAddCmd.Flags().StringVar(&itemPicture, "picture", "", "picture URL")
	cartCmd.AddCommand(cartCheckoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.svc.Auth.Logout(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "logged out")
	return nil
}

func runTheme(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	theme := a.svc.Prefs.Theme(ctx)
	if len(args) == 1 {
		if args[0] == "toggle" {
			theme, err = a.svc.Prefs.Toggle(ctx)
		} else {
			theme = domain.Theme(args[0])
			err = a.svc.Prefs.SetTheme(ctx, theme)
		}
		if err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), theme)
	return nil
}

func runProducts(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	listing, err := a.svc.Catalog.ListProducts(cmd.Context(), domain.ProductQuery{
		SortBy:  sortBy,
		OrderBy: orderBy,
		Page:    domain.Page{Limit: limit, Number: page},
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, p := range listing.Products {
		fmt.Fprintf(out, "%-6d %-30s %10d %6d\n", p.ID, p.Name, p.Price, p.Stocks)
	}
	fmt.Fprintf(out, "page %d of %d (%d products)\n", listing.Page, listing.Pages, listing.Total)
	return nil
}

func withCartClient(cmd *cobra.Command, fn func(ctx context.Context, c *handler.CartClient) error) error {
	conn, err := handler.DialCart(grpcTarget)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	return fn(ctx, handler.NewCartClient(conn))
}

func printCart(cmd *cobra.Command, cart *handler.CartResponse) {
	out := cmd.OutOrStdout()
	for _, item := range cart.Items {
		fmt.Fprintf(out, "#%-4d %-30s %4d x %d\n", item.ID, item.Name, item.Quantity, item.UnitPrice)
	}
	fmt.Fprintf(out, "%d items, total %d\n", cart.Count, cart.Total)
}

func runCartList(cmd *cobra.Command, args []string) error {
	return withCartClient(cmd, func(ctx context.Context, c *handler.CartClient) error {
		cart, err := c.ListItems(ctx)
		if err != nil {
			return err
		}
		printCart(cmd, cart)
		return nil
	})
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	var price int64
	if _, err := fmt.Sscan(args[1], &price); err != nil {
		return fmt.Errorf("invalid price %q", args[1])
	}
	quantity := 1
	if len(args) == 3 {
		if _, err := fmt.Sscan(args[2], &quantity); err != nil {
			return fmt.Errorf("invalid quantity %q", args[2])
		}
	}

	return withCartClient(cmd, func(ctx context.Context, c *handler.CartClient) error {
		resp, err := c.AddItem(ctx, &handler.AddItemRequest{
			Name:     args[0],
			Picture:  itemPicture,
			Price:    price,
			Quantity: quantity,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added #%d %s\n", resp.Item.ID, resp.Item.Name)
		return nil
	})
}

func runCartCheckout(cmd *cobra.Command, args []string) error {
	return withCartClient(cmd, func(ctx context.Context, c *handler.CartClient) error {
		resp, err := c.Checkout(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "order %d placed, total %d\n", resp.Order.ID, resp.Order.Total)
		return nil
	})
}
