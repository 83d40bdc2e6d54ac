package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"beatstore/internal/cart"
	catalog "beatstore/internal/catalog/models"
	id "beatstore/pkg/domain"
	dErrors "beatstore/pkg/domain-errors"
)

func newStatusCmd(s *shopper) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sign-in state and item counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			saved := s.session.Saved()
			c := s.session.Cart()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "saved items: %s (%d)\n", saved.State(), len(saved.Items()))
			fmt.Fprintf(out, "cart: %d item(s), total %s\n", c.Len(), c.Total().StringFixed(2))
			return nil
		},
	}
}

func newSavedCmd(s *shopper) *cobra.Command {
	return &cobra.Command{
		Use:   "saved",
		Short: "List saved items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products := s.session.Saved().Items()
			if len(products) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved items.")
				return nil
			}
			return printProducts(cmd.OutOrStdout(), products)
		},
	}
}

func newSaveCmd(s *shopper) *cobra.Command {
	return &cobra.Command{
		Use:   "save <type>:<id>",
		Short: "Save a product for later",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key, err := id.ParseItemKey(args[0])
			if err != nil {
				return err
			}
			product, err := s.lookup(ctx, key)
			if err != nil {
				return err
			}
			if err := s.session.Saved().Save(ctx, product); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s).\n", product.Title, key)
			return nil
		},
	}
}

func newUnsaveCmd(s *shopper) *cobra.Command {
	return &cobra.Command{
		Use:   "unsave <type>:<id>",
		Short: "Remove a product from saved items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := id.ParseItemKey(args[0])
			if err != nil {
				return err
			}
			if err := s.session.Saved().Unsave(cmd.Context(), key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from saved items.\n", key)
			return nil
		},
	}
}

func newMoveCmd(s *shopper) *cobra.Command {
	return &cobra.Command{
		Use:   "move <type>:<id>",
		Short: "Move a saved item into the cart",
		Long: `Moves a saved item into the cart using its first in-stock variant. The item
stays saved when it is out of stock or the cart cannot take it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := id.ParseItemKey(args[0])
			if err != nil {
				return err
			}
			if err := s.session.MoveToCart(cmd.Context(), key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to the cart.\n", key)
			return nil
		},
	}
}

func newCartCmd(s *shopper) *cobra.Command {
	cartCmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := s.session.Cart()
			if c.Len() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Cart is empty.")
				return nil
			}
			return printCart(cmd.OutOrStdout(), c.Items(), c.Total())
		},
	}

	var variant string
	addCmd := &cobra.Command{
		Use:   "add <type>:<id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key, err := id.ParseItemKey(args[0])
			if err != nil {
				return err
			}
			product, err := s.lookup(ctx, key)
			if err != nil {
				return err
			}
			chosen, err := pickVariant(product, variant)
			if err != nil {
				return err
			}
			if err := s.session.Cart().Add(ctx, cart.ItemFromProduct(product, chosen)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cart has %d item(s), total %s.\n", s.session.Cart().Len(), s.session.Cart().Total().StringFixed(2))
			return nil
		},
	}
	addCmd.Flags().StringVar(&variant, "variant", "", "variant name (default: first in stock)")

	removeCmd := &cobra.Command{
		Use:   "remove <type>:<id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := id.ParseItemKey(args[0])
			if err != nil {
				return err
			}
			s.session.Cart().Remove(cmd.Context(), key.ID, key.Type)
			fmt.Fprintf(cmd.OutOrStdout(), "Cart has %d item(s).\n", s.session.Cart().Len())
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s.session.Cart().Clear(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Cart cleared.")
			return nil
		},
	}

	cartCmd.AddCommand(addCmd, removeCmd, clearCmd)
	return cartCmd
}

func newCheckoutCmd(s *shopper) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart contents and empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			total := s.session.Cart().Total()
			if err := s.session.Checkout(cmd.Context(), loggedOrders{log: s.log}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order placed, total %s.\n", total.StringFixed(2))
			return nil
		},
	}
}

// loggedOrders records the order instead of charging for it; payment is
// handled outside the storefront.
type loggedOrders struct {
	log *slog.Logger
}

func (o loggedOrders) SubmitOrder(ctx context.Context, items []cart.Item, total decimal.Decimal) error {
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.Key().String())
	}
	o.log.InfoContext(ctx, "order submitted",
		"items", keys,
		"total", total.StringFixed(2),
	)
	return nil
}

func (s *shopper) lookup(ctx context.Context, key id.ItemKey) (catalog.Product, error) {
	products, err := s.products.ByIDs(ctx, key.Type, []id.ProductID{key.ID})
	if err != nil {
		return catalog.Product{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch product")
	}
	if len(products) == 0 {
		return catalog.Product{}, dErrors.New(dErrors.CodeNotFound, "product not found")
	}
	return products[0], nil
}

func pickVariant(p catalog.Product, name string) (string, error) {
	if name == "" {
		v, ok := p.FirstAvailableVariant()
		if !ok {
			return "", dErrors.New(dErrors.CodeUnavailable, "product is out of stock")
		}
		return v.Name, nil
	}
	for _, v := range p.Variants {
		if v.Name != name {
			continue
		}
		if v.Stock <= 0 {
			return "", dErrors.New(dErrors.CodeUnavailable, "variant is out of stock")
		}
		return v.Name, nil
	}
	return "", dErrors.New(dErrors.CodeNotFound, "variant not found")
}

func printProducts(w io.Writer, products []catalog.Product) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tTITLE\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Key(), p.Title, p.Price.StringFixed(2))
	}
	return tw.Flush()
}

func printCart(w io.Writer, items []cart.Item, total decimal.Decimal) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tTITLE\tVARIANT\tPRICE")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.Key(), item.Title, item.Variant, item.Price.StringFixed(2))
	}
	fmt.Fprintf(tw, "\t\tTOTAL\t%s\n", total.StringFixed(2))
	return tw.Flush()
}
