package order

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"

	"github.com/xiebiao/bookstore-commerce/internal/domain/book"
	"github.com/xiebiao/bookstore-commerce/internal/domain/cart"
	"github.com/xiebiao/bookstore-commerce/internal/domain/inventory"
	"github.com/xiebiao/bookstore-commerce/internal/domain/order"
)

// pipelineSteps 每个Scenario一份独立的SQLite库
type pipelineSteps struct {
	t     *testing.T
	f     *fixture
	books map[string]*book.Book
	lines map[*book.Book]int
	cart  *cart.Cart
	order *order.Order
	err   error
}

func (s *pipelineSteps) reset() {
	s.f = newFixture(s.t)
	s.books = make(map[string]*book.Book)
	s.lines = make(map[*book.Book]int)
	s.cart = nil
	s.order = nil
	s.err = nil
}

func (s *pipelineSteps) book(isbn string) (*book.Book, error) {
	b, ok := s.books[isbn]
	if !ok {
		return nil, fmt.Errorf("unknown book %s", isbn)
	}
	return b, nil
}

func (s *pipelineSteps) aBookPricedAtWithInStock(isbn, price string, stock int) error {
	s.books[isbn] = s.f.addBook(s.t, isbn, price, stock)
	return nil
}

func (s *pipelineSteps) theBuyersCartHoldsOf(qty int, isbn string) error {
	b, err := s.book(isbn)
	if err != nil {
		return err
	}
	s.lines[b] += qty
	return nil
}

func (s *pipelineSteps) theBuyerPlacesAnOrderFromTheCart() error {
	s.cart = s.f.fillCart(s.t, s.f.buyer, s.lines)
	s.order, s.err = s.f.place.FromCart(context.Background(), FromCartRequest{
		UserID:  s.f.buyer,
		Details: order.Details{PaymentMethod: order.PaymentCard, ShippingAddress: "Calle 10 #5-20"},
	})
	return nil
}

func (s *pipelineSteps) theBuyerOrdersAndThenOfDirectly(first, second int, isbn string) error {
	b, err := s.book(isbn)
	if err != nil {
		return err
	}
	s.order, s.err = s.f.place.Direct(context.Background(), DirectRequest{
		UserID: s.f.buyer,
		Items: []DirectItem{
			{BookID: b.ID, Quantity: first},
			{BookID: b.ID, Quantity: second},
		},
		Details: order.Details{PaymentMethod: order.PaymentCard},
	})
	return nil
}

func (s *pipelineSteps) theBuyerCancelsTheOrder() error {
	return s.cancel(false)
}

func (s *pipelineSteps) theBuyerCancelsTheOrderWithRestock() error {
	return s.cancel(true)
}

func (s *pipelineSteps) cancel(restock bool) error {
	if s.order == nil {
		return fmt.Errorf("no order placed: %v", s.err)
	}
	actor := Actor{UserID: s.f.buyer}
	var err error
	if restock {
		s.order, err = s.f.cancel.CancelAndRestock(context.Background(), actor, s.order.ID)
	} else {
		s.order, err = s.f.cancel.Cancel(context.Background(), actor, s.order.ID)
	}
	return err
}

func (s *pipelineSteps) theOrderHasSubtotalTaxAndTotal(subtotal, tax, total string) error {
	if s.err != nil {
		return fmt.Errorf("expected an order but got error: %v", s.err)
	}
	got := []string{s.order.Subtotal.StringFixed(2), s.order.Tax.StringFixed(2), s.order.Total.StringFixed(2)}
	want := []string{subtotal, tax, total}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("expected subtotal/tax/total %v, got %v", want, got)
		}
	}
	return nil
}

func (s *pipelineSteps) theOrderFailsWithInsufficientStock() error {
	if !errors.Is(s.err, inventory.ErrInsufficientStock) {
		return fmt.Errorf("expected insufficient stock, got %v", s.err)
	}
	return nil
}

func (s *pipelineSteps) theOrderStatusIs(status string) error {
	if s.order.Status.String() != status {
		return fmt.Errorf("expected status %s, got %s", status, s.order.Status)
	}
	return nil
}

func (s *pipelineSteps) hasAvailable(isbn string, want int) error {
	b, err := s.book(isbn)
	if err != nil {
		return err
	}
	if got := s.f.available(s.t, b.ID); got != want {
		return fmt.Errorf("expected %d available for %s, got %d", want, isbn, got)
	}
	return nil
}

func (s *pipelineSteps) theBuyersLastCartIs(status string) error {
	c, err := s.f.cartRepo.FindByID(context.Background(), s.cart.ID)
	if err != nil {
		return err
	}
	if string(c.Status) != status {
		return fmt.Errorf("expected cart %s, got %s", status, c.Status)
	}
	return nil
}

func initializePipelineScenario(t *testing.T) func(*godog.ScenarioContext) {
	return func(ctx *godog.ScenarioContext) {
		s := &pipelineSteps{t: t}

		ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
			s.reset()
			return ctx, nil
		})

		// Given
		ctx.Step(`^a book "([^"]*)" priced at "([^"]*)" with (\d+) in stock$`, s.aBookPricedAtWithInStock)
		ctx.Step(`^the buyer's cart holds (\d+) of "([^"]*)"$`, s.theBuyersCartHoldsOf)

		// When
		ctx.Step(`^the buyer places an order from the cart$`, s.theBuyerPlacesAnOrderFromTheCart)
		ctx.Step(`^the buyer orders (\d+) and then (\d+) of "([^"]*)" directly$`, s.theBuyerOrdersAndThenOfDirectly)
		ctx.Step(`^the buyer cancels the order$`, s.theBuyerCancelsTheOrder)
		ctx.Step(`^the buyer cancels the order with restock$`, s.theBuyerCancelsTheOrderWithRestock)

		// Then
		ctx.Step(`^the order has subtotal "([^"]*)", tax "([^"]*)" and total "([^"]*)"$`, s.theOrderHasSubtotalTaxAndTotal)
		ctx.Step(`^the order fails with insufficient stock$`, s.theOrderFailsWithInsufficientStock)
		ctx.Step(`^the order status is "([^"]*)"$`, s.theOrderStatusIs)
		ctx.Step(`^"([^"]*)" has (\d+) available$`, s.hasAvailable)
		ctx.Step(`^the buyer's last cart is "([^"]*)"$`, s.theBuyersLastCartIs)
	}
}

func TestPipelineFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializePipelineScenario(t),
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/order_pipeline.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
