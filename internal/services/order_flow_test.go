package services_test

import (
	"errors"
	"math"
	"testing"

	"github.com/jmoiron/sqlx"

	"geekshop/internal/domain"
	"geekshop/internal/repos"
	"geekshop/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return db
}

func stockOf(t *testing.T, db *sqlx.DB, productID string) int {
	t.Helper()
	var q int
	if err := db.Get(&q, `SELECT quantity FROM products WHERE id = ?`, productID); err != nil {
		t.Fatalf("stock of %s: %v", productID, err)
	}
	return q
}

func near(a, b float64) bool { return math.Abs(a-b) < 0.001 }

// A full happy path: basket fills up, the order is formed from it, the
// basket empties, and stock stays conserved (basket lines return units,
// order lines take the same units back).
func TestBasketToOrderFlow(t *testing.T) {
	db := memdb(t)
	basketRepo := repos.NewBasketRepo(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	basketSvc := services.NewBasketService(basketRepo, prodRepo)
	orderSvc := services.NewOrderService(orderRepo, basketRepo, prodRepo)

	const user = "u-vera"

	// lamp twice (upsert to qty 2), chair once
	for i := 0; i < 2; i++ {
		if err := basketSvc.Add(user, "prod-lmp-001"); err != nil {
			t.Fatalf("add lamp: %v", err)
		}
	}
	if err := basketSvc.Add(user, "prod-chr-001"); err != nil {
		t.Fatalf("add chair: %v", err)
	}

	if got := stockOf(t, db, "prod-lmp-001"); got != 13 {
		t.Fatalf("lamp stock after basket adds = %d, want 13", got)
	}
	if got := stockOf(t, db, "prod-chr-001"); got != 19 {
		t.Fatalf("chair stock after basket add = %d, want 19", got)
	}

	bv, err := basketSvc.View(user)
	if err != nil {
		t.Fatal(err)
	}
	if len(bv.Items) != 2 || bv.TotalQuantity != 3 || !near(bv.TotalCost, 2*89.00+149.99) {
		t.Fatalf("bad basket view: %+v", bv)
	}

	// form the order from the basket seed
	seed, err := orderSvc.Seed(user)
	if err != nil {
		t.Fatal(err)
	}
	lines := make([]repos.OrderLine, 0, len(seed))
	for _, s := range seed {
		lines = append(lines, repos.OrderLine{ProductID: s.ProductID, Quantity: s.Quantity})
	}
	orderID, err := orderSvc.Create(user, lines)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	bv, err = basketSvc.View(user)
	if err != nil {
		t.Fatal(err)
	}
	if len(bv.Items) != 0 {
		t.Fatalf("basket not consumed: %+v", bv.Items)
	}

	// conservation: basket returned its units, order lines took them back
	if got := stockOf(t, db, "prod-lmp-001"); got != 13 {
		t.Fatalf("lamp stock after order create = %d, want 13", got)
	}
	if got := stockOf(t, db, "prod-chr-001"); got != 19 {
		t.Fatalf("chair stock after order create = %d, want 19", got)
	}

	sums, err := orderSvc.ListForUser(user)
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 1 || sums[0].Status != domain.OrderForming || !near(sums[0].TotalCost, 327.99) {
		t.Fatalf("bad order summary: %+v", sums)
	}

	// FORMING -> SENT_TO_PROCEED, exactly once
	if err := orderSvc.Complete(orderID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	o, _, err := orderSvc.Get(orderID)
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.OrderSentToProceed {
		t.Fatalf("status = %s, want %s", o.Status, domain.OrderSentToProceed)
	}
	if err := orderSvc.Complete(orderID); !errors.Is(err, services.ErrNotForming) {
		t.Fatalf("second complete: err = %v, want ErrNotForming", err)
	}
	if err := orderSvc.Update(orderID, lines); !errors.Is(err, services.ErrNotForming) {
		t.Fatalf("update after complete: err = %v, want ErrNotForming", err)
	}

	// deleting the order puts everything back on the shelf
	if err := orderSvc.Delete(orderID); err != nil {
		t.Fatalf("delete order: %v", err)
	}
	if got := stockOf(t, db, "prod-lmp-001"); got != 15 {
		t.Fatalf("lamp stock after order delete = %d, want 15", got)
	}
	if got := stockOf(t, db, "prod-chr-001"); got != 20 {
		t.Fatalf("chair stock after order delete = %d, want 20", got)
	}
}

// A submission whose lines carry no value must leave no trace: no order
// row, basket intact, stock untouched.
func TestZeroTotalOrderNeverPersists(t *testing.T) {
	db := memdb(t)
	basketRepo := repos.NewBasketRepo(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	basketSvc := services.NewBasketService(basketRepo, prodRepo)
	orderSvc := services.NewOrderService(orderRepo, basketRepo, prodRepo)

	const user = "u-vera"
	if err := basketSvc.Add(user, "prod-lmp-001"); err != nil {
		t.Fatal(err)
	}

	_, err := orderSvc.Create(user, []repos.OrderLine{
		{ProductID: "prod-lmp-001", Quantity: 0},
	})
	if !errors.Is(err, services.ErrZeroTotal) {
		t.Fatalf("err = %v, want ErrZeroTotal", err)
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM orders`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("%d order rows persisted, want 0", n)
	}

	bv, err := basketSvc.View(user)
	if err != nil {
		t.Fatal(err)
	}
	if len(bv.Items) != 1 {
		t.Fatalf("basket should survive the rollback: %+v", bv.Items)
	}
	if got := stockOf(t, db, "prod-lmp-001"); got != 14 {
		t.Fatalf("lamp stock = %d, want 14", got)
	}
}

// Editing a forming order reconciles stock by the quantity delta, and an
// edit that zeroes the order removes its header too.
func TestOrderEditReconcilesStock(t *testing.T) {
	db := memdb(t)
	basketRepo := repos.NewBasketRepo(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	basketSvc := services.NewBasketService(basketRepo, prodRepo)
	orderSvc := services.NewOrderService(orderRepo, basketRepo, prodRepo)

	const user = "u-vera"
	if err := basketSvc.Add(user, "prod-lmp-001"); err != nil {
		t.Fatal(err)
	}
	if err := basketSvc.Add(user, "prod-lmp-001"); err != nil {
		t.Fatal(err)
	}

	orderID, err := orderSvc.Create(user, []repos.OrderLine{
		{ProductID: "prod-lmp-001", Quantity: 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := stockOf(t, db, "prod-lmp-001"); got != 13 {
		t.Fatalf("lamp stock = %d, want 13", got)
	}

	_, items, err := orderSvc.Get(orderID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("want 1 line, got %+v", items)
	}

	// bump the quantity: 2 -> 5 takes three more units
	if err := orderSvc.Update(orderID, []repos.OrderLine{
		{ID: items[0].ID, ProductID: items[0].ProductID, Quantity: 5},
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := stockOf(t, db, "prod-lmp-001"); got != 10 {
		t.Fatalf("lamp stock after bump = %d, want 10", got)
	}

	// deleting the only line zeroes the order: header goes, stock returns
	err = orderSvc.Update(orderID, []repos.OrderLine{
		{ID: items[0].ID, ProductID: items[0].ProductID, Quantity: 5, Delete: true},
	})
	if !errors.Is(err, services.ErrZeroTotal) {
		t.Fatalf("err = %v, want ErrZeroTotal", err)
	}
	if _, _, err := orderSvc.Get(orderID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("order should be gone, got err = %v", err)
	}
	if got := stockOf(t, db, "prod-lmp-001"); got != 15 {
		t.Fatalf("lamp stock after zeroing edit = %d, want 15", got)
	}
}
