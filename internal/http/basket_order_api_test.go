package http_test

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"geekshop/internal/http/handlers"
)

// The async price lookup answers JSON for known products and 0 for
// anything else.
func TestOrderProductPriceEndpoint(t *testing.T) {
	app, deps, authSvc := newTestApp(t)
	if err := authSvc.Users.BindSession("sid-vera", "u-vera"); err != nil {
		t.Fatal(err)
	}
	orders := app.Group("/orders", handlers.RequireUser(authSvc))
	orders.Get("/product/:id/price", deps.OrderHandler.ProductPrice)

	get := func(path string) map[string]float64 {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "sid-vera"})
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s = %d, want 200", path, resp.StatusCode)
		}
		body, _ := io.ReadAll(resp.Body)
		var out map[string]float64
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatalf("bad JSON %q: %v", body, err)
		}
		return out
	}

	if got := get("/orders/product/prod-lmp-001/price"); math.Abs(got["price"]-89.00) > 0.001 {
		t.Fatalf("lamp price = %v, want 89.00", got["price"])
	}
	if got := get("/orders/product/no-such-product/price"); got["price"] != 0 {
		t.Fatalf("unknown product price = %v, want 0", got["price"])
	}
}

// Editing a basket line answers with the re-rendered basket fragment
// wrapped in JSON, ready for the page to swap in.
func TestBasketEditReturnsRenderedFragment(t *testing.T) {
	app, deps, authSvc := newTestApp(t)
	if err := authSvc.Users.BindSession("sid-vera", "u-vera"); err != nil {
		t.Fatal(err)
	}

	basket := app.Group("/basket", handlers.RequireUser(authSvc))
	basket.Post("/add/:product_id", deps.BasketHandler.Add)
	basket.Post("/edit/:line_id/:quantity", deps.BasketHandler.Edit)

	post := func(path string) *http.Response {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "sid-vera"})
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	if resp := post("/basket/add/prod-lmp-001"); resp.StatusCode != http.StatusFound {
		t.Fatalf("add status = %d, want 302", resp.StatusCode)
	}

	bv, err := deps.BasketHandler.Basket.View("u-vera")
	if err != nil {
		t.Fatal(err)
	}
	if len(bv.Items) != 1 {
		t.Fatalf("want 1 basket line, got %+v", bv.Items)
	}
	lineID := bv.Items[0].ID

	resp := post("/basket/edit/" + lineID + "/3")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("edit status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	var out map[string]string
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("bad JSON %q: %v", body, err)
	}
	frag := out["result"]
	if !strings.Contains(frag, "Arc Floor Lamp") {
		t.Fatalf("fragment missing product name: %q", frag)
	}
	if !strings.Contains(frag, `value="3"`) {
		t.Fatalf("fragment missing updated quantity: %q", frag)
	}

	// quantity 0 removes the line; the fragment comes back empty of rows
	resp = post("/basket/edit/" + lineID + "/0")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("edit-to-zero status = %d, want 200", resp.StatusCode)
	}
	body, _ = io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("bad JSON %q: %v", body, err)
	}
	if strings.Contains(out["result"], "Arc Floor Lamp") {
		t.Fatalf("deleted line still rendered: %q", out["result"])
	}

	// editing someone else's line is a 404
	resp = post("/basket/edit/not-your-line/2")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign line status = %d, want 404", resp.StatusCode)
	}
}
