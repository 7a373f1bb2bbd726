package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"botpedidos/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seed(t *testing.T, db *DB, products ...models.Product) {
	t.Helper()
	catID, err := db.InsertCategory(context.Background(), uuid.Nil, "General")
	if err != nil {
		t.Fatalf("insert category: %v", err)
	}
	for i := range products {
		products[i].CategoriaID = catID
		if err := db.InsertProduct(context.Background(), &products[i]); err != nil {
			t.Fatalf("insert product %q: %v", products[i].Nombre, err)
		}
	}
}

func names(results []models.SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Nombre
	}
	return out
}

func TestSearchProducts_SubstringMatch(t *testing.T) {
	db := testDB(t)
	seed(t, db,
		models.Product{Nombre: "Leche Entera 1L", Precio: 2.50, StockActual: 10, Estado: true},
		models.Product{Nombre: "Pan Integral", Precio: 1.20, StockActual: 4, Estado: true},
	)

	results, err := db.SearchProducts(context.Background(), "leche")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d: %v", len(results), names(results))
	}
	r := results[0]
	if r.Nombre != "Leche Entera 1L" || r.Precio != 2.50 || r.StockActual != 10 {
		t.Errorf("unexpected projection: %+v", r)
	}
}

func TestSearchProducts_CaseInsensitive(t *testing.T) {
	db := testDB(t)
	seed(t, db, models.Product{Nombre: "LECHE Deslactosada", Precio: 3, StockActual: 2, Estado: true})

	results, err := db.SearchProducts(context.Background(), "Leche")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected case-insensitive match, got %d results", len(results))
	}
}

func TestSearchProducts_OrderedByNombre(t *testing.T) {
	db := testDB(t)
	seed(t, db,
		models.Product{Nombre: "Leche C", Precio: 1, StockActual: 1, Estado: true},
		models.Product{Nombre: "Leche A", Precio: 1, StockActual: 1, Estado: true},
		models.Product{Nombre: "Leche B", Precio: 1, StockActual: 1, Estado: true},
	)

	results, err := db.SearchProducts(context.Background(), "leche")
	if err != nil {
		t.Fatal(err)
	}
	got := names(results)
	want := []string{"Leche A", "Leche B", "Leche C"}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestSearchProducts_ExcludesInactive(t *testing.T) {
	db := testDB(t)
	seed(t, db,
		models.Product{Nombre: "Leche Activa", Precio: 1, StockActual: 1, Estado: true},
		models.Product{Nombre: "Leche Descontinuada", Precio: 1, StockActual: 0, Estado: false},
	)

	results, err := db.SearchProducts(context.Background(), "leche")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Nombre != "Leche Activa" {
		t.Errorf("expected only active products, got %v", names(results))
	}
}

func TestSearchProducts_NoMatch(t *testing.T) {
	db := testDB(t)
	seed(t, db, models.Product{Nombre: "Pan Integral", Precio: 1.20, StockActual: 4, Estado: true})

	results, err := db.SearchProducts(context.Background(), "leche")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %v", names(results))
	}
}

func TestInsertProduct_AssignsID(t *testing.T) {
	db := testDB(t)
	catID, err := db.InsertCategory(context.Background(), uuid.Nil, "General")
	if err != nil {
		t.Fatal(err)
	}

	p := models.Product{Nombre: "Yogur", Precio: 0.99, StockActual: 12, CategoriaID: catID, Estado: true}
	if err := db.InsertProduct(context.Background(), &p); err != nil {
		t.Fatal(err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected InsertProduct to assign an ID")
	}
}
