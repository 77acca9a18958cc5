package catalog

import "testing"

func TestProductByKey(t *testing.T) {
	p, ok := ProductByKey("product_2")
	if !ok {
		t.Fatal("product_2 not found")
	}
	if p.Label != "Товар 2 - 2гр - 570 грн" {
		t.Errorf("unexpected label: %q", p.Label)
	}
	if p.Price != "570 грн" {
		t.Errorf("unexpected price: %q", p.Price)
	}

	if _, ok := ProductByKey("product_9"); ok {
		t.Error("unknown product key resolved")
	}
}

func TestAreaByKey(t *testing.T) {
	a, ok := AreaByKey("area_kirova")
	if !ok {
		t.Fatal("area_kirova not found")
	}
	if a.Name != "Кирова" {
		t.Errorf("unexpected area name: %q", a.Name)
	}

	if _, ok := AreaByKey("area_centr"); ok {
		t.Error("unknown area key resolved")
	}
}

func TestPriceFromLabel(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Товар 1 - 1гр - 300 грн", "300 грн"},
		{"Товар 3 - 3гр - 820 грн", "820 грн"},
		{"без цены", "без цены"},
	}
	for _, tt := range tests {
		if got := PriceFromLabel(tt.label); got != tt.want {
			t.Errorf("PriceFromLabel(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestMenusAreStable(t *testing.T) {
	products := Products()
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	for _, p := range products {
		if p.Price == "" {
			t.Errorf("product %s has no price", p.Key)
		}
	}

	areas := Areas()
	if len(areas) != 2 {
		t.Fatalf("expected 2 areas, got %d", len(areas))
	}
}
