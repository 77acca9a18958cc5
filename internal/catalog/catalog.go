// Package catalog хранит фиксированный прайс бота: один город,
// три позиции, два района выдачи.
package catalog

import "strings"

const City = "Днепр"

type Product struct {
	Key   string // callback-ключ кнопки
	Label string // полное название позиции в меню
	Price string // извлекается из названия
}

type Area struct {
	Key  string
	Name string
}

var products = []Product{
	{Key: "product_1", Label: "Товар 1 - 1гр - 300 грн"},
	{Key: "product_2", Label: "Товар 2 - 2гр - 570 грн"},
	{Key: "product_3", Label: "Товар 3 - 3гр - 820 грн"},
}

var areas = []Area{
	{Key: "area_kirova", Name: "Кирова"},
	{Key: "area_bh", Name: "Начало пр. Богдана Хмельницкого"},
}

// Products возвращает позиции в порядке показа в меню.
func Products() []Product {
	out := make([]Product, len(products))
	for i, p := range products {
		p.Price = PriceFromLabel(p.Label)
		out[i] = p
	}
	return out
}

func ProductByKey(key string) (Product, bool) {
	for _, p := range products {
		if p.Key == key {
			p.Price = PriceFromLabel(p.Label)
			return p, true
		}
	}
	return Product{}, false
}

func Areas() []Area {
	out := make([]Area, len(areas))
	copy(out, areas)
	return out
}

func AreaByKey(key string) (Area, bool) {
	for _, a := range areas {
		if a.Key == key {
			return a, true
		}
	}
	return Area{}, false
}

// PriceFromLabel берёт цену из названия позиции: всё после последнего дефиса.
func PriceFromLabel(label string) string {
	idx := strings.LastIndex(label, "-")
	if idx < 0 {
		return label
	}
	return strings.TrimSpace(label[idx+1:])
}
