package devapi

import (
	"github.com/MarkoPoloResearchLab/storefront/pkg/storefront"
	"github.com/shopspring/decimal"
)

const adminUserID = "admin"

type seedProduct struct {
	id          string
	name        string
	description string
	categoryID  string
	emoji       string
	brand       string
	weight      string
	price       int64
	mrp         int64
	discount    int
	stock       int
	rating      float64
	reviewCount int
}

func seedCategories() []storefront.Category {
	return []storefront.Category{
		{ID: "fruits", Name: "Fruits & Veg", Emoji: "🥦", SortOrder: 1},
		{ID: "dairy", Name: "Dairy & Eggs", Emoji: "🥛", SortOrder: 2},
		{ID: "bakery", Name: "Bakery", Emoji: "🍞", SortOrder: 3},
		{ID: "snacks", Name: "Snacks", Emoji: "🍿", SortOrder: 4},
		{ID: "beverages", Name: "Beverages", Emoji: "🧃", SortOrder: 5},
	}
}

func seedProducts() []seedProduct {
	return []seedProduct{
		{"p1", "Organic Avocados", "Creamy organic avocados sourced from premium farms.", "fruits", "🥑", "FreshFarms", "4 pcs", 349, 420, 17, 50, 4.5, 128},
		{"p2", "Baby Spinach", "Tender baby spinach leaves, triple-washed.", "fruits", "🥬", "GreenLeaf", "200g", 89, 110, 19, 30, 4.2, 89},
		{"p3", "Strawberries", "Sweet, juicy strawberries picked at peak ripeness.", "fruits", "🍓", "FreshFarms", "500g", 249, 300, 17, 25, 4.7, 203},
		{"p5", "Alphonso Mango", "Naturally ripened alphonso mangoes.", "fruits", "🥭", "MangoKing", "1kg", 199, 240, 17, 35, 4.9, 623},
		{"p6", "Whole Milk", "Fresh whole milk from grass-fed cows.", "dairy", "🥛", "MilkFresh", "1L", 75, 80, 6, 100, 4.6, 312},
		{"p7", "Free Range Eggs", "Farm fresh free-range eggs.", "dairy", "🥚", "HappyFarm", "12 pcs", 189, 210, 10, 60, 4.8, 445},
		{"p11", "Sourdough Bread", "Artisan sourdough baked fresh daily.", "bakery", "🍞", "ArtisanBake", "500g", 199, 230, 13, 20, 4.7, 234},
		{"p14", "Potato Chips", "Classic salted potato chips.", "snacks", "🥔", "CrispyCo", "200g", 99, 120, 18, 80, 4.2, 567},
		{"p16", "Dark Chocolate", "70% dark chocolate.", "snacks", "🍫", "ChocoCraft", "100g", 199, 230, 13, 70, 4.8, 388},
		{"p17", "Orange Juice", "Freshly squeezed orange juice.", "beverages", "🍊", "FreshSqueeze", "1L", 149, 170, 12, 65, 4.5, 267},
	}
}

func seedCoupons() []storefront.Coupon {
	return []storefront.Coupon{
		{ID: "c1", Code: "WELCOME10", Type: couponPercent, Value: decimal.NewFromInt(10), MinOrder: decimal.Zero, MaxUses: 1000, IsActive: 1},
		{ID: "c2", Code: "SAVE50", Type: couponFlat, Value: decimal.NewFromInt(50), MinOrder: decimal.NewFromInt(299), MaxUses: 500, IsActive: 1},
	}
}
