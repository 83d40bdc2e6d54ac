package main

import (
	"github.com/shopspring/decimal"

	catalog "beatstore/internal/catalog/models"
	id "beatstore/pkg/domain"
)

func demoCatalog() []catalog.Product {
	return []catalog.Product{
		{
			ID: 1, Type: id.ProductTypeBeat, Title: "Midnight Drill",
			Price:      decimal.RequireFromString("29.99"),
			ArtworkURL: "/artwork/beats/1.jpg",
			Variants:   []catalog.Variant{{Name: "mp3 lease", Stock: 100}, {Name: "exclusive", Stock: 1}},
		},
		{
			ID: 2, Type: id.ProductTypeBeat, Title: "Sunset Boom Bap",
			Price:      decimal.RequireFromString("24.99"),
			ArtworkURL: "/artwork/beats/2.jpg",
			Variants:   []catalog.Variant{{Name: "mp3 lease", Stock: 100}, {Name: "exclusive", Stock: 0}},
		},
		{
			ID: 10, Type: id.ProductTypeBeat, Title: "Glass Trap",
			Price:      decimal.RequireFromString("299"),
			ArtworkURL: "/artwork/beats/10.jpg",
			Variants:   []catalog.Variant{{Name: "exclusive", Stock: 1}},
		},
		{
			ID: 1, Type: id.ProductTypeSoundKit, Title: "Analog Drums Vol. 1",
			Price:      decimal.RequireFromString("49.00"),
			ArtworkURL: "/artwork/kits/1.jpg",
			Variants:   []catalog.Variant{{Name: "standard", Stock: 1000}},
		},
		{
			ID: 2, Type: id.ProductTypeSoundKit, Title: "Vocal Chops",
			Price:      decimal.RequireFromString("19.50"),
			ArtworkURL: "/artwork/kits/2.jpg",
			Variants:   []catalog.Variant{{Name: "standard", Stock: 0}},
		},
	}
}
