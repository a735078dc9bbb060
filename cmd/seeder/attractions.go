package main

import "rovia/internal/domain"

// Baseline catalog so the map is not empty on a fresh install.
var baselineAttractions = []domain.Attraction{
	{
		Name:        "Castelul Peleș",
		Description: "Castel regal din secolul XIX, situat în Sinaia, Prahova.",
		Latitude:    45.3599,
		Longitude:   25.5428,
		Type:        domain.TypeHistoric,
		Region:      "Prahova",
		ImageURL:    "https://images.unsplash.com/photo-1578662996442-48f60103fc96",
		Rating:      4.8,
	},
	{
		Name:        "Palatul Parlamentului",
		Description: "Una dintre cele mai mari clădiri administrative din lume.",
		Latitude:    44.4268,
		Longitude:   26.0873,
		Type:        domain.TypeCultural,
		Region:      "București",
		ImageURL:    "https://images.unsplash.com/photo-1541963463532-d68292c34d19",
		Rating:      4.5,
	},
	{
		Name:        "Cetatea Râșnov",
		Description: "Fortificație medievală din secolul XIII.",
		Latitude:    45.5877,
		Longitude:   25.4608,
		Type:        domain.TypeHistoric,
		Region:      "Brașov",
		ImageURL:    "https://images.unsplash.com/photo-1565031491910-e57fac031c41",
		Rating:      4.3,
	},
	{
		Name:        "Lacul Roșu",
		Description: "Lac natural format în urma unei alunecări de teren.",
		Latitude:    46.6895,
		Longitude:   25.9525,
		Type:        domain.TypeNatural,
		Region:      "Harghita",
		ImageURL:    "https://images.unsplash.com/photo-1506905925346-21bda4d32df4",
		Rating:      4.6,
	},
	{
		Name:        "Mănăstirea Voroneț",
		Description: "Mănăstire celebră pentru frescele sale exterioare.",
		Latitude:    47.5414,
		Longitude:   25.9167,
		Type:        domain.TypeReligious,
		Region:      "Suceava",
		ImageURL:    "https://images.unsplash.com/photo-1548625149-fc4a29cf7092",
		Rating:      4.7,
	},
}
