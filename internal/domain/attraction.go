package domain

import (
	"fmt"
	"time"
)

// AttractionType values match the persisted column.
type AttractionType int

const (
	TypeNatural       AttractionType = 1
	TypeCultural      AttractionType = 2
	TypeHistoric      AttractionType = 3
	TypeEntertainment AttractionType = 4
	TypeReligious     AttractionType = 5
)

func (t AttractionType) String() string {
	switch t {
	case TypeNatural:
		return "natural"
	case TypeCultural:
		return "cultural"
	case TypeHistoric:
		return "historic"
	case TypeEntertainment:
		return "entertainment"
	case TypeReligious:
		return "religious"
	}
	return fmt.Sprintf("type(%d)", int(t))
}

func ParseAttractionType(v string) (AttractionType, error) {
	switch v {
	case "natural", "1":
		return TypeNatural, nil
	case "cultural", "2":
		return TypeCultural, nil
	case "historic", "3":
		return TypeHistoric, nil
	case "entertainment", "4":
		return TypeEntertainment, nil
	case "religious", "5":
		return TypeReligious, nil
	}
	return 0, fmt.Errorf("unknown attraction type %q", v)
}

type Attraction struct {
	ID              int64
	Name            string
	Description     string
	Latitude        float64
	Longitude       float64
	Type            AttractionType
	Region          string
	ImageURL        string
	Rating          float64
	CreatedByUserID *int64
	IsApproved      bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewAttractionRating is the rating assigned to attractions born from an
// approved suggestion.
const NewAttractionRating = 5.0
