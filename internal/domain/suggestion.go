package domain

import "time"

// AttractionSuggestion is a promoter's proposal to create a new attraction
// or to edit an existing one. Persisted flat; the create/update branch is
// surfaced through the NewAttraction/Update variant accessors so callers
// never reach into the optional fields directly.
type AttractionSuggestion struct {
	ID                   int64
	PromoterID           int64
	AttractionID         *int64
	CreatesNewAttraction bool
	Title                string
	Details              string
	ProposedName         string
	ProposedDescription  string
	ProposedRegion       string
	ProposedType         *AttractionType
	ProposedLatitude     *float64
	ProposedLongitude    *float64
	ProposedImageURL     string
	Status               Status
	SubmittedAt          time.Time
	ReviewedAt           *time.Time
	ReviewedByUserID     *int64
	AdminResponse        string
}

// NewAttractionProposal is the fully-specified payload of a suggestion that
// creates an attraction. Every field is required by the time it is approved.
type NewAttractionProposal struct {
	Name        string
	Description string
	Region      string
	ImageURL    string
	Type        AttractionType
	Latitude    float64
	Longitude   float64
}

// AttractionUpdate is the payload of a suggestion that edits an existing
// attraction. Name, description, region and image always overwrite the
// target; type and coordinates only when proposed.
type AttractionUpdate struct {
	AttractionID int64
	Name         string
	Description  string
	Region       string
	ImageURL     string
	Type         *AttractionType
	Latitude     *float64
	Longitude    *float64
}

// NewAttraction extracts the creation payload. Fails with
// ErrIncompleteNewAttractionData unless coordinates and type are all present.
func (s AttractionSuggestion) NewAttraction() (NewAttractionProposal, error) {
	if s.ProposedLatitude == nil || s.ProposedLongitude == nil || s.ProposedType == nil {
		return NewAttractionProposal{}, ErrIncompleteNewAttractionData
	}
	return NewAttractionProposal{
		Name:        s.ProposedName,
		Description: s.ProposedDescription,
		Region:      s.ProposedRegion,
		ImageURL:    s.ProposedImageURL,
		Type:        *s.ProposedType,
		Latitude:    *s.ProposedLatitude,
		Longitude:   *s.ProposedLongitude,
	}, nil
}

// Update extracts the edit payload. Fails with ErrMissingTarget when the
// suggestion does not point at an attraction.
func (s AttractionSuggestion) Update() (AttractionUpdate, error) {
	if s.AttractionID == nil {
		return AttractionUpdate{}, ErrMissingTarget
	}
	return AttractionUpdate{
		AttractionID: *s.AttractionID,
		Name:         s.ProposedName,
		Description:  s.ProposedDescription,
		Region:       s.ProposedRegion,
		ImageURL:     s.ProposedImageURL,
		Type:         s.ProposedType,
		Latitude:     s.ProposedLatitude,
		Longitude:    s.ProposedLongitude,
	}, nil
}

// SuggestionDraft carries the caller-supplied fields of a new suggestion.
type SuggestionDraft struct {
	AttractionID         *int64
	CreatesNewAttraction bool
	Title                string
	Details              string
	ProposedName         string
	ProposedDescription  string
	ProposedRegion       string
	ProposedType         *AttractionType
	ProposedLatitude     *float64
	ProposedLongitude    *float64
	ProposedImageURL     string
}
