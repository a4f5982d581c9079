package models

import "time"

// Bill represents one tracked currency note.
//
// The serial number is the natural key: only one record of a given serial can
// exist in the whole collection, regardless of who recorded it. A bill is
// mutable only by the user that recorded it.
type Bill struct {
	// ID is the numeric identifier assigned by the database.
	ID int64 `json:"id"`

	// SerialNumber is the alphanumeric serial printed on the note. Unique
	// across all users.
	SerialNumber string `json:"serial_number"`

	// FaceValue is the printed denomination in dollars.
	FaceValue float64 `json:"face_value"`

	// PrintingLocation is the facility code on the note, when known.
	PrintingLocation *string `json:"printing_location,omitempty"`

	// SeriesYear is the series year printed on the note, when known.
	SeriesYear *int `json:"series_year,omitempty"`

	// IsStarNote marks a replacement note (star suffix in the serial).
	IsStarNote *bool `json:"is_star_note,omitempty"`

	// IsStarFilled is an opaque optional flag carried through storage and the
	// wire untouched. No code path assigns it a meaning.
	IsStarFilled *bool `json:"is_star_filled,omitempty"`

	// ImagePath points at externally stored image data, when a photo of the
	// note was captured. The tracker never reads the file itself.
	ImagePath *string `json:"image_path,omitempty"`

	// EstimatedValue is the collectible market estimate in dollars, when a
	// valuation lookup produced one.
	EstimatedValue *float64 `json:"estimated_value,omitempty"`

	// AddedBy is the ID of the user that recorded the bill. Set at creation,
	// immutable after.
	AddedBy int64 `json:"added_by"`

	// AddedByUsername is the owner's username, joined in on reads for display.
	AddedByUsername string `json:"username,omitempty"`

	// DateRecorded is when the bill was recorded.
	DateRecorded time.Time `json:"date_recorded"`
}

// SearchCriteria is a sparse set of filters for querying bills. Nil fields
// impose no constraint; present fields combine with logical AND.
type SearchCriteria struct {
	// FaceValue matches exactly.
	FaceValue *float64 `json:"face_value,omitempty"`

	// PrintingLocation matches as a case-sensitive substring.
	PrintingLocation *string `json:"printing_location,omitempty"`

	// SeriesYear matches exactly.
	SeriesYear *int `json:"series_year,omitempty"`

	// IsStarNote matches exactly.
	IsStarNote *bool `json:"is_star_note,omitempty"`

	// AddedBy restricts to a single owner.
	AddedBy *int64 `json:"added_by,omitempty"`
}

// BillPatch is a partial update to a bill. Nil fields are left untouched.
// The serial number itself is not patchable; it is the bill's identity.
type BillPatch struct {
	FaceValue        *float64 `json:"face_value,omitempty"`
	PrintingLocation *string  `json:"printing_location,omitempty"`
	SeriesYear       *int     `json:"series_year,omitempty"`
	IsStarNote       *bool    `json:"is_star_note,omitempty"`
	IsStarFilled     *bool    `json:"is_star_filled,omitempty"`
	ImagePath        *string  `json:"image_path,omitempty"`
	EstimatedValue   *float64 `json:"estimated_value,omitempty"`
}

// IsEmpty reports whether the patch touches no fields.
func (p BillPatch) IsEmpty() bool {
	return p.FaceValue == nil &&
		p.PrintingLocation == nil &&
		p.SeriesYear == nil &&
		p.IsStarNote == nil &&
		p.IsStarFilled == nil &&
		p.ImagePath == nil &&
		p.EstimatedValue == nil
}
