package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dollartrack/internal/models"
	"dollartrack/internal/storage"
)

// billColumns is the shared SELECT list for bill reads, with the owner's
// username joined in.
const billColumns = `
	SELECT b.id, b.face_value, b.serial_number, b.date_recorded,
	       b.printing_location, b.series_year, b.is_star_note, b.is_star_filled,
	       b.image_path, b.estimated_value, b.added_by, u.username
	FROM bills b
	LEFT JOIN users u ON b.added_by = u.id
`

// CreateBill persists a new bill to the database.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.DateRecorded.IsZero() {
		bill.DateRecorded = time.Now()
	}

	query := `
		INSERT INTO bills (face_value, serial_number, date_recorded,
		                   printing_location, series_year, is_star_note,
		                   is_star_filled, image_path, estimated_value, added_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		bill.FaceValue,
		bill.SerialNumber,
		bill.DateRecorded.Unix(),
		bill.PrintingLocation,
		bill.SeriesYear,
		bill.IsStarNote,
		bill.IsStarFilled,
		bill.ImagePath,
		bill.EstimatedValue,
		bill.AddedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateSerial
		}
		return fmt.Errorf("failed to create bill: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read bill id: %w", err)
	}
	bill.ID = id

	return nil
}

// SearchBills returns bills matching every present filter, in insertion order.
// Absent filters impose no constraint; the printing location filter is a
// case-sensitive substring match.
func (s *SQLiteStore) SearchBills(ctx context.Context, criteria models.SearchCriteria) ([]models.Bill, error) {
	query := billColumns + " WHERE 1=1"
	var args []any

	if criteria.FaceValue != nil {
		query += " AND b.face_value = ?"
		args = append(args, *criteria.FaceValue)
	}
	if criteria.PrintingLocation != nil {
		query += " AND b.printing_location LIKE ?"
		args = append(args, "%"+*criteria.PrintingLocation+"%")
	}
	if criteria.SeriesYear != nil {
		query += " AND b.series_year = ?"
		args = append(args, *criteria.SeriesYear)
	}
	if criteria.IsStarNote != nil {
		query += " AND b.is_star_note = ?"
		args = append(args, *criteria.IsStarNote)
	}
	if criteria.AddedBy != nil {
		query += " AND b.added_by = ?"
		args = append(args, *criteria.AddedBy)
	}

	query += " ORDER BY b.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search bills: %w", err)
	}
	defer rows.Close()

	return scanBills(rows)
}

// BillsByOwner returns every bill recorded by the given user, in insertion order.
func (s *SQLiteStore) BillsByOwner(ctx context.Context, userID int64) ([]models.Bill, error) {
	rows, err := s.db.QueryContext(ctx, billColumns+" WHERE b.added_by = ? ORDER BY b.id", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user bills: %w", err)
	}
	defer rows.Close()

	return scanBills(rows)
}

// UpdateBill applies patch to the bill with the given serial number if userID
// is the recording owner. An empty patch, an unknown serial and a non-owner
// requester all report (false, nil) with the row untouched.
func (s *SQLiteStore) UpdateBill(ctx context.Context, serialNumber string, userID int64, patch models.BillPatch) (bool, error) {
	if patch.IsEmpty() {
		return false, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Verify the requester owns the record
	var addedBy int64
	err = tx.QueryRowContext(ctx,
		"SELECT added_by FROM bills WHERE serial_number = ?", serialNumber,
	).Scan(&addedBy)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check bill owner: %w", err)
	}
	if addedBy != userID {
		return false, nil
	}

	query := "UPDATE bills SET "
	var (
		sets []string
		args []any
	)
	appendSet := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if patch.FaceValue != nil {
		appendSet("face_value", *patch.FaceValue)
	}
	if patch.PrintingLocation != nil {
		appendSet("printing_location", *patch.PrintingLocation)
	}
	if patch.SeriesYear != nil {
		appendSet("series_year", *patch.SeriesYear)
	}
	if patch.IsStarNote != nil {
		appendSet("is_star_note", *patch.IsStarNote)
	}
	if patch.IsStarFilled != nil {
		appendSet("is_star_filled", *patch.IsStarFilled)
	}
	if patch.ImagePath != nil {
		appendSet("image_path", *patch.ImagePath)
	}
	if patch.EstimatedValue != nil {
		appendSet("estimated_value", *patch.EstimatedValue)
	}

	for i, set := range sets {
		if i > 0 {
			query += ", "
		}
		query += set
	}
	query += " WHERE serial_number = ?"
	args = append(args, serialNumber)

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update bill: %w", err)
	}
	changed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return changed > 0, nil
}

// scanBills drains rows produced by a billColumns query.
func scanBills(rows *sql.Rows) ([]models.Bill, error) {
	var bills []models.Bill
	for rows.Next() {
		var (
			bill         models.Bill
			dateRecorded int64
			location     sql.NullString
			seriesYear   sql.NullInt64
			starNote     sql.NullBool
			starFilled   sql.NullBool
			imagePath    sql.NullString
			estimated    sql.NullFloat64
			username     sql.NullString
		)
		if err := rows.Scan(
			&bill.ID,
			&bill.FaceValue,
			&bill.SerialNumber,
			&dateRecorded,
			&location,
			&seriesYear,
			&starNote,
			&starFilled,
			&imagePath,
			&estimated,
			&bill.AddedBy,
			&username,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}

		bill.DateRecorded = time.Unix(dateRecorded, 0)
		if location.Valid {
			bill.PrintingLocation = &location.String
		}
		if seriesYear.Valid {
			year := int(seriesYear.Int64)
			bill.SeriesYear = &year
		}
		if starNote.Valid {
			bill.IsStarNote = &starNote.Bool
		}
		if starFilled.Valid {
			bill.IsStarFilled = &starFilled.Bool
		}
		if imagePath.Valid {
			bill.ImagePath = &imagePath.String
		}
		if estimated.Valid {
			bill.EstimatedValue = &estimated.Float64
		}
		bill.AddedByUsername = username.String

		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	return bills, nil
}
