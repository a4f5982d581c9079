package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"dollartrack/internal/models"
	"dollartrack/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func mustCreateUser(t *testing.T, store *SQLiteStore, username string) *models.User {
	t.Helper()

	user := &models.User{Username: username, PasswordHash: "hash", Salt: "salt"}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%q) failed: %v", username, err)
	}
	return user
}

func mustCreateBill(t *testing.T, store *SQLiteStore, bill *models.Bill) {
	t.Helper()

	if err := store.CreateBill(context.Background(), bill); err != nil {
		t.Fatalf("CreateBill(%q) failed: %v", bill.SerialNumber, err)
	}
}

func ptr[T any](v T) *T { return &v }

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser assigns sequential IDs", func(t *testing.T) {
		alice := mustCreateUser(t, store, "alice")
		bob := mustCreateUser(t, store, "bob")

		if alice.ID != 1 {
			t.Errorf("Expected first user ID 1, got %d", alice.ID)
		}
		if bob.ID != 2 {
			t.Errorf("Expected second user ID 2, got %d", bob.ID)
		}
		if alice.CreatedAt.IsZero() {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("Duplicate username is rejected", func(t *testing.T) {
		dup := &models.User{Username: "alice", PasswordHash: "other", Salt: "other"}
		err := store.CreateUser(ctx, dup)
		if !errors.Is(err, storage.ErrDuplicateUsername) {
			t.Fatalf("Expected ErrDuplicateUsername, got %v", err)
		}
	})

	t.Run("GetUserByUsername round-trips", func(t *testing.T) {
		user, err := store.GetUserByUsername(ctx, "alice")
		if err != nil {
			t.Fatalf("GetUserByUsername failed: %v", err)
		}
		if user == nil {
			t.Fatal("Expected user, got nil")
		}
		if user.Username != "alice" || user.PasswordHash != "hash" || user.Salt != "salt" {
			t.Errorf("Unexpected user fields: %+v", user)
		}
	})

	t.Run("GetUserByUsername returns nil for unknown user", func(t *testing.T) {
		user, err := store.GetUserByUsername(ctx, "nobody")
		if err != nil {
			t.Fatalf("GetUserByUsername failed: %v", err)
		}
		if user != nil {
			t.Errorf("Expected nil for unknown user, got %+v", user)
		}
	})
}

func TestCreateBill(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, store, "alice")
	bob := mustCreateUser(t, store, "bob")

	t.Run("Records all fields", func(t *testing.T) {
		bill := &models.Bill{
			FaceValue:        20,
			SerialNumber:     "AB12345678",
			PrintingLocation: ptr("FW"),
			SeriesYear:       ptr(2017),
			IsStarNote:       ptr(true),
			ImagePath:        ptr("/tmp/front.png"),
			AddedBy:          alice.ID,
		}
		mustCreateBill(t, store, bill)

		if bill.ID == 0 {
			t.Error("Expected bill ID to be assigned")
		}
		if bill.DateRecorded.IsZero() {
			t.Error("Expected DateRecorded to be set")
		}

		bills, err := store.BillsByOwner(ctx, alice.ID)
		if err != nil {
			t.Fatalf("BillsByOwner failed: %v", err)
		}
		if len(bills) != 1 {
			t.Fatalf("Expected 1 bill, got %d", len(bills))
		}
		got := bills[0]
		if got.SerialNumber != "AB12345678" || got.FaceValue != 20 {
			t.Errorf("Unexpected bill: %+v", got)
		}
		if got.PrintingLocation == nil || *got.PrintingLocation != "FW" {
			t.Errorf("Expected printing location FW, got %v", got.PrintingLocation)
		}
		if got.IsStarNote == nil || !*got.IsStarNote {
			t.Errorf("Expected star note flag set, got %v", got.IsStarNote)
		}
		if got.IsStarFilled != nil {
			t.Errorf("Expected absent star-filled flag to stay nil, got %v", got.IsStarFilled)
		}
		if got.EstimatedValue != nil {
			t.Errorf("Expected no estimated value yet, got %v", got.EstimatedValue)
		}
		if got.AddedByUsername != "alice" {
			t.Errorf("Expected joined username alice, got %q", got.AddedByUsername)
		}
	})

	t.Run("Duplicate serial is rejected for any owner", func(t *testing.T) {
		sameOwner := &models.Bill{FaceValue: 20, SerialNumber: "AB12345678", AddedBy: alice.ID}
		if err := store.CreateBill(ctx, sameOwner); !errors.Is(err, storage.ErrDuplicateSerial) {
			t.Fatalf("Expected ErrDuplicateSerial for same owner, got %v", err)
		}

		otherOwner := &models.Bill{FaceValue: 20, SerialNumber: "AB12345678", AddedBy: bob.ID}
		if err := store.CreateBill(ctx, otherOwner); !errors.Is(err, storage.ErrDuplicateSerial) {
			t.Fatalf("Expected ErrDuplicateSerial for other owner, got %v", err)
		}
	})
}

func TestSearchBills(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, store, "alice")
	bob := mustCreateUser(t, store, "bob")

	mustCreateBill(t, store, &models.Bill{
		FaceValue: 20, SerialNumber: "AA11111111", AddedBy: alice.ID,
		PrintingLocation: ptr("FW"), SeriesYear: ptr(2013), IsStarNote: ptr(false),
	})
	mustCreateBill(t, store, &models.Bill{
		FaceValue: 20, SerialNumber: "BB22222222", AddedBy: bob.ID,
		PrintingLocation: ptr("DC"), SeriesYear: ptr(2017), IsStarNote: ptr(true),
	})
	mustCreateBill(t, store, &models.Bill{
		FaceValue: 100, SerialNumber: "CC33333333", AddedBy: alice.ID,
		PrintingLocation: ptr("FW"), SeriesYear: ptr(2017),
	})

	search := func(t *testing.T, criteria models.SearchCriteria) []models.Bill {
		t.Helper()
		bills, err := store.SearchBills(ctx, criteria)
		if err != nil {
			t.Fatalf("SearchBills failed: %v", err)
		}
		return bills
	}

	serials := func(bills []models.Bill) []string {
		out := make([]string, len(bills))
		for i, b := range bills {
			out[i] = b.SerialNumber
		}
		return out
	}

	t.Run("No filters returns everything in insertion order", func(t *testing.T) {
		bills := search(t, models.SearchCriteria{})
		want := []string{"AA11111111", "BB22222222", "CC33333333"}
		got := serials(bills)
		if len(got) != len(want) {
			t.Fatalf("Expected %d bills, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Position %d: expected %s, got %s", i, want[i], got[i])
			}
		}
	})

	t.Run("Face value filter", func(t *testing.T) {
		bills := search(t, models.SearchCriteria{FaceValue: ptr(20.0)})
		if len(bills) != 2 {
			t.Fatalf("Expected 2 twenties, got %d: %v", len(bills), serials(bills))
		}
	})

	t.Run("Printing location is a substring match", func(t *testing.T) {
		bills := search(t, models.SearchCriteria{PrintingLocation: ptr("F")})
		if len(bills) != 2 {
			t.Fatalf("Expected 2 FW bills, got %d: %v", len(bills), serials(bills))
		}
	})

	t.Run("Star note filter", func(t *testing.T) {
		bills := search(t, models.SearchCriteria{IsStarNote: ptr(true)})
		if len(bills) != 1 || bills[0].SerialNumber != "BB22222222" {
			t.Fatalf("Expected only BB22222222, got %v", serials(bills))
		}
	})

	t.Run("Combined filters intersect", func(t *testing.T) {
		bills := search(t, models.SearchCriteria{
			FaceValue:  ptr(20.0),
			SeriesYear: ptr(2017),
		})
		if len(bills) != 1 || bills[0].SerialNumber != "BB22222222" {
			t.Fatalf("Expected only BB22222222, got %v", serials(bills))
		}
	})

	t.Run("Owner filter matches BillsByOwner", func(t *testing.T) {
		searched := search(t, models.SearchCriteria{AddedBy: &alice.ID})
		owned, err := store.BillsByOwner(ctx, alice.ID)
		if err != nil {
			t.Fatalf("BillsByOwner failed: %v", err)
		}
		if len(searched) != 2 || len(owned) != 2 {
			t.Fatalf("Expected 2 bills both ways, got %d and %d", len(searched), len(owned))
		}
		for i := range owned {
			if owned[i].SerialNumber != searched[i].SerialNumber {
				t.Errorf("Position %d: %s vs %s", i, owned[i].SerialNumber, searched[i].SerialNumber)
			}
		}
	})
}

func TestUpdateBill(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, store, "alice")
	bob := mustCreateUser(t, store, "bob")

	mustCreateBill(t, store, &models.Bill{FaceValue: 20, SerialNumber: "AB12345678", AddedBy: alice.ID})

	currentBill := func(t *testing.T) models.Bill {
		t.Helper()
		bills, err := store.BillsByOwner(ctx, alice.ID)
		if err != nil || len(bills) != 1 {
			t.Fatalf("Failed to reload bill: %v (%d bills)", err, len(bills))
		}
		return bills[0]
	}

	t.Run("Empty patch changes nothing", func(t *testing.T) {
		changed, err := store.UpdateBill(ctx, "AB12345678", alice.ID, models.BillPatch{})
		if err != nil {
			t.Fatalf("UpdateBill failed: %v", err)
		}
		if changed {
			t.Error("Expected empty patch to report no change")
		}
	})

	t.Run("Unknown serial reports failure", func(t *testing.T) {
		changed, err := store.UpdateBill(ctx, "ZZ99999999", alice.ID, models.BillPatch{EstimatedValue: ptr(50.0)})
		if err != nil {
			t.Fatalf("UpdateBill failed: %v", err)
		}
		if changed {
			t.Error("Expected update of unknown serial to fail")
		}
	})

	t.Run("Non-owner cannot update", func(t *testing.T) {
		changed, err := store.UpdateBill(ctx, "AB12345678", bob.ID, models.BillPatch{EstimatedValue: ptr(50.0)})
		if err != nil {
			t.Fatalf("UpdateBill failed: %v", err)
		}
		if changed {
			t.Error("Expected non-owner update to fail")
		}
		if got := currentBill(t); got.EstimatedValue != nil {
			t.Errorf("Expected row unchanged, got estimated value %v", *got.EstimatedValue)
		}
	})

	t.Run("Owner update applies every patched field", func(t *testing.T) {
		changed, err := store.UpdateBill(ctx, "AB12345678", alice.ID, models.BillPatch{
			EstimatedValue: ptr(50.0),
			SeriesYear:     ptr(2017),
			IsStarFilled:   ptr(true),
		})
		if err != nil {
			t.Fatalf("UpdateBill failed: %v", err)
		}
		if !changed {
			t.Fatal("Expected owner update to succeed")
		}

		got := currentBill(t)
		if got.EstimatedValue == nil || *got.EstimatedValue != 50 {
			t.Errorf("Expected estimated value 50, got %v", got.EstimatedValue)
		}
		if got.SeriesYear == nil || *got.SeriesYear != 2017 {
			t.Errorf("Expected series year 2017, got %v", got.SeriesYear)
		}
		if got.IsStarFilled == nil || !*got.IsStarFilled {
			t.Errorf("Expected star-filled flag set, got %v", got.IsStarFilled)
		}
		if got.FaceValue != 20 {
			t.Errorf("Expected untouched face value 20, got %g", got.FaceValue)
		}
	})
}
