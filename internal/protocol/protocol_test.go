package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func decode(t *testing.T, action Action, data string) Payload {
	t.Helper()
	payload, err := DecodePayload(&Request{Action: action, Data: json.RawMessage(data)})
	if err != nil {
		t.Fatalf("DecodePayload(%s) failed: %v", action, err)
	}
	return payload
}

func TestDecodePayload(t *testing.T) {
	t.Run("login carries its action", func(t *testing.T) {
		payload := decode(t, ActionLogin, `{"username":"alice","password":"pw1"}`)
		creds, ok := payload.(*Credentials)
		if !ok {
			t.Fatalf("Expected *Credentials, got %T", payload)
		}
		if creds.Action != ActionLogin || creds.Username != "alice" || creds.Password != "pw1" {
			t.Errorf("Unexpected payload: %+v", creds)
		}
	})

	t.Run("add_bill decodes optional fields", func(t *testing.T) {
		payload := decode(t, ActionAddBill,
			`{"face_value":20,"serial_number":"AB12345678","user_id":1,"is_star_note":true}`)
		add, ok := payload.(*AddBill)
		if !ok {
			t.Fatalf("Expected *AddBill, got %T", payload)
		}

		bill := add.Bill()
		if bill.FaceValue != 20 || bill.SerialNumber != "AB12345678" || bill.AddedBy != 1 {
			t.Errorf("Unexpected bill: %+v", bill)
		}
		if bill.IsStarNote == nil || !*bill.IsStarNote {
			t.Errorf("Expected star note flag, got %v", bill.IsStarNote)
		}
		if bill.SeriesYear != nil || bill.ImagePath != nil {
			t.Errorf("Expected absent optionals to stay nil: %+v", bill)
		}
	})

	t.Run("search_bills tolerates missing data", func(t *testing.T) {
		payload, err := DecodePayload(&Request{Action: ActionSearchBills})
		if err != nil {
			t.Fatalf("DecodePayload failed: %v", err)
		}
		search, ok := payload.(*SearchBills)
		if !ok {
			t.Fatalf("Expected *SearchBills, got %T", payload)
		}
		if search.FaceValue != nil || search.AddedBy != nil {
			t.Errorf("Expected empty criteria, got %+v", search)
		}
	})

	t.Run("update_bill decodes the patch", func(t *testing.T) {
		payload := decode(t, ActionUpdateBill,
			`{"serial_number":"AB12345678","user_id":1,"updates":{"estimated_value":50}}`)
		upd, ok := payload.(*UpdateBill)
		if !ok {
			t.Fatalf("Expected *UpdateBill, got %T", payload)
		}
		if upd.Updates.IsEmpty() {
			t.Fatal("Expected non-empty patch")
		}
		if upd.Updates.EstimatedValue == nil || *upd.Updates.EstimatedValue != 50 {
			t.Errorf("Expected estimated value 50, got %v", upd.Updates.EstimatedValue)
		}
	})

	t.Run("unknown action is rejected", func(t *testing.T) {
		_, err := DecodePayload(&Request{Action: "drop_tables"})
		if err == nil || err.Error() != ErrInvalidAction {
			t.Fatalf("Expected %q, got %v", ErrInvalidAction, err)
		}
	})

	t.Run("malformed payload names the action", func(t *testing.T) {
		_, err := DecodePayload(&Request{Action: ActionAddBill, Data: json.RawMessage(`{"face_value":"twenty"}`)})
		if err == nil || !strings.Contains(err.Error(), "add_bill") {
			t.Fatalf("Expected add_bill decode error, got %v", err)
		}
	})
}

func TestPatchIsEmpty(t *testing.T) {
	upd := decode(t, ActionUpdateBill, `{"serial_number":"X","user_id":1,"updates":{}}`).(*UpdateBill)
	if !upd.Updates.IsEmpty() {
		t.Error("Expected empty updates mapping to decode as empty patch")
	}
}
