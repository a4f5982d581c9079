// Package protocol defines the wire format shared by the tracker server and
// client: one JSON document per request, one per response, over a plain byte
// stream. There is no length prefix or delimiter beyond JSON's own syntax; a
// streaming decoder reads exactly one document per message.
package protocol

import (
	"encoding/json"
	"fmt"

	"dollartrack/internal/models"
)

// Action identifies a request type. The set is closed; anything else is
// rejected with ErrInvalidAction.
type Action string

const (
	ActionLogin       Action = "login"
	ActionCreateUser  Action = "create_user"
	ActionAddBill     Action = "add_bill"
	ActionSearchBills Action = "search_bills"
	ActionUpdateBill  Action = "update_bill"
	ActionUserBills   Action = "get_user_bills"
)

// ErrInvalidAction is the error message returned for an unrecognized action.
const ErrInvalidAction = "Invalid action"

// Request is the envelope of every client message. Data holds the raw payload
// whose shape depends on Action; DecodePayload turns it into a typed value.
type Request struct {
	Action Action          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// Response is the envelope of every server message.
type Response struct {
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
	UserID  int64         `json:"user_id,omitempty"`
	Results []models.Bill `json:"results,omitempty"`
}

// Payload is implemented by the typed data payload of each action, making the
// request variants a closed set the dispatcher can switch over exhaustively.
type Payload interface {
	action() Action
}

// Credentials is the payload of login and create_user.
type Credentials struct {
	Action   Action `json:"-"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *Credentials) action() Action { return c.Action }

// AddBill is the payload of add_bill.
type AddBill struct {
	FaceValue        float64  `json:"face_value"`
	SerialNumber     string   `json:"serial_number"`
	UserID           int64    `json:"user_id"`
	PrintingLocation *string  `json:"printing_location,omitempty"`
	SeriesYear       *int     `json:"series_year,omitempty"`
	IsStarNote       *bool    `json:"is_star_note,omitempty"`
	IsStarFilled     *bool    `json:"is_star_filled,omitempty"`
	ImagePath        *string  `json:"image_path,omitempty"`
	EstimatedValue   *float64 `json:"estimated_value,omitempty"`
}

func (*AddBill) action() Action { return ActionAddBill }

// Bill converts the payload into the domain model.
func (a *AddBill) Bill() *models.Bill {
	return &models.Bill{
		FaceValue:        a.FaceValue,
		SerialNumber:     a.SerialNumber,
		AddedBy:          a.UserID,
		PrintingLocation: a.PrintingLocation,
		SeriesYear:       a.SeriesYear,
		IsStarNote:       a.IsStarNote,
		IsStarFilled:     a.IsStarFilled,
		ImagePath:        a.ImagePath,
		EstimatedValue:   a.EstimatedValue,
	}
}

// SearchBills is the payload of search_bills: the filter fields themselves.
type SearchBills struct {
	models.SearchCriteria
}

func (*SearchBills) action() Action { return ActionSearchBills }

// UpdateBill is the payload of update_bill.
type UpdateBill struct {
	SerialNumber string           `json:"serial_number"`
	UserID       int64            `json:"user_id"`
	Updates      models.BillPatch `json:"updates"`
}

func (*UpdateBill) action() Action { return ActionUpdateBill }

// UserBills is the payload of get_user_bills.
type UserBills struct {
	UserID int64 `json:"user_id"`
}

func (*UserBills) action() Action { return ActionUserBills }

// DecodePayload parses the request data into the typed payload for its action.
// An unknown action yields an error carrying ErrInvalidAction.
func DecodePayload(req *Request) (Payload, error) {
	data := req.Data
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}

	var payload Payload
	switch req.Action {
	case ActionLogin, ActionCreateUser:
		payload = &Credentials{Action: req.Action}
	case ActionAddBill:
		payload = &AddBill{}
	case ActionSearchBills:
		payload = &SearchBills{}
	case ActionUpdateBill:
		payload = &UpdateBill{}
	case ActionUserBills:
		payload = &UserBills{}
	default:
		return nil, fmt.Errorf("%s", ErrInvalidAction)
	}

	if err := json.Unmarshal(data, payload); err != nil {
		return nil, fmt.Errorf("malformed %s payload: %w", req.Action, err)
	}
	return payload, nil
}

// OK is the generic success response.
func OK() Response { return Response{Success: true} }

// Bool mirrors the boolean outcome of a store write: success or a bare
// failure with no distinguishing detail.
func Bool(ok bool) Response { return Response{Success: ok} }

// Fail builds a failure response with an error message.
func Fail(msg string) Response { return Response{Success: false, Error: msg} }

// LoggedIn builds the successful login response.
func LoggedIn(userID int64) Response { return Response{Success: true, UserID: userID} }

// WithResults builds a successful query response.
func WithResults(bills []models.Bill) Response {
	return Response{Success: true, Results: bills}
}
