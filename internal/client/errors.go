package client

// ErrorKind classifies client call failures. Every failure a caller can see
// is one of these; there is no free-text-only error path.
type ErrorKind int

const (
	// KindTransport: the connection could not be established, or a read or
	// write on it failed.
	KindTransport ErrorKind = iota

	// KindProtocol: the peer sent something that is not a valid response.
	KindProtocol

	// KindNotLoggedIn: a bill-scoped call was made without a session. Checked
	// locally, before any network round-trip.
	KindNotLoggedIn

	// KindInvalidCredentials: login rejected. The server does not reveal
	// whether the username or the password was wrong.
	KindInvalidCredentials

	// KindDuplicate: the username or serial number already exists.
	KindDuplicate

	// KindRejected: an update was refused. The wire conflates "no such
	// serial" with "not the owner"; this kind inherits that conflation.
	KindRejected

	// KindServer: the server reported a failure outside the cases above.
	KindServer
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindNotLoggedIn:
		return "not_logged_in"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindDuplicate:
		return "duplicate"
	case KindRejected:
		return "rejected"
	default:
		return "server"
	}
}

// Error is the typed failure returned by every client call.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

// ErrNotLoggedIn is returned by bill-scoped calls made with a nil session.
var ErrNotLoggedIn = &Error{Kind: KindNotLoggedIn, Message: "Not logged in"}
