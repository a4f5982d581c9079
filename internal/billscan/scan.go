// Package billscan extracts bill details from photographed notes. The OCR
// engine itself is an external service behind the Recognizer interface; this
// package owns only the candidate filtering applied to its raw text output.
package billscan

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
)

// Recognizer produces raw text from an image reference. Implementations wrap
// an external analysis engine.
type Recognizer interface {
	RecognizeText(ctx context.Context, imageRef string) (string, error)
}

// Result is what a scan yields. A zero Result means the image produced
// nothing usable; scans never fail with an error.
type Result struct {
	// SerialNumber is the extracted candidate serial, empty when none found.
	SerialNumber string

	// IsStarNote is the star-note guess, nil when the scan could not tell.
	IsStarNote *bool

	// Success reports whether a serial number was extracted.
	Success bool
}

// Scanner runs images through a Recognizer and filters the output.
type Scanner struct {
	rec Recognizer
}

// NewScanner creates a scanner over the given recognition engine.
func NewScanner(rec Recognizer) *Scanner {
	return &Scanner{rec: rec}
}

// ProcessImage extracts a serial number candidate and a star-note guess from
// the image. Engine failures are absorbed: the result is simply empty.
func (s *Scanner) ProcessImage(ctx context.Context, imageRef string) Result {
	text, err := s.rec.RecognizeText(ctx, imageRef)
	if err != nil {
		slog.Warn("Image recognition failed", "image", imageRef, "error", err)
		return Result{}
	}

	var result Result
	if serial, ok := ExtractSerial(text); ok {
		result.SerialNumber = serial
		result.Success = true
	}

	star := strings.Contains(text, "*")
	result.IsStarNote = &star

	return result
}

// ExtractSerial picks the first serial number candidate out of raw OCR text.
// US currency serials are 8 to 11 alphanumeric characters with at least one
// letter and one digit; candidates are reported uppercased.
func ExtractSerial(text string) (string, bool) {
	for _, word := range strings.Fields(text) {
		if looksLikeSerial(word) {
			return strings.ToUpper(word), true
		}
	}
	return "", false
}

func looksLikeSerial(word string) bool {
	if len(word) < 8 || len(word) > 11 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range word {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			return false
		}
	}
	return hasLetter && hasDigit
}
