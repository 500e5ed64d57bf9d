package exchange

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/erazemk/reclaim/internal/model"
)

// MaxTextLength bounds claim messages, chat bodies and item descriptions.
const MaxTextLength = 2000

const maxFieldLength = 200

const dateLayout = "2006-01-02"

func normalizeItem(kind model.ItemKind, in model.ItemInput) (model.ItemInput, error) {
	if !kind.Valid() {
		return in, model.NewValidationError("kind", "must be lost or found")
	}

	// Casers keep state between calls, so each normalisation gets its own.
	title := cases.Title(language.Und, cases.NoLower)

	out := model.ItemInput{
		Name:        title.String(collapseSpaces(in.Name)),
		Location:    title.String(collapseSpaces(in.Location)),
		Date:        strings.TrimSpace(in.Date),
		Description: strings.TrimSpace(in.Description),
		Contact:     strings.TrimSpace(in.Contact),
		ImageRef:    strings.TrimSpace(in.ImageRef),
	}

	for _, f := range []struct {
		name, value string
	}{
		{"name", out.Name},
		{"location", out.Location},
		{"date", out.Date},
		{"contact", out.Contact},
	} {
		if f.value == "" {
			return in, model.NewValidationError(f.name, "is required")
		}
		if utf8.RuneCountInString(f.value) > maxFieldLength {
			return in, model.NewValidationError(f.name, fmt.Sprintf("must be at most %d characters", maxFieldLength))
		}
	}

	if _, err := time.Parse(dateLayout, out.Date); err != nil {
		return in, model.NewValidationError("date", "must be a date in YYYY-MM-DD format")
	}
	if utf8.RuneCountInString(out.Description) > MaxTextLength {
		return in, model.NewValidationError("description", fmt.Sprintf("must be at most %d characters", MaxTextLength))
	}
	if kind == model.ItemKindFound && out.ImageRef == "" {
		return in, model.NewValidationError("image", "is required for found items")
	}

	return out, nil
}

// normalizeText trims s and checks it is non-empty and within MaxTextLength.
func normalizeText(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", model.NewValidationError(field, "must not be empty")
	}
	if utf8.RuneCountInString(s) > MaxTextLength {
		return "", model.NewValidationError(field, fmt.Sprintf("must be at most %d characters", MaxTextLength))
	}
	return s, nil
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
