package service

import (
	"strings"
	"time"

	"github.com/eventboard/eventboard/internal/core/domain"
	"github.com/eventboard/eventboard/internal/core/ports"
)

// parseDraft trims the draft, drops blank image entries and checks the
// rules shared by create and update. Every offending field is reported.
func parseDraft(d ports.EventDraft) (domain.EventFields, error) {
	f := domain.EventFields{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Time:        strings.TrimSpace(d.Time),
		Location:    strings.TrimSpace(d.Location),
		SheetLink:   strings.TrimSpace(d.SheetLink),
	}
	for _, img := range d.Images {
		if img = strings.TrimSpace(img); img != "" {
			f.Images = append(f.Images, img)
		}
	}

	var errs []domain.FieldError
	required := func(field, value string) {
		if value == "" {
			errs = append(errs, domain.FieldError{Field: field, Message: "is required"})
		}
	}
	required("title", f.Title)
	required("description", f.Description)

	date := strings.TrimSpace(d.Date)
	if date == "" {
		errs = append(errs, domain.FieldError{Field: "date", Message: "is required"})
	} else if t, err := time.ParseInLocation(domain.DateLayout, date, time.UTC); err != nil {
		errs = append(errs, domain.FieldError{Field: "date", Message: "must be a date in YYYY-MM-DD format"})
	} else {
		f.Date = t
	}

	if f.Time != "" {
		if _, err := time.Parse(domain.TimeLayout, f.Time); err != nil {
			errs = append(errs, domain.FieldError{Field: "time", Message: "must be a time in HH:MM format"})
		}
	}

	required("location", f.Location)
	if len(f.Images) == 0 {
		errs = append(errs, domain.FieldError{Field: "images", Message: "at least one image is required"})
	}

	if len(errs) > 0 {
		return domain.EventFields{}, domain.Validation(errs...)
	}
	return f, nil
}
