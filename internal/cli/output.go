package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/atopofconscience/mehfil/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteEvents writes an event listing in the specified format
func WriteEvents(w io.Writer, events []*event.Event, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, events)
	case FormatText:
		return writeText(w, events)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, events []*event.Event) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(events)
}

func writeText(w io.Writer, events []*event.Event) error {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	for _, evt := range events {
		date := evt.Date
		if evt.EndDate != "" {
			date += " to " + evt.EndDate
		}
		fmt.Fprintf(w, "%s  %s\n", date, evt.Name)

		var details []string
		if evt.Time != "" {
			details = append(details, evt.Time)
		}
		if evt.Location != "" {
			details = append(details, evt.Location)
		}
		if evt.Price != "" {
			details = append(details, evt.Price)
		}
		if len(details) > 0 {
			fmt.Fprintf(w, "            %s\n", strings.Join(details, " | "))
		}
		if len(evt.Categories) > 0 {
			fmt.Fprintf(w, "            [%s]\n", strings.Join(evt.Categories, ", "))
		}
	}

	fmt.Fprintf(w, "\nTotal: %d events\n", len(events))
	return nil
}
