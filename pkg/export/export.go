// Package export renders weekly schedules for people and spreadsheets.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/kilianp07/ridecheck/core/scheduler"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// CSVHeader is the first line written by WriteCSV.
var CSVHeader = []string{"day", "kind", "worker", "ride", "start", "end"}

// WriteJSON writes the whole schedule, including per-day status and stats.
func WriteJSON(w io.Writer, ws scheduler.WeeklySchedule) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ws)
}

// WriteCSV writes one line per row. Marker rows leave worker, start and end
// empty where they do not apply.
func WriteCSV(w io.Writer, ws scheduler.WeeklySchedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range ws.Rows() {
		rec := []string{r.DayName(), string(r.Kind), r.Worker, r.Ride, "", ""}
		if r.Kind == scheduler.RowCheck || r.Kind == scheduler.RowOverflow {
			rec[4] = strconv.Itoa(r.Start)
			rec[5] = strconv.Itoa(r.End)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write dispatches on format.
func Write(w io.Writer, format string, ws scheduler.WeeklySchedule) error {
	switch format {
	case FormatCSV, "":
		return WriteCSV(w, ws)
	case FormatJSON:
		return WriteJSON(w, ws)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
