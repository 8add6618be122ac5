package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/giordipeperkamp/Megaplanner/core/model"
)

// WriteJSON writes the schedule to w in JSON format.
func WriteJSON(w io.Writer, sched model.Schedule) error {
	type row struct {
		SessionID     string `json:"session_id"`
		Date          string `json:"date"`
		StartTime     string `json:"start_time"`
		EndTime       string `json:"end_time"`
		LocationID    string `json:"location_id"`
		Room          string `json:"room,omitempty"`
		RequiredSkill string `json:"required_skill,omitempty"`
		DoctorID      string `json:"doctor_id,omitempty"`
		DoctorName    string `json:"doctor_name,omitempty"`
		Score         int    `json:"preference_score"`
	}
	rows := make([]row, 0, len(sched.Rows))
	for _, r := range sched.Rows {
		rows = append(rows, row{
			SessionID:     r.SessionID,
			Date:          model.FormatDate(r.Date),
			StartTime:     r.Start.String(),
			EndTime:       r.End.String(),
			LocationID:    r.LocationID,
			Room:          r.Room,
			RequiredSkill: r.RequiredSkill,
			DoctorID:      r.DoctorID,
			DoctorName:    r.DoctorName,
			Score:         r.Score,
		})
	}
	enc := json.NewEncoder(w)
	return enc.Encode(rows)
}

// WriteCSV writes the schedule to w in CSV format. Row order is the
// schedule's own (date, start, session id) order, so identical runs produce
// byte-identical files.
func WriteCSV(w io.Writer, sched model.Schedule) error {
	cw := csv.NewWriter(w)
	header := []string{
		"session_id", "date", "start_time", "end_time", "location_id",
		"room", "required_skill", "doctor_id", "doctor_name", "preference_score",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range sched.Rows {
		rec := []string{
			r.SessionID,
			model.FormatDate(r.Date),
			r.Start.String(),
			r.End.String(),
			r.LocationID,
			r.Room,
			r.RequiredSkill,
			r.DoctorID,
			r.DoctorName,
			strconv.Itoa(r.Score),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSessionsCSV writes generated sessions in the sessions input schema,
// for feeding back into the planner.
func WriteSessionsCSV(w io.Writer, sessions []model.Session) error {
	cw := csv.NewWriter(w)
	header := []string{"session_id", "date", "location_id", "start_time", "end_time", "required_skill", "room"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range sessions {
		rec := []string{
			s.ID,
			model.FormatDate(s.Date),
			s.LocationID,
			s.Start.String(),
			s.End.String(),
			s.RequiredSkill,
			s.Room,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
