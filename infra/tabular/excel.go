package tabular

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/giordipeperkamp/Megaplanner/core/ingest"
)

// Workbook tab names, identical in semantics to the CSV file set.
const (
	SheetDoctors     = "Doctors"
	SheetLocations   = "Locations"
	SheetRooms       = "Rooms"
	SheetSessions    = "Sessions"
	SheetPreferences = "Preferences"
	SheetTravelTimes = "TravelTimes"
	SheetWorkdays    = "DoctorWorkdays"
	SheetWeekRules   = "DoctorWeekRules"
)

// ReadWorkbook loads all recognized tabs from one Excel workbook. Absent
// optional tabs leave the corresponding table nil.
func ReadWorkbook(path string) (ingest.Tables, error) {
	var tables ingest.Tables
	f, err := excelize.OpenFile(path)
	if err != nil {
		return tables, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	present := make(map[string]struct{})
	for _, name := range f.GetSheetList() {
		present[name] = struct{}{}
	}

	read := func(sheet string) (*ingest.Table, error) {
		if _, ok := present[sheet]; !ok {
			return nil, nil
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("sheet %s: missing header row", sheet)
		}
		return &ingest.Table{Source: path + "#" + sheet, Header: rows[0], Rows: rows[1:]}, nil
	}

	if tables.Doctors, err = read(SheetDoctors); err != nil {
		return tables, err
	}
	if tables.Locations, err = read(SheetLocations); err != nil {
		return tables, err
	}
	if tables.Rooms, err = read(SheetRooms); err != nil {
		return tables, err
	}
	if tables.Sessions, err = read(SheetSessions); err != nil {
		return tables, err
	}
	if tables.Preferences, err = read(SheetPreferences); err != nil {
		return tables, err
	}
	if tables.TravelTimes, err = read(SheetTravelTimes); err != nil {
		return tables, err
	}
	if tables.Workdays, err = read(SheetWorkdays); err != nil {
		return tables, err
	}
	if tables.WeekRules, err = read(SheetWeekRules); err != nil {
		return tables, err
	}
	return tables, nil
}
