package catalog

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/event-space-recommender/internal/model"
)

// Chart is the JSON source format accepted by Build, in its object form.
type Chart struct {
	Rooms   []ChartRoom       `json:"rooms"`
	Aliases map[string]string `json:"aliases,omitempty"`
}

// ChartRoom is one room of a Chart.  A nil capacity marks a style the room
// does not support.
type ChartRoom struct {
	RoomID     string                      `json:"room_id,omitempty"`
	Name       string                      `json:"name"`
	Area       string                      `json:"area,omitempty"`
	SqFt       int                         `json:"sq_ft,omitempty"`
	Capacities map[model.SeatingStyle]*int `json:"capacities"`
}

// headers that name the room column
var nameHeaders = map[string]bool{
	"room": true, "name": true, "room name": true, "function room": true,
	"meeting room": true, "space": true, "meeting space": true,
}

// cell values meaning "not offered in this setup"
var unsupportedCells = map[string]bool{"": true, "-": true, "–": true, "n/a": true, "na": true, "x": true, "none": true}

const headerScanRows = 10

type xlsxColumns struct {
	name, id, area, sqft int
	styles               map[int]model.SeatingStyle
}

// ReadXLSX converts a capacity chart spreadsheet into a Chart.  sheet
// defaults to the first sheet.  The header row is the first of the top rows
// with a room-name column; columns whose header names a seating style
// ("Theater", "U-Shape", "Banquet Rounds") become capacities and anything
// else except id, area and square footage is ignored.  Cells that are not
// whole numbers are reported as issues and left out.
func ReadXLSX(r io.Reader, sheet string) (Chart, []Issue, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Chart{}, nil, &IngestionError{Reason: "unreadable workbook", Err: err}
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return Chart{}, nil, &IngestionError{Reason: "workbook has no sheets"}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Chart{}, nil, &IngestionError{Reason: "read sheet " + strconv.Quote(sheet), Err: err}
	}

	headerRow, cols, ok := findHeader(rows)
	if !ok {
		return Chart{}, nil, &IngestionError{Reason: "no header row with a room name column"}
	}
	if len(cols.styles) == 0 {
		return Chart{}, nil, &IngestionError{Reason: "no seating style columns"}
	}

	var (
		chart  = Chart{Rooms: []ChartRoom{}}
		issues []Issue
	)
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		name := strings.TrimSpace(cell(row, cols.name))
		if name == "" {
			continue
		}
		room := ChartRoom{
			RoomID:     strings.TrimSpace(cell(row, cols.id)),
			Name:       name,
			Area:       strings.TrimSpace(cell(row, cols.area)),
			Capacities: make(map[model.SeatingStyle]*int, len(cols.styles)),
		}
		if n, ok := wholeNumber(cell(row, cols.sqft)); ok && n > 0 {
			room.SqFt = n
		}
		for col, style := range cols.styles {
			raw := strings.TrimSpace(cell(row, col))
			if unsupportedCells[strings.ToLower(raw)] {
				if _, set := room.Capacities[style]; !set {
					room.Capacities[style] = nil
				}
				continue
			}
			n, ok := wholeNumber(raw)
			if !ok {
				issues = append(issues, Issue{Row: i + 1, Name: name, Reason: fmt.Sprintf("%s capacity %q is not a number", style, raw)})
				continue
			}
			// two columns for one style: keep the larger ceiling
			if prev := room.Capacities[style]; prev != nil && *prev >= n {
				continue
			}
			room.Capacities[style] = &n
		}
		chart.Rooms = append(chart.Rooms, room)
	}
	if len(chart.Rooms) == 0 {
		return Chart{}, issues, &IngestionError{Reason: "no room rows below the header", Issues: issues}
	}
	return chart, issues, nil
}

func findHeader(rows [][]string) (int, xlsxColumns, bool) {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		cols := xlsxColumns{name: -1, id: -1, area: -1, sqft: -1, styles: map[int]model.SeatingStyle{}}
		for j, h := range rows[i] {
			key := strings.ToLower(strings.Join(strings.Fields(h), " "))
			switch {
			case key == "":
			case nameHeaders[key] && cols.name < 0:
				cols.name = j
			case key == "room id" || key == "room_id" || key == "id" || key == "code":
				cols.id = j
			case key == "area" || key == "location":
				cols.area = j
			case strings.Contains(key, "sq") && strings.Contains(key, "ft"), key == "square feet", key == "sqft":
				cols.sqft = j
			default:
				if st := model.ParseSeatingStyle(key); st.Known() {
					cols.styles[j] = st
				}
			}
		}
		if cols.name >= 0 {
			return i, cols, true
		}
	}
	return 0, xlsxColumns{}, false
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func wholeNumber(s string) (int, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
