package medtrack

import (
	"fmt"
	"sort"

	"medtrack/internal/model"
)

// DayLog is one day's worth of intake records, sorted by time of day.
type DayLog struct {
	Date    string
	Records []*model.MedicationRecord
}

// History returns the records within [startDate, endDate] grouped by date
// (ascending) with each day's records sorted by time. The store returns
// records unordered; the grouping and ordering live here.
func (s *Service) History(startDate, endDate string) ([]DayLog, error) {
	recs, err := s.RecordsByDateRange(startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}

	byDate := make(map[string][]*model.MedicationRecord)
	for _, r := range recs {
		byDate[r.Date] = append(byDate[r.Date], r)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	// YYYY-MM-DD sorts chronologically as a string.
	sort.Strings(dates)

	days := make([]DayLog, 0, len(dates))
	for _, d := range dates {
		dayRecs := byDate[d]
		sort.Slice(dayRecs, func(i, j int) bool {
			if dayRecs[i].Time != dayRecs[j].Time {
				return dayRecs[i].Time < dayRecs[j].Time
			}
			return dayRecs[i].ID < dayRecs[j].ID
		})
		days = append(days, DayLog{Date: d, Records: dayRecs})
	}

	return days, nil
}
