package derived

import (
	"errors"
	"testing"
	"time"

	"homecare-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diary() []*domain.VisitLog {
	return []*domain.VisitLog{
		{ID: 1, AssistedPersonID: 1, OperatorID: 2, Date: "2024-06-20", StartTime: "09:00"},
		{ID: 2, AssistedPersonID: 1, OperatorID: 2, Date: "2024-07-15", StartTime: "08:30"},
		{ID: 3, AssistedPersonID: 2, OperatorID: 1, Date: "2024-07-10", StartTime: "10:00"},
		{ID: 4, AssistedPersonID: 2, OperatorID: 2, Date: "2024-05-01", StartTime: "11:00"},
		{ID: 5, AssistedPersonID: 1, OperatorID: 1, StartTime: "12:00"},
		{ID: 6, AssistedPersonID: 1, OperatorID: 1, Date: "2024-07-15", StartTime: "16:00"},
	}
}

func logIDs(ls []*domain.VisitLog) []int64 {
	out := make([]int64, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.ID)
	}
	return out
}

func TestFilterVisitLogs_Periods(t *testing.T) {
	ref := time.Date(2024, 7, 15, 18, 45, 0, 0, time.UTC)
	cases := []struct {
		period DiaryPeriod
		want   []int64
	}{
		{PeriodToday, []int64{6, 2}},
		{PeriodWeek, []int64{6, 2, 3}},
		{PeriodMonth, []int64{6, 2, 3, 1}},
		{PeriodAll, []int64{6, 2, 3, 1, 4, 5}},
	}
	for _, tc := range cases {
		t.Run(string(tc.period), func(t *testing.T) {
			got, err := FilterVisitLogs(diary(), DiaryFilter{Period: tc.period}, ref)
			require.NoError(t, err)
			assert.Equal(t, tc.want, logIDs(got))
		})
	}
}

func TestFilterVisitLogs_ByOperatorAndPerson(t *testing.T) {
	ref := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

	got, err := FilterVisitLogs(diary(), DiaryFilter{Period: PeriodAll, OperatorID: 2}, ref)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1, 4}, logIDs(got))

	got, err = FilterVisitLogs(diary(), DiaryFilter{Period: PeriodMonth, OperatorID: 2, AssistedPersonID: 1}, ref)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, logIDs(got))
}

func TestFilterVisitLogs_Malformed(t *testing.T) {
	logs := append(diary(), &domain.VisitLog{ID: 9, Date: "15-07-2024"})
	_, err := FilterVisitLogs(logs, DiaryFilter{Period: PeriodAll}, time.Now())
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, int64(9), ve.RecordID)
}

func TestParseDiaryPeriod(t *testing.T) {
	p, ok := ParseDiaryPeriod("")
	assert.True(t, ok)
	assert.Equal(t, PeriodToday, p)
	p, ok = ParseDiaryPeriod("Settimana")
	assert.True(t, ok)
	assert.Equal(t, PeriodWeek, p)
	_, ok = ParseDiaryPeriod("anno")
	assert.False(t, ok)
}
