package gridview

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_formatTime(t *testing.T) {
	ts := time.Date(2024, time.February, 3, 9, 5, 7, 123456000, time.UTC)

	tests := []struct {
		pattern string
		want    string
	}{
		{"Y-m-d H:i:s", "2024-02-03 09:05:07"},
		{"j/n/y", "3/2/24"},
		{"D, d M Y", "Sat, 03 Feb 2024"},
		{"l jS F", "Saturday 3rd February"},
		{"g:i a", "9:05 am"},
		{"G:i A", "9:05 AM"},
		{"h\\h i\\m", "09h 05m"},
		{"s.v", "07.123"},
		{"u", "123456"},
		{"N w z", "6 6 33"},
		{"W", "05"},
		{"t L", "29 1"},
		{"U", "1706951107"},
		{"c", "2024-02-03T09:05:07+00:00"},
		{"[Y]", "[2024]"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, formatTime(ts, tt.pattern))
		})
	}
}

func Test_ordinalSuffix(t *testing.T) {
	tests := map[int]string{1: "st", 2: "nd", 3: "rd", 4: "th", 11: "th", 12: "th", 13: "th", 21: "st", 22: "nd", 31: "st"}

	for day, want := range tests {
		assert.Equal(t, want, ordinalSuffix(day), "day %d", day)
	}
}

func Test_formatDuration(t *testing.T) {
	d := 49*time.Hour + 4*time.Minute + 5*time.Second + 6*time.Microsecond

	tests := []struct {
		name    string
		d       time.Duration
		pattern string
		want    string
	}{
		{"days and clock", d, "%a days, %H:%I:%S", "2 days, 01:04:05"},
		{"unpadded", d, "%h:%i:%s", "1:4:5"},
		{"microseconds", d, "%f %F", "6 000006"},
		{"sign of positive", d, "%R%d", "+2"},
		{"sign of negative", -time.Hour, "%r%h h", "-1 h"},
		{"no sign when positive", time.Hour, "%r%h h", "1 h"},
		{"calendar fields are zero", d, "%y-%M-%D", "0-00-02"},
		{"literal percent", time.Minute, "100%% %i", "100% 1"},
		{"unknown code is kept", time.Minute, "%q", "%q"},
		{"no codes", d, "H:i", "49h4m5.000006s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.d, tt.pattern))
		})
	}
}

func Test_gridDate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		pattern string
		want    string
	}{
		{"date time", "2024-03-05 14:07:09", "d/m/Y H:i", "05/03/2024 14:07"},
		{"date only", "2024-03-05", "D j M", "Tue 5 Mar"},
		{"rfc3339", "2024-03-05T14:07:09Z", "Y-m-d\\TH:i:s", "2024-03-05T14:07:09"},
		{"unix timestamp", "1709647629", "Y-m-d H:i:s", "2024-03-05 14:07:09"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gridDate(tt.value, tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := gridDate("not a date", "Y")
	assert.True(t, errors.Is(err, ErrInvalidArgument), "err=%v", err)
}
