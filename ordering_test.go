package gridview

import (
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_Direction(t *testing.T) {
	tests := []struct {
		name   string
		in     Direction
		valid  bool
		flip   Direction
		marker string
	}{
		{"ASC flips to DESC", DirectionASC, true, DirectionDESC, "asc"},
		{"DESC flips to ASC", DirectionDESC, true, DirectionASC, "desc"},
		{"lower case is invalid", "asc", false, DirectionDESC, "asc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Valid(); got != tt.valid {
				t.Errorf("%s: Valid=%v want %v", tt.name, got, tt.valid)
			}
			if got := tt.in.Flip(); got != tt.flip {
				t.Errorf("%s: Flip=%v want %v", tt.name, got, tt.flip)
			}
			if got := tt.in.Marker(); got != tt.marker {
				t.Errorf("%s: Marker=%v want %v", tt.name, got, tt.marker)
			}
		})
	}
}

func Test_ParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
		ok   bool
	}{
		{"asc", DirectionASC, true},
		{" DESC ", DirectionDESC, true},
		{"Desc", DirectionDESC, true},
		{"up", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirection(tt.in)
			if (err == nil) != tt.ok {
				t.Fatalf("%q: ok=%v err=%v", tt.in, tt.ok, err)
			}
			if err != nil && !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("%q: err=%v want ErrInvalidArgument", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("%q: got %v want %v", tt.in, got, tt.want)
			}
		})
	}
}

func Test_Orderings_validate(t *testing.T) {
	tests := []struct {
		name string
		ord  Orderings
		ok   bool
	}{
		{"empty is valid", Orderings{}, true},
		{"invalid direction", Orderings{{Column: "id", Direction: "bad"}}, false},
		{"empty column", Orderings{{Column: "", Direction: DirectionASC}}, false},
		{"injection attempt", Orderings{{Column: "id; DROP TABLE users", Direction: DirectionASC}}, false},
		{"qualified quoted column", Orderings{{Column: `"User"."name"`, Direction: DirectionDESC}}, true},
		{"valid list", Orderings{{Column: "id", Direction: DirectionASC}, {Column: "u.name", Direction: DirectionDESC}}, true},
	}
	for _, tt := range tests {
		if err := tt.ord.validate(); (err == nil) != tt.ok {
			t.Errorf("%s: ok=%v err=%v", tt.name, tt.ok, err)
		}
	}
}

func Test_Orderings_ToSQL(t *testing.T) {
	ord := Orderings{{Column: "a", Direction: DirectionASC}, {Column: "b", Direction: DirectionDESC}}

	assert.Equal(t, []string{"a ASC", "b DESC"}, ord.ToSQLSlice())
	assert.Equal(t, "a ASC, b DESC", ord.ToSQL())
	assert.Empty(t, Orderings(nil).ToSQL())
}

func Test_Orderings_set(t *testing.T) {
	var ord Orderings
	ord = ord.set("a", DirectionASC)
	ord = ord.set("b", DirectionDESC)
	ord = ord.set("a", DirectionDESC)

	assert.Equal(t, Orderings{
		{Column: "a", Direction: DirectionDESC},
		{Column: "b", Direction: DirectionDESC},
	}, ord)
}

func Test_Orderings_Apply(t *testing.T) {
	sqlMockFnList := []func() (string, *gorm.DB, sqlmock.Sqlmock, error){
		newGORMMySQLMock,
		newGORMPostgresMock,
	}

	type tUser struct {
		ID   uint
		Name string
	}

	tests := []struct {
		name          string
		ord           Orderings
		expectedQuery string
	}{
		{
			name:          "no orderings",
			ord:           nil,
			expectedQuery: "^SELECT \\* FROM [`'\"]users[`'\"]$",
		},
		{
			name:          "two orderings",
			ord:           Orderings{{Column: "name", Direction: DirectionDESC}, {Column: "id", Direction: DirectionASC}},
			expectedQuery: "^SELECT \\* FROM [`'\"]users[`'\"] ORDER BY name DESC, id ASC$",
		},
	}

	for _, sqlMockFn := range sqlMockFnList {
		for _, tt := range tests {
			dialect, db, dbMock, err := sqlMockFn()
			t.Run(fmt.Sprintf("%s %s", dialect, tt.name), func(t *testing.T) {
				require.NoError(t, err)

				dbMock.ExpectQuery(tt.expectedQuery).
					WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "John Doe"))

				err = tt.ord.Apply(db.Table("users")).Find(&[]tUser{}).Error
				require.NoError(t, err)

				assert.NoError(t, dbMock.ExpectationsWereMet())
			})
		}
	}
}
