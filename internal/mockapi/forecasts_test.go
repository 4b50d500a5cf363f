package mockapi_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jrsteele09/forecast-dashboard/apimodel"
	"github.com/jrsteele09/forecast-dashboard/internal/errors"
	"github.com/jrsteele09/forecast-dashboard/internal/mockapi"
	"github.com/stretchr/testify/require"
)

func TestParseForecastCSV(t *testing.T) {
	t.Run("columns in any order", func(t *testing.T) {
		rows, err := mockapi.ParseForecastCSV(strings.NewReader("Date,Period,FTE_Required,AHT_Forecast,Calls_Forecast\n2025-03-01,07:30,4,280,40\n"))
		require.NoError(t, err)
		require.Equal(t, []apimodel.ForecastRow{{Period: "07:30", Date: "2025-03-01", CallsForecast: 40, AHTForecast: 280, FTERequired: 4}}, rows)
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := mockapi.ParseForecastCSV(strings.NewReader("period,date,calls_forecast\n"))
		require.ErrorIs(t, err, errors.ErrInvalidInput)
	})

	t.Run("bad number", func(t *testing.T) {
		_, err := mockapi.ParseForecastCSV(strings.NewReader("period,date,calls_forecast,aht_forecast,fte_required\n08:00,2025-01-01,many,1,1\n"))
		require.ErrorIs(t, err, errors.ErrInvalidInput)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := mockapi.ParseForecastCSV(strings.NewReader(""))
		require.Error(t, err)
	})
}

func TestForecastRepo_ListLimitAndReplace(t *testing.T) {
	repo := mockapi.NewForecastRepo()

	var rows []apimodel.ForecastRow
	for i := 0; i < mockapi.ViewLimit+20; i++ {
		rows = append(rows, apimodel.ForecastRow{Period: fmt.Sprintf("%03d", i), Date: "2025-01-01"})
	}
	repo.Replace(rows)
	got := repo.List(mockapi.ViewLimit)
	require.Len(t, got, mockapi.ViewLimit)
	require.Equal(t, "000", got[0].Period)

	repo.Replace([]apimodel.ForecastRow{{Period: "x", Date: "2025-02-01"}})
	require.Len(t, repo.List(mockapi.ViewLimit), 1)
}

func TestUserRepo_Authenticate(t *testing.T) {
	users := mockapi.NewUserRepo()
	require.NoError(t, users.Add("ana", "pw", "analyst"))
	require.ErrorIs(t, users.Add("", "pw", "analyst"), errors.ErrInvalidInput)

	u, err := users.Authenticate("ana", "pw")
	require.NoError(t, err)
	require.Equal(t, "analyst", u.Role)
	require.NotEqual(t, "pw", u.PasswordHash)

	_, err = users.Authenticate("ana", "wrong")
	require.ErrorIs(t, err, errors.ErrInvalidCredentials)
}
