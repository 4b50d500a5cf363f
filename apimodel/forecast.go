package apimodel

// ForecastRow is one (period, date) forecast entry.
type ForecastRow struct {
	Period        string  `json:"period"`
	Date          string  `json:"date"` // YYYY-MM-DD
	CallsForecast float64 `json:"calls_forecast"`
	AHTForecast   float64 `json:"aht_forecast"`
	FTERequired   float64 `json:"fte_required"`
}

// UploadResult is returned by POST /upload-forecast.
type UploadResult struct {
	Message string `json:"message"`
	Rows    int    `json:"rows"`
}
