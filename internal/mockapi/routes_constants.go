package mockapi

// Route path constants, matching the forecast API contract.
const (
	RouteToken          = "/token"
	RouteMe             = "/me"
	RouteViewData       = "/view-data"
	RouteUploadForecast = "/upload-forecast"
)
