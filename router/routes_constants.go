package router

// Route path constants
const (
	PathDashboard = "/"
	PathLogin     = "/login"
	PathUpload    = "/upload"
)

// Route names
const (
	NameDashboard = "dashboard"
	NameLogin     = "login"
	NameUpload    = "upload"
)

// DefaultRoutes is the dashboard route table.
func DefaultRoutes() []Route {
	return []Route{
		{Name: NameDashboard, Path: PathDashboard, RequiresAuth: true},
		{Name: NameLogin, Path: PathLogin},
		{Name: NameUpload, Path: PathUpload, RequiresAuth: true},
	}
}
