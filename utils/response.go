package utils

import (
	"github.com/kataras/iris/v12"
)

// PageMeta accompanies every paginated listing (properties, admin users,
// audit logs)
type PageMeta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

// JSONPage renders a paginated collection under the data/meta envelope the
// client pagers expect
func JSONPage(ctx iris.Context, data interface{}, page, perPage int, total int64) {
	ctx.JSON(iris.Map{
		"data":  data,
		"meta":  PageMeta{Page: page, PerPage: perPage, Total: total},
		"links": iris.Map{},
	})
}

// JSONError writes the uniform error body; code is the machine-readable
// kind, message the user-facing text
func JSONError(ctx iris.Context, status int, code, message string) {
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"error": code, "message": message})
}
