package routes

import (
	"rentline-server/models"
	"rentline-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

type CreateApplicationInput struct {
	PropertyID uint     `json:"propertyID" validate:"required"`
	Documents  []string `json:"documents"`
	Note       string   `json:"note" validate:"lt=2000"`
}

// CreateApplication: POST /api/applications
func CreateApplication(ctx iris.Context) {
	var input CreateApplicationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	application, err := applications.Submit(claims.ID, input.PropertyID, input.Documents, input.Note)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(application)
}

type UpdateApplicationStatusInput struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// UpdateApplicationStatus: PATCH /api/applications/{id}/status
func UpdateApplicationStatus(ctx iris.Context) {
	applicationID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "bad_request", "Invalid application id.")
		return
	}

	var input UpdateApplicationStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	application, svcErr := applications.UpdateStatus(claims.ID, applicationID, input.Status)
	if svcErr != nil {
		handleServiceError(ctx, svcErr)
		return
	}

	utils.Audit(ctx, "application_"+input.Status, "application", application.ID,
		iris.Map{"status": models.ApplicationPending}, iris.Map{"status": application.Status})

	ctx.JSON(application)
}

// ListApplications: GET /api/applications — shape depends on the role:
// renters see their own applications, landlords see applications against
// their properties
func ListApplications(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var (
		result []models.Application
		err    error
	)
	if claims.Role == models.RoleLandlord || claims.Role == models.RoleAdmin {
		result, err = applications.ListForOwner(claims.ID)
	} else {
		result, err = applications.ListForApplicant(claims.ID)
	}
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{"applications": result})
}
