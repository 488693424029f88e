package routes

import (
	"encoding/json"

	"rentline-server/models"
	"rentline-server/storage"
	"rentline-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"
)

type CreatePropertyInput struct {
	Title        string   `json:"title" validate:"required,max=256"`
	Description  string   `json:"description" validate:"max=5000"`
	PropertyType string   `json:"propertyType" validate:"required,oneof=apartment house studio room"`
	AddressLine1 string   `json:"addressLine1" validate:"required,max=256"`
	AddressLine2 string   `json:"addressLine2" validate:"max=256"`
	City         string   `json:"city" validate:"required,max=128"`
	State        string   `json:"state" validate:"max=128"`
	Zip          string   `json:"zip" validate:"max=32"`
	Country      string   `json:"country" validate:"required,max=128"`
	Lat          float32  `json:"lat"`
	Lng          float32  `json:"lng"`
	Bedrooms     int      `json:"bedrooms" validate:"min=0,max=20"`
	Bathrooms    float32  `json:"bathrooms" validate:"min=0,max=20"`
	MonthlyRent  float32  `json:"monthlyRent" validate:"required,min=0"`
	Currency     string   `json:"currency" validate:"required,len=3"`
	Images       []string `json:"images"`
}

// CreateProperty: POST /api/properties (landlord only)
func CreateProperty(ctx iris.Context) {
	var input CreatePropertyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	images, _ := json.Marshal(input.Images)
	property := models.Property{
		OwnerID:      claims.ID,
		Title:        input.Title,
		Description:  input.Description,
		PropertyType: input.PropertyType,
		AddressLine1: input.AddressLine1,
		AddressLine2: input.AddressLine2,
		City:         input.City,
		State:        input.State,
		Zip:          input.Zip,
		Country:      input.Country,
		Lat:          input.Lat,
		Lng:          input.Lng,
		Bedrooms:     input.Bedrooms,
		Bathrooms:    input.Bathrooms,
		MonthlyRent:  input.MonthlyRent,
		Currency:     input.Currency,
		Images:       string(images),
		Status:       models.PropertyAvailable,
	}

	if err := storage.DB.Create(&property).Error; err != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "internal", "Something went wrong.")
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&property)
}

// ListProperties: GET /api/properties — available listings, newest first,
// paginated
func ListProperties(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("perPage", 20)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	query := storage.DB.Model(&models.Property{}).Where("status = ?", models.PropertyAvailable)
	if city := ctx.URLParam("city"); city != "" {
		query = query.Where("lower(city) = lower(?)", city)
	}

	var total int64
	query.Count(&total)

	var properties []models.Property
	if err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&properties).Error; err != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "internal", "Something went wrong.")
		return
	}

	utils.JSONPage(ctx, properties, page, perPage, total)
}

// GetProperty: GET /api/properties/{id} — also bumps the view counter
func GetProperty(ctx iris.Context) {
	propertyID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "bad_request", "Invalid property id.")
		return
	}

	var property models.Property
	if err := storage.DB.Preload("Owner").First(&property, propertyID).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Property not found.")
		return
	}

	// counter bump is incidental to the read; ignore its error
	storage.DB.Model(&property).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	property.ViewCount++

	ctx.JSON(&property)
}

// ListOwnProperties: GET /api/properties/mine (landlord only)
func ListOwnProperties(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var properties []models.Property
	if err := storage.DB.Where("owner_id = ?", claims.ID).
		Order("created_at DESC").Find(&properties).Error; err != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "internal", "Something went wrong.")
		return
	}

	ctx.JSON(iris.Map{"properties": properties})
}
