package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"rentline-server/models"
	"rentline-server/services"
	"rentline-server/storage"
	"rentline-server/utils"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterUserInput struct {
	FirstName string `json:"firstName" validate:"required,max=256"`
	LastName  string `json:"lastName" validate:"required,max=256"`
	Email     string `json:"email" validate:"required,max=256,email"`
	Password  string `json:"password" validate:"required,min=8,max=256"`
	Role      string `json:"role" validate:"omitempty,oneof=renter landlord"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SocialLoginInput struct {
	IdentityToken string `json:"identityToken" validate:"required"`
	Provider      string `json:"provider" validate:"required,oneof=apple google"`
}

type UpdatePushTokenInput struct {
	Token               string `json:"token" validate:"required"`
	AllowsNotifications *bool  `json:"allowsNotifications"`
}

func Register(ctx iris.Context) {
	var userInput RegisterUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var newUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&newUser, userInput.Email)
	if userExistsErr != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "internal", "Something went wrong.")
		return
	}

	if userExists {
		utils.JSONError(ctx, iris.StatusConflict, "email_taken", "Email already registered.")
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(userInput.Password)
	if hashErr != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "internal", "Something went wrong.")
		return
	}

	role := userInput.Role
	if role == "" {
		role = models.RoleRenter
	}

	newUser = models.User{
		FirstName:   userInput.FirstName,
		LastName:    userInput.LastName,
		Email:       strings.ToLower(userInput.Email),
		Password:    hashedPassword,
		SocialLogin: false,
		Role:        role,
	}

	if err := storage.DB.Create(&newUser).Error; err != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "internal", "Something went wrong.")
		return
	}

	returnUser(newUser, ctx)
}

func Login(ctx iris.Context) {
	var userInput LoginUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existingUser models.User
	errorMsg := "Invalid email or password."
	userExists, userExistsErr := getAndHandleUserExists(&existingUser, userInput.Email)
	if userExistsErr != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "internal", "Something went wrong.")
		return
	}

	if !userExists {
		utils.JSONError(ctx, iris.StatusUnauthorized, "credentials", errorMsg)
		return
	}

	if existingUser.SocialLogin {
		utils.JSONError(ctx, iris.StatusUnauthorized, "credentials", "Social login account.")
		return
	}

	passwordErr := bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password))
	if passwordErr != nil {
		utils.JSONError(ctx, iris.StatusUnauthorized, "credentials", errorMsg)
		return
	}

	returnUser(existingUser, ctx)
}

// SocialLogin verifies an identity token minted by an external provider
// against the provider's JWKS and creates or reuses the matching account.
// The core never sees the provider credential again; identity from here on
// is the signed access-token claims.
func SocialLogin(ctx iris.Context) {
	var userInput SocialLoginInput
	if err := ctx.ReadJSON(&userInput); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	jwksURL := "https://appleid.apple.com/auth/keys"
	provider := "Apple"
	if userInput.Provider == "google" {
		jwksURL = "https://www.googleapis.com/oauth2/v3/certs"
		provider = "Google"
	}

	res, httpErr := http.Get(jwksURL)
	if httpErr != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "internal", "Could not reach identity provider.")
		return
	}
	defer res.Body.Close()

	body, bodyErr := io.ReadAll(res.Body)
	if bodyErr != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "internal", "Could not reach identity provider.")
		return
	}

	jwks, jwksErr := keyfunc.NewJSON(body)
	if jwksErr != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "internal", "Could not verify identity token.")
		return
	}

	token, tokenErr := jwt.Parse(userInput.IdentityToken, jwks.Keyfunc)
	if tokenErr != nil || !token.Valid {
		utils.JSONError(ctx, iris.StatusUnauthorized, "credentials", "Invalid identity token.")
		return
	}

	email := fmt.Sprint(token.Claims.(jwt.MapClaims)["email"])
	if email == "" || email == "<nil>" {
		utils.JSONError(ctx, iris.StatusUnauthorized, "credentials", "Identity token carries no email.")
		return
	}

	var user models.User
	userExists, userExistsErr := getAndHandleUserExists(&user, email)
	if userExistsErr != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "internal", "Something went wrong.")
		return
	}

	if !userExists {
		user = models.User{Email: strings.ToLower(email), SocialLogin: true, SocialProvider: provider, Role: models.RoleRenter}
		if err := storage.DB.Create(&user).Error; err != nil {
			utils.JSONError(ctx, iris.StatusInternalServerError, "internal", "Something went wrong.")
			return
		}
		returnUser(user, ctx)
		return
	}

	if user.SocialLogin && user.SocialProvider == provider {
		returnUser(user, ctx)
		return
	}

	utils.JSONError(ctx, iris.StatusConflict, "email_taken", "Email registered with a different method.")
}

// UpdatePushToken registers a device token for the authenticated user
func UpdatePushToken(ctx iris.Context) {
	var input UpdatePushTokenInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	var user models.User
	if err := storage.DB.First(&user, claims.ID).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "User not found.")
		return
	}

	var tokens []string
	if user.PushTokens != nil {
		json.Unmarshal(user.PushTokens, &tokens)
	}
	exists := false
	for _, t := range tokens {
		if t == input.Token {
			exists = true
			break
		}
	}
	if !exists {
		tokens = append(tokens, input.Token)
	}

	raw, _ := json.Marshal(tokens)
	updates := map[string]interface{}{"push_tokens": raw}
	if input.AllowsNotifications != nil {
		updates["allows_notifications"] = *input.AllowsNotifications
	}
	if err := storage.DB.Model(&user).Updates(updates).Error; err != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "internal", "Something went wrong.")
		return
	}

	ctx.JSON(iris.Map{"success": true})
}

// GetCurrentUser: GET /api/users/me
func GetCurrentUser(ctx iris.Context) {
	claims := jsonWT.Get(ctx).(*utils.AccessToken)

	user, err := currentUser(claims)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	ctx.JSON(user)
}

func currentUser(claims *utils.AccessToken) (*models.User, error) {
	var user models.User
	if err := storage.DB.First(&user, claims.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrUnauthenticated
		}
		return nil, err
	}
	return &user, nil
}

func getAndHandleUserExists(user *models.User, email string) (exists bool, err error) {
	userExistsQuery := storage.DB.Where("email = ?", strings.ToLower(email)).Limit(1).Find(&user)

	if userExistsQuery.Error != nil {
		return false, userExistsQuery.Error
	}

	return userExistsQuery.RowsAffected > 0, nil
}

func hashAndSaltPassword(password string) (hashedPassword string, err error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func returnUser(user models.User, ctx iris.Context) {
	tokenPair, tokenErr := utils.CreateTokenPair(user.ID)
	if tokenErr != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "internal", "Something went wrong.")
		return
	}

	ctx.JSON(iris.Map{
		"ID":           user.ID,
		"firstName":    user.FirstName,
		"lastName":     user.LastName,
		"email":        user.Email,
		"role":         user.Role,
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}
