package main

import (
	"log"
	"os"

	"rentline-server/realtime"
	"rentline-server/routes"
	"rentline-server/services"
	"rentline-server/storage"
	"rentline-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	godotenv.Load()
	db := storage.InitializeDB()
	redisClient := storage.InitializeRedis()

	hub := realtime.NewHub(redisClient)
	push := services.NewPushService(db)
	messaging := services.NewMessagingService(db, hub)
	notifier := services.NewNotifier(db, messaging, push)
	applications := services.NewApplicationService(db, notifier, hub)
	contacts := services.NewContactsService(db)
	routes.InitServices(applications, messaging, contacts, hub)

	app := iris.New()
	app.Validator = validator.New()

	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	user := app.Party("/api/users")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/social", routes.SocialLogin)
		user.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)
		user.Get("/me", accessTokenVerifierMiddleware, routes.GetCurrentUser)
		user.Post("/push-token", accessTokenVerifierMiddleware, routes.UpdatePushToken)
	}

	property := app.Party("/api/properties")
	{
		property.Get("/", routes.ListProperties)
		property.Get("/mine", accessTokenVerifierMiddleware, utils.LandlordOnlyMiddleware, routes.ListOwnProperties)
		property.Get("/{id:uint}", routes.GetProperty)
		property.Post("/", accessTokenVerifierMiddleware, utils.LandlordOnlyMiddleware, routes.CreateProperty)
	}

	application := app.Party("/api/applications", accessTokenVerifierMiddleware)
	{
		application.Post("/", routes.CreateApplication)
		application.Get("/", routes.ListApplications)
		application.Patch("/{id:uint}/status", routes.UpdateApplicationStatus)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/users", routes.AdminListUsers)
		admin.Get("/audit-logs", routes.AdminListAuditLogs)
	}

	message := app.Party("/api", accessTokenVerifierMiddleware)
	{
		message.Post("/messages", routes.CreateMessage)
		message.Post("/messages/{id:uint}/read", routes.MarkMessageRead)
		message.Get("/conversations", routes.ListConversations)
		message.Get("/conversations/{userID:uint}/messages", routes.ListConversationMessages)
		message.Post("/conversations/{userID:uint}/read", routes.MarkConversationRead)
		message.Get("/contacts", routes.ListContacts)
		message.Get("/realtime", routes.RealtimeStream)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	log.Println("listening on :" + port)
	app.Listen(":" + port)
}
