package routes

import (
	"rentline-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

type CreateMessageInput struct {
	ReceiverID uint   `json:"receiverID" validate:"required"`
	Body       string `json:"body" validate:"required,lt=5000"`
	PropertyID *uint  `json:"propertyID"`
}

// CreateMessage: POST /api/messages
func CreateMessage(ctx iris.Context) {
	var input CreateMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	message, err := messaging.Send(claims.ID, input.ReceiverID, input.Body, input.PropertyID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(message)
}

// ListConversations: GET /api/conversations
func ListConversations(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	conversations, err := messaging.ListConversations(claims.ID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{"conversations": conversations})
}

// ListConversationMessages: GET /api/conversations/{userID}/messages
func ListConversationMessages(ctx iris.Context) {
	counterpartID, err := ctx.Params().GetUint("userID")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "bad_request", "Invalid user id.")
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	messages, svcErr := messaging.ConversationMessages(claims.ID, counterpartID)
	if svcErr != nil {
		handleServiceError(ctx, svcErr)
		return
	}

	ctx.JSON(iris.Map{"messages": messages})
}

// MarkMessageRead: POST /api/messages/{id}/read
func MarkMessageRead(ctx iris.Context) {
	messageID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "bad_request", "Invalid message id.")
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	if svcErr := messaging.MarkAsRead(claims.ID, messageID); svcErr != nil {
		handleServiceError(ctx, svcErr)
		return
	}

	ctx.JSON(iris.Map{"success": true})
}

// MarkConversationRead: POST /api/conversations/{userID}/read
func MarkConversationRead(ctx iris.Context) {
	counterpartID, err := ctx.Params().GetUint("userID")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "bad_request", "Invalid user id.")
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	if svcErr := messaging.MarkConversationAsRead(claims.ID, counterpartID); svcErr != nil {
		handleServiceError(ctx, svcErr)
		return
	}

	ctx.JSON(iris.Map{"success": true})
}

// ListContacts: GET /api/contacts — per-role counterpart directory used to
// start a new thread
func ListContacts(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	user, err := currentUser(claims)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	result, svcErr := contacts.ContactsFor(user)
	if svcErr != nil {
		handleServiceError(ctx, svcErr)
		return
	}

	ctx.JSON(iris.Map{"contacts": result})
}
