package bot

import (
	"errors"
	"log/slog"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/garajhub/garajhub-bot/dialog"
	"github.com/garajhub/garajhub-bot/storage"
	"github.com/garajhub/garajhub-bot/workflow"
)

// callbackHandler decodes the button payload once and dispatches on the
// typed command. Replies go to the pressing user's private chat.
func (b *Bot) callbackHandler(bot *telego.Bot, update telego.Update) {
	query := update.CallbackQuery
	userID := query.From.ID
	chatID := userID

	cmd, err := parseCommand(query.Data)
	if err != nil {
		slog.Warn("bot: Unknown callback", "data", query.Data, "user_id", userID)
		b.answerCallback(query.ID, "", false)
		return
	}

	switch cmd.action {
	case actionNoop:
		b.answerCallback(query.ID, "", false)

	case actionCheckSubscription:
		if b.isSubscribed(userID) {
			b.answerCallback(query.ID, "✅ Subscription confirmed!", false)
			b.showMainMenu(chatID, userID)
			return
		}
		b.answerCallback(query.ID, "❌ Please subscribe to the channel!", true)

	case actionMainMenu:
		b.answerCallback(query.ID, "", false)
		b.showMainMenu(chatID, userID)

	case actionEditField:
		b.handleEditField(query.ID, chatID, userID, cmd.field)

	case actionSetGender:
		if err := b.storage.UpdateUserField(userID, string(dialog.FieldGender), cmd.value); err != nil {
			b.answerCallback(query.ID, "⚠️ Something went wrong!", true)
			return
		}
		b.answerCallback(query.ID, "", false)
		b.sendMessage(chatID, "✅ <b>Saved.</b>")
		b.showProfile(chatID, userID)

	case actionBackToProfile:
		b.answerCallback(query.ID, "", false)
		b.showProfile(chatID, userID)

	case actionStartupPage:
		b.answerCallback(query.ID, "", false)
		b.showStartupPage(chatID, cmd.page)

	case actionJoinStartup:
		b.handleJoinStartup(query.ID, cmd.id, userID)

	case actionApproveJoin:
		b.handleJoinDecision(query.ID, chatID, cmd.id, true)

	case actionRejectJoin:
		b.handleJoinDecision(query.ID, chatID, cmd.id, false)

	case actionMyStartupsPage:
		b.answerCallback(query.ID, "", false)
		b.showMyStartupsPage(chatID, userID, cmd.page)

	case actionBackToMyStartups:
		b.answerCallback(query.ID, "", false)
		b.showMyStartupsPage(chatID, userID, 1)

	case actionViewStartup:
		b.answerCallback(query.ID, "", false)
		b.showOwnStartup(chatID, userID, cmd.id)

	case actionViewMembers:
		b.answerCallback(query.ID, "", false)
		b.showMembers(chatID, cmd.id, cmd.page)

	case actionViewResults:
		b.answerCallback(query.ID, "", false)
		b.showResults(chatID, cmd.id)

	case actionCompleteStartup:
		b.handleCompleteStartup(query.ID, chatID, userID, cmd.id)

	case actionAdminList, actionAdminViewStartup, actionAdminApprove, actionAdminReject:
		if userID != b.cfg.AdminID {
			b.answerCallback(query.ID, "❌ Not allowed!", true)
			return
		}
		b.handleAdminCallback(query.ID, chatID, cmd)
	}
}

func (b *Bot) handleEditField(queryID string, chatID, userID int64, field dialog.ProfileField) {
	if field == dialog.FieldGender {
		markup := tu.InlineKeyboard(
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("👨 Male").WithCallbackData("gender_male"),
				tu.InlineKeyboardButton("👩 Female").WithCallbackData("gender_female"),
			),
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("🔙 Back").WithCallbackData("back_to_profile"),
			),
		)
		b.answerCallback(queryID, "", false)
		b.sendWithMarkup(chatID, "⚧️ <b>Pick your gender:</b>", markup)
		return
	}

	b.sessions.Set(userID, dialog.ProfileEditState{Field: field})
	b.answerCallback(queryID, "", false)
	b.sendWithMarkup(chatID, profileEditPrompt(field), backKeyboard())
}

func (b *Bot) handleJoinStartup(queryID string, startupID uint, userID int64) {
	_, already, err := b.flow.RequestJoin(startupID, userID)
	if err != nil {
		slog.Error("bot: Failed to request join", "error", err,
			"startup_id", startupID, "user_id", userID)
		b.answerCallback(queryID, "⚠️ Something went wrong!", true)
		return
	}
	if already {
		b.answerCallback(queryID, "📩 Your request is already being reviewed!", true)
		return
	}
	b.answerCallback(queryID, "✅ Request sent. You will be notified once the owner approves it.", true)
}

func (b *Bot) handleJoinDecision(queryID string, chatID int64, requestID uint, approve bool) {
	var err error
	if approve {
		err = b.flow.ApproveJoin(requestID)
	} else {
		err = b.flow.RejectJoin(requestID)
	}

	switch {
	case errors.Is(err, workflow.ErrAlreadyProcessed):
		b.answerCallback(queryID, "ℹ️ Already processed.", false)
	case errors.Is(err, workflow.ErrStartupNotActive):
		b.answerCallback(queryID, "ℹ️ This startup is no longer active.", true)
	case err != nil:
		slog.Error("bot: Failed to process join decision", "error", err, "request_id", requestID)
		b.answerCallback(queryID, "⚠️ Something went wrong!", true)
	case approve:
		b.answerCallback(queryID, "✅ Approved!", false)
		b.sendMessage(chatID, "✅ <b>Request approved, the group link was sent to the user.</b>")
	default:
		b.answerCallback(queryID, "✅ Rejected!", false)
		b.sendMessage(chatID, "❌ <b>Request rejected.</b>")
	}
}

func (b *Bot) handleCompleteStartup(queryID string, chatID, userID int64, startupID uint) {
	startup, err := b.storage.GetStartup(startupID)
	if err != nil {
		b.answerCallback(queryID, "⚠️ Something went wrong!", true)
		return
	}
	if startup.OwnerID != userID {
		b.answerCallback(queryID, "❌ Not allowed!", true)
		return
	}
	if startup.Status != storage.StartupActive {
		b.answerCallback(queryID, "ℹ️ This startup is not active.", true)
		return
	}

	b.sessions.Set(userID, dialog.CompletionState{
		StartupID: startupID,
		Step:      dialog.AwaitingResults,
	})
	b.answerCallback(queryID, "", false)
	b.sendWithMarkup(chatID, "📝 <b>What did you achieve?</b>\nWrite a short summary:", backKeyboard())
}
