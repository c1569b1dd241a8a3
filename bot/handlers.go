package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/garajhub/garajhub-bot/dialog"
	"github.com/garajhub/garajhub-bot/storage"
	"github.com/garajhub/garajhub-bot/workflow"
)

func (b *Bot) startHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: /start")

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	b.sessions.Clear(userID)

	if b.isSubscribed(userID) {
		b.showMainMenu(chatID, userID)
		return
	}
	b.askForSubscription(chatID)
}

// isSubscribed checks membership in the public channel. If the check
// itself fails the user is let through, matching the lenient gate of the
// production bot.
func (b *Bot) isSubscribed(userID int64) bool {
	member, err := b.api.GetChatMember(&telego.GetChatMemberParams{
		ChatID: tu.Username(b.cfg.ChannelUsername),
		UserID: userID,
	})
	if err != nil {
		slog.Warn("bot: Subscription check failed", "error", err, "user_id", userID)
		return true
	}

	switch member.MemberStatus() {
	case telego.MemberStatusCreator, telego.MemberStatusAdministrator, telego.MemberStatusMember:
		return true
	}
	return false
}

func (b *Bot) askForSubscription(chatID int64) {
	channel := strings.TrimPrefix(b.cfg.ChannelUsername, "@")
	markup := tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🔗 Open channel").WithURL("https://t.me/"+channel),
			tu.InlineKeyboardButton("✅ Check").WithCallbackData("check_subscription"),
		),
	)

	b.sendWithMarkup(chatID,
		"🤖 <b>GarajHub Bot</b>\n\nSubscribe to our channel to use the bot 👇",
		markup)
}

func (b *Bot) showMainMenu(chatID, userID int64) {
	b.sessions.Clear(userID)

	text := "👋 <b>Hello!</b>\n\n🚀 <b>GarajHub</b> — the platform for startups.\n\nPick one of the options below:"
	b.sendWithMarkup(chatID, text, mainMenuKeyboard(userID == b.cfg.AdminID))
}

func (b *Bot) profileHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: Profile opened")

	userID := update.Message.From.ID
	b.sessions.Clear(userID)

	// The middleware already loaded the sender; skip the second lookup.
	if user := contextUser(update.Context()); user != nil {
		b.renderProfile(update.Message.Chat.ID, user)
		return
	}
	b.showProfile(update.Message.Chat.ID, userID)
}

func (b *Bot) showProfile(chatID, userID int64) {
	user, err := b.storage.GetUser(userID)
	if err != nil {
		slog.Error("bot: Failed to load profile", "error", err, "user_id", userID)
		b.sendMessage(chatID, unavailableText)
		return
	}
	b.renderProfile(chatID, user)
}

func (b *Bot) renderProfile(chatID int64, user *storage.User) {
	text := "👤 <b>Profile:</b>\n\n" +
		fmt.Sprintf("🧑 <b>First name:</b> %s\n", orDash(user.FirstName)) +
		fmt.Sprintf("🧾 <b>Last name:</b> %s\n", orDash(user.LastName)) +
		fmt.Sprintf("⚧️ <b>Gender:</b> %s\n", orDash(user.Gender)) +
		fmt.Sprintf("📞 <b>Phone:</b> %s\n", orDash(user.Phone)) +
		fmt.Sprintf("🎂 <b>Birth date:</b> %s\n", orDash(user.BirthDate)) +
		fmt.Sprintf("📝 <b>Bio:</b> %s\n\n", orDash(user.Bio)) +
		"🛠 <b>Pick a field to edit:</b>"

	markup := tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("✏️ First name").WithCallbackData(editFieldData(dialog.FieldFirstName)),
			tu.InlineKeyboardButton("✏️ Last name").WithCallbackData(editFieldData(dialog.FieldLastName)),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("📞 Phone").WithCallbackData(editFieldData(dialog.FieldPhone)),
			tu.InlineKeyboardButton("⚧️ Gender").WithCallbackData(editFieldData(dialog.FieldGender)),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🎂 Birth date").WithCallbackData(editFieldData(dialog.FieldBirthDate)),
			tu.InlineKeyboardButton("📝 Bio").WithCallbackData(editFieldData(dialog.FieldBio)),
		),
		backToMenuRow(),
	)

	b.sendWithMarkup(chatID, text, markup)
}

func (b *Bot) createStartupHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: Startup creation started")

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	b.sessions.Set(userID, dialog.CreationState{Step: dialog.AwaitingName})
	b.sendWithMarkup(chatID,
		"🚀 <b>Let's create a new startup!</b>\n\n📝 <b>Enter the startup name:</b>",
		backKeyboard())
}

// messageHandler is the catch-all: it routes text and photos into the
// user's active dialog, or falls back to the main menu.
func (b *Bot) messageHandler(bot *telego.Bot, update telego.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	userID := msg.From.ID
	chatID := msg.Chat.ID

	in := dialog.Input{Text: msg.Text}
	if len(msg.Photo) > 0 {
		in.PhotoID = msg.Photo[len(msg.Photo)-1].FileID
	}

	state, ok := b.sessions.Get(userID)
	if !ok {
		b.showMainMenu(chatID, userID)
		return
	}

	switch st := state.(type) {
	case dialog.CreationState:
		b.advanceCreation(chatID, userID, st, in)
	case dialog.ProfileEditState:
		b.advanceProfileEdit(chatID, userID, st, in)
	case dialog.CompletionState:
		b.advanceCompletion(chatID, userID, st, in)
	default:
		b.showMainMenu(chatID, userID)
	}
}

func creationPrompt(step dialog.CreationStep) string {
	switch step {
	case dialog.AwaitingName:
		return "📝 <b>Enter the startup name:</b>"
	case dialog.AwaitingDescription:
		return "📝 <b>Enter the startup description:</b>"
	case dialog.AwaitingLogo:
		return "🖼 <b>Send a logo (photo):</b>"
	case dialog.AwaitingLink:
		return "🔗 <b>Enter the group or channel link (required):</b>\n\nFor example: <code>https://t.me/group_name</code>"
	}
	return ""
}

func creationReprompt(step dialog.CreationStep) string {
	switch step {
	case dialog.AwaitingLogo:
		return "⚠️ <b>Please send a photo!</b>"
	case dialog.AwaitingLink:
		return "⚠️ <b>Invalid link format!</b>\n\nPlease enter a Telegram group or channel link:\n<code>https://t.me/groupname</code>"
	}
	return "⚠️ <b>Please enter a non-empty text value.</b>"
}

func (b *Bot) advanceCreation(chatID, userID int64, st dialog.CreationState, in dialog.Input) {
	next, outcome := dialog.NextCreation(st, in)

	switch outcome {
	case dialog.Aborted:
		b.sessions.Clear(userID)
		b.showMainMenu(chatID, userID)

	case dialog.Reprompt:
		b.sendWithMarkup(chatID, creationReprompt(st.Step), backKeyboard())

	case dialog.Advanced:
		b.sessions.Set(userID, next)
		b.sendWithMarkup(chatID, creationPrompt(next.Step), backKeyboard())

	case dialog.Done:
		// Session survives a failed submit so the user can resend the link.
		_, err := b.flow.SubmitForApproval(next.Draft, userID)
		if err != nil {
			slog.Error("bot: Failed to submit startup", "error", err, "user_id", userID)
			b.sendWithMarkup(chatID, unavailableText, backKeyboard())
			return
		}

		b.sessions.Clear(userID)
		b.sendMessage(chatID,
			"✅ <b>Startup created and sent for review!</b>\n\n"+
				"⏳ <i>It will be posted to the channel once an administrator approves it.</i>")
		b.showMainMenu(chatID, userID)
	}
}

func profileEditPrompt(field dialog.ProfileField) string {
	switch field {
	case dialog.FieldFirstName:
		return "📝 <b>Enter your first name:</b>"
	case dialog.FieldLastName:
		return "📝 <b>Enter your last name:</b>"
	case dialog.FieldPhone:
		return "📱 <b>Enter your phone number:</b>\n\nFor example: <code>+998901234567</code>"
	case dialog.FieldBirthDate:
		return "🎂 <b>Enter your birth date (day-month-year)</b>\nFor example: <code>30-04-2010</code>"
	case dialog.FieldBio:
		return "📝 <b>Enter your bio:</b>"
	}
	return ""
}

func profileEditReprompt(field dialog.ProfileField) string {
	switch field {
	case dialog.FieldPhone:
		return "⚠️ <b>Invalid phone format!</b>\n\nPlease use:\n<code>+998901234567</code>"
	case dialog.FieldBirthDate:
		return "⚠️ <b>Invalid date format!</b>\n\nPlease use:\n<code>30-04-2010</code>"
	}
	return "⚠️ <b>Please enter a non-empty text value.</b>"
}

func (b *Bot) advanceProfileEdit(chatID, userID int64, st dialog.ProfileEditState, in dialog.Input) {
	value, outcome := dialog.NextProfile(st, in)

	switch outcome {
	case dialog.Aborted:
		b.sessions.Clear(userID)
		b.showProfile(chatID, userID)

	case dialog.Reprompt:
		b.sendWithMarkup(chatID, profileEditReprompt(st.Field), backKeyboard())

	case dialog.Done:
		if err := b.storage.UpdateUserField(userID, string(st.Field), value); err != nil {
			slog.Error("bot: Failed to save profile field", "error", err,
				"user_id", userID, "field", st.Field)
			b.sendWithMarkup(chatID, unavailableText, backKeyboard())
			return
		}

		b.sessions.Clear(userID)
		b.sendMessage(chatID, "✅ <b>Saved.</b>")
		b.showProfile(chatID, userID)
	}
}

func (b *Bot) advanceCompletion(chatID, userID int64, st dialog.CompletionState, in dialog.Input) {
	next, outcome := dialog.NextCompletion(st, in)

	switch outcome {
	case dialog.Aborted:
		b.sessions.Clear(userID)
		b.showOwnStartup(chatID, userID, st.StartupID)

	case dialog.Reprompt:
		if st.Step == dialog.AwaitingResultsPhoto {
			b.sendWithMarkup(chatID, "⚠️ <b>Please send a photo of the results!</b>", backKeyboard())
			return
		}
		b.sendWithMarkup(chatID, "⚠️ <b>Please describe what you achieved.</b>", backKeyboard())

	case dialog.Advanced:
		b.sessions.Set(userID, next)
		b.sendWithMarkup(chatID, "🖼 <b>Send a photo of the results:</b>", backKeyboard())

	case dialog.Done:
		tally, err := b.flow.CompleteStartup(next.StartupID, next.Results, in.PhotoID)
		if errors.Is(err, workflow.ErrAlreadyProcessed) {
			b.sessions.Clear(userID)
			b.sendMessage(chatID, "ℹ️ <b>This startup is no longer active. Nothing to do.</b>")
			b.showMainMenu(chatID, userID)
			return
		}
		if errors.Is(err, workflow.ErrCompletionDegraded) {
			// The startup is completed, so resending the photo would
			// change nothing. Report the degraded outcome instead.
			b.sessions.Clear(userID)
			slog.Error("bot: Startup completed with errors", "error", err, "user_id", userID)
			b.sendMessage(chatID, "⚠️ <b>Startup marked as completed, but something went wrong "+
				"while saving the results and notifying members. Please contact the admin.</b>")
			b.showMainMenu(chatID, userID)
			return
		}
		if err != nil {
			// Session survives so the owner can resend the photo.
			slog.Error("bot: Failed to complete startup", "error", err, "user_id", userID)
			b.sendWithMarkup(chatID, unavailableText, backKeyboard())
			return
		}

		b.sessions.Clear(userID)
		b.sendMessage(chatID, fmt.Sprintf(
			"✅ <b>Startup completed!</b>\n\n📤 Notified members: %d (failed: %d)",
			tally.Sent, tally.Failed))
		b.showOwnStartup(chatID, userID, next.StartupID)
	}
}
