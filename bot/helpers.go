package bot

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/garajhub/garajhub-bot/dialog"
	"github.com/garajhub/garajhub-bot/storage"
)

const unavailableText = "⚠️ <b>Something went wrong. Please try again later.</b>"

// sendHTML sends an HTML-formatted message, retrying once after the wait
// Telegram asks for on a rate-limit error.
func sendHTML(api *telego.Bot, chatID int64, text string, markup telego.ReplyMarkup) error {
	message := tu.Message(tu.ID(chatID), text)
	message.ParseMode = "HTML"
	if markup != nil {
		message.ReplyMarkup = markup
	}

	_, err := api.SendMessage(message)
	if err != nil && strings.Contains(err.Error(), "Too Many Requests") {
		// Format: "... retry after 5\", migrate to chat ID: 0, retry after: 5"
		parts := strings.Split(err.Error(), "retry after: ")
		if len(parts) == 2 {
			var retryAfter int
			if _, _ = fmt.Sscanf(parts[1], "%d", &retryAfter); retryAfter > 0 {
				slog.Info("bot: Rate limit hit, waiting", "seconds", retryAfter)
				time.Sleep(time.Duration(retryAfter) * time.Second)
				_, err = api.SendMessage(message)
			}
		}
	}
	if err != nil {
		slog.Error("bot: Failed to send message", "error", err, "chat_id", chatID, "text_length", len(text))
	}
	return err
}

// sendPhotoHTML sends a photo by Telegram file id with an HTML caption.
func sendPhotoHTML(api *telego.Bot, chatID int64, fileID, caption string, markup telego.ReplyMarkup) error {
	params := tu.Photo(tu.ID(chatID), tu.FileFromID(fileID))
	params.Caption = caption
	params.ParseMode = "HTML"
	if markup != nil {
		params.ReplyMarkup = markup
	}

	_, err := api.SendPhoto(params)
	if err != nil {
		slog.Error("bot: Failed to send photo", "error", err, "chat_id", chatID)
	}
	return err
}

func (b *Bot) sendMessage(chatID int64, text string) {
	sendHTML(b.api, chatID, text, nil)
}

func (b *Bot) sendWithMarkup(chatID int64, text string, markup telego.ReplyMarkup) {
	sendHTML(b.api, chatID, text, markup)
}

func (b *Bot) answerCallback(queryID, text string, alert bool) {
	err := b.api.AnswerCallbackQuery(&telego.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		slog.Error("bot: Failed to answer callback query", "error", err)
	}
}

// displayName renders a user the way messages refer to them.
func displayName(u *storage.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return fmt.Sprintf("User %d", u.TelegramID)
	}
	return name
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func mainMenuKeyboard(isAdmin bool) *telego.ReplyKeyboardMarkup {
	rows := [][]telego.KeyboardButton{
		tu.KeyboardRow(tu.KeyboardButton(buttonStartups), tu.KeyboardButton(buttonMyStartups)),
		tu.KeyboardRow(tu.KeyboardButton(buttonCreate), tu.KeyboardButton(buttonProfile)),
	}
	if isAdmin {
		rows = append(rows, tu.KeyboardRow(tu.KeyboardButton(buttonAdminPanel)))
	}

	keyboard := tu.Keyboard(rows...)
	keyboard.ResizeKeyboard = true
	return keyboard
}

func backKeyboard() *telego.ReplyKeyboardMarkup {
	keyboard := tu.Keyboard(tu.KeyboardRow(tu.KeyboardButton(dialog.BackText)))
	keyboard.ResizeKeyboard = true
	return keyboard
}

func backToMenuRow() []telego.InlineKeyboardButton {
	return tu.InlineKeyboardRow(
		tu.InlineKeyboardButton("🔙 Back").WithCallbackData("back_to_main_menu"),
	)
}

func statusBadge(status storage.StartupStatus) string {
	switch status {
	case storage.StartupPending:
		return "⏳"
	case storage.StartupActive:
		return "▶️"
	case storage.StartupCompleted:
		return "✅"
	case storage.StartupRejected:
		return "❌"
	}
	return "❓"
}

func statusLabel(status storage.StartupStatus) string {
	switch status {
	case storage.StartupPending:
		return "⏳ Awaiting approval"
	case storage.StartupActive:
		return "▶️ Active"
	case storage.StartupCompleted:
		return "✅ Completed"
	case storage.StartupRejected:
		return "❌ Rejected"
	}
	return string(status)
}

func totalPages(total int64, perPage int) int {
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		return 1
	}
	return pages
}
