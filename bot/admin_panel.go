package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/garajhub/garajhub-bot/storage"
	"github.com/garajhub/garajhub-bot/workflow"
)

func (b *Bot) adminPanelHandler(bot *telego.Bot, update telego.Update) {
	userID := update.Message.From.ID
	if userID != b.cfg.AdminID {
		b.showMainMenu(update.Message.Chat.ID, userID)
		return
	}

	slog.Info("bot: Admin panel opened")
	b.sessions.Clear(userID)
	b.showAdminPanel(update.Message.Chat.ID)
}

func (b *Bot) showAdminPanel(chatID int64) {
	stats, err := b.storage.Statistics()
	if err != nil {
		b.sendMessage(chatID, unavailableText)
		return
	}

	text := fmt.Sprintf(
		"👨‍💼 <b>Admin panel</b>\n\n📊 <b>Dashboard:</b>\n"+
			"├ 👥 Users: <b>%d</b>\n"+
			"├ 🚀 Startups: <b>%d</b>\n"+
			"├ ⏳ Pending: <b>%d</b>\n"+
			"├ ▶️ Active: <b>%d</b>\n"+
			"├ ✅ Completed: <b>%d</b>\n"+
			"└ ❌ Rejected: <b>%d</b>",
		stats.TotalUsers, stats.TotalStartups, stats.PendingStartups,
		stats.ActiveStartups, stats.CompletedStartups, stats.RejectedStartups)

	markup := tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("⏳ Pending").WithCallbackData(adminListData(storage.StartupPending, 1)),
			tu.InlineKeyboardButton("▶️ Active").WithCallbackData(adminListData(storage.StartupActive, 1)),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("✅ Completed").WithCallbackData(adminListData(storage.StartupCompleted, 1)),
			tu.InlineKeyboardButton("❌ Rejected").WithCallbackData(adminListData(storage.StartupRejected, 1)),
		),
		backToMenuRow(),
	)

	b.sendWithMarkup(chatID, text, markup)
}

func (b *Bot) handleAdminCallback(queryID string, chatID int64, cmd command) {
	switch cmd.action {
	case actionAdminList:
		b.answerCallback(queryID, "", false)
		b.showAdminList(chatID, cmd.status, cmd.page)

	case actionAdminViewStartup:
		b.answerCallback(queryID, "", false)
		b.showAdminStartup(chatID, cmd.id)

	case actionAdminApprove:
		err := b.flow.ApproveStartup(cmd.id)
		switch {
		case errors.Is(err, workflow.ErrAlreadyProcessed):
			b.answerCallback(queryID, "ℹ️ Already processed.", false)
		case err != nil:
			slog.Error("bot: Failed to approve startup", "error", err, "startup_id", cmd.id)
			b.answerCallback(queryID, "⚠️ Something went wrong!", true)
		default:
			b.answerCallback(queryID, "✅ Startup approved!", false)
			b.sendMessage(chatID, "✅ <b>Startup approved and posted to the channel!</b>")
		}

	case actionAdminReject:
		err := b.flow.RejectStartup(cmd.id)
		switch {
		case errors.Is(err, workflow.ErrAlreadyProcessed):
			b.answerCallback(queryID, "ℹ️ Already processed.", false)
		case err != nil:
			slog.Error("bot: Failed to reject startup", "error", err, "startup_id", cmd.id)
			b.answerCallback(queryID, "⚠️ Something went wrong!", true)
		default:
			b.answerCallback(queryID, "❌ Startup rejected!", false)
			b.sendMessage(chatID, "❌ <b>Startup rejected.</b>")
		}
	}
}

func (b *Bot) showAdminList(chatID int64, status storage.StartupStatus, page int) {
	startups, total, err := b.storage.ListStartupsByStatus(status, page, listPerPage)
	if err != nil {
		b.sendMessage(chatID, unavailableText)
		return
	}

	if len(startups) == 0 {
		markup := tu.InlineKeyboard(backToMenuRow())
		b.sendWithMarkup(chatID, fmt.Sprintf("%s <b>No startups here.</b>", statusBadge(status)), markup)
		return
	}

	pages := totalPages(total, listPerPage)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s <b>Startups: %s</b>\n📄 Page: <b>%d/%d</b>\n\n",
		statusBadge(status), status, page, pages)
	for i, s := range startups {
		fmt.Fprintf(&sb, "%d. <b>%s</b>\n   👤 %s\n\n", (page-1)*listPerPage+i+1, s.Name, b.ownerName(s.OwnerID))
	}

	var rows [][]telego.InlineKeyboardButton
	for i, s := range startups {
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(fmt.Sprintf("%d. %s", i+1, truncate(s.Name, 20))).
				WithCallbackData(adminViewStartupData(s.ID)),
		))
	}
	if nav := pageNavRow(page, pages, func(p int) string { return adminListData(status, p) }); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows, backToMenuRow())

	b.sendWithMarkup(chatID, sb.String(), tu.InlineKeyboard(rows...))
}

func (b *Bot) showAdminStartup(chatID int64, startupID uint) {
	startup, err := b.storage.GetStartup(startupID)
	if err != nil {
		b.sendMessage(chatID, unavailableText)
		return
	}

	owner, err := b.storage.GetUser(startup.OwnerID)
	name := "Unknown"
	contact := fmt.Sprintf("ID: %d", startup.OwnerID)
	if err == nil {
		name = displayName(owner)
		if owner.Username != "" {
			contact = "@" + owner.Username
		}
	}

	text := fmt.Sprintf(
		"🖼 <b>Startup details</b>\n\n🎯 <b>Name:</b> %s\n📌 <b>Description:</b> %s\n\n"+
			"👤 <b>Owner:</b> %s\n📱 <b>Contact:</b> %s\n🔗 <b>Group link:</b> %s\n"+
			"📅 <b>Created:</b> %s\n📊 <b>Status:</b> %s",
		startup.Name, startup.Description, name, contact,
		startup.GroupLink, startup.CreatedAt.Format("2006-01-02"), statusLabel(startup.Status))

	var rows [][]telego.InlineKeyboardButton
	if startup.Status == storage.StartupPending {
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("✅ Approve").WithCallbackData(adminApproveData(startupID)),
			tu.InlineKeyboardButton("❌ Reject").WithCallbackData(adminRejectData(startupID)),
		))
	}
	rows = append(rows, tu.InlineKeyboardRow(
		tu.InlineKeyboardButton("🔙 Back").WithCallbackData(adminListData(startup.Status, 1)),
	))
	markup := tu.InlineKeyboard(rows...)

	if startup.Logo != "" {
		if err := sendPhotoHTML(b.api, chatID, startup.Logo, text, markup); err == nil {
			return
		}
	}
	b.sendWithMarkup(chatID, text, markup)
}
