package bot

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/garajhub/garajhub-bot/storage"
)

const (
	browsePerPage  = 1
	listPerPage    = 5
	membersPerPage = 5
)

func (b *Bot) startupsHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: Startup browsing opened")

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	b.sessions.Clear(userID)

	b.sendWithMarkup(chatID, "🌍 <b>Startups:</b>", backKeyboard())
	b.showStartupPage(chatID, 1)
}

// showStartupPage shows one active startup per page with a join button.
func (b *Bot) showStartupPage(chatID int64, page int) {
	startups, total, err := b.storage.ListStartupsByStatus(storage.StartupActive, page, browsePerPage)
	if err != nil {
		b.sendMessage(chatID, unavailableText)
		return
	}
	if len(startups) == 0 {
		b.sendMessage(chatID, "📭 <b>No startups yet.</b>")
		return
	}

	startup := startups[0]
	ownerName := b.ownerName(startup.OwnerID)
	pages := totalPages(total, browsePerPage)

	text := fmt.Sprintf(
		"<b>🌍 Startups</b>\n📄 Page: <b>%d/%d</b>\n\n🎯 <b>%s</b>\n📌 %s\n👤 <b>Owner:</b> %s",
		page, pages, startup.Name, truncate(startup.Description, 200), ownerName)

	rows := [][]telego.InlineKeyboardButton{
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🤝 Join startup").WithCallbackData(joinStartupData(startup.ID)),
		),
	}
	if nav := pageNavRow(page, pages, startupPageData); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows, backToMenuRow())
	markup := tu.InlineKeyboard(rows...)

	if startup.Logo != "" {
		if err := sendPhotoHTML(b.api, chatID, startup.Logo, text, markup); err == nil {
			return
		}
	}
	b.sendWithMarkup(chatID, text, markup)
}

func (b *Bot) myStartupsHandler(bot *telego.Bot, update telego.Update) {
	slog.Info("bot: Own startups opened")

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	b.sessions.Clear(userID)

	b.sendWithMarkup(chatID, "📌 <b>My startups:</b>", backKeyboard())
	b.showMyStartupsPage(chatID, userID, 1)
}

func (b *Bot) showMyStartupsPage(chatID, userID int64, page int) {
	startups, err := b.storage.ListStartupsByOwner(userID)
	if err != nil {
		b.sendMessage(chatID, unavailableText)
		return
	}
	if len(startups) == 0 {
		b.sendMessage(chatID, "📭 <b>You have no startups yet.</b>")
		return
	}

	pages := totalPages(int64(len(startups)), listPerPage)
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * listPerPage
	end := min(start+listPerPage, len(startups))
	pageStartups := startups[start:end]

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>📌 My startups</b>\n📄 Page: <b>%d/%d</b>\n\n", page, pages)
	for i, s := range pageStartups {
		fmt.Fprintf(&sb, "%d. %s %s\n", start+i+1, s.Name, statusBadge(s.Status))
	}

	var rows [][]telego.InlineKeyboardButton
	for i, s := range pageStartups {
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(fmt.Sprintf("%d. %s", start+i+1, truncate(s.Name, 15))).
				WithCallbackData(viewStartupData(s.ID)),
		))
	}
	if nav := pageNavRow(page, pages, myStartupsPageData); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows, backToMenuRow())

	b.sendWithMarkup(chatID, sb.String(), tu.InlineKeyboard(rows...))
}

// showOwnStartup renders the owner's detail view. The affordances depend
// on the status: active startups can be completed, completed ones expose
// members and results.
func (b *Bot) showOwnStartup(chatID, userID int64, startupID uint) {
	startup, err := b.storage.GetStartup(startupID)
	if err != nil {
		b.sendMessage(chatID, unavailableText)
		return
	}

	_, members, err := b.storage.ListMembers(startupID, 1, 1)
	if err != nil {
		members = 0
	}

	startDate := "—"
	if startup.StartedAt != nil {
		startDate = startup.StartedAt.Format("2006-01-02")
	}

	text := fmt.Sprintf(
		"🎯 <b>Name:</b> %s\n📊 <b>Status:</b> %s\n📅 <b>Started:</b> %s\n👥 <b>Members:</b> %d\n📌 <b>Description:</b> %s",
		startup.Name, statusLabel(startup.Status), startDate, members, truncate(startup.Description, 500))

	var rows [][]telego.InlineKeyboardButton
	switch startup.Status {
	case storage.StartupPending:
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("⏳ Awaiting admin approval").WithCallbackData("waiting_approval"),
		))
	case storage.StartupActive:
		rows = append(rows,
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("👥 Members").WithCallbackData(viewMembersData(startupID, 1)),
			),
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("⏹️ Complete").WithCallbackData(completeStartupData(startupID)),
			),
		)
	case storage.StartupCompleted:
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("👥 Members").WithCallbackData(viewMembersData(startupID, 1)),
		))
		if startup.Results != "" {
			rows = append(rows, tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("📊 Results").WithCallbackData(viewResultsData(startupID)),
			))
		}
	case storage.StartupRejected:
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("❌ Rejected").WithCallbackData("rejected_info"),
		))
	}
	rows = append(rows, tu.InlineKeyboardRow(
		tu.InlineKeyboardButton("🔙 Back").WithCallbackData("back_to_my_startups"),
	))
	markup := tu.InlineKeyboard(rows...)

	if startup.Logo != "" {
		if err := sendPhotoHTML(b.api, chatID, startup.Logo, text, markup); err == nil {
			return
		}
	}
	b.sendWithMarkup(chatID, text, markup)
}

func (b *Bot) showMembers(chatID int64, startupID uint, page int) {
	members, total, err := b.storage.ListMembers(startupID, page, membersPerPage)
	if err != nil {
		b.sendMessage(chatID, unavailableText)
		return
	}

	pages := totalPages(total, membersPerPage)

	var sb strings.Builder
	if len(members) == 0 {
		sb.WriteString("👥 <b>Members</b>\n\n📭 <b>No members yet.</b>")
	} else {
		fmt.Fprintf(&sb, "👥 <b>Members</b>\n📄 Page: <b>%d/%d</b>\n\n", page, pages)
		for i, member := range members {
			fmt.Fprintf(&sb, "%d. %s\n", (page-1)*membersPerPage+i+1, displayName(&member))
			if member.Phone != "" {
				fmt.Fprintf(&sb, "   📱 %s\n", member.Phone)
			}
			if member.Bio != "" {
				fmt.Fprintf(&sb, "   📝 %s\n", truncate(member.Bio, 30))
			}
			sb.WriteString("\n")
		}
	}

	var rows [][]telego.InlineKeyboardButton
	if nav := pageNavRow(page, pages, func(p int) string { return viewMembersData(startupID, p) }); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows, tu.InlineKeyboardRow(
		tu.InlineKeyboardButton("🔙 Back").WithCallbackData(viewStartupData(startupID)),
	))

	b.sendWithMarkup(chatID, sb.String(), tu.InlineKeyboard(rows...))
}

func (b *Bot) showResults(chatID int64, startupID uint) {
	startup, err := b.storage.GetStartup(startupID)
	if err != nil || startup.Results == "" {
		b.sendMessage(chatID, "📭 <b>No results available.</b>")
		return
	}

	endDate := "—"
	if startup.EndedAt != nil {
		endDate = startup.EndedAt.Format("2006-01-02")
	}

	text := fmt.Sprintf(
		"📊 <b>Startup results</b>\n\n🎯 <b>Name:</b> %s\n📝 <b>Results:</b> %s\n📅 <b>Completed:</b> %s",
		startup.Name, startup.Results, endDate)

	markup := tu.InlineKeyboard(tu.InlineKeyboardRow(
		tu.InlineKeyboardButton("🔙 Back").WithCallbackData(viewStartupData(startupID)),
	))
	b.sendWithMarkup(chatID, text, markup)
}

func (b *Bot) ownerName(ownerID int64) string {
	owner, err := b.storage.GetUser(ownerID)
	if err != nil {
		return "Unknown"
	}
	return displayName(owner)
}

// pageNavRow builds a previous/next inline row, or nil on a single page.
func pageNavRow(page, pages int, data func(int) string) []telego.InlineKeyboardButton {
	var row []telego.InlineKeyboardButton
	if page > 1 {
		row = append(row, tu.InlineKeyboardButton("⏮️ Previous").WithCallbackData(data(page-1)))
	}
	if page < pages {
		row = append(row, tu.InlineKeyboardButton("⏭️ Next").WithCallbackData(data(page+1)))
	}
	return row
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
