package bot

import (
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/garajhub/garajhub-bot/storage"
)

// Notifier delivers workflow events to Telegram chats. It holds its own
// API handle so the approval controller stays independent of the update
// loop.
type Notifier struct {
	api     *telego.Bot
	adminID int64
	channel string
}

func NewNotifier(api *telego.Bot, adminID int64, channel string) *Notifier {
	return &Notifier{
		api:     api,
		adminID: adminID,
		channel: channel,
	}
}

func (n *Notifier) StartupSubmitted(s *storage.Startup, owner *storage.User) error {
	contact := fmt.Sprintf("ID: %d", owner.TelegramID)
	if owner.Username != "" {
		contact = "@" + owner.Username
	}

	text := fmt.Sprintf(
		"🆕 <b>New startup awaiting review</b>\n\n🎯 <b>Name:</b> %s\n📌 <b>Description:</b> %s\n\n"+
			"👤 <b>Owner:</b> %s\n📱 <b>Contact:</b> %s\n🔗 <b>Group link:</b> %s",
		s.Name, s.Description, displayName(owner), contact, s.GroupLink)

	markup := tu.InlineKeyboard(tu.InlineKeyboardRow(
		tu.InlineKeyboardButton("✅ Approve").WithCallbackData(adminApproveData(s.ID)),
		tu.InlineKeyboardButton("❌ Reject").WithCallbackData(adminRejectData(s.ID)),
	))

	if s.Logo != "" {
		if err := sendPhotoHTML(n.api, n.adminID, s.Logo, text, markup); err == nil {
			return nil
		}
	}
	return sendHTML(n.api, n.adminID, text, markup)
}

func (n *Notifier) StartupApproved(s *storage.Startup) error {
	text := fmt.Sprintf(
		"🎉 <b>Congratulations!</b>\n\nYour startup <b>%s</b> has been approved and posted to the channel. "+
			"Join requests will land here as they come in.",
		s.Name)
	return sendHTML(n.api, s.OwnerID, text, nil)
}

func (n *Notifier) StartupRejected(s *storage.Startup) error {
	text := fmt.Sprintf(
		"😔 <b>Sorry!</b>\n\nYour startup <b>%s</b> was not approved. "+
			"You can refine the idea and submit it again.",
		s.Name)
	return sendHTML(n.api, s.OwnerID, text, nil)
}

func (n *Notifier) AnnounceStartup(s *storage.Startup, owner *storage.User) error {
	text := fmt.Sprintf(
		"🚀 <b>New startup is looking for a team!</b>\n\n🎯 <b>Name:</b> %s\n📌 <b>Description:</b> %s\n\n"+
			"👤 <b>Founder:</b> %s\n\n👇 Want in? Apply via the bot!",
		s.Name, s.Description, displayName(owner))

	markup := tu.InlineKeyboard(tu.InlineKeyboardRow(
		tu.InlineKeyboardButton("🚀 Join").WithCallbackData(joinStartupData(s.ID)),
	))

	channel := tu.Username(n.channel)
	if s.Logo != "" {
		photo := tu.Photo(channel, tu.FileFromID(s.Logo))
		photo.Caption = text
		photo.ParseMode = "HTML"
		photo.ReplyMarkup = markup
		if _, err := n.api.SendPhoto(photo); err == nil {
			return nil
		}
	}

	message := tu.Message(channel, text)
	message.ParseMode = "HTML"
	message.ReplyMarkup = markup
	_, err := n.api.SendMessage(message)
	return err
}

func (n *Notifier) StartupCompleted(memberID int64, s *storage.Startup, photoID string) error {
	text := fmt.Sprintf(
		"🏁 <b>Startup completed!</b>\n\n🎯 <b>%s</b> has wrapped up.\n\n📝 <b>Results:</b>\n%s\n\n"+
			"Thank you for being part of the team! 🙌",
		s.Name, s.Results)

	if photoID != "" {
		return sendPhotoHTML(n.api, memberID, photoID, text, nil)
	}
	return sendHTML(n.api, memberID, text, nil)
}

func (n *Notifier) JoinRequested(req *storage.Membership, s *storage.Startup, requester *storage.User) error {
	text := fmt.Sprintf(
		"📥 <b>New join request</b>\n\n🎯 <b>Startup:</b> %s\n\n👤 <b>Name:</b> %s\n"+
			"📱 <b>Phone:</b> %s\n🎂 <b>Birth date:</b> %s\n📝 <b>Bio:</b> %s",
		s.Name, displayName(requester),
		orDash(requester.Phone), orDash(requester.BirthDate), orDash(requester.Bio))

	markup := tu.InlineKeyboard(tu.InlineKeyboardRow(
		tu.InlineKeyboardButton("✅ Accept").WithCallbackData(approveJoinData(req.ID)),
		tu.InlineKeyboardButton("❌ Decline").WithCallbackData(rejectJoinData(req.ID)),
	))

	return sendHTML(n.api, s.OwnerID, text, markup)
}

func (n *Notifier) JoinApproved(userID int64, s *storage.Startup) error {
	text := fmt.Sprintf(
		"🎉 <b>You're in!</b>\n\nYour request to join <b>%s</b> was accepted.\n\n"+
			"🔗 <b>Team group:</b> %s",
		s.Name, s.GroupLink)
	return sendHTML(n.api, userID, text, nil)
}

func (n *Notifier) JoinRejected(userID int64) error {
	text := "😔 <b>Sorry!</b>\n\nYour join request was declined this time. Keep an eye on the channel for new startups!"
	return sendHTML(n.api, userID, text, nil)
}

// Broadcast satisfies workflow.Sender.
func (n *Notifier) Broadcast(userID int64, text string) error {
	return sendHTML(n.api, userID, text, nil)
}
