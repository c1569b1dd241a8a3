package bot

import (
	"context"
	"log/slog"

	"github.com/mymmrac/telego"
	"github.com/mymmrac/telego/telegohandler"

	"github.com/garajhub/garajhub-bot/storage"
)

const contextUserKey = "user"

// userFillMiddleware transparently upserts the sender into storage so
// every handler can assume the user row exists. On storage failure the
// update is still passed through; handlers degrade on their own.
func (b *Bot) userFillMiddleware(bot *telego.Bot, update telego.Update, next telegohandler.Handler) {
	ctx := update.Context()

	var from *telego.User
	switch {
	case update.Message != nil && update.Message.From != nil:
		from = update.Message.From
	case update.CallbackQuery != nil:
		from = &update.CallbackQuery.From
	}

	if from != nil {
		user, err := b.storage.SaveUser(from.ID, from.Username, from.FirstName)
		if err != nil {
			slog.Error("bot: Cannot transparently save user", "user_id", from.ID, "error", err)
		} else {
			ctx = context.WithValue(ctx, contextUserKey, user)
		}
	}

	update = update.WithContext(ctx)
	next(bot, update)
}

// contextUser returns the user stashed by userFillMiddleware, if any.
func contextUser(ctx context.Context) *storage.User {
	user, _ := ctx.Value(contextUserKey).(*storage.User)
	return user
}
