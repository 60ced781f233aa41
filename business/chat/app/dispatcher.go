package app

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/chat/domain"

	platform "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/platform/domain"
	trading "github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/trading/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apm"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/apperror"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
)

// Texts are the configurable static replies.
type Texts struct {
	Help      string
	AdminHelp string
	Info      string
}

// Settings configure the dispatcher.
type Settings struct {
	Bot     platform.SteamID
	Owners  []platform.SteamID
	Rates   trading.Rates
	Limits  trading.Limits
	Texts   Texts
	IsAdmin func(id string) bool
}

// Deps are the collaborators the dispatcher drives.
type Deps struct {
	Notifier    Notifier
	Friends     FriendList
	Trader      KeyTrader
	Holdings    Holdings
	Blocks      BlockList
	Profit      ProfitReader
	Broadcaster *Broadcaster
	Spam        *SpamFilter
	IsKey       func(platform.Item) bool
	Log         logger.LoggerInterface
}

// Dispatcher turns chat messages into replies.
type Dispatcher struct {
	deps     Deps
	settings Settings
	tracer   apm.Tracer
	commands metric.Int64Counter
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(deps Deps, settings Settings) *Dispatcher {
	if settings.IsAdmin == nil {
		settings.IsAdmin = func(string) bool { return false }
	}

	commands, _ := otel.Meter("chat").Int64Counter(
		"chat_commands_total",
		metric.WithDescription("Chat commands handled, by command"),
	)
	return &Dispatcher{
		deps:     deps,
		settings: settings,
		tracer:   apm.NewTracer("chat"),
		commands: commands,
	}
}

// HandleChat processes one inbound message. Blocked senders (the ignore list
// included), plain chatter and unknown commands get no reply.
func (d *Dispatcher) HandleChat(ctx context.Context, msg platform.ChatMessage) {
	from := msg.From
	if d.deps.Blocks.IsBlocked(from) {
		d.deps.Log.Debug(ctx, "ignoring message from blocked party", "steam_id", from)
		return
	}

	admin := d.settings.IsAdmin(from.String())
	if !admin && d.deps.Spam != nil && d.deps.Spam.Hit(from) {
		d.removeSpammer(ctx, from)
		return
	}

	cmd, ok := domain.Parse(msg.Text)
	if !ok || (cmd.AdminOnly() && !admin) {
		return
	}

	ctx, span := d.tracer.StartSpanFromContext(ctx, "chat."+string(cmd.Name))
	defer span.End()
	span.SetAttributes(attribute.String("steam_id", from.String()))
	if d.commands != nil {
		d.commands.Add(ctx, 1, metric.WithAttributes(attribute.String("command", string(cmd.Name))))
	}

	d.deps.Log.Info(ctx, "chat command", "command", cmd.Name, "steam_id", from, "admin", admin)
	d.deps.Notifier.Send(ctx, from, d.run(ctx, from, cmd))
}

func (d *Dispatcher) run(ctx context.Context, from platform.SteamID, cmd domain.Command) string {
	switch cmd.Name {
	case domain.Help:
		return d.settings.Texts.Help
	case domain.Prices:
		return domain.PricesText(d.settings.Rates)
	case domain.Info:
		return d.settings.Texts.Info
	case domain.Check:
		return d.check(ctx, from)
	case domain.SellTF:
		return d.trade(ctx, "sell", from, cmd.Quantity(), d.deps.Trader.SellKeys)
	case domain.BuyTF:
		return d.trade(ctx, "buy", from, cmd.Quantity(), d.deps.Trader.BuyKeys)
	case domain.Admin:
		return d.settings.Texts.AdminHelp
	case domain.Profit:
		return d.profit(ctx, from)
	case domain.Block:
		return d.block(ctx, cmd.Args)
	case domain.Unblock:
		return d.unblock(ctx, cmd.Args)
	case domain.Broadcast:
		return d.broadcast(ctx, cmd.Args)
	}
	return ""
}

func (d *Dispatcher) trade(ctx context.Context, side string, from platform.SteamID, n int,
	fn func(context.Context, platform.SteamID, int) (string, error)) string {
	reply, err := fn(ctx, from, n)
	switch {
	case err == nil:
	case apperror.IsClientError(err):
		d.deps.Log.Info(ctx, "key request refused", "side", side, "steam_id", from, "keys", n, "reason", apperror.GetCode(err))
	default:
		d.deps.Log.Error(ctx, "key request failed", "side", side, "steam_id", from, "keys", n, "error", err)
	}
	return reply
}

func (d *Dispatcher) check(ctx context.Context, from platform.SteamID) string {
	var (
		keys []platform.Item
		gems int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		keys, err = d.deps.Holdings.QualifyingItems(gctx, from, platform.KeyNamespace, d.deps.IsKey)
		return err
	})
	g.Go(func() (err error) {
		gems, err = d.deps.Holdings.GemBalance(gctx, from)
		return err
	})
	if err := g.Wait(); err != nil {
		d.deps.Log.Warn(ctx, "check failed", "steam_id", from, "error", err)
		return domain.ReplyCheckFailed
	}
	return domain.CheckText(d.settings.Rates, d.settings.Limits, len(keys), gems)
}

func (d *Dispatcher) profit(ctx context.Context, from platform.SteamID) string {
	d.deps.Notifier.Send(ctx, from, domain.ReplyProfitLoading)

	var (
		keys []platform.Item
		gems int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		keys, err = d.deps.Holdings.QualifyingItems(gctx, d.settings.Bot, platform.KeyNamespace, d.deps.IsKey)
		return err
	})
	g.Go(func() (err error) {
		gems, err = d.deps.Holdings.GemBalance(gctx, d.settings.Bot)
		return err
	})
	if err := g.Wait(); err != nil {
		d.deps.Log.Error(ctx, "loading bot stock failed", "error", err)
		return domain.ReplyStockFailed
	}
	return domain.ProfitText(d.deps.Profit.Snapshot(), d.settings.Rates, gems, len(keys))
}

func (d *Dispatcher) block(ctx context.Context, args string) string {
	id, err := platform.ParseSteamID(firstField(args))
	if err != nil {
		return domain.ReplyBlockUsage
	}

	err = d.deps.Blocks.Block(ctx, id)
	switch {
	case err == nil:
		return domain.BlockedReply(id.String())
	case apperror.HasCode(err, apperror.CodeAdminProtected):
		return domain.ReplyAdminBlock
	case apperror.HasCode(err, apperror.CodeAlreadyBlocked):
		return domain.AlreadyBlockedReply(id.String())
	default:
		return domain.UnsavedReply(id.String())
	}
}

func (d *Dispatcher) unblock(ctx context.Context, args string) string {
	id, err := platform.ParseSteamID(firstField(args))
	if err != nil {
		return domain.ReplyUnblockUsage
	}

	err = d.deps.Blocks.Unblock(ctx, id)
	switch {
	case err == nil:
		return domain.UnblockedReply(id.String())
	case apperror.HasCode(err, apperror.CodeNotBlocked):
		return domain.NotBlockedReply(id.String())
	default:
		return domain.UnsavedReply(id.String())
	}
}

func (d *Dispatcher) broadcast(ctx context.Context, text string) string {
	if text == "" {
		return domain.ReplyBroadcastUsage
	}
	n, err := d.deps.Broadcaster.Broadcast(ctx, text)
	if err != nil {
		d.deps.Log.Error(ctx, "broadcast failed", "error", err)
		return domain.ReplyBroadcastFailed
	}
	return domain.BroadcastReply(n)
}

func (d *Dispatcher) removeSpammer(ctx context.Context, id platform.SteamID) {
	d.deps.Notifier.Send(ctx, id, domain.ReplySpam)
	if err := d.deps.Friends.RemoveFriend(ctx, id); err != nil {
		d.deps.Log.Warn(ctx, "removing spammer failed", "steam_id", id, "error", err)
	}
	d.deps.Log.Warn(ctx, "party removed for spamming", "steam_id", id)

	for _, owner := range d.settings.Owners {
		d.deps.Notifier.Send(ctx, owner, domain.SpamNotice(id.String()))
	}
}

func firstField(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}
