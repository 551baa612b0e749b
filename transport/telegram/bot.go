// Package telegram runs interviews over a Telegram chat, one session per chat.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/snow-ghost/interviewer/core"
	"github.com/snow-ghost/interviewer/evaluation"
	"github.com/snow-ghost/interviewer/interview"
	"github.com/snow-ghost/interviewer/pkg/limiter"
	"github.com/snow-ghost/interviewer/pkg/logging"
	"github.com/snow-ghost/interviewer/pkg/profiles"
)

type Config struct {
	Token string `mapstructure:"token" json:"-"`
	Debug bool   `mapstructure:"debug" json:"debug"`
	// Timeout is the long-poll timeout in seconds.
	Timeout           int `mapstructure:"timeout" json:"timeout"`
	MessagesPerMinute int `mapstructure:"messages_per_minute" json:"messages_per_minute"`
}

func DefaultConfig() Config {
	return Config{Timeout: 60, MessagesPerMinute: 20}
}

// Interviewer is the part of interview.Service the bot drives.
type Interviewer interface {
	Start(ctx context.Context, profile core.CandidateProfile) (interview.StartResult, error)
	Advance(ctx context.Context, sessionID, utterance string) (interview.AdvanceResult, error)
	Report(ctx context.Context, sessionID string) (core.EvaluationReport, error)
}

// Sender delivers outgoing messages. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	config   Config
	service  Interviewer
	profiles map[string]core.CandidateProfile
	sender   Sender
	limiter  *limiter.RateLimiter
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[int64]string
	queues   *chatQueues
}

type Option func(*Bot)

// WithSender replaces the Telegram API client used for replies.
func WithSender(s Sender) Option {
	return func(b *Bot) { b.sender = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(b *Bot) {
		if l != nil {
			b.logger = l
		}
	}
}

func New(config Config, service Interviewer, set map[string]core.CandidateProfile, opts ...Option) *Bot {
	b := &Bot{
		config:   config,
		service:  service,
		profiles: set,
		limiter:  limiter.NewRateLimiter(),
		logger:   zap.NewNop(),
		sessions: make(map[int64]string),
		queues:   newChatQueues(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run connects to Telegram and handles updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if b.config.Token == "" {
		return errors.New("telegram token is not set")
	}
	api, err := tgbotapi.NewBotAPI(b.config.Token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %w", err)
	}
	api.Debug = b.config.Debug
	if b.sender == nil {
		b.sender = api
	}
	b.logger.Info("telegram bot authorized", zap.String("account", api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.config.Timeout
	updates := api.GetUpdatesChan(u)

	defer b.queues.wait()
	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, update.Message)
		}
	}
}

// dispatch hands msg to its chat's queue. Chats run concurrently, the
// messages of one chat in arrival order.
func (b *Bot) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	if msg == nil || msg.Chat == nil {
		return
	}
	b.queues.push(msg.Chat.ID, msg, func(m *tgbotapi.Message) { b.Handle(ctx, m) })
}

// Handle processes one incoming message and sends the reply.
func (b *Bot) Handle(ctx context.Context, msg *tgbotapi.Message) {
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	policy := limiter.Policy{RequestsPerMinute: b.config.MessagesPerMinute, Burst: b.config.MessagesPerMinute}
	if !b.limiter.Allow(strconv.FormatInt(chatID, 10), policy) {
		b.reply(chatID, "Too many messages. Please wait a minute.")
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.handleStart(ctx, chatID, strings.TrimSpace(msg.CommandArguments()))
		case "report":
			b.handleReport(ctx, chatID)
		case "help":
			b.reply(chatID, b.help())
		default:
			b.reply(chatID, "Unknown command. Use /help to see what I can do.")
		}
		return
	}
	b.handleAnswer(ctx, chatID, msg.Text)
}

func (b *Bot) handleStart(ctx context.Context, chatID int64, name string) {
	if name == "" {
		b.reply(chatID, b.help())
		return
	}
	profile, ok := b.profiles[name]
	if !ok {
		b.reply(chatID, fmt.Sprintf("No profile named %q. Available: %s", name, strings.Join(profiles.Names(b.profiles), ", ")))
		return
	}

	res, err := b.service.Start(ctx, profile)
	if err != nil {
		b.logger.Error("failed to start interview", zap.Int64("chat_id", chatID), zap.Error(err))
		b.reply(chatID, "Sorry, I could not start the interview. Please try again.")
		return
	}

	b.mu.Lock()
	b.sessions[chatID] = res.SessionID
	b.mu.Unlock()

	b.logger.Info("telegram interview started", zap.Int64("chat_id", chatID), logging.Session(res.SessionID))
	b.reply(chatID, res.Utterance)
}

func (b *Bot) handleAnswer(ctx context.Context, chatID int64, text string) {
	id, ok := b.session(chatID)
	if !ok {
		b.reply(chatID, "Send /start <profile> to begin an interview.")
		return
	}

	res, err := b.service.Advance(ctx, id, text)
	switch {
	case errors.Is(err, core.ErrInterviewComplete):
		b.reply(chatID, "This interview is finished. Send /report for your evaluation.")
		return
	case errors.Is(err, core.ErrInvalidInput):
		b.reply(chatID, "I could not use that message. Please answer in plain text.")
		return
	case err != nil:
		b.logger.Error("failed to advance interview", logging.Session(id), zap.Error(err))
		b.reply(chatID, "Something went wrong. Please send your answer again.")
		return
	}

	b.reply(chatID, res.Utterance)
	if res.Complete {
		b.reply(chatID, "The interview is complete. Your evaluation is being prepared, send /report in a minute.")
	}
}

func (b *Bot) handleReport(ctx context.Context, chatID int64) {
	id, ok := b.session(chatID)
	if !ok {
		b.reply(chatID, "You have no interview yet. Send /start <profile> to begin.")
		return
	}
	report, err := b.service.Report(ctx, id)
	switch {
	case errors.Is(err, core.ErrReportNotReady):
		b.reply(chatID, "Your evaluation is not ready yet. Please try again shortly.")
	case err != nil:
		b.logger.Error("failed to load report", logging.Session(id), zap.Error(err))
		b.reply(chatID, "Sorry, I could not load your report.")
	default:
		b.reply(chatID, evaluation.Summary(report))
	}
}

func (b *Bot) session(chatID int64) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.sessions[chatID]
	return id, ok
}

func (b *Bot) help() string {
	names := profiles.Names(b.profiles)
	if len(names) == 0 {
		return "No candidate profiles are configured."
	}
	return "Send /start <profile> to begin an interview, then answer each question in a message. " +
		"Send /report when you are done.\nProfiles: " + strings.Join(names, ", ")
}

func (b *Bot) reply(chatID int64, text string) {
	if b.sender == nil {
		return
	}
	if _, err := b.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Warn("failed to send telegram message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
