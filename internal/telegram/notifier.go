package telegram

import (
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/camuig/krx-stock-report/internal/config"
	"github.com/camuig/krx-stock-report/internal/logger"
)

// Notifier posts run results to a chat. A disabled notifier does nothing.
type Notifier struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	enabled bool
	logger  *logger.Logger
}

func NewNotifier(cfg *config.Config, log *logger.Logger) *Notifier {
	return newNotifier(cfg, tgbotapi.APIEndpoint, log)
}

func newNotifier(cfg *config.Config, endpoint string, log *logger.Logger) *Notifier {
	if !cfg.Telegram.Enabled {
		return &Notifier{enabled: false, logger: log}
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Telegram.BotToken, endpoint, &http.Client{})
	if err != nil {
		log.Error("failed to create telegram bot", "error", err)
		return &Notifier{enabled: false, logger: log}
	}

	log.Info("telegram bot connected", "username", bot.Self.UserName)

	return &Notifier{
		bot:     bot,
		chatID:  cfg.Telegram.ChatID,
		enabled: true,
		logger:  log,
	}
}

func (n *Notifier) Enabled() bool { return n.enabled }

// NotifyReport announces a delivered report.
func (n *Notifier) NotifyReport(company, close, path string, recipients int) {
	msg := fmt.Sprintf("📈 *%s*\n종가: %s원\n보고서: %s\n수신자: %d",
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, company), close,
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, path), recipients)
	n.send(msg)
}

// NotifyError reports the stage a run failed at.
func (n *Notifier) NotifyError(stage string, err error) {
	msg := fmt.Sprintf("⚠️ *오류* [%s]\n%s", stage,
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, err.Error()))
	n.send(msg)
}

func (n *Notifier) send(text string) {
	if !n.enabled {
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error("send telegram message", "error", err)
	}
}
