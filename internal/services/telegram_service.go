package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// TelegramService sends visit and message notifications to a Telegram chat
// through the Bot API. All sends are best-effort: callers are expected to
// log and swallow errors.
type TelegramService struct {
	botToken string
	chatID   string
	client   *http.Client
}

func NewTelegramService(botToken, chatID string) *TelegramService {
	return &TelegramService{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type telegramSendRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Configured reports whether the bot credentials are present.
func (s *TelegramService) Configured() bool {
	return s.botToken != "" && s.chatID != ""
}

// SendMessage posts a plain-text message to the configured chat
func (s *TelegramService) SendMessage(text string) error {
	if !s.Configured() {
		return fmt.Errorf("telegram bot not configured")
	}

	payload := telegramSendRequest{
		ChatID: s.chatID,
		Text:   text,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)
	resp, err := s.client.Post(url, "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp telegramResponse
		json.NewDecoder(resp.Body).Decode(&errResp)
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, errResp.Description)
	}

	return nil
}

// NotifyVisit summarizes a page view. Country and city may be nil when the
// edge did not inject geo headers. No-op when the bot is not configured so
// an unconfigured deployment does not log a failure per visit.
func (s *TelegramService) NotifyVisit(path string, country, city *string) error {
	if !s.Configured() {
		return nil
	}

	location := "somewhere"
	if city != nil && country != nil {
		location = fmt.Sprintf("%s, %s", *city, *country)
	} else if country != nil {
		location = *country
	}

	return s.SendMessage(fmt.Sprintf("👀 New visit on %s from %s", path, location))
}
