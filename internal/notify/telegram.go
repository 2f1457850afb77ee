package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
)

type telegramMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
	Parse  string `json:"parse_mode"`
}

// SendTelegramMessage posts one message to the ops channel. Requires
// TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID in the environment.
func SendTelegramMessage(content string) error {
	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	if botToken == "" || chatID == "" {
		return fmt.Errorf("telegram alerting not configured")
	}

	msg := telegramMessage{
		ChatID: chatID,
		Text:   content,
		Parse:  "Markdown",
	}
	body, _ := json.Marshal(msg)
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", botToken)
	resp, err := http.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

// Alert sends an ops alert asynchronously; failures only log.
func Alert(title, content string) {
	go func() {
		if err := SendTelegramMessage(fmt.Sprintf("*%s*\n%s", title, content)); err != nil {
			log.Printf("telegram alert failed: %v", err)
		}
	}()
}
