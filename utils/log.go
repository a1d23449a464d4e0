package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type LogLevel string

const (
	Info  LogLevel = "INFO"
	Warn  LogLevel = "WARN"
	Error LogLevel = "ERROR"
)

type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type DiscordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color"`
	Fields      []DiscordEmbedField `json:"fields"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

func getColor(level LogLevel) int {
	switch level {
	case Info:
		return 3066993 // Green
	case Warn:
		return 15105570 // Orange
	case Error:
		return 15158332 // Red
	default:
		return 3447003 // Blue
	}
}

// PostWebhookEmbeds posts embeds to a Discord webhook using GlobalHTTPClient.
func PostWebhookEmbeds(ctx context.Context, webhookURL string, embeds ...DiscordEmbed) error {
	if webhookURL == "" {
		return fmt.Errorf("webhook url is empty")
	}

	jsonPayload, err := json.Marshal(DiscordWebhookPayload{Embeds: embeds})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := GlobalHTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to send log to discord, status: %s, body: %s", resp.Status, string(body))
	}

	return nil
}

func sendLog(ctx context.Context, webhookURL string, level LogLevel, module, operation, extraInfo string) error {
	embed := DiscordEmbed{
		Title: string(level) + " Log",
		Color: getColor(level),
		Fields: []DiscordEmbedField{
			{Name: "Module", Value: module},
			{Name: "Operation", Value: operation},
			{Name: "Details", Value: extraInfo},
		},
	}
	return PostWebhookEmbeds(ctx, webhookURL, embed)
}

func LogInfo(ctx context.Context, webhookURL, module, operation, extraInfo string) error {
	return sendLog(ctx, webhookURL, Info, module, operation, extraInfo)
}

func LogWarn(ctx context.Context, webhookURL, module, operation, extraInfo string) error {
	return sendLog(ctx, webhookURL, Warn, module, operation, extraInfo)
}

func LogError(ctx context.Context, webhookURL, module, operation, extraInfo string) error {
	return sendLog(ctx, webhookURL, Error, module, operation, extraInfo)
}
