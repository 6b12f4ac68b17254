package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lexmarket_echo/internal/config"
)

// MeetingService provisions video rooms for confirmed consultations through
// the meetings provider's REST API.
type MeetingService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewMeetingService(cfg *config.Config) *MeetingService {
	return &MeetingService{
		baseURL: cfg.MeetingsBaseURL,
		apiKey:  cfg.MeetingsAPIKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type roomResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (s *MeetingService) makeRequest(ctx context.Context, method, endpoint string, payload, dest interface{}) error {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		bodyReader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s%s", s.baseURL, endpoint), bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if dest != nil {
		return json.NewDecoder(resp.Body).Decode(dest)
	}
	return nil
}

// NormalizeRoomName turns an arbitrary label into a provider-safe room name:
// lowercase, spaces collapsed to dashes, anything else dropped.
func NormalizeRoomName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	lastDash := true
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == ' ' || r == '-' || r == '_':
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// CreateRoom provisions a room that expires shortly after the consultation
// ends and returns its join URL.
func (s *MeetingService) CreateRoom(ctx context.Context, label string, scheduledAt time.Time) (string, error) {
	payload := map[string]interface{}{
		"name": NormalizeRoomName(label),
		"properties": map[string]interface{}{
			"exp": scheduledAt.Add(3 * time.Hour).Unix(),
		},
	}

	var room roomResponse
	if err := s.makeRequest(ctx, "POST", "/rooms", payload, &room); err != nil {
		return "", err
	}
	return room.URL, nil
}
