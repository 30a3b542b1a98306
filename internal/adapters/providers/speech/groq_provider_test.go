package speech

import (
	"errors"
	"testing"

	"github.com/sweethome-care/voice-entry-service/internal/domain/providers"
)

func TestParseInsight_ValidResponse(t *testing.T) {
	raw := `{
		"emotion": "開心",
		"summary3": ["今天去了公園", "遇到老朋友", "聊了很久"],
		"quickReplies": ["太好了！", "下次一起去", "注意保暖"]
	}`

	insight, err := parseInsight(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insight.Emotion == nil || *insight.Emotion != "開心" {
		t.Errorf("wrong emotion: %v", insight.Emotion)
	}
	if len(insight.Summary) != 3 {
		t.Errorf("expected 3 summary lines, got %d", len(insight.Summary))
	}
	if len(insight.QuickReplies) != 3 {
		t.Errorf("expected 3 quick replies, got %d", len(insight.QuickReplies))
	}
}

func TestParseInsight_MarkdownFences(t *testing.T) {
	raw := "```json\n{\"emotion\":\"平靜\",\"summary3\":[\"a\"],\"quickReplies\":[\"ok\"]}\n```"

	insight, err := parseInsight(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *insight.Emotion != "平靜" {
		t.Errorf("wrong emotion: %s", *insight.Emotion)
	}
}

func TestParseInsight_ClampsToThreeItems(t *testing.T) {
	raw := `{
		"emotion": "開心",
		"summary3": ["a", "b", "c", "d", "e"],
		"quickReplies": ["1", "2", "3", "4"]
	}`

	insight, err := parseInsight(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insight.Summary) != 3 {
		t.Errorf("expected summary clamped to 3, got %d", len(insight.Summary))
	}
	if len(insight.QuickReplies) != 3 {
		t.Errorf("expected quick replies clamped to 3, got %d", len(insight.QuickReplies))
	}
}

func TestParseInsight_MissingFields_EmptySlices(t *testing.T) {
	insight, err := parseInsight(`{"emotion":""}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insight.Emotion != nil {
		t.Error("expected nil emotion for empty string")
	}
	if insight.Summary == nil || insight.QuickReplies == nil {
		t.Error("expected empty slices, not nil")
	}
}

func TestParseInsight_Malformed(t *testing.T) {
	_, err := parseInsight("抱歉，我無法回答這個問題。")
	if err == nil {
		t.Fatal("expected error for non-JSON response")
	}
	if !errors.Is(err, providers.ErrMalformedInsight) {
		t.Errorf("expected ErrMalformedInsight, got %v", err)
	}
}
