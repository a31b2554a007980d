package handlers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/ai"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/style"
)

// Validation limits for request fields. Registry lookups happen in the
// compiler; these only bound sizes.
const (
	maxIDLen           = 64
	maxPersonalTextLen = 100
	maxCustomPromptLen = 1_000
	maxFinalPromptLen  = 2_000
	maxMessages        = 30
	maxMessageLen      = 1_000
	maxWishTextLen     = 100
	maxBodyBytes       = 64 << 10
)

// validateSelections checks selection field sizes and returns the first
// error found.
func validateSelections(sel style.Selections) string {
	if strings.TrimSpace(sel.StyleUniverse) == "" {
		return "A style is required."
	}
	for _, id := range []string{sel.StyleUniverse, sel.Palette, sel.Pattern, sel.TimeOfDay, sel.Vibe} {
		if len(id) > maxIDLen {
			return "Invalid selections provided"
		}
	}
	if utf8.RuneCountInString(sel.PersonalText) > maxPersonalTextLen {
		return fmt.Sprintf("Personal text is too long (max %d characters).", maxPersonalTextLen)
	}
	if utf8.RuneCountInString(sel.CustomPrompt) > maxCustomPromptLen {
		return fmt.Sprintf("Custom prompt is too long (max %d characters).", maxCustomPromptLen)
	}
	return ""
}

// validateFinalPrompt checks a prompt handed back from the conversation.
func validateFinalPrompt(p string) string {
	if utf8.RuneCountInString(p) > maxFinalPromptLen {
		return fmt.Sprintf("Prompt is too long (max %d characters).", maxFinalPromptLen)
	}
	return ""
}

// validateMessages checks a conversation history.
func validateMessages(msgs []ai.Message) string {
	if len(msgs) == 0 {
		return "Messages are required."
	}
	if len(msgs) > maxMessages {
		return fmt.Sprintf("Conversation is too long (max %d messages).", maxMessages)
	}
	for _, m := range msgs {
		if m.Role != ai.RoleUser && m.Role != ai.RoleAssistant {
			return "Each message needs a role of user or assistant."
		}
		if utf8.RuneCountInString(m.Content) > maxMessageLen {
			return fmt.Sprintf("Message is too long (max %d characters).", maxMessageLen)
		}
	}
	if msgs[len(msgs)-1].Role != ai.RoleUser || strings.TrimSpace(msgs[len(msgs)-1].Content) == "" {
		return "The last message must be a non-empty user message."
	}
	return ""
}

// validateWish checks the guided wish builder input.
func validateWish(style, subject, color, text string) string {
	if style == "" && subject == "" && color == "" {
		return "Pick at least one option."
	}
	if utf8.RuneCountInString(text) > maxWishTextLen {
		return fmt.Sprintf("Text is too long (max %d characters).", maxWishTextLen)
	}
	return ""
}
