package translator

import (
	"regexp"
	"strings"

	"github.com/valpere/doctran/internal/placeholder"
)

// LLM-backed services wrap answers in reasoning blocks, preambles and quotes
// even when told not to. cleanLLMOutput strips those.

var reasoningBlockRe = regexp.MustCompile(`(?is)<(think|thinking|reasoning)>.*?</(think|thinking|reasoning)>`)

// unterminatedReasoningRe catches a block the model never closed.
var unterminatedReasoningRe = regexp.MustCompile(`(?is)<(think|thinking|reasoning)>.*$`)

var preambleRe = regexp.MustCompile(`(?i)^(?:(?:sure|certainly|of course)[,.!]?\s+)?here(?:'s| is)(?: the)? (?:translated )?(?:translation|text)(?: in [a-z]+)?\s*:\s*`)

func cleanLLMOutput(text string) string {
	text = reasoningBlockRe.ReplaceAllString(text, "")
	text = unterminatedReasoningRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	text = strings.TrimSpace(preambleRe.ReplaceAllString(text, ""))
	return trimWrappingQuotes(text)
}

func trimWrappingQuotes(text string) string {
	runes := []rune(text)
	if len(runes) < 2 {
		return text
	}
	pairs := map[rune]rune{'"': '"', '\'': '\'', '«': '»', '“': '”'}
	if closing, ok := pairs[runes[0]]; ok && runes[len(runes)-1] == closing {
		inner := runes[1 : len(runes)-1]
		// "a" and "b" is not a wrapped string.
		if !strings.ContainsRune(string(inner), runes[0]) {
			return strings.TrimSpace(string(inner))
		}
	}
	return text
}

// llmPrompt is the instruction shared by the chat-style services.
func llmPrompt(sourceLang, targetLang string) string {
	return "You are a professional translator. Translate the user's text from " + sourceLang + " to " + targetLang + ". " +
		"Preserve line breaks and paragraph structure. " + placeholder.InstructionHint() + " " +
		"Respond with the translation only: no explanations, no quotes."
}
