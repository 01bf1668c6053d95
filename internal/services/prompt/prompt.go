// Package prompt implements the Prompt Builder and LLM Client (§4.7): a
// fixed system prompt in the original salesperson persona, a structured
// context block, a strict JSON reply contract, and a template fallback
// for parse failures. Grounded on original_source's prompt_builder.py
// (system prompt content and few-shot examples) and the teacher's
// pkg/rag/agent_rag.go (context assembly/timeout shape).
package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/retriever"
)

const maxResponseChars = 160

// Reply is the strict JSON contract the LLM must emit.
type Reply struct {
	Message        string  `json:"message"`
	AutoSend       bool    `json:"auto_send"`
	Handoff        bool    `json:"handoff"`
	HandoffReason  *string `json:"handoff_reason"`
	RetrievalQuery string  `json:"retrieval_query"`
	NextAction     string  `json:"next_action"`
}

// ContextTurn is one prior conversation turn for the context block.
type ContextTurn struct {
	Role    string
	Content string
}

// Input assembles everything the Builder needs to construct a prompt.
type Input struct {
	DealershipName string
	AgentName      string
	RecentTurns    []ContextTurn // last five, oldest first
	Slots          map[string]string
	Vehicles       []retriever.Candidate // up to three
	UserMessage    string
}

// Completer is the subset of an LLM client the Builder depends on,
// satisfied by *Client (below) or a test double.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Builder composes prompts and parses the model's structured reply.
type Builder struct {
	llm Completer
}

// New builds a Builder around an LLM Completer.
func New(llm Completer) *Builder {
	return &Builder{llm: llm}
}

// Generate builds the full prompt, calls the LLM, and parses its reply.
// On JSON-parse failure it falls back to a deterministic template built
// from the retrieved vehicles (or a no-match template).
func (b *Builder) Generate(ctx context.Context, in Input) (Reply, error) {
	system := systemPrompt(in.DealershipName, in.AgentName)
	user := userPrompt(in)

	raw, err := b.llm.Complete(ctx, system, user)
	if err != nil {
		return Reply{}, fmt.Errorf("llm completion failed: %w", err)
	}

	reply, ok := parseReply(raw)
	if !ok {
		return fallbackReply(in), nil
	}
	return reply, nil
}

func systemPrompt(dealershipName, agentName string) string {
	if dealershipName == "" {
		dealershipName = "the dealership"
	}
	if agentName == "" {
		agentName = "Maqro"
	}
	return fmt.Sprintf(`You are %s, an AI sales agent for %s. Your job is to handle customer conversations naturally like a real salesperson. Your goal is to build rapport, guide the customer through their options, and hand off to a salesperson only when necessary. Always keep past conversation context in memory.

Core rules:
- Be conversational, not robotic. Acknowledge first, then ask short, natural follow-ups.
- Don't list vehicles immediately unless the customer asks directly. Build rapport before pitching.
- Use ONLY the conversation history and slot map below to track what the customer wants. Do not assume anything beyond what has been said.
- If the customer already gave a make, model, budget, or time, do not ask for it again.
- Keep replies under %d characters when possible.

Handoff triggers: price negotiation, financing questions, trade-in questions, legal/compliance questions, media requests without available media, and any message after a test drive time is confirmed.

Respond with a single JSON object and nothing else:
{"message": "exact reply to send", "auto_send": true or false, "handoff": true or false, "handoff_reason": "reason string or null", "retrieval_query": "inventory search query or empty string", "next_action": "short description of the suggested next step"}`, agentName, dealershipName, maxResponseChars)
}

func userPrompt(in Input) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for _, t := range lastFive(in.RecentTurns) {
		fmt.Fprintf(&b, "%s: %s\n", capitalize(t.Role), t.Content)
	}
	if len(in.Slots) > 0 {
		b.WriteString("Known so far: ")
		first := true
		for k, v := range in.Slots {
			if v == "" {
				continue
			}
			if !first {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%s", k, v)
			first = false
		}
		b.WriteString("\n")
	}
	if len(in.Vehicles) > 0 {
		b.WriteString("Matching inventory:\n")
		for i, c := range in.Vehicles {
			if i >= 3 {
				break
			}
			v := c.Vehicle
			fmt.Fprintf(&b, "- %d %s %s, $%.0f, %s\n", v.Year, v.Make, v.Model, v.Price, v.Features.Join(", "))
		}
	}
	fmt.Fprintf(&b, "\nCustomer: %s", in.UserMessage)
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func lastFive(turns []ContextTurn) []ContextTurn {
	if len(turns) <= 5 {
		return turns
	}
	return turns[len(turns)-5:]
}

func parseReply(raw string) (Reply, bool) {
	trimmed := extractJSONObject(raw)
	if trimmed == "" {
		return Reply{}, false
	}
	var r Reply
	if err := json.Unmarshal([]byte(trimmed), &r); err != nil {
		return Reply{}, false
	}
	if r.Message == "" {
		return Reply{}, false
	}
	if r.Handoff && (r.HandoffReason == nil || *r.HandoffReason == "") {
		return Reply{}, false
	}
	return r, true
}

// extractJSONObject returns the span from the first "{" to the last "}" of
// raw text, tolerating a model that wraps one JSON object in prose or code
// fences.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return ""
	}
	return raw[start : end+1]
}

// fallbackReply synthesizes a template response from retrieved vehicles
// when the model's output cannot be parsed as JSON.
func fallbackReply(in Input) Reply {
	if len(in.Vehicles) == 0 {
		return Reply{
			Message:        "I don't have an exact match in stock right now, but let me know your budget and must-haves and I'll keep looking.",
			AutoSend:       true,
			Handoff:        false,
			RetrievalQuery: "",
			NextAction:     "collect_preferences",
		}
	}
	v := in.Vehicles[0].Vehicle
	return Reply{
		Message:        fmt.Sprintf("We have a %d %s %s available for $%.0f. Want more details or to set up a test drive?", v.Year, v.Make, v.Model, v.Price),
		AutoSend:       true,
		Handoff:        false,
		RetrievalQuery: "",
		NextAction:     "offer_test_drive",
	}
}

