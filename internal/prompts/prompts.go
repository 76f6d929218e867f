// Package prompts holds the instruction templates sent to the language
// model. Defaults are compiled in; a YAML file can override any of them
// without a rebuild.
package prompts

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Set struct {
	System       string `yaml:"system"`
	Answer       string `yaml:"answer"`
	Count        string `yaml:"count"`
	Conversation string `yaml:"conversation"`
}

const defaultSystem = `You are a careful assistant answering questions strictly from the provided document excerpts.
Rules:
- Use only the excerpts under CONTEXT. Never invent facts.
- When the context does not contain the answer, say so plainly.
- Name the source document for every claim you make.
- Keep answers direct; no preamble.`

const defaultAnswer = `%[1]s

CONTEXT:
%[2]s

QUESTION: %[3]s

Answer from the context above. Cite the document name for each fact.`

const defaultCount = `%[1]s

CONTEXT:
%[2]s

QUESTION: %[3]s

This is a counting or listing question. Enumerate every distinct item found in the context before stating the total, then give the final count or list. Cite the document name for each item.`

const defaultConversation = `You are a friendly assistant for a document question-answering service. Reply briefly to the user's message. If they ask what you can do, say you answer questions about their uploaded documents.

USER: %s`

// Default returns the compiled-in prompt set.
func Default() Set {
	return Set{
		System:       defaultSystem,
		Answer:       defaultAnswer,
		Count:        defaultCount,
		Conversation: defaultConversation,
	}
}

// Load reads overrides from a YAML file on top of the defaults. Empty path
// returns the defaults unchanged.
func Load(path string) (Set, error) {
	set := Default()
	if path == "" {
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return set, fmt.Errorf("read prompts file: %w", err)
	}

	var override Set
	if err := yaml.Unmarshal(data, &override); err != nil {
		return set, fmt.Errorf("parse prompts file: %w", err)
	}

	if override.System != "" {
		set.System = override.System
	}
	if override.Answer != "" {
		set.Answer = override.Answer
	}
	if override.Count != "" {
		set.Count = override.Count
	}
	if override.Conversation != "" {
		set.Conversation = override.Conversation
	}
	return set, nil
}
