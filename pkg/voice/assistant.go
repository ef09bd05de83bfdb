package voice

import (
	"encoding/json"
	"fmt"
)

const assistantName = "Hiro"

const promptTemplate = `[Identity]
You are a professional and insightful interviewer, focused on assessing candidates' technical skills.

[Style]
- Use a formal and respectful tone.
- Be clear and concise with your questions.
- Encourage candidates with polite remarks.

[Response Guidelines]
- Ask one question at a time and wait for the candidate's response before proceeding.
- Use plain language while framing questions to ensure clarity.

[Task & Goals]
1. Begin by greeting the candidate and introducing yourself.
2. Ask the following questions in order, one at a time, from this list: %s.
3. After all questions are answered, thank the candidate for their responses.
4. Conclude with polite regards and end the call.

[Error Handling / Fallback]
- If the candidate requests clarification on a question, provide a brief explanation to assist them.
- If the candidate struggles with a question, offer encouragement and suggest they move to the next question.
- In case of technical issues or if the candidate is unable to hear, politely inform them of the issue and suggest rescheduling if necessary.`

// AssistantConfig is the session configuration sent to the voice service when
// a call starts.
type AssistantConfig struct {
	Name                  string            `json:"name"`
	Voice                 VoiceConfig       `json:"voice"`
	Model                 ModelConfig       `json:"model"`
	Transcriber           TranscriberConfig `json:"transcriber"`
	FirstMessage          string            `json:"firstMessage"`
	EndCallMessage        string            `json:"endCallMessage"`
	SilenceTimeoutSeconds int               `json:"silenceTimeoutSeconds"`
	MaxDurationSeconds    int               `json:"maxDurationSeconds"`
}

// VoiceConfig selects the text-to-speech voice.
type VoiceConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	VoiceID  string `json:"voiceId"`
}

// ModelConfig selects the conversation model and its system prompt.
type ModelConfig struct {
	Provider string           `json:"provider"`
	Model    string           `json:"model"`
	Messages []AssistantPrompt `json:"messages"`
}

// AssistantPrompt is one prompt message for the conversation model.
type AssistantPrompt struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TranscriberConfig selects the speech-to-text engine.
type TranscriberConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Language string `json:"language"`
}

// NewAssistantConfig builds the per-job interview script. The ordered job
// questions are embedded in the system prompt so the assistant asks them one
// at a time; with no questions configured the service default script applies.
func NewAssistantConfig(questions []string, silenceTimeoutSec, maxDurationSec int) AssistantConfig {
	encoded, err := json.Marshal(questions)
	if err != nil || len(questions) == 0 {
		encoded = []byte("[]")
	}

	if silenceTimeoutSec <= 0 {
		silenceTimeoutSec = 15
	}
	if maxDurationSec <= 0 {
		maxDurationSec = 270
	}

	return AssistantConfig{
		Name: assistantName,
		Voice: VoiceConfig{
			Provider: "openai",
			Model:    "tts-1",
			VoiceID:  "alloy",
		},
		Model: ModelConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			Messages: []AssistantPrompt{
				{
					Role:    "system",
					Content: fmt.Sprintf(promptTemplate, string(encoded)),
				},
			},
		},
		Transcriber: TranscriberConfig{
			Provider: "deepgram",
			Model:    "nova-3",
			Language: "en",
		},
		FirstMessage:          "Hello, I am your Interviewer and I'll be asking you some technical questions, are you ready?",
		EndCallMessage:        "Goodbye.",
		SilenceTimeoutSeconds: silenceTimeoutSec,
		MaxDurationSeconds:    maxDurationSec,
	}
}
