package voice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/sajjadalinaqvi/hospital-agent/config"
	"github.com/sajjadalinaqvi/hospital-agent/internal/types"
	"github.com/sajjadalinaqvi/hospital-agent/mic"
)

// maxContextTurns bounds how much conversation history is sent with each
// reply request.
const maxContextTurns = 10

// Pipeline is the direct provider mode: transcribe the clip with Whisper,
// generate a reply with a chat completion, and synthesize reply speech to a
// local file. Used when no voice backend URL is configured.
type Pipeline struct {
	client openai.Client

	chatModel       string
	transcribeModel string
	speechModel     string
	voice           string
	systemPrompt    string

	recent   ContextFunc
	audioDir string
}

// NewPipeline creates a direct provider pipeline. recent supplies prior
// conversation turns for reply context and may be nil.
func NewPipeline(cfg *config.OpenAIConfig, systemPrompt string, recent ContextFunc) *Pipeline {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	p := &Pipeline{
		client:          openai.NewClient(opts...),
		chatModel:       cfg.ChatModel,
		transcribeModel: cfg.TranscribeModel,
		speechModel:     cfg.SpeechModel,
		voice:           cfg.Voice,
		systemPrompt:    systemPrompt,
		recent:          recent,
		audioDir:        filepath.Join(os.TempDir(), "hospital-agent-tts"),
	}
	if p.chatModel == "" {
		p.chatModel = "gpt-4o-mini"
	}
	if p.transcribeModel == "" {
		p.transcribeModel = "whisper-1"
	}
	if p.speechModel == "" {
		p.speechModel = "tts-1"
	}
	if p.voice == "" {
		p.voice = "alloy"
	}
	return p
}

// Exchange runs transcribe → reply → synthesize for one clip. A failed
// synthesis only drops the audio handle; transcript and reply still come
// back.
func (p *Pipeline) Exchange(ctx context.Context, clip mic.Clip) (*types.VoiceResult, error) {
	text, err := p.transcribe(ctx, clip)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	if text == "" {
		return &types.VoiceResult{}, nil
	}

	reply, err := p.reply(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("generate reply: %w", err)
	}

	result := &types.VoiceResult{
		UserInput:         text,
		AssistantResponse: reply,
	}

	if reply != "" {
		audioPath, err := p.synthesize(ctx, reply)
		if err != nil {
			slog.Warn("synthesize reply audio", "error", err)
		} else {
			result.AudioURL = audioPath
		}
	}
	return result, nil
}

func (p *Pipeline) transcribe(ctx context.Context, clip mic.Clip) (string, error) {
	wav := EncodeWAV(clip, mic.SampleRate)

	resp, err := p.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModel(p.transcribeModel),
		File:  openai.File(bytes.NewReader(wav), "audio.wav", "audio/wav"),
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (p *Pipeline) reply(ctx context.Context, userText string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(p.systemPrompt),
	}

	if p.recent != nil {
		turns := p.recent()
		if len(turns) > maxContextTurns {
			turns = turns[len(turns)-maxContextTurns:]
		}
		for _, turn := range turns {
			if turn.Role == "assistant" {
				messages = append(messages, openai.AssistantMessage(turn.Content))
			} else {
				messages = append(messages, openai.UserMessage(turn.Content))
			}
		}
	}
	messages = append(messages, openai.UserMessage(userText))

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.chatModel),
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// synthesize renders the reply as MP3 and returns the path of the written
// file. Old files are left for the OS temp cleaner.
func (p *Pipeline) synthesize(ctx context.Context, text string) (string, error) {
	resp, err := p.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(p.speechModel),
		Voice:          openai.AudioSpeechNewParamsVoice(p.voice),
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(p.audioDir, 0755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}

	path := filepath.Join(p.audioDir, "reply-"+uuid.NewString()+".mp3")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create audio file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("write audio file: %w", err)
	}
	return path, nil
}
