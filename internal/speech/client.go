package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	errx "github.com/swayam-agent/server/internal/core/error"
	"github.com/swayam-agent/server/internal/lang"
	logx "github.com/swayam-agent/server/pkg/logger"
)

// Config holds the speech service connection settings, sourced from env.
type Config struct {
	BaseURL        string `split_words:"true" default:"https://api.sarvam.ai" validate:"url"`
	APIKey         string `split_words:"true" required:"true"`
	STTModel       string `envconfig:"STT_MODEL" default:"saarika:v2.5"`
	TranslateModel string `split_words:"true" default:"sarvam-translate:v1"`
	TTSModel       string `envconfig:"TTS_MODEL" default:"bulbul:v2"`
	DefaultSpeaker string `split_words:"true" default:"anushka"`
	TimeoutSeconds int    `split_words:"true" default:"30"`
	RetryMax       int    `split_words:"true" default:"2"`

	// TTSMaxChars bounds each synthesis chunk; TTSBatchSize bounds the inputs
	// list per upstream call.
	TTSMaxChars  int `envconfig:"TTS_MAX_CHARS" default:"500"`
	TTSBatchSize int `envconfig:"TTS_BATCH_SIZE" default:"3"`
}

// SupportedSpeakers is the fixed speaker set the synthesis endpoint accepts.
var SupportedSpeakers = map[string]struct{}{
	"anushka": {}, "abhilash": {}, "manisha": {}, "vidya": {}, "arya": {},
	"karun": {}, "hitesh": {}, "aditya": {}, "ritu": {}, "chirag": {},
	"priya": {}, "neha": {}, "rahul": {}, "pooja": {}, "rohan": {},
	"simran": {}, "kavya": {}, "sunita": {}, "tara": {}, "anirudh": {},
	"anjali": {}, "ishaan": {}, "ratan": {}, "varun": {}, "manan": {},
	"sumit": {}, "roopa": {}, "kabir": {}, "aayan": {}, "shubh": {},
}

// Client talks to the Sarvam-style speech REST API: speech-to-text,
// translation and text-to-speech. All calls carry a context deadline and
// transient failures are retried with backoff.
type Client struct {
	http *retryablehttp.Client
	cfg  Config
}

func NewClient(cfg Config) *Client {
	if cfg.TTSMaxChars <= 0 {
		cfg.TTSMaxChars = 500
	}
	if cfg.TTSBatchSize <= 0 {
		cfg.TTSBatchSize = 3
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.HTTPClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	rc.Logger = nil
	return &Client{http: rc, cfg: cfg}
}

type transcribeResponse struct {
	Transcript   string `json:"transcript"`
	LanguageCode string `json:"language_code"`
}

// Transcribe sends audio to the speech-to-text endpoint and returns the
// transcript with the detected language code. The container type is sniffed
// from the payload: a RIFF header means wav, anything else is treated as a
// compressed browser recording.
func (c *Client) Transcribe(ctx context.Context, audio []byte, languageHint string) (string, string, error) {
	filename, mime := "audio.webm", "audio/webm"
	if len(audio) >= 4 && string(audio[:4]) == "RIFF" {
		filename, mime = "audio.wav", "audio/wav"
	}
	if languageHint == "" {
		languageHint = "unknown"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename=%q`, filename)},
		"Content-Type":        {mime},
	})
	if err != nil {
		return "", "", fmt.Errorf("build multipart: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", "", fmt.Errorf("write audio part: %w", err)
	}
	if err := mw.WriteField("language_code", languageHint); err != nil {
		return "", "", fmt.Errorf("write language field: %w", err)
	}
	if err := mw.WriteField("model", c.cfg.STTModel); err != nil {
		return "", "", fmt.Errorf("write model field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", "", fmt.Errorf("close multipart: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/speech-to-text", body.Bytes())
	if err != nil {
		return "", "", err
	}
	req.Header.Set("API-Subscription-Key", c.cfg.APIKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out transcribeResponse
	if err := c.do(req, &out); err != nil {
		return "", "", errx.WrapUpstream(fmt.Errorf("speech-to-text: %w", err))
	}
	return out.Transcript, out.LanguageCode, nil
}

type translateRequest struct {
	Input              string `json:"input"`
	SourceLanguageCode string `json:"source_language_code"`
	TargetLanguageCode string `json:"target_language_code"`
	Model              string `json:"model"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
}

// TranslateChunk translates one chunk of text. Chunking to the upstream input
// limit is the caller's job (see lang.Normalizer).
func (c *Client) TranslateChunk(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	payload, err := json.Marshal(translateRequest{
		Input:              text,
		SourceLanguageCode: sourceLang,
		TargetLanguageCode: targetLang,
		Model:              c.cfg.TranslateModel,
	})
	if err != nil {
		return "", fmt.Errorf("marshal translate request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/translate", payload)
	if err != nil {
		return "", err
	}
	req.Header.Set("API-Subscription-Key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	var out translateResponse
	if err := c.do(req, &out); err != nil {
		return "", errx.WrapTranslation(err)
	}
	return out.TranslatedText, nil
}

type synthesizeRequest struct {
	Language string   `json:"language"`
	Inputs   []string `json:"inputs"`
	Speaker  string   `json:"speaker"`
	Model    string   `json:"model"`
}

// Synthesize converts text to speech and returns one base64-encoded WAV
// payload. The text is split into boundary-safe chunks, chunks are batched
// per the upstream inputs-per-call limit, and the per-chunk audio is stitched
// back together in request order. Unsupported languages and speakers are
// replaced with fixed defaults rather than rejected.
func (c *Client) Synthesize(ctx context.Context, text, languageCode, speaker string) (string, error) {
	speaker = strings.ToLower(strings.TrimSpace(speaker))
	if speaker == "" {
		speaker = c.cfg.DefaultSpeaker
	}
	if _, ok := SupportedSpeakers[speaker]; !ok {
		logx.Warn().Str("speaker", speaker).Msg("unsupported speaker, using default")
		speaker = "anushka"
	}
	if !lang.IsSupported(languageCode) {
		logx.Warn().Str("language", languageCode).Msg("unsupported language, using en-IN")
		languageCode = lang.PivotCode
	}

	chunks := lang.SplitChunks(text, c.cfg.TTSMaxChars)
	if len(chunks) == 0 {
		return "", nil
	}

	batchSize := c.cfg.TTSBatchSize
	if batchSize <= 0 {
		batchSize = 3
	}

	var audios []string
	for i := 0; i < len(chunks); i += batchSize {
		batch := chunks[i:min(i+batchSize, len(chunks))]
		got, err := c.synthesizeBatch(ctx, languageCode, batch, speaker)
		if err != nil {
			return "", errx.WrapUpstream(fmt.Errorf("text-to-speech batch %d: %w", i/batchSize, err))
		}
		audios = append(audios, got...)
	}

	return StitchWAV(audios), nil
}

func (c *Client) synthesizeBatch(ctx context.Context, languageCode string, inputs []string, speaker string) ([]string, error) {
	payload, err := json.Marshal(synthesizeRequest{
		Language: languageCode,
		Inputs:   inputs,
		Speaker:  speaker,
		Model:    c.cfg.TTSModel,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tts request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/text-to-speech", payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("API-Subscription-Key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tts response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	return parseAudios(raw)
}

// parseAudios tolerates the response shapes the synthesis endpoint has been
// seen to produce: {"audios": [...]}, {"audio": "..."}, {"data": "..."} or a
// bare base64 string.
func parseAudios(raw []byte) ([]string, error) {
	var bare string
	if err := json.Unmarshal(raw, &bare); err == nil {
		if bare == "" {
			return nil, fmt.Errorf("tts response missing audio data")
		}
		return []string{bare}, nil
	}

	var envelope struct {
		Audios []string `json:"audios"`
		Audio  string   `json:"audio"`
		Data   string   `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		switch {
		case len(envelope.Audios) > 0:
			return envelope.Audios, nil
		case envelope.Audio != "":
			return []string{envelope.Audio}, nil
		case envelope.Data != "":
			return []string{envelope.Data}, nil
		}
		return nil, fmt.Errorf("tts response missing audio data")
	}

	// some deployments return the base64 payload without JSON framing
	if s := strings.TrimSpace(string(raw)); s != "" {
		return []string{s}, nil
	}
	return nil, fmt.Errorf("tts response missing audio data")
}

func (c *Client) do(req *retryablehttp.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
