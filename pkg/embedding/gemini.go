package embedding

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"
	"google.golang.org/genai"

	"github.com/agentstation/fieldmatch/pkg/constants"
	"github.com/agentstation/fieldmatch/pkg/errors"
)

// GeminiConfig selects the backend for the Gemini embedder. An APIKey alone
// uses the Gemini API; a Project uses Vertex AI with the key or, without one,
// Application Default Credentials.
type GeminiConfig struct {
	APIKey   string
	Project  string
	Location string
	Model    string
}

// Gemini embeds text with a Google embedding model. The client is created on
// first use.
type Gemini struct {
	cfg GeminiConfig

	mu     sync.Mutex
	client *genai.Client
}

// NewGemini validates cfg and returns an embedder.
func NewGemini(cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" && cfg.Project == "" {
		return nil, &errors.AuthenticationError{
			Provider: "gemini",
			Method:   "api_key",
			Message:  "set GEMINI_API_KEY, or GOOGLE_CLOUD_PROJECT for Vertex AI",
		}
	}
	if cfg.Model == "" {
		cfg.Model = constants.DefaultEmbeddingModel
	}
	if cfg.Project != "" && cfg.Location == "" {
		cfg.Location = "us-central1"
	}
	return &Gemini{cfg: cfg}, nil
}

// Model returns the embedding model name.
func (g *Gemini) Model() string {
	return g.cfg.Model
}

// Embed implements Embedder.
func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	client, err := g.getOrCreateClient(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()

	resp, err := client.Models.EmbedContent(ctx, g.cfg.Model, genai.Text(text), nil)
	if err != nil {
		return nil, errors.WrapCollaborator("gemini embedder", "embed", err)
	}
	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, errors.NewCollaboratorError("gemini embedder", "embed", errors.New("empty embedding response"))
	}
	return resp.Embeddings[0].Values, nil
}

func (g *Gemini) getOrCreateClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}

	config := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  g.cfg.APIKey,
	}
	if g.cfg.Project != "" {
		config = &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  g.cfg.Project,
			Location: g.cfg.Location,
			APIKey:   g.cfg.APIKey,
		}
		if g.cfg.APIKey == "" {
			creds, err := detectCredentials()
			if err != nil {
				return nil, err
			}
			config.Credentials = creds
		}
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, errors.WrapCollaborator("gemini embedder", "connect", err)
	}
	g.client = client
	return client, nil
}

// detectCredentials looks up Application Default Credentials. DetectDefault
// takes no context, so it runs with a fixed deadline.
func detectCredentials() (*auth.Credentials, error) {
	type result struct {
		creds *auth.Credentials
		err   error
	}

	ch := make(chan result, 1)
	go func() {
		creds, err := credentials.DetectDefault(&credentials.DetectOptions{
			Scopes: []string{"https://www.googleapis.com/auth/cloud-platform"},
		})
		ch <- result{creds: creds, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, &errors.AuthenticationError{
				Provider: "gemini",
				Method:   "adc",
				Message:  "no application default credentials found",
				Err:      res.err,
			}
		}
		return res.creds, nil
	case <-time.After(2 * time.Second):
		return nil, &errors.AuthenticationError{
			Provider: "gemini",
			Method:   "adc",
			Message:  "credential detection timed out",
		}
	}
}
