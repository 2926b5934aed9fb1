// Package intent adapts the external BERT intent model to the chatbot.
// The model artifact itself is served out-of-process; this package only
// owns text normalization and the HTTP round trip.
package intent

import (
	"context"
	"errors"

	httputils "github.com/didierrc/KusiBot/kusibot/utils/http"
	"github.com/didierrc/KusiBot/kusibot/utils/logging"
)

// ErrUnavailable is returned when no inference service is configured.
var ErrUnavailable = errors.New("intent classifier unavailable")

// Classifier predicts the coarse category of a user message together
// with the model's confidence in [0,1].
type Classifier interface {
	Classify(ctx context.Context, text string) (string, float64, error)
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// HTTPRecognizer talks to the BERT inference service.
type HTTPRecognizer struct {
	url string
}

// NewRecognizer returns an HTTP-backed classifier, or the typed
// Unavailable classifier when no service URL is configured.
func NewRecognizer(url string) Classifier {
	if url == "" {
		return Unavailable{}
	}
	return &HTTPRecognizer{url: url}
}

func (r *HTTPRecognizer) Classify(ctx context.Context, text string) (string, float64, error) {
	defer logging.LogDuration(ctx, "intent_classify")()

	cleaned := CleanText(text)
	var resp classifyResponse
	if err := httputils.PostJSON(ctx, r.url, classifyRequest{Text: cleaned}, &resp); err != nil {
		return "", 0, err
	}
	return resp.Intent, resp.Confidence, nil
}

// Unavailable is the typed "no classifier" adapter.
type Unavailable struct{}

func (Unavailable) Classify(context.Context, string) (string, float64, error) {
	return "", 0, ErrUnavailable
}
