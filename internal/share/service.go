package share

import (
	"net/http"

	"github.com/encorelando/encorelando/internal/config"
	"github.com/encorelando/encorelando/internal/web"
)

type Service struct {
	cfg config.Config
}

func NewService(cfg config.Config) *Service {
	return &Service{cfg: cfg}
}

// Payload builds the share payload for the client. Failures come back as
// {"error": ...} with a 400; the caller's UI no-ops rather than crashing.
func (s *Service) Payload(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title string `json:"title"`
		Text  string `json:"text"`
		URL   string `json:"url"`
	}
	if err := web.DecodeJSON(r, &in); err != nil {
		web.JSON(w, http.StatusBadRequest, map[string]any{"error": "bad input"})
		return
	}
	p, err := Build(s.cfg.PublicBaseURL, in.Title, in.Text, in.URL)
	if err != nil {
		web.JSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	web.JSON(w, http.StatusOK, p)
}
