package api

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/imgresolver/internal/resolver"
)

// legacyResponse is the envelope of the pre-/v1 endpoints. They always answer
// 200 and report failure in the body.
type legacyResponse struct {
	Success          bool    `json:"success"`
	Message          string  `json:"message"`
	ImageServiceName *string `json:"imageServiceName"`
	ImageURL         *string `json:"imageUrl"`
}

type legacyServicesResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	Services []string `json:"services"`
}

func (s *Server) legacyBypass(w http.ResponseWriter, r *http.Request) {
	pageURL := r.URL.Query().Get("url")
	lower := strings.ToLower(pageURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s.writeJSON(w, http.StatusOK, legacyResponse{Message: "Please specify the image URL"})
		return
	}
	result, err := s.resolver.Resolve(r.Context(), pageURL)
	if err != nil {
		s.logger.Debug("bypass failed", zap.String("url", pageURL), zap.Error(err))
		s.writeJSON(w, http.StatusOK, legacyResponse{Message: legacyReason(err)})
		return
	}
	s.writeJSON(w, http.StatusOK, legacyResponse{
		Success:          true,
		Message:          "OK",
		ImageServiceName: &result.Service,
		ImageURL:         &result.ImageURL,
	})
}

func (s *Server) legacySupportedServices(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, legacyServicesResponse{
		Success:  true,
		Message:  "OK",
		Services: s.resolver.ServiceNames(),
	})
}

func legacyReason(err error) string {
	if _, ok := resolver.KindOf(err); ok {
		return resolver.ReasonOf(err)
	}
	return "Failed to fetch the image location"
}
