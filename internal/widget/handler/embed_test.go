package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"compliance-panel/internal/widget/handler/mocks"
	"compliance-panel/internal/widget/models"
	dErrors "compliance-panel/pkg/domain-errors"
	"compliance-panel/pkg/testutil"
)

type EmbedHandlerSuite struct {
	suite.Suite
}

func TestEmbedHandlerSuite(t *testing.T) {
	suite.Run(t, new(EmbedHandlerSuite))
}

func newEmbedHandler(t *testing.T) (http.Handler, *mocks.MockEmbedService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockEmbedService(ctrl)
	r := chi.NewRouter()
	NewEmbed(mockService, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r, mockService
}

func (s *EmbedHandlerSuite) TestConfig() {
	w := sampleWidget()
	w.Impressions = 99

	s.Run("render config without admin fields", func() {
		router, svc := newEmbedHandler(s.T())
		svc.EXPECT().EmbedConfig(gomock.Any(), w.ID, "tok").Return(w, nil)

		rr := testutil.DoRequest(router, testutil.NewRawRequest(s.T(), http.MethodGet, "/embed/widgets/"+w.ID.String()+"?token=tok", ""))

		s.Equal(http.StatusOK, rr.Code)
		body := testutil.DecodeJSON[map[string]any](s.T(), rr)
		s.Equal("cookie-banner", body["type"])
		s.NotContains(body, "impressions")
		s.NotContains(body, "name")
	})

	s.Run("bad token", func() {
		router, svc := newEmbedHandler(s.T())
		svc.EXPECT().EmbedConfig(gomock.Any(), w.ID, "").Return(nil, dErrors.New(dErrors.CodeUnauthorized, "embed token is required"))

		rr := testutil.DoRequest(router, testutil.NewRawRequest(s.T(), http.MethodGet, "/embed/widgets/"+w.ID.String(), ""))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
	})
}

func (s *EmbedHandlerSuite) TestImpression() {
	w := sampleWidget()
	ua := "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

	s.Run("user agent from client metadata", func() {
		router, svc := newEmbedHandler(s.T())
		svc.EXPECT().RecordImpression(gomock.Any(), w.ID, "tok", ua).Return(models.DeviceDesktop, nil)

		req := testutil.NewRawRequest(s.T(), http.MethodPost, "/embed/widgets/"+w.ID.String()+"/impressions?token=tok", "")
		req = testutil.WithClientMetadata(req, "198.51.100.4", ua)
		rr := testutil.DoRequest(router, req)

		s.Equal(http.StatusAccepted, rr.Code)
		s.JSONEq(`{"device_class":"desktop"}`, rr.Body.String())
	})

	s.Run("inactive widget", func() {
		router, svc := newEmbedHandler(s.T())
		svc.EXPECT().RecordImpression(gomock.Any(), w.ID, "tok", "").Return(models.DeviceClass(""), dErrors.New(dErrors.CodeNotFound, "widget not found"))

		rr := testutil.DoRequest(router, testutil.NewRawRequest(s.T(), http.MethodPost, "/embed/widgets/"+w.ID.String()+"/impressions?token=tok", ""))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})
}
