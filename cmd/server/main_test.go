package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/amirasaad/fxwidget/infra/initializer"
	"github.com/amirasaad/fxwidget/pkg/app"
	"github.com/amirasaad/fxwidget/pkg/config"
	"github.com/amirasaad/fxwidget/pkg/domain"
	"github.com/amirasaad/fxwidget/webapi"
	"github.com/stretchr/testify/suite"
)

type MainTestSuite struct {
	suite.Suite
	upstream *httptest.Server
}

func (s *MainTestSuite) SetupTest() {
	s.upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"result":"success","time_last_update_utc":"Sun, 18 Oct 2026 00:00:01 +0000","rates":{"USD":1,"EUR":0.92}}`)
	}))
	s.T().Cleanup(s.upstream.Close)

	s.T().Chdir(s.T().TempDir())
	s.T().Setenv("STORE_DRIVER", "file")
	s.T().Setenv("STORE_FILE_PATH", filepath.Join(s.T().TempDir(), "fxwidget.json"))
	s.T().Setenv("EXCHANGE_RATE_PRIMARY_URL", s.upstream.URL)
	s.T().Setenv("EXCHANGE_RATE_ENABLE_FALLBACK", "false")
	s.T().Setenv("LOG_LEVEL", "8")
}

func (s *MainTestSuite) TestWiring() {
	cfg, err := config.Load()
	s.Require().NoError(err)

	deps, err := initializer.InitializeDependencies(cfg)
	s.Require().NoError(err)
	defer deps.Close() //nolint: errcheck

	res := deps.State.Resolve(s.T().Context())
	s.Equal(domain.SourcePrimary, res.Source)

	fiberApp := webapi.SetupApp(app.New(deps, cfg))
	req := httptest.NewRequest(http.MethodGet, "/api/convert?amount=10&from=USD&to=EUR", nil)
	resp, err := fiberApp.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(http.StatusOK, resp.StatusCode)
}

func TestMainTestSuite(t *testing.T) {
	suite.Run(t, new(MainTestSuite))
}
