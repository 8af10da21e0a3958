package htmlunit_test

import (
	"net/http/httptest"
	"testing"

	"github.com/wanmail/htmlunit/internal/seleniumtest"
)

func TestEmbedded(t *testing.T) {
	s := httptest.NewServer(seleniumtest.Handler)
	defer s.Close()

	seleniumtest.RunCommonTests(t, seleniumtest.Config{ServerURL: s.URL})
}
