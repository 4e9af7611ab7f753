package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveLine(t *testing.T) {
	heldBefore := testutil.ToFloat64(GateLinesTotal.WithLabelValues("held"))
	criticalBefore := testutil.ToFloat64(DetectionsTotal.WithLabelValues("critical"))
	approvedBefore := testutil.ToFloat64(GateLinesTotal.WithLabelValues("approved"))

	ObserveLine("held", "critical")
	ObserveLine("approved", "")

	assert.Equal(t, heldBefore+1, testutil.ToFloat64(GateLinesTotal.WithLabelValues("held")))
	assert.Equal(t, criticalBefore+1, testutil.ToFloat64(DetectionsTotal.WithLabelValues("critical")))
	assert.Equal(t, approvedBefore+1, testutil.ToFloat64(GateLinesTotal.WithLabelValues("approved")))
}

func TestObserveCase(t *testing.T) {
	openBefore := testutil.ToFloat64(CaseTransitionsTotal.WithLabelValues("open"))
	releasedBefore := testutil.ToFloat64(CaseTransitionsTotal.WithLabelValues("released"))

	ObserveCase("open")
	ObserveCase("open")
	ObserveCase("released")

	assert.Equal(t, openBefore+2, testutil.ToFloat64(CaseTransitionsTotal.WithLabelValues("open")))
	assert.Equal(t, releasedBefore+1, testutil.ToFloat64(CaseTransitionsTotal.WithLabelValues("released")))
}

func TestObserveValidation(t *testing.T) {
	before := testutil.CollectAndCount(GateValidationDuration)
	ObserveValidation(time.Now())
	assert.Equal(t, before, testutil.CollectAndCount(GateValidationDuration), "histogram is a single series")
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/ping", "204"))
	unknownBefore := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unknown", "404"))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/ping", "204")))
	assert.Equal(t, unknownBefore+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unknown", "404")))
}
