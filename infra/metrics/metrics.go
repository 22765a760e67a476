package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/giovaniif/coffee-machine/domain/money"
)

var (
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	DrinksDispensed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffee_drinks_dispensed_total",
			Help: "Drinks dispensed after an accepted payment",
		},
		[]string{"drink"},
	)
	SalesRevenue = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffee_sales_revenue_dollars_total",
			Help: "Revenue booked by accepted payments",
		},
		[]string{"drink"},
	)
	PaymentsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffee_payments_rejected_total",
			Help: "Payments refused for an insufficient tender",
		},
		[]string{"drink"},
	)
	StockShortages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffee_stock_shortages_total",
			Help: "Orders refused because an ingredient ran short",
		},
		[]string{"ingredient"},
	)
	StockLevel = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "coffee_stock_level",
			Help: "Remaining quantity per ingredient",
		},
		[]string{"ingredient"},
	)
	Profit = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coffee_profit_dollars",
			Help: "Running profit of the machine",
		},
	)
)

func NormalizePath(p string) string {
	p = strings.TrimPrefix(p, "/")
	if idx := strings.Index(p, "/"); idx >= 0 {
		p = p[:idx]
	}
	if p == "" {
		return "root"
	}
	return p
}

func Middleware(c *gin.Context) {
	if c.Request.URL.Path == "/metrics" {
		c.Next()
		return
	}
	start := time.Now()
	c.Next()
	duration := time.Since(start).Seconds()
	path := NormalizePath(c.Request.URL.Path)
	status := strconv.Itoa(c.Writer.Status())
	RequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	RequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
}

// Recorder reports machine events to the collectors above.
type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) DrinkDispensed(drink string, price money.Amount) {
	DrinksDispensed.WithLabelValues(drink).Inc()
	SalesRevenue.WithLabelValues(drink).Add(price.Float())
}

func (r *Recorder) PaymentRejected(drink string) {
	PaymentsRejected.WithLabelValues(drink).Inc()
}

func (r *Recorder) StockShortage(ingredient string) {
	StockShortages.WithLabelValues(ingredient).Inc()
}

func (r *Recorder) Levels(levels map[string]int, profit money.Amount) {
	for ingredient, level := range levels {
		StockLevel.WithLabelValues(ingredient).Set(float64(level))
	}
	Profit.Set(profit.Float())
}
