package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/giovaniif/coffee-machine/domain/inventory"
	"github.com/giovaniif/coffee-machine/domain/menu"
	"github.com/giovaniif/coffee-machine/domain/order"
	"github.com/giovaniif/coffee-machine/domain/payment"
	"github.com/giovaniif/coffee-machine/infra/gateways"
	"github.com/giovaniif/coffee-machine/infra/logging"
	"github.com/giovaniif/coffee-machine/infra/metrics"
	"github.com/giovaniif/coffee-machine/infra/requestid"
	"github.com/giovaniif/coffee-machine/infra/tracing"
	"github.com/giovaniif/coffee-machine/use_cases/browse"
	cancelorder "github.com/giovaniif/coffee-machine/use_cases/cancel"
	"github.com/giovaniif/coffee-machine/use_cases/profit"
	"github.com/giovaniif/coffee-machine/use_cases/purchase"
	"github.com/giovaniif/coffee-machine/use_cases/refill"
	"github.com/giovaniif/coffee-machine/use_cases/selection"
	"github.com/giovaniif/coffee-machine/use_cases/status"
)

const defaultRequestTimeout = 30 * time.Second

type Dependencies struct {
	Browse   *browse.Browse
	Select   *selection.Select
	Purchase *purchase.Purchase
	Cancel   *cancelorder.Cancel
	Refill   *refill.Refill
	Profit   *profit.ResetProfit
	Status   *status.Status
	Logger   *zap.Logger
	Redis    *redis.Client
	Timeout  time.Duration
}

type handlers struct {
	Dependencies
}

func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Timeout <= 0 {
		deps.Timeout = defaultRequestTimeout
	}
	h := &handlers{Dependencies: deps}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.Middleware())
	r.Use(tracing.Middleware())
	r.Use(logging.Middleware(deps.Logger))
	r.Use(metrics.Middleware)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", h.health)

	r.GET("/menu", h.menu)
	r.GET("/machine", h.machine)
	r.DELETE("/machine/status", h.clearStatus)
	r.POST("/coins/total", h.coinsTotal)
	r.POST("/orders", h.selectDrink)
	r.POST("/orders/:id/payment", h.pay)
	r.POST("/orders/:id/cancel", h.cancel)
	r.POST("/admin/refill", h.refill)
	r.POST("/admin/reset-profit", h.resetProfit)

	return r
}

func (h *handlers) withTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.Timeout)
}

func (h *handlers) health(c *gin.Context) {
	status := "healthy"
	redisCheck := "n/a"
	if h.Redis != nil {
		if err := h.Redis.Ping(c.Request.Context()).Err(); err != nil {
			status = "degraded"
			redisCheck = "down"
		} else {
			redisCheck = "up"
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "checks": gin.H{"redis": redisCheck}})
}

func (h *handlers) menu(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	entries, err := h.Browse.List(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	items := make([]MenuItemResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, MenuItemResponse{
			Name:        entry.Item.Name,
			Price:       entry.Item.Price,
			Emoji:       entry.Item.Emoji,
			Description: entry.Item.Description,
			Ingredients: entry.Ingredients,
			Available:   entry.Available,
			Reason:      entry.Reason,
		})
	}
	c.JSON(http.StatusOK, items)
}

func (h *handlers) machine(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	report, err := h.Status.Report(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	response := MachineResponse{
		Levels:        make([]LevelResponse, 0, len(report.Levels)),
		Profit:        report.Profit,
		Phase:         report.Phase,
		Current:       report.Current,
		StatusMessage: report.StatusMessage,
	}
	for _, level := range report.Levels {
		response.Levels = append(response.Levels, LevelResponse(level))
	}
	c.JSON(http.StatusOK, response)
}

func (h *handlers) clearStatus(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	if err := h.Status.ClearMessage(ctx); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) coinsTotal(c *gin.Context) {
	var coins payment.Coins
	if err := c.ShouldBindJSON(&coins); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := coins.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, CoinsTotalResponse{Total: payment.SumCoins(coins)})
}

func (h *handlers) selectDrink(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	var request SelectRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	output, err := h.Select.Select(ctx, selection.Input{Drink: request.Drink})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, SelectResponse{
		OrderId:      output.OrderId,
		Drink:        output.Drink,
		Status:       output.Status,
		AmountNeeded: output.Price,
		Replaced:     output.Replaced,
	})
}

func (h *handlers) pay(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	var coins payment.Coins
	if err := c.ShouldBindJSON(&coins); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	orderId := c.Param("id")
	ctx, span := tracing.Start(ctx, "purchase.pay", attribute.String("order.id", orderId))
	output, err := h.Purchase.Pay(ctx, purchase.Input{
		OrderId:        orderId,
		Coins:          coins,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.String("drink", output.Drink), attribute.Bool("replayed", output.Replayed))
	}
	span.End()

	if err != nil {
		h.fail(c, err)
		return
	}
	response := PaymentResponse{
		OrderId:  output.OrderId,
		Drink:    output.Drink,
		Message:  output.Message,
		Price:    output.Price,
		Tendered: output.Tendered,
		Replayed: output.Replayed,
	}
	if !output.Change.IsZero() {
		change := output.Change
		response.Change = &change
	}
	c.JSON(http.StatusOK, response)
}

func (h *handlers) cancel(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	output, err := h.Cancel.Cancel(ctx, cancelorder.Input{OrderId: c.Param("id")})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderId": output.OrderId, "drink": output.Drink, "status": order.Cancelled})
}

func (h *handlers) refill(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	levels, err := h.Refill.Refill(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"levels": levels})
}

func (h *handlers) resetProfit(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	previous, err := h.Profit.Reset(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"previous": previous})
}

// fail maps use case errors to HTTP statuses.
func (h *handlers) fail(c *gin.Context, err error) {
	var rejected *payment.RejectedError
	switch {
	case errors.As(err, &rejected):
		c.JSON(http.StatusPaymentRequired, RejectedPaymentResponse{
			Error:    err.Error(),
			Tendered: rejected.Tendered,
			Price:    rejected.Price,
			Refunded: rejected.Tendered,
		})
	case errors.Is(err, purchase.ErrKeyReused):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, purchase.ErrInvalidCoins):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, menu.ErrUnknownDrink), errors.Is(err, order.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, gateways.ErrKeyInProgress):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: err.Error()})
	default:
		logging.WithRequest(h.Logger, c).Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	_ = c.Error(err)
}
