package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/TaskFox/internal/pkg/billing"
)

const stripeSignatureHeader = "Stripe-Signature"

type WebhookController struct {
	reconciler *billing.Reconciler
}

func NewWebhookController(reconciler *billing.Reconciler) *WebhookController {
	return &WebhookController{reconciler: reconciler}
}

// HandleStripe acknowledges a delivery once it is recorded. Any error makes
// the provider retry, which the event id deduplication absorbs.
func (wc *WebhookController) HandleStripe(c *fiber.Ctx) error {
	// fasthttp reuses the body buffer after the handler returns
	payload := append([]byte(nil), c.Body()...)

	result, err := wc.reconciler.Handle(c.UserContext(), payload, c.Get(stripeSignatureHeader))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"received": true, "result": result})
}
