package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/contenthub/postnotify/pkg/apiresponses"
	"github.com/contenthub/postnotify/pkg/mail"
	"github.com/contenthub/postnotify/pkg/notify"
)

// TransitionRequest is the ingestion payload emitted by the content system
// on every entity status change.
type TransitionRequest struct {
	OldStatus string        `json:"old_status" binding:"required"`
	NewStatus string        `json:"new_status" binding:"required"`
	Entity    notify.Entity `json:"entity" binding:"required"`

	// FromAccount optionally names the SMTP account to send from for this
	// transition only.
	FromAccount string `json:"from_account"`
}

// FailedRecipient is one undeliverable recipient in a dispatch report.
type FailedRecipient struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// DispatchReport is the per-transition response body.
type DispatchReport struct {
	DispatchID string            `json:"dispatch_id"`
	Kind       string            `json:"kind,omitempty"`
	Suppressed bool              `json:"suppressed"`
	Reason     string            `json:"reason,omitempty"`
	Delivered  []string          `json:"delivered,omitempty"`
	Failed     []FailedRecipient `json:"failed,omitempty"`
}

// TestEmailRequest asks for one synchronous configuration-check send.
type TestEmailRequest struct {
	To          string `json:"to" binding:"required"`
	FromAccount string `json:"from_account"`
}

// NotificationsController handles transition ingestion and test sends.
type NotificationsController struct {
	dispatcher *notify.Dispatcher
	sender     mail.Sender
	site       notify.Site
	log        *zap.SugaredLogger
}

// NewNotificationsController wires the controller.
func NewNotificationsController(dispatcher *notify.Dispatcher, sender mail.Sender, site notify.Site, log *zap.SugaredLogger) *NotificationsController {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &NotificationsController{
		dispatcher: dispatcher,
		sender:     sender,
		site:       site,
		log:        log.Named("api"),
	}
}

func (n *NotificationsController) BasePath() string { return "" }

func (n *NotificationsController) Handlers() []gin.HandlerFunc { return nil }

func (n *NotificationsController) Register(rg *gin.RouterGroup) error {
	rg.POST("/transitions", n.postTransition)
	rg.POST("/test-email", n.postTestEmail)
	return nil
}

func (n *NotificationsController) postTransition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiresponses.RespondBadRequestWithDetails(c, "invalid transition payload", err.Error())
		return
	}
	if req.Entity.ID <= 0 {
		apiresponses.RespondBadRequest(c, "entity.id must be a positive integer")
		return
	}
	if req.Entity.Type == "" {
		apiresponses.RespondBadRequest(c, "entity.type must be set")
		return
	}

	tr := notify.Transition{
		OldStatus: req.OldStatus,
		NewStatus: req.NewStatus,
		Entity:    req.Entity,
	}

	res, err := n.dispatcher.Dispatch(c.Request.Context(), tr, req.FromAccount)

	report := DispatchReport{
		DispatchID: res.ID,
		Kind:       res.Kind.String(),
		Suppressed: res.Suppressed,
		Reason:     res.Reason,
	}
	for _, r := range res.Delivered {
		report.Delivered = append(report.Delivered, r.Email)
	}
	for _, f := range res.Failed {
		report.Failed = append(report.Failed, FailedRecipient{Email: f.Recipient.Email, Error: f.Err.Error()})
	}

	if err != nil {
		n.log.Warnw("Dispatch finished with delivery errors",
			"dispatchID", res.ID, "failed", len(res.Failed), "error", err)
		c.JSON(http.StatusBadGateway, report)
		return
	}
	apiresponses.RespondOK(c, report)
}

func (n *NotificationsController) postTestEmail(c *gin.Context) {
	var req TestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiresponses.RespondBadRequestWithDetails(c, "invalid test email payload", err.Error())
		return
	}

	if n.sender == nil || !n.sender.Enabled() {
		apiresponses.RespondServiceUnavailable(c, "smtp transport")
		return
	}

	if err := mail.SendTest(n.sender, req.To, n.site.Name, n.site.URL, req.FromAccount); err != nil {
		n.log.Warnw("Test email failed", "to", req.To, "error", err)
		apiresponses.RespondBadGateway(c, err.Error())
		return
	}

	apiresponses.RespondOK(c, gin.H{
		"message": fmt.Sprintf("Test email sent successfully to %s", req.To),
	})
}
