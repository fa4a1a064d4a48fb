package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/errors"
	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/realtime/sse"
	"github.com/fluxclass/fluxclass-backend/internal/requestdata"
)

type StreamHandler struct {
	log *logger.Logger
	hub *sse.Hub
}

func NewStreamHandler(log *logger.Logger, hub *sse.Hub) *StreamHandler {
	return &StreamHandler{
		log: log.With("handler", "StreamHandler"),
		hub: hub,
	}
}

// Stream opens the event stream. Channels come in as a comma-separated query
// parameter; the connection lives until the client goes away.
func (sh *StreamHandler) Stream(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", errors.ErrUnauthorized)
		return
	}

	client := sh.hub.NewClient(rd.UserID)
	for _, channel := range strings.Split(c.Query("channels"), ",") {
		sh.hub.Subscribe(client, channel)
	}
	defer sh.hub.CloseClient(client)

	sh.hub.ServeHTTP(c.Writer, c.Request, client)
}
