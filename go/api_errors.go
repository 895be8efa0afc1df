package trackerserver

import (
	"github.com/gin-gonic/gin"

	apierrors "github.com/Apurer/supplychain-tracker/internal/shared/errors"
)

// responder renders every failure as application/problem+json.
var responder = apierrors.NewChainedResponder("")

// respondError classifies err by its shared kind.
func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

// respondBadRequest reports an unreadable payload or parameter.
func respondBadRequest(c *gin.Context, err error) {
	responder.BadRequest(c, err.Error())
}
