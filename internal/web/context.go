package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/csvpreview/internal/core"
	"github.com/JonMunkholm/csvpreview/internal/logging"
)

// withRequestMetadata adds the client address and User-Agent for the run
// history, and the workspace id for logging.
func withRequestMetadata(r *http.Request, ws *core.Workspace) context.Context {
	ctx := core.ContextWithClient(r.Context(), r.RemoteAddr, r.UserAgent())
	if ws != nil {
		ctx = logging.WithWorkspace(ctx, ws.ID)
	}
	return ctx
}
