package vertex

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"

	"vertexchat-go/internal/constants"
)

func userAgent() string {
	return fmt.Sprintf("vertexchat-go/%s (%s; %s) %s", constants.Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

// applyDefaultHeaders sets auth, content negotiation and client identity.
func (c *Client) applyDefaultHeaders(req *http.Request, bearer string) {
	req.Header.Set("Content-Type", "application/json")
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	req.Header.Set("User-Agent", userAgent())
	gv := strings.TrimPrefix(runtime.Version(), "go")
	if gv == "" {
		gv = "unknown"
	}
	req.Header.Set("X-Goog-Api-Client", "gl-go/"+gv)
	if project := strings.TrimSpace(c.cfg.ProjectID); project != "" {
		req.Header.Set("X-Goog-User-Project", project)
	}
}
