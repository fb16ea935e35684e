package api

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
)

// streamEvents serves the broadcast channel as a server-sent event stream.
// Each mutation committed on the server arrives as one `data:` frame, in
// commit order. There is no backlog: clients connecting (or reconnecting)
// must refetch /api/lists and /api/cards for full state.
func streamEvents(stream Stream) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
		c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
		c.Response().Header().Set("X-Accel-Buffering", "no")
		flusher, ok := c.Response().Writer.(http.Flusher)
		if !ok {
			return c.String(http.StatusInternalServerError, "stream unsupported")
		}
		c.Response().WriteHeader(http.StatusOK)
		flusher.Flush()

		ch := stream.Subscribe()
		defer stream.Unsubscribe(ch)

		ctx := c.Request().Context()
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-ch:
				data, err := sonic.Marshal(ev)
				if err != nil {
					c.Logger().Error(err)
					continue
				}
				if _, err := c.Response().Write([]byte("data: ")); err != nil {
					return nil
				}
				if _, err := c.Response().Write(data); err != nil {
					return nil
				}
				if _, err := c.Response().Write([]byte("\n\n")); err != nil {
					return nil
				}
				flusher.Flush()
			}
		}
	}
}
