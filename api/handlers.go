package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"tasktracker/domain"
)

const requestMaxSize = 64 * 1024 // 64 KiB

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, board Board, auth *Auth, stream Stream, logger *log.Logger) {
	e.GET("/healthz", healthz())

	e.POST("/api/login", login(auth))
	e.POST("/api/logout", logout(auth))
	e.GET("/api/me", me(auth))

	g := e.Group("/api", auth.RequireSession)
	g.GET("/lists", getLists(board))
	g.POST("/lists", postList(board))
	g.PUT("/lists/:id", putList(board))
	g.DELETE("/lists/:id", deleteList(board))

	g.GET("/cards", getCards(board, logger))
	g.POST("/cards", postCard(board))
	g.PUT("/cards/:id", putCard(board))
	g.PUT("/cards/:id/move", moveCard(board))
	g.DELETE("/cards/:id", deleteCard(board))

	g.GET("/cards/:id/comments", getComments(board))
	g.POST("/cards/:id/comments", postComment(board))

	g.GET("/events", streamEvents(stream))
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func decodeBody(c echo.Context, v any) error {
	lr := io.LimitReader(c.Request().Body, requestMaxSize)
	return sonic.ConfigStd.NewDecoder(lr).Decode(v)
}

func pathID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// writeError maps the domain error taxonomy to HTTP statuses.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, domain.ErrForeignKey):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown parent"})
	case errors.Is(err, domain.ErrInvalidPriority):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid priority"})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func login(auth *Auth) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req loginRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}
		user, token, err := auth.Login(c.Request().Context(), req.Username, req.Password)
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		if err != nil {
			return writeError(c, err)
		}
		c.SetCookie(auth.sessionCookie(token))
		return c.JSON(http.StatusOK, echo.Map{"user": user})
	}
}

func logout(auth *Auth) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := auth.Logout(c.Request().Context(), tokenFromRequest(c)); err != nil {
			return writeError(c, err)
		}
		c.SetCookie(clearedSessionCookie())
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}
}

func me(auth *Auth) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok, err := auth.userFromRequest(c)
		if err != nil {
			return writeError(c, err)
		}
		if !ok {
			return c.JSON(http.StatusOK, echo.Map{"user": nil})
		}
		return c.JSON(http.StatusOK, echo.Map{"user": user})
	}
}

func getLists(board Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		lists, err := board.Lists(c.Request().Context())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, lists)
	}
}

type listRequest struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

func postList(board Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req listRequest
		if err := decodeBody(c, &req); err != nil || req.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}
		list, err := board.CreateList(c.Request().Context(), req.Name)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, list)
	}
}

func putList(board Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		var req listRequest
		if err := decodeBody(c, &req); err != nil || req.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}
		list, err := board.UpdateList(c.Request().Context(), id, req.Name, req.Position)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, list)
	}
}

func deleteList(board Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		if err := board.DeleteList(c.Request().Context(), id); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}
}

func getCards(board Board, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newCardRequestMetrics(c.Request().Context(), logger)
		c.SetRequest(c.Request().WithContext(ctx))
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		fetchStart := time.Now()
		cards, fetchErr := board.Cards(ctx)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			err = writeError(c, fetchErr)
			return err
		}
		metrics.SetCardsReturned(len(cards))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, cards)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

type cardRequest struct {
	ListID      int64           `json:"list_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    domain.Priority `json:"priority"`
	Assignee    *string         `json:"assignee"`
	DueDate     *string         `json:"due_date"`
	Position    int             `json:"position"`
}

func (r cardRequest) draft() domain.CardDraft {
	return domain.CardDraft{
		ListID:      r.ListID,
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Assignee:    r.Assignee,
		DueDate:     r.DueDate,
	}
}

func postCard(board Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req cardRequest
		if err := decodeBody(c, &req); err != nil || req.Title == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}
		card, err := board.CreateCard(c.Request().Context(), req.draft())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, card)
	}
}

func putCard(board Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		var req cardRequest
		if err := decodeBody(c, &req); err != nil || req.Title == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}
		card, err := board.UpdateCard(c.Request().Context(), id, req.draft(), req.Position)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, card)
	}
}

type moveRequest struct {
	ListID   int64 `json:"list_id"`
	Position int   `json:"position"`
}

func moveCard(board Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		var req moveRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}
		card, err := board.MoveCard(c.Request().Context(), id, req.ListID, req.Position)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, card)
	}
}

func deleteCard(board Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		if err := board.DeleteCard(c.Request().Context(), id); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}
}

func getComments(board Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		comments, err := board.Comments(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, comments)
	}
}

type commentRequest struct {
	Content string `json:"content"`
}

func postComment(board Board) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		var req commentRequest
		if err := decodeBody(c, &req); err != nil || req.Content == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}
		// The author is always the session identity, never the request body.
		author := currentUser(c).Username
		comment, err := board.AddComment(c.Request().Context(), id, author, req.Content)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, comment)
	}
}
